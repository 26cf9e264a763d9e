package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/httpx"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"
)

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NominatimGeocoder resolves place names with the OpenStreetMap Nominatim
// search API. It sends one request per call; throttling and retries are
// the caller's job, since Nominatim's usage policy is one request per second.
type NominatimGeocoder struct {
	client  *httpx.Client
	baseURL string
}

func NewNominatimGeocoder(baseURL, userAgent string, timeout time.Duration) (*NominatimGeocoder, error) {
	if strings.TrimSpace(userAgent) == "" {
		return nil, errors.New("nominatim user agent is empty")
	}
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}

	return &NominatimGeocoder{
		client:  httpx.New(timeout, map[string]string{"User-Agent": userAgent}),
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (n *NominatimGeocoder) Geocode(ctx context.Context, query string) (_ ports.GeocodeResult, err error) {
	defer obs.Time(ctx, "nominatim.Geocode")(&err)

	req, err := n.client.NewRequest(ctx, http.MethodGet, n.baseURL+"/search", nil)
	if err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("nominatim geocode %q: %w", query, err)
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")
	req.URL.RawQuery = q.Encode()

	resp, err := n.client.Do(req)
	if err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("nominatim geocode %q: %w", query, err)
	}
	defer resp.Body.Close()

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("decode nominatim response: %w", err)
	}

	if len(places) == 0 {
		return ports.GeocodeResult{}, fmt.Errorf("nominatim geocode %q: %w", query, domain.ErrNoGeocodeResult)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("nominatim geocode %q: invalid lat %q: %w", query, places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("nominatim geocode %q: invalid lon %q: %w", query, places[0].Lon, err)
	}

	return ports.GeocodeResult{
		Coordinates: domain.Coordinates{Lon: lon, Lat: lat},
		DisplayName: places[0].DisplayName,
	}, nil
}
