package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/httpx"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"
)

type orsGeocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// ORSGeocoder resolves place names with OpenRouteService (/geocode/search),
// limited to the US.
type ORSGeocoder struct {
	client  *httpx.Client
	baseURL string
}

func NewORSGeocoder(apiKey string, timeout time.Duration) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSGeocoder{
		client:  httpx.New(timeout, map[string]string{"Authorization": apiKey}),
		baseURL: "https://api.openrouteservice.org",
	}, nil
}

func (o *ORSGeocoder) Geocode(ctx context.Context, query string) (_ ports.GeocodeResult, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := strings.Join(strings.Fields(query), " ")

	req, err := o.client.NewRequest(ctx, http.MethodGet, o.baseURL+"/geocode/search", nil)
	if err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("get geocode request: %w", err)
	}

	q := url.Values{}
	q.Set("text", norm)
	q.Set("boundary.country", "US")
	q.Set("size", "1")
	req.URL.RawQuery = q.Encode()

	resp, err := o.client.Do(req)
	if err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded orsGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return ports.GeocodeResult{}, fmt.Errorf("ors geocode %q: %w", query, domain.ErrNoGeocodeResult)
	}

	f := decoded.Features[0]
	if len(f.Geometry.Coordinates) != 2 {
		return ports.GeocodeResult{}, fmt.Errorf("invalid coordinate format for %q", query)
	}

	label := f.Properties.Label
	if label == "" {
		label = norm
	}

	return ports.GeocodeResult{
		Coordinates: domain.Coordinates{
			Lon: f.Geometry.Coordinates[0],
			Lat: f.Geometry.Coordinates[1],
		},
		DisplayName: label,
	}, nil
}
