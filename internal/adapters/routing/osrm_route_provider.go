package routing

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

	"github.com/sirupsen/logrus"
)

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geometry"`
		Legs []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

// OSRMRouteProvider implements RouteProvider using an OSRM route service.
//
// Successful routes are stored in the optional cache; lookups check it
// before calling OSRM. The provider is safe for concurrent use.
type OSRMRouteProvider struct {
	client  *httpx.Client
	baseURL string
	profile string
	cache   ports.RouteCache
}

func NewOSRMRouteProvider(baseURL string, timeout time.Duration, cache ports.RouteCache) (*OSRMRouteProvider, error) {
	if baseURL == "" {
		return nil, errors.New("OSRM base url is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("OSRM base url: %w", err)
	}

	return &OSRMRouteProvider{
		client:  httpx.New(timeout, nil),
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving",
		cache:   cache,
	}, nil
}

// SetRetry overrides how many times a transient OSRM failure is attempted and
// the backoff between attempts. Non-positive values keep the defaults.
func (o *OSRMRouteProvider) SetRetry(maxAttempts int, backoff, maxBackoff time.Duration) {
	if maxAttempts > 0 {
		o.client.MaxAttempts = maxAttempts
	}
	if backoff > 0 {
		o.client.Backoff = backoff
	}
	if maxBackoff > 0 {
		o.client.MaxBackoff = maxBackoff
	}
}

func (o *OSRMRouteProvider) Route(ctx context.Context, points []domain.Coordinates) (_ ports.Route, err error) {
	defer obs.Time(ctx, "osrm.Route")(&err)

	if len(points) < 2 {
		return ports.Route{}, fmt.Errorf("osrm route: got %d points: %w", len(points), domain.ErrInsufficientWaypoints)
	}

	if o.cache != nil {
		cached, ok, err := o.cache.Get(ctx, points)
		if err != nil {
			logrus.WithError(err).Warn("route cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	route, err := o.fetchRoute(ctx, points)
	if err != nil {
		return ports.Route{}, err
	}

	if o.cache != nil {
		if err := o.cache.Put(ctx, points, route); err != nil {
			logrus.WithError(err).Warn("route cache write failed")
		}
	}

	return route, nil
}

func (o *OSRMRouteProvider) fetchRoute(ctx context.Context, points []domain.Coordinates) (ports.Route, error) {
	coords := make([]string, 0, len(points))
	for _, p := range points {
		coords = append(coords, p.LonLatString())
	}
	endpoint := fmt.Sprintf("%s/route/v1/%s/%s", o.baseURL, o.profile, strings.Join(coords, ";"))

	resp, err := o.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("overview", "full")
		q.Set("geometries", "geojson")
		q.Set("steps", "false")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return ports.Route{}, fmt.Errorf("osrm route request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.Route{}, fmt.Errorf("decode osrm response: %w", err)
	}

	if decoded.Code != "" && decoded.Code != "Ok" {
		return ports.Route{}, fmt.Errorf("osrm route: code=%s message=%q", decoded.Code, decoded.Message)
	}
	if len(decoded.Routes) == 0 {
		return ports.Route{}, errors.New("osrm route: no routes returned")
	}

	r := decoded.Routes[0]
	legs := make([]ports.RouteLeg, 0, len(r.Legs))
	for _, l := range r.Legs {
		legs = append(legs, ports.RouteLeg{DistanceMeters: l.Distance, DurationSeconds: l.Duration})
	}

	return ports.Route{
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
		Geometry:        r.Geometry.Coordinates,
		Legs:            legs,
	}, nil
}
