package services

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/httpx"
	"trip-planner-service/internal/platform/logging"
	"trip-planner-service/internal/ports"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var pinnedPattern = regexp.MustCompile(`Pinned location \((-?\d+\.\d+),\s*(-?\d+\.\d+)\)`)

type ResolverOptions struct {
	Cache      ports.GeocodeCache
	Limiter    ports.RateLimiter
	MaxRetries int
	Logger     logrus.FieldLogger
}

// LocationResolver turns place names into waypoints. It never fails:
// when the geocoder cannot answer, a deterministic approximate location
// is derived from the query itself.
//
// The limiter is shared by every caller, so concurrent resolutions stay
// within the geocoder's quota. Cache hits do not consume quota.
type LocationResolver struct {
	geocoder   ports.Geocoder
	cache      ports.GeocodeCache
	limiter    ports.RateLimiter
	maxRetries int
	log        logrus.FieldLogger
}

// NewLocationResolver builds a resolver. A nil geocoder resolves everything offline.
func NewLocationResolver(geocoder ports.Geocoder, opts ResolverOptions) *LocationResolver {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ports.NoopLimiter{}
	}

	return &LocationResolver{
		geocoder:   geocoder,
		cache:      opts.Cache,
		limiter:    limiter,
		maxRetries: max(opts.MaxRetries, 0),
		log:        logging.OrStandard(opts.Logger),
	}
}

// Resolve returns coordinates for query.
func (r *LocationResolver) Resolve(ctx context.Context, query string) domain.Waypoint {
	if wp, ok := parsePinned(query); ok {
		return wp
	}

	if r.geocoder == nil {
		return ApproximateLocation(query)
	}

	key := domain.NormalizeQuery(query)

	if r.cache != nil {
		hits, err := r.cache.GetMany(ctx, []string{key})
		if err != nil {
			r.log.WithError(err).WithField("query", query).Warn("geocode cache read failed")
		} else if hit, ok := hits[key]; ok {
			return fromGeocodeResult(query, hit)
		}
	}

	res, err := r.geocode(ctx, query)
	switch {
	case errors.Is(err, domain.ErrNoGeocodeResult):
		r.log.WithField("query", query).Info("No geocoding result; using approximate coordinates")
		return ApproximateLocation(query)
	case err != nil:
		r.log.WithError(err).WithField("query", query).Warn("Geocoder unavailable; using approximate coordinates")
		return ApproximateLocation(query)
	}

	if r.cache != nil {
		if err := r.cache.PutMany(ctx, map[string]ports.GeocodeResult{key: res}); err != nil {
			r.log.WithError(err).WithField("query", query).Warn("geocode cache write failed")
		}
	}

	return fromGeocodeResult(query, res)
}

// ResolveAll resolves queries concurrently. The result is in query order.
func (r *LocationResolver) ResolveAll(ctx context.Context, queries []string) []domain.Waypoint {
	out := make([]domain.Waypoint, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			out[i] = r.Resolve(ctx, q)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// geocode calls the geocoder under the rate limiter, retrying transient failures.
func (r *LocationResolver) geocode(ctx context.Context, query string) (ports.GeocodeResult, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return ports.GeocodeResult{}, fmt.Errorf("geocode %q: wait for rate limiter: %w", query, err)
		}

		res, err := r.geocoder.Geocode(ctx, query)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !httpx.IsTransient(err) {
			break
		}
	}
	return ports.GeocodeResult{}, lastErr
}

// ApproximateLocation derives stable pseudo-coordinates from the query's
// SHA-256 digest: bytes 0-3 seed the latitude and bytes 4-7 the longitude.
func ApproximateLocation(query string) domain.Waypoint {
	digest := sha256.Sum256([]byte(strings.ToLower(query)))
	latSeed := float64(binary.BigEndian.Uint32(digest[0:4])) / math.MaxUint32
	lonSeed := float64(binary.BigEndian.Uint32(digest[4:8])) / math.MaxUint32

	return domain.Waypoint{
		Query:       query,
		Latitude:    round6(-90 + latSeed*180),
		Longitude:   round6(-180 + lonSeed*360),
		DisplayName: query + " (approximate)",
		Approximate: true,
	}
}

// parsePinned reads "Pinned location (LAT, LON)" queries produced by map
// selection. Pins off the globe are not accepted and resolve like any other text.
func parsePinned(query string) (domain.Waypoint, bool) {
	c, ok := pinnedCoordinates(query)
	if !ok || !c.Valid() {
		return domain.Waypoint{}, false
	}

	return domain.Waypoint{
		Query:       query,
		Latitude:    c.Lat,
		Longitude:   c.Lon,
		DisplayName: fmt.Sprintf("Pinned location (%.4f, %.4f)", c.Lat, c.Lon),
	}, true
}

// ValidatePinned returns domain.ErrInvalidCoordinates when query is a pinned
// location outside latitude [-90, 90] or longitude [-180, 180]. Other queries
// are always valid.
func ValidatePinned(query string) error {
	c, ok := pinnedCoordinates(query)
	if ok && !c.Valid() {
		return fmt.Errorf("pinned location (%s, %s): %w",
			strconv.FormatFloat(c.Lat, 'f', -1, 64), strconv.FormatFloat(c.Lon, 'f', -1, 64), domain.ErrInvalidCoordinates)
	}
	return nil
}

func pinnedCoordinates(query string) (domain.Coordinates, bool) {
	m := pinnedPattern.FindStringSubmatch(query)
	if m == nil {
		return domain.Coordinates{}, false
	}

	// The pattern only admits decimal literals, so the one possible error is
	// ErrRange, which comes with ±Inf and fails Valid.
	lat, _ := strconv.ParseFloat(m[1], 64)
	lon, _ := strconv.ParseFloat(m[2], 64)

	return domain.Coordinates{Lat: lat, Lon: lon}, true
}

func fromGeocodeResult(query string, res ports.GeocodeResult) domain.Waypoint {
	return domain.Waypoint{
		Query:       query,
		Latitude:    res.Coordinates.Lat,
		Longitude:   res.Coordinates.Lon,
		DisplayName: res.DisplayName,
	}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
