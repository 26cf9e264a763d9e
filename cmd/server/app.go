package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"trip-planner-service/internal/adapters/cache"
	"trip-planner-service/internal/adapters/events"
	"trip-planner-service/internal/adapters/geocode"
	"trip-planner-service/internal/adapters/ratelimit"
	"trip-planner-service/internal/adapters/repositories"
	"trip-planner-service/internal/adapters/routing"
	"trip-planner-service/internal/api"
	"trip-planner-service/internal/platform/config"
	"trip-planner-service/internal/platform/db"
	"trip-planner-service/internal/ports"
	"trip-planner-service/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const geocoderQuotaKey = "ratelimit:geocoder"

// app holds the wired HTTP handler and whatever must be released on shutdown.
type app struct {
	handler http.Handler
	closers []func() error
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = c()
	}
}

// newApp wires concrete adapters behind ports. q and rdb are optional: without
// Postgres trips live in memory and geocodes are not cached; without Redis the
// route cache is off and the geocoding quota is enforced per process.
func newApp(ctx context.Context, cfg config.Config, q db.Querier, rdb redis.Cmdable, logger *logrus.Logger) (*app, error) {
	a := &app{}

	var (
		repo       ports.TripRepository
		geoCache   ports.GeocodeCache
		routeCache ports.RouteCache
		limiter    ports.RateLimiter
	)

	if q != nil {
		if err := repositories.InitAndSeed(ctx, q, cfg.SeedPath, logger); err != nil {
			return nil, fmt.Errorf("new app: %w", err)
		}
		repo = repositories.NewPostgresTripRepository(q)
		geoCache = cache.NewSQLGeocodeCache(q)
	} else {
		logger.Warn("DATABASE_URL not set, trips are kept in memory")
		repo = repositories.NewMemoryTripRepository()
	}

	if rdb != nil {
		routeCache = cache.NewRedisRouteCache(rdb, cfg.RouteCacheTTL)
		limiter = ratelimit.NewRedisLimiter(rdb, geocoderQuotaKey, 1, cfg.GeocoderMinDelay)
	} else {
		limiter = ratelimit.NewLocalLimiter(cfg.GeocoderMinDelay)
	}

	geocoder, err := newGeocoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("new app: %w", err)
	}

	provider, err := routing.NewOSRMRouteProvider(cfg.OSRMURL, cfg.RoutingTimeout, routeCache)
	if err != nil {
		return nil, fmt.Errorf("new app: %w", err)
	}
	provider.SetRetry(cfg.RoutingMaxAttempts, cfg.RoutingBackoff, cfg.RoutingMaxBackoff)

	resolver := services.NewLocationResolver(geocoder, services.ResolverOptions{
		Cache:      geoCache,
		Limiter:    limiter,
		MaxRetries: cfg.GeocoderMaxRetries,
		Logger:     logger,
	})
	builder := services.NewRouteBuilder(provider, logger)

	svc := &services.TripService{
		Planner: services.NewTripPlanner(resolver, builder),
		Repo:    repo,
		Log:     logger,
	}

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		pub := events.NewKafkaPublisher(events.NewKafkaWriter(brokers, cfg.KafkaTopic))
		svc.Events = pub
		a.closers = append(a.closers, pub.Close)
		logger.WithField("topic", cfg.KafkaTopic).Info("publishing trip events to kafka")
	}

	a.handler = api.NewRouter(svc, repo, logger)
	return a, nil
}

func newGeocoder(cfg config.Config) (ports.Geocoder, error) {
	switch strings.ToLower(cfg.GeocoderProvider) {
	case "ors":
		return geocode.NewORSGeocoder(cfg.ORSAPIKey, cfg.GeocoderTimeout)
	case "", "nominatim":
		return geocode.NewNominatimGeocoder(cfg.NominatimURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout)
	default:
		return nil, fmt.Errorf("unknown geocoder provider %q", cfg.GeocoderProvider)
	}
}
