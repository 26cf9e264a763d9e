package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string `mapstructure:"PORT"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	GeocoderProvider   string        `mapstructure:"GEOCODER_PROVIDER"`
	NominatimURL       string        `mapstructure:"NOMINATIM_URL"`
	GeocoderUserAgent  string        `mapstructure:"GEOCODER_USER_AGENT"`
	GeocoderTimeout    time.Duration `mapstructure:"GEOCODER_TIMEOUT"`
	GeocoderMinDelay   time.Duration `mapstructure:"GEOCODER_MIN_DELAY"`
	GeocoderMaxRetries int           `mapstructure:"GEOCODER_MAX_RETRIES"`
	ORSAPIKey          string        `mapstructure:"ORS_API_KEY"`

	OSRMURL        string        `mapstructure:"OSRM_URL"`
	RoutingTimeout time.Duration `mapstructure:"ROUTING_TIMEOUT"`
	RouteCacheTTL  time.Duration `mapstructure:"ROUTE_CACHE_TTL"`

	RoutingMaxAttempts int           `mapstructure:"ROUTING_MAX_ATTEMPTS"`
	RoutingBackoff     time.Duration `mapstructure:"ROUTING_BACKOFF"`
	RoutingMaxBackoff  time.Duration `mapstructure:"ROUTING_MAX_BACKOFF"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	SeedPath  string `mapstructure:"SEED_PATH"`
}

// Load reads configuration from the environment on top of built-in defaults.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")

	v.SetDefault("GEOCODER_PROVIDER", "nominatim")
	v.SetDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODER_USER_AGENT", "RouteLogPro/1.0")
	v.SetDefault("GEOCODER_TIMEOUT", 10*time.Second)
	v.SetDefault("GEOCODER_MIN_DELAY", time.Second)
	v.SetDefault("GEOCODER_MAX_RETRIES", 3)
	v.SetDefault("ORS_API_KEY", "")

	v.SetDefault("OSRM_URL", "https://router.project-osrm.org")
	v.SetDefault("ROUTING_TIMEOUT", 15*time.Second)
	v.SetDefault("ROUTE_CACHE_TTL", 24*time.Hour)
	v.SetDefault("ROUTING_MAX_ATTEMPTS", 4)
	v.SetDefault("ROUTING_BACKOFF", 200*time.Millisecond)
	v.SetDefault("ROUTING_MAX_BACKOFF", 5*time.Second)

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "trip.planned")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SEED_PATH", "data/seeds/places.json")

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Brokers splits the comma-separated KAFKA_BROKERS value.
func (c Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
