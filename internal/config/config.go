package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	StationCode  string
	LocationName string
	Latitude     float64
	Longitude    float64

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Sea level monitor.
	IOCBaseURL    string
	FetchInterval time.Duration
	FetchTimeout  time.Duration

	// Collaborating feeds.
	USGSBaseURL     string
	USGSFeed        string
	UpstreamTimeout time.Duration

	StormglassAPIKey string
	StormglassURL    string
	TideCachePath    string
	TideCacheTTL     time.Duration

	OpenMeteoWeatherURL    string
	OpenMeteoAirQualityURL string

	// Alert publishing (feature-flagged via KAFKA_BROKERS / ALERTS_ENABLED).
	KafkaBrokers    []string
	KafkaAlertTopic string
	AlertsEnabled   bool
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	lat, err := envFloat("LATITUDE", 7.190708)
	if err != nil {
		return nil, err
	}
	lon, err := envFloat("LONGITUDE", 125.455338)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	fetchInterval, err := envDuration("SEA_LEVEL_FETCH_INTERVAL", 60*time.Second)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := envDuration("SEA_LEVEL_FETCH_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	upstreamTimeout, err := envDuration("UPSTREAM_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	tideCacheTTL, err := envDuration("TIDE_CACHE_TTL", 6*time.Hour)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	alertsEnabled := len(brokers) > 0
	if v := os.Getenv("ALERTS_ENABLED"); v != "" {
		alertsEnabled = v == "true"
	}

	cfg := &Config{
		StationCode:  envOrDefault("STATION_CODE", "davo"),
		LocationName: envOrDefault("LOCATION_NAME", "Davao City, Philippines"),
		Latitude:     lat,
		Longitude:    lon,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		IOCBaseURL:    envOrDefault("IOC_BASE_URL", "https://www.ioc-sealevelmonitoring.org"),
		FetchInterval: fetchInterval,
		FetchTimeout:  fetchTimeout,

		USGSBaseURL:     envOrDefault("USGS_BASE_URL", "https://earthquake.usgs.gov"),
		USGSFeed:        envOrDefault("USGS_FEED", "4.5_day"),
		UpstreamTimeout: upstreamTimeout,

		StormglassAPIKey: os.Getenv("STORMGLASS_API_KEY"),
		StormglassURL:    envOrDefault("STORMGLASS_URL", "https://api.stormglass.io/v2/tide/extremes/point"),
		TideCachePath:    envOrDefault("TIDE_CACHE_PATH", "tide_cache.db"),
		TideCacheTTL:     tideCacheTTL,

		OpenMeteoWeatherURL:    envOrDefault("OPENMETEO_WEATHER_URL", "https://api.open-meteo.com/v1/forecast"),
		OpenMeteoAirQualityURL: envOrDefault("OPENMETEO_AIR_QUALITY_URL", "https://air-quality-api.open-meteo.com/v1/air-quality"),

		KafkaBrokers:    brokers,
		KafkaAlertTopic: envOrDefault("KAFKA_ALERT_TOPIC", "sea-level-alerts"),
		AlertsEnabled:   alertsEnabled,
	}

	if cfg.StationCode == "" {
		return nil, errors.New("STATION_CODE is required")
	}
	if cfg.Latitude < -90 || cfg.Latitude > 90 {
		return nil, errors.New("LATITUDE out of range")
	}
	if cfg.Longitude < -180 || cfg.Longitude > 180 {
		return nil, errors.New("LONGITUDE out of range")
	}
	if cfg.AlertsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("ALERTS_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}

func parseBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if b := strings.TrimSpace(p); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
