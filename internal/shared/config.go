package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"cafe_reviews/internal/domain"
)

const (
	PlacesLegacy = "legacy"
	PlacesV1     = "v1"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	Places          domain.Credentials
	PlacesAPI       string
	PlacesBaseURL   string
	PlacesLanguage  string
	ReviewsSort     string
	UpstreamTimeout time.Duration
	UpstreamRPS     int
	UpstreamBurst   int

	RequestTimeout time.Duration
	EdgeCacheTTL   time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		Places: domain.Credentials{
			PlaceID: strings.TrimSpace(os.Getenv(domain.EnvPlaceID)),
			APIKey:  strings.TrimSpace(os.Getenv(domain.EnvAPIKey)),
		},
		PlacesAPI:       strings.ToLower(env("GOOGLE_PLACES_API", PlacesLegacy)),
		PlacesLanguage:  env("GOOGLE_PLACES_LANGUAGE", ""),
		ReviewsSort:     env("GOOGLE_PLACES_REVIEWS_SORT", "most_relevant"),
		UpstreamTimeout: time.Duration(atoi("UPSTREAM_TIMEOUT_SECONDS", 8)) * time.Second,
		UpstreamRPS:     atoi("UPSTREAM_RPS", 5),
		UpstreamBurst:   atoi("UPSTREAM_BURST", 20),
		RequestTimeout:  time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		EdgeCacheTTL:    time.Duration(atoi("EDGE_CACHE_TTL_SECONDS", 21600)) * time.Second,
	}
	// s-maxage must not go negative
	c.EdgeCacheTTL = max(c.EdgeCacheTTL, 0)
	if c.PlacesAPI != PlacesV1 {
		c.PlacesAPI = PlacesLegacy
	}
	c.PlacesBaseURL = env("GOOGLE_PLACES_BASE_URL", defaultBaseURL(c.PlacesAPI))
	return c
}

func defaultBaseURL(api string) string {
	if api == PlacesV1 {
		return "https://places.googleapis.com"
	}
	return "https://maps.googleapis.com"
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
