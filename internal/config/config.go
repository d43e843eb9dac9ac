package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	// Optional. Empty means the in-memory property catalog.
	PostgresURL string `envconfig:"POSTGRES_URL"`
	// Optional. Empty disables the shared search cache.
	RedisURL string `envconfig:"REDIS_URL"`

	GoogleMapsAPIKey string        `envconfig:"GOOGLE_MAPS_API_KEY"`
	PlacesTimeout    time.Duration `envconfig:"PLACES_TIMEOUT" default:"12s"`
	PlacesRPS        float64       `envconfig:"PLACES_RPS" default:"10"`
	PlacesBurst      int           `envconfig:"PLACES_BURST" default:"20"`
	PlacesCacheTTL   time.Duration `envconfig:"PLACES_CACHE_TTL" default:"30m"`
	TravelTimeout    time.Duration `envconfig:"TRAVEL_TIMEOUT" default:"10s"`
	TravelCacheTTL   time.Duration `envconfig:"TRAVEL_CACHE_TTL" default:"6h"`
	GeocodeCacheTTL  time.Duration `envconfig:"GEOCODE_CACHE_TTL" default:"24h"`

	NarrativeProvider string        `envconfig:"NARRATIVE_PROVIDER" default:"openai"`
	NarrativeTimeout  time.Duration `envconfig:"NARRATIVE_TIMEOUT" default:"12s"`
	OpenAIAPIKey      string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel       string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	GeminiAPIKey      string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel       string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.NarrativeProvider) {
	case "openai", "gemini", "none":
	default:
		return fmt.Errorf("NARRATIVE_PROVIDER must be openai, gemini or none, got %q", c.NarrativeProvider)
	}
	if c.PlacesTimeout <= 0 || c.TravelTimeout <= 0 || c.NarrativeTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.PlacesRPS <= 0 {
		return errors.New("PLACES_RPS must be positive")
	}
	return nil
}

// NarrativeEnabled reports whether a language model key is configured for
// the selected provider.
func (c *Config) NarrativeEnabled() bool {
	switch strings.ToLower(c.NarrativeProvider) {
	case "openai":
		return c.OpenAIAPIKey != ""
	case "gemini":
		return c.GeminiAPIKey != ""
	}
	return false
}
