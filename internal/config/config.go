package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-narrator/internal/weather"
)

type AppConfig struct {
	// OpenWeatherMap.
	OpenWeatherAPIKey string
	WeatherEndpoint   string
	GeoEndpoint       string
	OneCallEndpoint   string

	// Optional Google geocoding fallback.
	GeocoderAPIKey string

	// DeepSeek text generation.
	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	DeepSeekModel   string

	// RefreshInterval controls how often the refresh cycle runs.
	RefreshInterval time.Duration

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// DatabasePath is the sqlite file backing the durable store. An
	// unopenable path degrades to the in-memory store.
	DatabasePath string

	// Service preferences for narratives and suggestions.
	Language string
	Timezone string

	// Locations to track.
	Locations []weather.Location

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherEndpoint = os.Getenv("OPENWEATHER_WEATHER_ENDPOINT")
	cfg.GeoEndpoint = os.Getenv("OPENWEATHER_GEO_ENDPOINT")
	cfg.OneCallEndpoint = os.Getenv("OPENWEATHER_ONECALL_ENDPOINT")
	cfg.GeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	cfg.DeepSeekAPIKey = os.Getenv("DEEPSEEK_API_KEY")
	cfg.DeepSeekBaseURL = getenvDefault("DEEPSEEK_API_URL", "https://api.deepseek.com")
	cfg.DeepSeekModel = getenvDefault("DEEPSEEK_MODEL", "deepseek-chat")

	// Refresh interval: default every 2 hours.
	intervalStr := getenvDefault("REFRESH_INTERVAL", "2h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.DatabasePath = getenvDefault("DATABASE_PATH", "weather-narrator.db")
	cfg.Language = getenvDefault("SERVICE_LANGUAGE", "en")
	cfg.Timezone = getenvDefault("SERVICE_TIMEZONE", "UTC")
	cfg.Port = getenvDefault("PORT", "8080")

	locs, err := loadLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	return cfg, nil
}

func loadLocations() ([]weather.Location, error) {
	city := os.Getenv("WEATHER_LOCATION_CITY")
	country := os.Getenv("WEATHER_LOCATION_COUNTRY")
	if city == "" {
		return nil, nil
	}
	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}
	var locs []weather.Location
	for i := range cities {
		locs = append(locs, weather.Location{
			City:    strings.TrimSpace(cities[i]),
			Country: weather.NormalizeCountry(countries[i]),
		})
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
