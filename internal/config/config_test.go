package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RefreshInterval != 2*time.Hour {
		t.Errorf("refresh interval: got %v", cfg.RefreshInterval)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("http timeout: got %v", cfg.HTTPTimeout)
	}
	if cfg.DeepSeekBaseURL != "https://api.deepseek.com" {
		t.Errorf("deepseek base url: got %q", cfg.DeepSeekBaseURL)
	}
	if cfg.DeepSeekModel != "deepseek-chat" {
		t.Errorf("deepseek model: got %q", cfg.DeepSeekModel)
	}
	if cfg.Language != "en" || cfg.Timezone != "UTC" {
		t.Errorf("locale: got %q/%q", cfg.Language, cfg.Timezone)
	}
	if cfg.Port != "8080" {
		t.Errorf("port: got %q", cfg.Port)
	}
}

func TestLoadLocations(t *testing.T) {
	t.Setenv("WEATHER_LOCATION_CITY", "Paris, Berlin")
	t.Setenv("WEATHER_LOCATION_COUNTRY", "FR, DE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Locations) != 2 {
		t.Fatalf("locations: got %d, want 2", len(cfg.Locations))
	}
	if cfg.Locations[0].City != "Paris" || cfg.Locations[0].Country != "FR" {
		t.Errorf("first location: got %+v", cfg.Locations[0])
	}
	if cfg.Locations[1].City != "Berlin" || cfg.Locations[1].Country != "DE" {
		t.Errorf("second location: got %+v", cfg.Locations[1])
	}
}

func TestLoadLocationsMismatch(t *testing.T) {
	t.Setenv("WEATHER_LOCATION_CITY", "Paris, Berlin")
	t.Setenv("WEATHER_LOCATION_COUNTRY", "FR")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for mismatched city/country lists")
	}
}

func TestLoadInvalidInterval(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "often")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid refresh interval")
	}
}
