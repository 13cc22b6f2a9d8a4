package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/i474232898/weather-narrator/internal/weather"
)

func TestTemplateDataCompleteKeySet(t *testing.T) {
	sum := weather.ForecastSummary{
		Location:         "Paris",
		Conditions:       "Clear: clear sky",
		Temperature:      "23.4°C (feels like 22.9°C)",
		DominantCategory: "Clear",
		TempMin:          "10",
		TempMax:          "20",
		MaxPrecip:        40,
		MaxPrecipTime:    "15:00",
		Slots: map[string]weather.SlotForecast{
			"morning_6": {Temperature: "18.2°C", Precip: "40%", Category: "Rain"},
		},
	}
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	data := TemplateData(sum, "Captain Breeze", "Ahoy, reader!", []string{"one", "two", "three"}, now)

	checks := map[string]string{
		"weather_location":    "Paris",
		"current_date":        "2026-03-15",
		"current_year":        "2026",
		"weather_type":        "Clear: clear sky",
		"weather_main_type":   "Clear",
		"temp_min":            "10",
		"temp_max":            "20",
		"max_precip":          "40",
		"max_precip_time":     "15:00",
		"character_name":      "Captain Breeze",
		"character_letter":    "Ahoy, reader!",
		"data_source":         "OpenWeatherMap API",
		"weather_update_time": "2026-03-15 10:30:00",
		"morning_6_temp":      "18.2°C",
		"morning_6_precip":    "40%",
		"morning_6_weather":   "Rain",
	}
	for key, want := range checks {
		if got := data[key]; got != want {
			t.Errorf("%s: got %q, want %q", key, got, want)
		}
	}

	// Every slot is rendered, filled or not.
	for _, name := range weather.SlotNames {
		for _, suffix := range []string{"_temp", "_precip", "_weather"} {
			if _, ok := data[name+suffix]; !ok {
				t.Errorf("missing key %s%s", name, suffix)
			}
		}
	}
	if data["evening_18_temp"] != weather.Unknown {
		t.Errorf("unfilled slot: got %q, want %q", data["evening_18_temp"], weather.Unknown)
	}

	for i, want := range []string{"one", "two", "three"} {
		key := fmt.Sprintf("activity_suggestion_%d", i+1)
		if data[key] != want {
			t.Errorf("%s: got %q", key, data[key])
		}
	}
}

func TestTemplateDataShortSuggestionList(t *testing.T) {
	data := TemplateData(weather.ForecastSummary{}, "p", "n", []string{"only"}, time.Now())
	if data["activity_suggestion_1"] != "only" {
		t.Errorf("suggestion 1: got %q", data["activity_suggestion_1"])
	}
	if data["activity_suggestion_2"] != "" || data["activity_suggestion_3"] != "" {
		t.Error("missing suggestions must render empty, not be absent")
	}
}
