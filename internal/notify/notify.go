package notify

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/i474232898/weather-narrator/internal/weather"
)

// Notifier delivers one flat key-value payload to the rendering layer
// (web template, transactional email provider, ...). The pipeline's
// only obligation is producing the map completely and consistently;
// markup and layout belong to the implementation behind this interface.
type Notifier interface {
	Send(ctx context.Context, data map[string]string) error
}

// LogNotifier is the default delivery: it just logs that a payload was
// produced. Real channels plug in behind the same interface.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, data map[string]string) error {
	log.Printf("notify: payload ready for %s (%s) by %s",
		data["weather_location"], data["weather_main_type"], data["character_name"])
	return nil
}

// TemplateData flattens a refresh result into the key set the rendering
// templates consume. Every key is always present; unfilled slots carry
// the "Unknown" marker.
func TemplateData(sum weather.ForecastSummary, personaName, narrative string, suggestions []string, now time.Time) map[string]string {
	data := map[string]string{
		"weather_location": sum.Location,
		"current_date":     now.Format("2006-01-02"),
		"current_year":     strconv.Itoa(now.Year()),

		"weather_type":              sum.Conditions,
		"weather_temperature":       sum.Temperature,
		"weather_temperature_range": sum.TempRange,
		"weather_humidity":          sum.Humidity,
		"weather_pressure":          sum.Pressure,
		"weather_wind":              sum.Wind,
		"weather_visibility":        sum.Visibility,
		"weather_uvi":               sum.UVIndex,
		"weather_clouds":            sum.Clouds,
		"weather_daylight":          sum.Daylight,

		"weather_main_type": sum.DominantCategory,
		"temp_min":          sum.TempMin,
		"temp_max":          sum.TempMax,
		"max_precip":        strconv.Itoa(sum.MaxPrecip),
		"max_precip_time":   sum.MaxPrecipTime,

		"character_name":   personaName,
		"character_letter": narrative,

		"data_source":         "OpenWeatherMap API",
		"weather_update_time": now.Format("2006-01-02 15:04:05"),
	}

	for _, name := range weather.SlotNames {
		slot, ok := sum.Slots[name]
		if !ok {
			slot = weather.SlotForecast{
				Temperature: weather.Unknown,
				Precip:      weather.Unknown,
				Category:    weather.Unknown,
			}
		}
		data[name+"_temp"] = slot.Temperature
		data[name+"_precip"] = slot.Precip
		data[name+"_weather"] = slot.Category
	}

	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("activity_suggestion_%d", i+1)
		if i < len(suggestions) {
			data[key] = suggestions[i]
		} else {
			data[key] = ""
		}
	}

	return data
}
