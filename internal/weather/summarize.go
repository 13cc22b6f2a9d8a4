package weather

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// Unknown marks any value a partial upstream payload failed to
	// provide. The pipeline degrades to it instead of raising.
	Unknown = "Unknown"

	// TempUnknown is the sentinel for daily min/max when the forecast
	// carries no daily entries.
	TempUnknown = "unknown"

	// dominantWindow is how many leading hourly samples vote on the
	// dominant category. The provider samples hourly, so this covers
	// one day; revisit if the cadence ever changes.
	dominantWindow = 24
)

// slotHours maps the nine fixed local clock hours to their slot names.
var slotHours = map[int]string{
	6:  "morning_6",
	8:  "morning_8",
	10: "morning_10",
	12: "afternoon_12",
	14: "afternoon_14",
	16: "afternoon_16",
	18: "evening_18",
	20: "evening_20",
	22: "evening_22",
}

// SlotNames lists every slot name in clock order, for consumers that
// render all slots regardless of which ones the forecast filled.
var SlotNames = []string{
	"morning_6", "morning_8", "morning_10",
	"afternoon_12", "afternoon_14", "afternoon_16",
	"evening_18", "evening_20", "evening_22",
}

// SlotForecast is one named time-slot's highlight.
type SlotForecast struct {
	Temperature string `json:"temperature"` // "18.2°C" or "Unknown"
	Precip      string `json:"precip"`      // "40%" or "Unknown"
	Category    string `json:"category"`    // provider main type
}

// ForecastSummary is the ephemeral aggregated view of current plus
// forecast data driving narrative and suggestion generation. It is a
// typed record: consumers read named fields, not dictionary keys.
type ForecastSummary struct {
	Location string `json:"location"`

	// Current-conditions block.
	Category    string `json:"category"`   // e.g. "Clear"
	Conditions  string `json:"conditions"` // e.g. "Clear: clear sky"
	Temperature string `json:"temperature"`
	TempRange   string `json:"tempRange"`
	Humidity    string `json:"humidity"`
	Pressure    string `json:"pressure"`
	Wind        string `json:"wind"`
	Visibility  string `json:"visibility"`
	UVIndex     string `json:"uvIndex"`
	Clouds      string `json:"clouds"`
	Daylight    string `json:"daylight"`
	ObservedAt  string `json:"observedAt"`

	// Day summary. TempMin/TempMax hold plain numeric strings or the
	// "unknown" sentinel.
	TempMin          string `json:"tempMin"`
	TempMax          string `json:"tempMax"`
	DominantCategory string `json:"dominantCategory"`
	MaxPrecip        int    `json:"maxPrecipPercent"`
	MaxPrecipTime    string `json:"maxPrecipTime"` // "15:00", or "None"

	Slots map[string]SlotForecast `json:"slots"`
}

// Summarize derives a ForecastSummary from raw payloads. It is a pure
// transformation: deterministic for identical input, no network, no
// randomness. Either payload may be nil or partial.
func Summarize(current *CurrentPayload, forecast *ForecastPayload) ForecastSummary {
	sum := ForecastSummary{
		Location:         Unknown,
		Category:         Unknown,
		Conditions:       Unknown,
		Temperature:      Unknown,
		TempRange:        Unknown,
		Humidity:         Unknown,
		Pressure:         Unknown,
		Wind:             Unknown,
		Visibility:       Unknown,
		UVIndex:          Unknown,
		Clouds:           Unknown,
		Daylight:         Unknown,
		ObservedAt:       Unknown,
		TempMin:          TempUnknown,
		TempMax:          TempUnknown,
		DominantCategory: Unknown,
		MaxPrecipTime:    "None",
		Slots:            make(map[string]SlotForecast),
	}

	zone := time.UTC
	if forecast != nil && forecast.TimezoneOffset != 0 {
		zone = time.FixedZone("local", forecast.TimezoneOffset)
	}

	summarizeCurrent(&sum, current, forecast, zone)
	if forecast == nil {
		return sum
	}

	// Daily min/max come from the first daily entry only.
	if len(forecast.Daily) > 0 {
		today := forecast.Daily[0]
		if today.Temp.Min != nil {
			sum.TempMin = fmtFloat(*today.Temp.Min)
		}
		if today.Temp.Max != nil {
			sum.TempMax = fmtFloat(*today.Temp.Max)
		}
		if today.Temp.Min != nil && today.Temp.Max != nil {
			sum.TempRange = fmt.Sprintf("Min: %s°C, Max: %s°C", sum.TempMin, sum.TempMax)
		}
	}

	summarizeHourly(&sum, forecast.Hourly, zone)
	return sum
}

func summarizeCurrent(sum *ForecastSummary, current *CurrentPayload, forecast *ForecastPayload, zone *time.Location) {
	if current != nil {
		if current.Name != "" {
			sum.Location = current.Name
		}
		if len(current.Weather) > 0 {
			main := current.Weather[0].Main
			if main == "" {
				main = Unknown
			}
			sum.Category = capitalize(main)
			desc := current.Weather[0].Description
			if desc == "" {
				desc = "unknown"
			}
			sum.Conditions = fmt.Sprintf("%s: %s", sum.Category, desc)
		}
		if current.Main.Temp != nil {
			if current.Main.FeelsLike != nil {
				sum.Temperature = fmt.Sprintf("%s°C (feels like %s°C)",
					fmtFloat(*current.Main.Temp), fmtFloat(*current.Main.FeelsLike))
			} else {
				sum.Temperature = fmt.Sprintf("%s°C", fmtFloat(*current.Main.Temp))
			}
		}
		if current.Main.Humidity != nil {
			sum.Humidity = fmt.Sprintf("%d%%", *current.Main.Humidity)
		}
		if current.Main.Pressure != nil {
			sum.Pressure = fmt.Sprintf("%d hPa", *current.Main.Pressure)
		}
		if current.Wind.Speed != nil {
			sum.Wind = fmt.Sprintf("%s m/s", fmtFloat(*current.Wind.Speed))
			if current.Wind.Deg != nil {
				sum.Wind = fmt.Sprintf("%s m/s, direction %d°", fmtFloat(*current.Wind.Speed), *current.Wind.Deg)
			}
		}
		if current.Visibility != nil {
			sum.Visibility = fmt.Sprintf("%s km", fmtFloat(*current.Visibility/1000))
		}
		if current.Clouds.All != nil {
			sum.Clouds = fmt.Sprintf("%d%%", *current.Clouds.All)
		}
		if current.Sys.Sunrise != nil && current.Sys.Sunset != nil {
			sum.Daylight = fmt.Sprintf("Sunrise-%s, Sunset-%s",
				clockTime(*current.Sys.Sunrise, zone), clockTime(*current.Sys.Sunset, zone))
		}
		if current.Dt > 0 {
			sum.ObservedAt = time.Unix(current.Dt, 0).In(zone).Format("2006-01-02 15:04:05")
		}
	}

	// The UV index only exists on the One Call response.
	if forecast != nil && forecast.Current.UVI != nil {
		sum.UVIndex = fmtFloat(*forecast.Current.UVI)
	}
}

func summarizeHourly(sum *ForecastSummary, hourly []HourlySample, zone *time.Location) {
	var maxPrecip float64
	counts := make(map[string]int)
	bestCount := 0

	for i, hour := range hourly {
		local := time.Unix(hour.Dt, 0).In(zone)

		// Slot highlights: only samples whose local hour-of-day exactly
		// matches a slot boundary. Last writer wins if a slot hour
		// recurs across samples.
		if name, ok := slotHours[local.Hour()]; ok {
			slot := SlotForecast{
				Temperature: Unknown,
				Precip:      Unknown,
				Category:    Unknown,
			}
			if hour.Temp != nil {
				slot.Temperature = fmt.Sprintf("%s°C", fmtFloat(*hour.Temp))
			}
			if hour.Pop != nil {
				slot.Precip = fmt.Sprintf("%d%%", popPercent(*hour.Pop))
			}
			if len(hour.Weather) > 0 && hour.Weather[0].Main != "" {
				slot.Category = hour.Weather[0].Main
			}
			sum.Slots[name] = slot
		}

		// Precipitation peak over all samples; a strict comparison
		// keeps the chronologically earliest maximum on ties.
		if hour.Pop != nil {
			pct := *hour.Pop * 100
			if pct > maxPrecip {
				maxPrecip = pct
				sum.MaxPrecipTime = local.Format("15:04")
			}
		}

		// Dominant category over the leading window: the first
		// category to reach the highest count wins.
		if i < dominantWindow {
			cat := Unknown
			if len(hour.Weather) > 0 && hour.Weather[0].Main != "" {
				cat = hour.Weather[0].Main
			}
			counts[cat]++
			if counts[cat] > bestCount {
				bestCount = counts[cat]
				sum.DominantCategory = cat
			}
		}
	}

	sum.MaxPrecip = int(math.Round(maxPrecip))
}

func popPercent(pop float64) int {
	return int(math.Round(pop * 100))
}

func clockTime(epoch int64, zone *time.Location) string {
	return time.Unix(epoch, 0).In(zone).Format("15:04:05")
}

// fmtFloat renders a float the shortest way that round-trips, so 23.4
// stays "23.4" and 10 stays "10".
func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// capitalize uppercases the first rune and lowercases the rest, so
// "CLEAR" and "clear" both render as "Clear".
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
