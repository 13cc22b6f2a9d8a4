package weather

// Raw provider-shaped structures. These mirror the OpenWeatherMap
// current-weather and One Call 3.0 responses and deliberately stay
// un-normalized so the provider schema never leaks past the client and
// summarizer. Optional nested fields are pointers; a missing field
// degrades downstream to an explicit "Unknown" instead of a fabricated
// zero.

// WeatherItem is one entry of the "weather" array shared by both APIs.
type WeatherItem struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CurrentPayload is the raw current-conditions response.
type CurrentPayload struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		TempMin   *float64 `json:"temp_min"`
		TempMax   *float64 `json:"temp_max"`
		Humidity  *int     `json:"humidity"`
		Pressure  *int     `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
		Deg   *int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All *int `json:"all"`
	} `json:"clouds"`
	Visibility *float64 `json:"visibility"` // meters
	Sys        struct {
		Country string `json:"country"`
		Sunrise *int64 `json:"sunrise"`
		Sunset  *int64 `json:"sunset"`
	} `json:"sys"`
	Weather []WeatherItem `json:"weather"`
}

// HourlySample is one hourly entry of the One Call response.
type HourlySample struct {
	Dt      int64         `json:"dt"`
	Temp    *float64      `json:"temp"`
	Pop     *float64      `json:"pop"` // precipitation probability, 0..1
	Weather []WeatherItem `json:"weather"`
}

// DailyEntry is one daily entry of the One Call response.
type DailyEntry struct {
	Dt   int64 `json:"dt"`
	Temp struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	} `json:"temp"`
	Weather []WeatherItem `json:"weather"`
}

// ForecastPayload is the raw One Call 3.0 response (minutely and alerts
// excluded at request time).
type ForecastPayload struct {
	TimezoneOffset int `json:"timezone_offset"` // seconds east of UTC
	Current        struct {
		Temp       *float64      `json:"temp"`
		FeelsLike  *float64      `json:"feels_like"`
		Humidity   *int          `json:"humidity"`
		Pressure   *int          `json:"pressure"`
		WindSpeed  *float64      `json:"wind_speed"`
		WindDeg    *int          `json:"wind_deg"`
		Visibility *float64      `json:"visibility"`
		UVI        *float64      `json:"uvi"`
		Clouds     *int          `json:"clouds"`
		Sunrise    *int64        `json:"sunrise"`
		Sunset     *int64        `json:"sunset"`
		Weather    []WeatherItem `json:"weather"`
	} `json:"current"`
	Hourly []HourlySample `json:"hourly"`
	Daily  []DailyEntry   `json:"daily"`
}
