package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"
)

// ClientConfig configures the OpenWeatherMap client.
type ClientConfig struct {
	APIKey string

	// Endpoints; zero values fall back to the public API.
	WeatherEndpoint string
	GeoEndpoint     string
	OneCallEndpoint string

	// GeocoderAPIKey enables a Google-geocoding fallback when the
	// provider's own geocoder returns no rows. Optional.
	GeocoderAPIKey string

	Backoff BackoffConfig
}

const (
	defaultWeatherEndpoint = "https://api.openweathermap.org/data/2.5/weather"
	defaultGeoEndpoint     = "https://api.openweathermap.org/geo/1.0/direct"
	defaultOneCallEndpoint = "https://api.openweathermap.org/data/3.0/onecall"
)

// Client fetches raw current-conditions and forecast payloads. Both
// fetch paths geocode the (city, country) pair first; all outbound
// calls share one circuit breaker and bounded retries.
type Client struct {
	apiKey     string
	weatherURL string
	geoURL     string
	oneCallURL string
	googleKey  string
	httpCfg    HTTPClientConfig
	circuit    *gobreaker.CircuitBreaker
}

// NewClient creates a Client. The http.Client must carry a timeout; a
// stalled provider surfaces as an ordinary per-location failure.
func NewClient(client *http.Client, cfg ClientConfig) *Client {
	if cfg.WeatherEndpoint == "" {
		cfg.WeatherEndpoint = defaultWeatherEndpoint
	}
	if cfg.GeoEndpoint == "" {
		cfg.GeoEndpoint = defaultGeoEndpoint
	}
	if cfg.OneCallEndpoint == "" {
		cfg.OneCallEndpoint = defaultOneCallEndpoint
	}
	if cfg.Backoff.InitialInterval <= 0 {
		cfg.Backoff = BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		}
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		apiKey:     cfg.APIKey,
		weatherURL: cfg.WeatherEndpoint,
		geoURL:     cfg.GeoEndpoint,
		oneCallURL: cfg.OneCallEndpoint,
		googleKey:  cfg.GeocoderAPIKey,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: cfg.Backoff,
		},
		circuit: cb,
	}
}

// FetchCurrent resolves the location and returns the raw current
// conditions payload.
func (c *Client) FetchCurrent(ctx context.Context, loc Location) (*CurrentPayload, error) {
	lat, lon, err := c.geocode(ctx, loc)
	if err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("appid", c.apiKey)
	values.Set("units", "metric")

	var payload CurrentPayload
	if err := c.getJSON(ctx, c.weatherURL, values, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchForecast resolves the location and returns the raw One Call
// payload with hourly and daily entries (minutely and alerts excluded).
func (c *Client) FetchForecast(ctx context.Context, loc Location) (*ForecastPayload, error) {
	lat, lon, err := c.geocode(ctx, loc)
	if err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("appid", c.apiKey)
	values.Set("units", "metric")
	values.Set("exclude", "minutely,alerts")

	var payload ForecastPayload
	if err := c.getJSON(ctx, c.oneCallURL, values, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// geocode resolves (city, country) to coordinates via the provider's
// geocoder, falling back to Google geocoding when configured.
func (c *Client) geocode(ctx context.Context, loc Location) (float64, float64, error) {
	if c.apiKey == "" {
		return 0, 0, fmt.Errorf("openweather api key is not configured")
	}

	values := url.Values{}
	q := loc.City
	if loc.Country != "" {
		q = fmt.Sprintf("%s,%s", loc.City, NormalizeCountry(loc.Country))
	}
	values.Set("q", q)
	values.Set("limit", "1")
	values.Set("appid", c.apiKey)

	var results []struct {
		Name string  `json:"name"`
		Lat  float64 `json:"lat"`
		Lon  float64 `json:"lon"`
	}
	if err := c.getJSON(ctx, c.geoURL, values, &results); err != nil {
		return 0, 0, err
	}

	if len(results) > 0 {
		return results[0].Lat, results[0].Lon, nil
	}

	if c.googleKey != "" {
		geocoder.ApiKey = c.googleKey
		gl, err := geocoder.Geocoding(geocoder.Address{
			City:    loc.City,
			Country: loc.Country,
		})
		if err == nil {
			return gl.Latitude, gl.Longitude, nil
		}
	}

	return 0, 0, fmt.Errorf("%w: %s", ErrLocationNotFound, loc)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, values url.Values, out interface{}) error {
	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s?%s", endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}
