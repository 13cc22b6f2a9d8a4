package httpapi

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-narrator/internal/narrative"
	"github.com/i474232898/weather-narrator/internal/refresh"
	"github.com/i474232898/weather-narrator/internal/store"
	"github.com/i474232898/weather-narrator/internal/suggest"
	"github.com/i474232898/weather-narrator/internal/weather"
)

func fptr(v float64) *float64 { return &v }

type stubFetcher struct{}

func (stubFetcher) FetchCurrent(_ context.Context, loc weather.Location) (*weather.CurrentPayload, error) {
	cur := &weather.CurrentPayload{Name: loc.City, Dt: 1700000000}
	cur.Main.Temp = fptr(18)
	cur.Weather = []weather.WeatherItem{{Main: "Clear", Description: "clear sky"}}
	return cur, nil
}

func (stubFetcher) FetchForecast(context.Context, weather.Location) (*weather.ForecastPayload, error) {
	return &weather.ForecastPayload{}, nil
}

func newTestApp(st weather.Store) *fiber.App {
	app := fiber.New()
	orch := refresh.New(refresh.Config{
		Fetcher:  stubFetcher{},
		Store:    st,
		Narrator: narrative.NewGenerator(nil, "en", "UTC"),
		Selector: suggest.NewSelector(rand.NewSource(1)),
	})
	RegisterRoutes(app, st, orch)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

// TestCurrentWeatherValidation verifies that both location parameters
// are mandatory.
func TestCurrentWeatherValidation(t *testing.T) {
	app := newTestApp(store.NewMemoryStore())

	for _, target := range []string{
		"/api/v1/weather/current",
		"/api/v1/weather/current?city=Paris",
		"/api/v1/weather/current?country=FR",
	} {
		resp := doRequest(t, app, http.MethodGet, target)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
	}
}

func TestCurrentWeatherNotFound(t *testing.T) {
	app := newTestApp(store.NewMemoryStore())

	resp := doRequest(t, app, http.MethodGet, "/api/v1/weather/current?city=Paris&country=FR")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestCurrentWeather(t *testing.T) {
	st := store.NewMemoryStore()
	loc := weather.Location{City: "Paris", Country: "FR"}
	now := time.Now().UTC()
	if err := st.UpsertSnapshot(weather.WeatherSnapshot{Location: loc, Temperature: 12.5, ObservedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
	app := newTestApp(st)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/weather/current?city=Paris&country=FR")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var snap weather.WeatherSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Temperature != 12.5 {
		t.Errorf("temperature: got %v", snap.Temperature)
	}
}

func TestNarratives(t *testing.T) {
	st := store.NewMemoryStore()
	loc := weather.Location{City: "Paris", Country: "FR"}
	app := newTestApp(st)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/weather/narratives?city=Paris&country=FR")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}

	p := weather.Persona{Name: "Captain Breeze"}
	if err := st.SavePersona(&p); err != nil {
		t.Fatalf("save persona: %v", err)
	}
	if err := st.EnsureBinding(loc, p.ID); err != nil {
		t.Fatalf("ensure binding: %v", err)
	}

	resp = doRequest(t, app, http.MethodGet, "/api/v1/weather/narratives?city=Paris&country=FR")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestPersonas(t *testing.T) {
	st := store.NewMemoryStore()
	p := weather.Persona{Name: "Captain Breeze"}
	if err := st.SavePersona(&p); err != nil {
		t.Fatalf("save persona: %v", err)
	}
	app := newTestApp(st)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/personas")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var personas []weather.Persona
	if err := json.NewDecoder(resp.Body).Decode(&personas); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(personas) != 1 || personas[0].Name != "Captain Breeze" {
		t.Errorf("personas: got %+v", personas)
	}
}

func TestRefreshEndpoints(t *testing.T) {
	st := store.NewMemoryStore()
	loc := weather.Location{City: "Paris", Country: "FR"}
	p := weather.Persona{Name: "Captain Breeze"}
	if err := st.SavePersona(&p); err != nil {
		t.Fatalf("save persona: %v", err)
	}
	if err := st.EnsureBinding(loc, p.ID); err != nil {
		t.Fatalf("ensure binding: %v", err)
	}
	app := newTestApp(st)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/refresh/last")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("last before any cycle: expected %d, got %d", http.StatusNotFound, resp.StatusCode)
	}

	resp = doRequest(t, app, http.MethodPost, "/api/v1/refresh")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh: expected %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var report struct {
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Succeeded != 1 || report.Failed != 0 {
		t.Errorf("report: %+v", report)
	}

	resp = doRequest(t, app, http.MethodGet, "/api/v1/refresh/last")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("last after cycle: expected %d, got %d", http.StatusOK, resp.StatusCode)
	}
}
