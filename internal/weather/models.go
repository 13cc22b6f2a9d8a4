package weather

import (
	"fmt"
	"strings"
	"time"
)

// Location represents a logical place for which we track weather.
// City/Country must be provided. Identity is the case-normalized
// (city, country) pair; the original casing is kept for display.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return strings.ToLower(strings.TrimSpace(l.City)) + ":" + strings.ToLower(strings.TrimSpace(l.Country))
}

func (l Location) String() string {
	return fmt.Sprintf("%s, %s", l.City, l.Country)
}

// Persona is a narrative voice used to phrase generated weather text.
type Persona struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AvatarColor string `json:"avatarColor"`
}

// Binding associates one Location with one Persona and carries the most
// recently generated narrative. Only active bindings participate in
// scheduled refresh; deactivating a binding halts future updates without
// deleting its history.
type Binding struct {
	Location    Location  `json:"location"`
	PersonaID   int64     `json:"personaId"`
	PersonaName string    `json:"personaName"`
	Narrative   string    `json:"narrative"`
	LastUpdated time.Time `json:"lastUpdated"`
	Active      bool      `json:"active"`
}

// WeatherSnapshot is the latest stored current-conditions record for a
// location. One row per location, overwritten in place on every refresh.
type WeatherSnapshot struct {
	Location    Location  `json:"location"`
	Temperature float64   `json:"temperatureC"`
	FeelsLike   float64   `json:"feelsLikeC"`
	Humidity    int       `json:"humidityPercent"`
	Pressure    int       `json:"pressureHpa"`
	WindSpeed   float64   `json:"windSpeed"`
	WindDeg     int       `json:"windDirection"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Clouds      int       `json:"cloudsPercent"`
	ObservedAt  time.Time `json:"observedAt"` // provider capture time, UTC
	UpdatedAt   time.Time `json:"updatedAt"`  // last write, UTC
}

// NarrativeUpdate is one binding's freshly generated text, applied to the
// store together with the location's snapshot.
type NarrativeUpdate struct {
	PersonaID int64
	Narrative string
	UpdatedAt time.Time
}

// JobExecution records one run of a scheduled job in the durable store.
type JobExecution struct {
	ID         string    `json:"id"`
	JobName    string    `json:"jobName"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Status     string    `json:"status"`
	Detail     string    `json:"detail"`
}

// SnapshotFromCurrent builds a storable snapshot from a raw current
// conditions payload. Missing numeric fields stay at their zero values;
// the summary layer is where "Unknown" degradation happens.
func SnapshotFromCurrent(loc Location, cur *CurrentPayload, now time.Time) WeatherSnapshot {
	snap := WeatherSnapshot{
		Location:   loc,
		ObservedAt: now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	if cur == nil {
		return snap
	}
	if cur.Dt > 0 {
		snap.ObservedAt = time.Unix(cur.Dt, 0).UTC()
	}
	if cur.Main.Temp != nil {
		snap.Temperature = *cur.Main.Temp
	}
	if cur.Main.FeelsLike != nil {
		snap.FeelsLike = *cur.Main.FeelsLike
	}
	if cur.Main.Humidity != nil {
		snap.Humidity = *cur.Main.Humidity
	}
	if cur.Main.Pressure != nil {
		snap.Pressure = *cur.Main.Pressure
	}
	if cur.Wind.Speed != nil {
		snap.WindSpeed = *cur.Wind.Speed
	}
	if cur.Wind.Deg != nil {
		snap.WindDeg = *cur.Wind.Deg
	}
	if cur.Clouds.All != nil {
		snap.Clouds = *cur.Clouds.All
	}
	if len(cur.Weather) > 0 {
		snap.Description = cur.Weather[0].Description
		snap.Icon = cur.Weather[0].Icon
	}
	return snap
}
