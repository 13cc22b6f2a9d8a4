package weather

import (
	"context"
	"time"
)

// Fetcher abstracts the weather/geocoding provider. Both calls resolve
// (city, country) to coordinates first and return raw provider-shaped
// payloads.
type Fetcher interface {
	FetchCurrent(ctx context.Context, loc Location) (*CurrentPayload, error)
	FetchForecast(ctx context.Context, loc Location) (*ForecastPayload, error)
}

// Store is the persistence capability backing the refresh pipeline.
// Implementations must be safe for concurrent use; every mutation is an
// update-or-insert or single-row update keyed by natural identity
// (Location: city+country, Binding: location+persona).
type Store interface {
	// UpsertLocation creates the location on first reference.
	UpsertLocation(loc Location) error
	// ActiveLocations lists locations with at least one active binding.
	ActiveLocations() ([]Location, error)

	// UpsertSnapshot overwrites the location's snapshot in place.
	UpsertSnapshot(snap WeatherSnapshot) error
	GetSnapshot(loc Location) (WeatherSnapshot, error)

	// SavePersona inserts or updates a persona; a zero ID is assigned.
	SavePersona(p *Persona) error
	Persona(id int64) (Persona, error)
	PersonaByName(name string) (Persona, error)
	Personas() ([]Persona, error)

	// EnsureBinding lazily creates an active binding; an existing
	// binding (active or not) is left untouched.
	EnsureBinding(loc Location, personaID int64) error
	ActiveBindings(loc Location) ([]Binding, error)
	SetBindingActive(loc Location, personaID int64, active bool) error

	// ApplyRefresh writes the snapshot and the cycle's narrative
	// updates as one atomic unit: a concurrent reader sees either the
	// pre-refresh or the fully refreshed state.
	ApplyRefresh(snap WeatherSnapshot, narratives []NarrativeUpdate) error

	// Job-execution history, used by the scheduler's housekeeping.
	RecordJobExecution(exec JobExecution) error
	PruneJobExecutions(maxAge time.Duration) (int64, error)

	// Durable reports whether the store survives process restarts.
	Durable() bool
}
