package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-narrator/internal/weather"
)

var (
	// ErrNotFound is returned when no record exists for a given key.
	ErrNotFound = errors.New("record not found")
)

// MemoryStore is the concurrency-safe ephemeral implementation of
// weather.Store, used when the durable store is unavailable. Nothing it
// holds survives a restart, which is why the scheduler logs a
// degradation notice when it is selected.
type MemoryStore struct {
	mu sync.RWMutex

	locations map[string]weather.Location
	snapshots map[string]weather.WeatherSnapshot
	personas  map[int64]weather.Persona
	nextID    int64

	// bindings: location key -> persona id -> binding
	bindings map[string]map[int64]*weather.Binding

	executions []weather.JobExecution
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locations: make(map[string]weather.Location),
		snapshots: make(map[string]weather.WeatherSnapshot),
		personas:  make(map[int64]weather.Persona),
		bindings:  make(map[string]map[int64]*weather.Binding),
		nextID:    1,
	}
}

func (s *MemoryStore) Durable() bool { return false }

func (s *MemoryStore) UpsertLocation(loc weather.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[loc.Key()] = loc
	return nil
}

func (s *MemoryStore) ActiveLocations() ([]weather.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var locs []weather.Location
	for key, perBinding := range s.bindings {
		for _, b := range perBinding {
			if b.Active {
				if loc, ok := s.locations[key]; ok {
					locs = append(locs, loc)
				} else {
					locs = append(locs, b.Location)
				}
				break
			}
		}
	}
	return locs, nil
}

func (s *MemoryStore) UpsertSnapshot(snap weather.WeatherSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.Location.Key()] = snap
	return nil
}

func (s *MemoryStore) GetSnapshot(loc weather.Location) (weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[loc.Key()]
	if !ok {
		return weather.WeatherSnapshot{}, ErrNotFound
	}
	return snap, nil
}

func (s *MemoryStore) SavePersona(p *weather.Persona) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		// Name is the natural identity; re-saving reuses the existing id.
		for _, existing := range s.personas {
			if existing.Name == p.Name {
				p.ID = existing.ID
				break
			}
		}
	}
	if p.ID == 0 {
		p.ID = s.nextID
		s.nextID++
	}
	s.personas[p.ID] = *p
	return nil
}

func (s *MemoryStore) Persona(id int64) (weather.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.personas[id]
	if !ok {
		return weather.Persona{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) PersonaByName(name string) (weather.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.personas {
		if p.Name == name {
			return p, nil
		}
	}
	return weather.Persona{}, ErrNotFound
}

func (s *MemoryStore) Personas() ([]weather.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.Persona, 0, len(s.personas))
	for _, p := range s.personas {
		out = append(out, p)
	}
	return out, nil
}

func (s *MemoryStore) EnsureBinding(loc weather.Location, personaID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.personas[personaID]
	if !ok {
		return ErrNotFound
	}

	key := loc.Key()
	perBinding, ok := s.bindings[key]
	if !ok {
		perBinding = make(map[int64]*weather.Binding)
		s.bindings[key] = perBinding
	}
	if _, exists := perBinding[personaID]; exists {
		// Lazy creation only; an inactive binding stays inactive.
		return nil
	}

	s.locations[key] = loc
	perBinding[personaID] = &weather.Binding{
		Location:    loc,
		PersonaID:   personaID,
		PersonaName: p.Name,
		Active:      true,
	}
	return nil
}

func (s *MemoryStore) ActiveBindings(loc weather.Location) ([]weather.Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []weather.Binding
	for _, b := range s.bindings[loc.Key()] {
		if b.Active {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *MemoryStore) SetBindingActive(loc weather.Location, personaID int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bindings[loc.Key()][personaID]
	if !ok {
		return ErrNotFound
	}
	b.Active = active
	return nil
}

// ApplyRefresh writes the snapshot and narrative updates under one lock
// so readers observe either the pre-refresh or fully refreshed state.
func (s *MemoryStore) ApplyRefresh(snap weather.WeatherSnapshot, narratives []weather.NarrativeUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := snap.Location.Key()
	s.locations[key] = snap.Location
	s.snapshots[key] = snap

	for _, n := range narratives {
		if b, ok := s.bindings[key][n.PersonaID]; ok {
			b.Narrative = n.Narrative
			b.LastUpdated = n.UpdatedAt
		}
	}
	return nil
}

func (s *MemoryStore) RecordJobExecution(exec weather.JobExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executions = append(s.executions, exec)
	return nil
}

func (s *MemoryStore) PruneJobExecutions(maxAge time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-maxAge)
	kept := s.executions[:0]
	var pruned int64
	for _, e := range s.executions {
		if e.FinishedAt.Before(cutoff) {
			pruned++
			continue
		}
		kept = append(kept, e)
	}
	s.executions = kept
	return pruned, nil
}
