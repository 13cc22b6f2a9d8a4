package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/i474232898/weather-narrator/internal/weather"
)

// Both implementations must satisfy the same contract; every test runs
// against each of them.
func forEachStore(t *testing.T, fn func(t *testing.T, st weather.Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		st, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { st.Close() })
		fn(t, st)
	})
}

func testLocation() weather.Location {
	return weather.Location{City: "Paris", Country: "FR"}
}

func seedPersona(t *testing.T, st weather.Store) weather.Persona {
	t.Helper()
	p := weather.Persona{Name: "Captain Breeze", Description: "A jovial sea captain.", AvatarColor: "#0000ff"}
	if err := st.SavePersona(&p); err != nil {
		t.Fatalf("save persona: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("save persona did not assign an id")
	}
	return p
}

func TestSnapshotUpsertOverwrites(t *testing.T) {
	forEachStore(t, func(t *testing.T, st weather.Store) {
		loc := testLocation()
		now := time.Now().UTC().Truncate(time.Second)

		if _, err := st.GetSnapshot(loc); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		snap := weather.WeatherSnapshot{Location: loc, Temperature: 10, ObservedAt: now, UpdatedAt: now}
		if err := st.UpsertSnapshot(snap); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		snap.Temperature = 12.5
		if err := st.UpsertSnapshot(snap); err != nil {
			t.Fatalf("second upsert: %v", err)
		}

		got, err := st.GetSnapshot(loc)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Temperature != 12.5 {
			t.Errorf("temperature: got %v, want 12.5", got.Temperature)
		}

		// Lookup is case-insensitive on the (city, country) identity.
		if _, err := st.GetSnapshot(weather.Location{City: "paris", Country: "fr"}); err != nil {
			t.Errorf("case-insensitive lookup: %v", err)
		}
	})
}

func TestPersonaLookup(t *testing.T) {
	forEachStore(t, func(t *testing.T, st weather.Store) {
		p := seedPersona(t, st)

		got, err := st.Persona(p.ID)
		if err != nil {
			t.Fatalf("persona by id: %v", err)
		}
		if got.Name != p.Name {
			t.Errorf("name: got %q", got.Name)
		}

		byName, err := st.PersonaByName(p.Name)
		if err != nil {
			t.Fatalf("persona by name: %v", err)
		}
		if byName.ID != p.ID {
			t.Errorf("id: got %d, want %d", byName.ID, p.ID)
		}

		if _, err := st.Persona(9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("missing persona: got %v", err)
		}

		all, err := st.Personas()
		if err != nil {
			t.Fatalf("personas: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("personas: got %d, want 1", len(all))
		}
	})
}

func TestBindingLifecycle(t *testing.T) {
	forEachStore(t, func(t *testing.T, st weather.Store) {
		loc := testLocation()
		p := seedPersona(t, st)

		if err := st.EnsureBinding(loc, p.ID); err != nil {
			t.Fatalf("ensure binding: %v", err)
		}

		bindings, err := st.ActiveBindings(loc)
		if err != nil {
			t.Fatalf("active bindings: %v", err)
		}
		if len(bindings) != 1 || !bindings[0].Active {
			t.Fatalf("bindings: got %+v", bindings)
		}
		if bindings[0].PersonaName != p.Name {
			t.Errorf("persona name: got %q", bindings[0].PersonaName)
		}

		locs, err := st.ActiveLocations()
		if err != nil {
			t.Fatalf("active locations: %v", err)
		}
		if len(locs) != 1 {
			t.Errorf("active locations: got %v", locs)
		}

		if err := st.SetBindingActive(loc, p.ID, false); err != nil {
			t.Fatalf("deactivate: %v", err)
		}
		bindings, _ = st.ActiveBindings(loc)
		if len(bindings) != 0 {
			t.Errorf("deactivated binding still active: %+v", bindings)
		}
		locs, _ = st.ActiveLocations()
		if len(locs) != 0 {
			t.Errorf("location with no active bindings still listed: %v", locs)
		}

		// EnsureBinding is create-only: it must not reactivate.
		if err := st.EnsureBinding(loc, p.ID); err != nil {
			t.Fatalf("re-ensure binding: %v", err)
		}
		bindings, _ = st.ActiveBindings(loc)
		if len(bindings) != 0 {
			t.Errorf("ensure reactivated a deactivated binding: %+v", bindings)
		}
	})
}

func TestSetBindingActiveMissing(t *testing.T) {
	forEachStore(t, func(t *testing.T, st weather.Store) {
		err := st.SetBindingActive(testLocation(), 42, true)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestApplyRefresh(t *testing.T) {
	forEachStore(t, func(t *testing.T, st weather.Store) {
		loc := testLocation()
		p := seedPersona(t, st)
		if err := st.EnsureBinding(loc, p.ID); err != nil {
			t.Fatalf("ensure binding: %v", err)
		}

		now := time.Now().UTC().Truncate(time.Second)
		snap := weather.WeatherSnapshot{Location: loc, Temperature: 21, ObservedAt: now, UpdatedAt: now}
		updates := []weather.NarrativeUpdate{
			{PersonaID: p.ID, Narrative: "A fine day, dear reader.", UpdatedAt: now},
		}

		if err := st.ApplyRefresh(snap, updates); err != nil {
			t.Fatalf("apply refresh: %v", err)
		}

		got, err := st.GetSnapshot(loc)
		if err != nil {
			t.Fatalf("get snapshot: %v", err)
		}
		if got.Temperature != 21 {
			t.Errorf("temperature: got %v", got.Temperature)
		}

		bindings, err := st.ActiveBindings(loc)
		if err != nil {
			t.Fatalf("active bindings: %v", err)
		}
		if len(bindings) != 1 {
			t.Fatalf("bindings: got %d", len(bindings))
		}
		if bindings[0].Narrative != "A fine day, dear reader." {
			t.Errorf("narrative: got %q", bindings[0].Narrative)
		}
		if bindings[0].LastUpdated.IsZero() {
			t.Error("last updated not set")
		}
	})
}

func TestJobExecutionPruning(t *testing.T) {
	forEachStore(t, func(t *testing.T, st weather.Store) {
		now := time.Now().UTC()
		old := weather.JobExecution{
			ID: "old", JobName: "update_weather_data",
			StartedAt: now.Add(-8 * 24 * time.Hour), FinishedAt: now.Add(-8 * 24 * time.Hour),
			Status: "ok",
		}
		recent := weather.JobExecution{
			ID: "recent", JobName: "update_weather_data",
			StartedAt: now.Add(-time.Hour), FinishedAt: now.Add(-time.Hour),
			Status: "ok",
		}
		if err := st.RecordJobExecution(old); err != nil {
			t.Fatalf("record: %v", err)
		}
		if err := st.RecordJobExecution(recent); err != nil {
			t.Fatalf("record: %v", err)
		}

		pruned, err := st.PruneJobExecutions(7 * 24 * time.Hour)
		if err != nil {
			t.Fatalf("prune: %v", err)
		}
		if pruned != 1 {
			t.Errorf("pruned: got %d, want 1", pruned)
		}

		// A second pass finds nothing left to prune.
		pruned, err = st.PruneJobExecutions(7 * 24 * time.Hour)
		if err != nil {
			t.Fatalf("second prune: %v", err)
		}
		if pruned != 0 {
			t.Errorf("second prune: got %d, want 0", pruned)
		}
	})
}

func TestSavePersonaIdempotentByName(t *testing.T) {
	forEachStore(t, func(t *testing.T, st weather.Store) {
		first := seedPersona(t, st)

		again := weather.Persona{Name: first.Name, Description: "updated", AvatarColor: "#00ff00"}
		if err := st.SavePersona(&again); err != nil {
			t.Fatalf("re-save: %v", err)
		}
		if again.ID != first.ID {
			t.Errorf("id changed on re-save: got %d, want %d", again.ID, first.ID)
		}

		all, err := st.Personas()
		if err != nil {
			t.Fatalf("personas: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("personas: got %d, want 1", len(all))
		}
	})
}

func TestSavePersonaConflictKeepsOwnID(t *testing.T) {
	forEachStore(t, func(t *testing.T, st weather.Store) {
		alpha := weather.Persona{Name: "Alpha", Description: "first"}
		if err := st.SavePersona(&alpha); err != nil {
			t.Fatalf("save alpha: %v", err)
		}
		beta := weather.Persona{Name: "Beta", Description: "second"}
		if err := st.SavePersona(&beta); err != nil {
			t.Fatalf("save beta: %v", err)
		}
		if alpha.ID == beta.ID {
			t.Fatalf("distinct personas share id %d", alpha.ID)
		}

		// A conflicting zero-ID save must resolve to Alpha's own id, not
		// the id of the most recently inserted row.
		again := weather.Persona{Name: "Alpha", Description: "updated"}
		if err := st.SavePersona(&again); err != nil {
			t.Fatalf("re-save alpha: %v", err)
		}
		if again.ID != alpha.ID {
			t.Errorf("alpha got id %d, want %d", again.ID, alpha.ID)
		}

		got, err := st.Persona(alpha.ID)
		if err != nil {
			t.Fatalf("persona: %v", err)
		}
		if got.Description != "updated" {
			t.Errorf("description: got %q", got.Description)
		}
		if other, err := st.Persona(beta.ID); err != nil || other.Name != "Beta" {
			t.Errorf("beta corrupted: %+v, %v", other, err)
		}
	})
}

func TestDurability(t *testing.T) {
	if NewMemoryStore().Durable() {
		t.Error("memory store must report non-durable")
	}
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer st.Close()
	if !st.Durable() {
		t.Error("sqlite store must report durable")
	}
}
