package refresh

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-narrator/internal/narrative"
	"github.com/i474232898/weather-narrator/internal/notify"
	"github.com/i474232898/weather-narrator/internal/suggest"
	"github.com/i474232898/weather-narrator/internal/weather"
)

// Failure kinds surfaced in a cycle report.
const (
	FailureLocationNotFound    = "location_not_found"
	FailureUpstreamUnavailable = "upstream_unavailable"
	FailurePersistence         = "persistence_failure"
)

// LocationResult is one location's outcome within a cycle.
type LocationResult struct {
	Location weather.Location `json:"location"`
	Personas int              `json:"personasUpdated"`
	Failure  string           `json:"failure,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Report summarizes one refresh cycle.
type Report struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Succeeded  int              `json:"succeeded"`
	Failed     int              `json:"failed"`
	Results    []LocationResult `json:"results"`
}

// Orchestrator runs the per-location update cycle: fetch, summarize,
// narrate, persist, notify. Failures are isolated per location.
type Orchestrator struct {
	fetcher  weather.Fetcher
	store    weather.Store
	narrator *narrative.Generator
	selector *suggest.Selector
	notifier notify.Notifier

	language        string
	defaultLocation weather.Location
	perLocation     time.Duration

	mu   sync.Mutex
	last *Report
}

// Config wires an Orchestrator.
type Config struct {
	Fetcher  weather.Fetcher
	Store    weather.Store
	Narrator *narrative.Generator
	Selector *suggest.Selector
	Notifier notify.Notifier

	Language        string
	DefaultLocation weather.Location
	// PerLocationTimeout bounds one location's fetch+narrate work.
	PerLocationTimeout time.Duration
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.Notifier == nil {
		cfg.Notifier = notify.LogNotifier{}
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.PerLocationTimeout <= 0 {
		cfg.PerLocationTimeout = 30 * time.Second
	}
	return &Orchestrator{
		fetcher:         cfg.Fetcher,
		store:           cfg.Store,
		narrator:        cfg.Narrator,
		selector:        cfg.Selector,
		notifier:        cfg.Notifier,
		language:        cfg.Language,
		defaultLocation: cfg.DefaultLocation,
		perLocation:     cfg.PerLocationTimeout,
	}
}

// LastReport returns the most recent cycle report, or nil before the
// first cycle completes.
func (o *Orchestrator) LastReport() *Report {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// RefreshAll runs one cycle over every location with at least one
// active binding, one worker per location. One location's failure never
// blocks the others.
func (o *Orchestrator) RefreshAll(ctx context.Context) *Report {
	report := &Report{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	locations, err := o.store.ActiveLocations()
	if err != nil {
		log.Printf("refresh: listing active locations: %v", err)
	}
	if len(locations) == 0 && o.defaultLocation.City != "" {
		if err := o.store.UpsertLocation(o.defaultLocation); err != nil {
			log.Printf("refresh: upsert default location: %v", err)
		}
		locations = []weather.Location{o.defaultLocation}
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []LocationResult
	)

	for _, loc := range locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			locCtx, cancel := context.WithTimeout(ctx, o.perLocation)
			defer cancel()

			res := o.refreshLocation(locCtx, loc)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}()
	}
	wg.Wait()

	for _, res := range results {
		if res.Failure == "" {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	report.Results = results
	report.FinishedAt = time.Now().UTC()

	log.Printf("refresh: cycle %s finished, %d succeeded, %d failed", report.ID, report.Succeeded, report.Failed)

	o.mu.Lock()
	o.last = report
	o.mu.Unlock()

	return report
}

// refreshLocation runs the fetch → transform → persist → narrate cycle
// for one location. A failed cycle leaves the location's previous
// snapshot and narratives untouched.
func (o *Orchestrator) refreshLocation(ctx context.Context, loc weather.Location) LocationResult {
	res := LocationResult{Location: loc}

	current, err := o.fetcher.FetchCurrent(ctx, loc)
	if err != nil {
		return failureResult(res, err)
	}
	forecast, err := o.fetcher.FetchForecast(ctx, loc)
	if err != nil {
		return failureResult(res, err)
	}

	now := time.Now().UTC()
	sum := weather.Summarize(current, forecast)
	snap := weather.SnapshotFromCurrent(loc, current, now)

	bindings, err := o.store.ActiveBindings(loc)
	if err != nil {
		log.Printf("refresh: listing bindings for %s: %v", loc, err)
	}

	// Narration happens before the store write so the snapshot and all
	// narratives land in a single atomic unit. Narrate never fails: a
	// collaborator error degrades to the canned fallback.
	type delivery struct {
		personaName string
		narrative   string
	}
	updates := make([]weather.NarrativeUpdate, 0, len(bindings))
	deliveries := make([]delivery, 0, len(bindings))
	for _, b := range bindings {
		persona, err := o.store.Persona(b.PersonaID)
		if err != nil {
			log.Printf("refresh: persona %d missing for %s: %v", b.PersonaID, loc, err)
			continue
		}
		text := o.narrator.Narrate(ctx, sum, persona)
		updates = append(updates, weather.NarrativeUpdate{
			PersonaID: persona.ID,
			Narrative: text,
			UpdatedAt: now,
		})
		deliveries = append(deliveries, delivery{personaName: persona.Name, narrative: text})
	}

	if err := o.store.ApplyRefresh(snap, updates); err != nil {
		res.Failure = FailurePersistence
		res.Error = err.Error()
		return res
	}
	res.Personas = len(updates)

	suggestions := o.selector.Select(sum, o.language)
	for _, d := range deliveries {
		data := notify.TemplateData(sum, d.personaName, d.narrative, suggestions, now)
		if err := o.notifier.Send(ctx, data); err != nil {
			log.Printf("refresh: notify failed for %s (%s): %v", loc, d.personaName, err)
		}
	}

	return res
}

func failureResult(res LocationResult, err error) LocationResult {
	switch {
	case errors.Is(err, weather.ErrLocationNotFound):
		res.Failure = FailureLocationNotFound
	default:
		res.Failure = FailureUpstreamUnavailable
	}
	res.Error = err.Error()
	log.Printf("refresh: %s failed for %s: %v", res.Failure, res.Location, err)
	return res
}
