package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/i474232898/weather-narrator/internal/refresh"
	"github.com/i474232898/weather-narrator/internal/weather"
)

// State of the scheduler.
type State int

const (
	Stopped State = iota
	Running
)

// Job identities. Registration replaces any previous job with the same
// identity so restarts do not create duplicate schedules.
const (
	refreshJobID = "update_weather_data"
	pruneJobID   = "prune_job_history"

	jobHistoryMaxAge = 7 * 24 * time.Hour
)

// Default persona seeded on first start; at least one persona must
// exist at all times.
var defaultPersona = weather.Persona{
	Name:        "Eludecia the Succubus Paladin",
	Description: "A reformed succubus who has pledged herself to a holy order, constantly balancing between her demonic nature and righteous path. She speaks with both seductive charm and noble virtue when discussing the weather.",
	AvatarColor: "#800080",
}

// Scheduler periodically runs the refresh orchestrator and housekeeping.
type Scheduler struct {
	mu    sync.Mutex
	state State

	scheduler *gocron.Scheduler
	orch      *refresh.Orchestrator
	store     weather.Store

	interval  time.Duration
	locations []weather.Location
	seedDelay time.Duration

	stop chan struct{}
	seed sync.WaitGroup
	jobs sync.WaitGroup
}

// New creates a Scheduler refreshing the given locations every interval.
func New(orch *refresh.Orchestrator, store weather.Store, interval time.Duration, locations []weather.Location) *Scheduler {
	if interval <= 0 {
		interval = 2 * time.Hour
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		orch:      orch,
		store:     store,
		interval:  interval,
		locations: locations,
		seedDelay: 2 * time.Second,
	}
}

// Start transitions Stopped→Running: registers the recurring jobs and
// kicks off the delayed initial seeding. Only a failure of the
// scheduling primitive itself is fatal; pipeline errors never are.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		return nil
	}

	if s.store.Durable() {
		log.Println("scheduler: using persistent job store")
	} else {
		log.Println("scheduler: WARN durable job store unavailable, using in-memory store; job history will not survive restarts")
	}

	// Tag may not exist yet on first start.
	_ = s.scheduler.RemoveByTag(refreshJobID)
	// WaitForSchedule keeps the very first run with the delayed seeding
	// below instead of firing at StartAsync.
	if _, err := s.scheduler.Every(s.interval).Tag(refreshJobID).SingletonMode().WaitForSchedule().Do(s.runRefresh); err != nil {
		return fmt.Errorf("schedule %s: %w", refreshJobID, err)
	}
	log.Printf("scheduler: added job %s every %s", refreshJobID, s.interval)

	if s.store.Durable() {
		_ = s.scheduler.RemoveByTag(pruneJobID)
		if _, err := s.scheduler.Every(7).Days().Tag(pruneJobID).SingletonMode().WaitForSchedule().Do(s.runPrune); err != nil {
			return fmt.Errorf("schedule %s: %w", pruneJobID, err)
		}
		log.Printf("scheduler: added weekly job %s", pruneJobID)
	}

	s.scheduler.StartAsync()
	s.state = Running
	s.stop = make(chan struct{})

	// First population runs outside the startup critical path, after a
	// short delay, so the host finishes its own initialization first.
	// The refresh itself goes through the registered job so the
	// no-overlap guard on its identity applies, and Stop cancels the
	// delay instead of letting a cycle start after shutdown.
	stop := s.stop
	s.seed.Add(1)
	go func() {
		defer s.seed.Done()
		timer := time.NewTimer(s.seedDelay)
		defer timer.Stop()
		select {
		case <-stop:
			return
		case <-timer.C:
		}
		if err := s.EnsureDefaults(); err != nil {
			log.Printf("scheduler: seeding default data: %v", err)
		}
		if err := s.scheduler.RunByTag(refreshJobID); err != nil {
			log.Printf("scheduler: initial %s run: %v", refreshJobID, err)
		}
	}()

	return nil
}

// Stop transitions Running→Stopped, letting in-flight job invocations
// finish before returning.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Stopped {
		return
	}
	close(s.stop)
	s.seed.Wait()
	s.scheduler.Stop()
	s.jobs.Wait()
	s.state = Stopped
	log.Println("scheduler: stopped")
}

// CurrentState reports the scheduler's state.
func (s *Scheduler) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// EnsureDefaults seeds the default persona, the configured locations,
// and a binding from every location to the default persona. Existing
// records, including deactivated bindings, are left untouched.
func (s *Scheduler) EnsureDefaults() error {
	persona, err := s.store.PersonaByName(defaultPersona.Name)
	if err != nil {
		persona = defaultPersona
		if err := s.store.SavePersona(&persona); err != nil {
			return fmt.Errorf("save default persona: %w", err)
		}
	}

	for _, loc := range s.locations {
		if loc.City == "" {
			continue
		}
		if err := s.store.UpsertLocation(loc); err != nil {
			return fmt.Errorf("upsert location %s: %w", loc, err)
		}
		if err := s.store.EnsureBinding(loc, persona.ID); err != nil {
			return fmt.Errorf("ensure binding %s: %w", loc, err)
		}
	}
	return nil
}

func (s *Scheduler) runRefresh() {
	s.jobs.Add(1)
	defer s.jobs.Done()

	log.Println("scheduler: running weather refresh job")

	exec := weather.JobExecution{
		ID:        uuid.NewString(),
		JobName:   refreshJobID,
		StartedAt: time.Now().UTC(),
	}

	report := s.orch.RefreshAll(context.Background())

	exec.FinishedAt = time.Now().UTC()
	exec.Status = "ok"
	if report.Failed > 0 {
		exec.Status = "partial"
	}
	exec.Detail = fmt.Sprintf("%d succeeded, %d failed", report.Succeeded, report.Failed)

	if s.store.Durable() {
		if err := s.store.RecordJobExecution(exec); err != nil {
			log.Printf("scheduler: recording job execution: %v", err)
		}
	}
}

func (s *Scheduler) runPrune() {
	s.jobs.Add(1)
	defer s.jobs.Done()

	pruned, err := s.store.PruneJobExecutions(jobHistoryMaxAge)
	if err != nil {
		log.Printf("scheduler: pruning job history: %v", err)
		return
	}
	log.Printf("scheduler: pruned %d old job executions", pruned)
}
