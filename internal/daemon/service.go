// Package daemon provides the long-running scheduled reprojection service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"
	"github.com/theirongolddev/fincast/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Event types.
const (
	EventSnapshot        = "snapshot"
	EventProjectionDelta = "projection_delta"
)

// DefaultSchedule reprojects every Monday at 06:00.
const DefaultSchedule = "0 6 * * 1"

// ScenarioLoader returns the scenario to project. It is called before every
// projection so edits to the scenario file are picked up.
type ScenarioLoader func() (model.Scenario, error)

// Config controls the daemon runtime behavior.
type Config struct {
	Load          ScenarioLoader
	Runs          int
	Workers       int
	Seed          *uint64
	RecordHistory bool
	Schedule      string // standard five-field cron spec
	Addr          string
	EventsBuffer  int
}

// AccountSnapshot is the final-balance spread of one account.
type AccountSnapshot struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdev"`
	P10    float64 `json:"p10"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
}

// Snapshot is a compact projection summary for status/event payloads.
type Snapshot struct {
	At           time.Time                  `json:"at"`
	Scenario     string                     `json:"scenario"`
	Runs         int                        `json:"runs"`
	Weeks        int                        `json:"weeks"`
	Seed         uint64                     `json:"seed"`
	InitialTotal float64                    `json:"initial_total"`
	LiquidMean   float64                    `json:"liquid_mean"`
	LiquidStdDev float64                    `json:"liquid_stdev"`
	PShortfall   float64                    `json:"p_liquid_below_zero"`
	TotalMean    float64                    `json:"total_mean"`
	TotalStdDev  float64                    `json:"total_stdev"`
	PLoss        float64                    `json:"p_total_below_initial"`
	Accounts     map[string]AccountSnapshot `json:"accounts"`
	RecordID     string                     `json:"record_id,omitempty"`
}

// Delta captures snapshot changes between projections.
type Delta struct {
	LiquidMean float64 `json:"liquid_mean"`
	TotalMean  float64 `json:"total_mean"`
	PShortfall float64 `json:"p_liquid_below_zero"`
	PLoss      float64 `json:"p_total_below_initial"`
}

func (d Delta) isZero() bool {
	return d.LiquidMean == 0 &&
		d.TotalMean == 0 &&
		d.PShortfall == 0 &&
		d.PLoss == 0
}

// Event is emitted whenever a projection completes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Trigger   string    `json:"trigger,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastRunAt       time.Time `json:"last_run_at"`
	NextRunAt       time.Time `json:"next_run_at"`
	Schedule        string    `json:"schedule"`
	RunCount        int64     `json:"run_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service reprojects the scenario on a cron schedule and serves the
// latest summary and its change history over HTTP.
type Service struct {
	cfg    Config
	events *broker

	// runMu serializes projections from the schedule and the API.
	runMu sync.Mutex

	mu        sync.RWMutex
	startedAt time.Time
	lastRunAt time.Time
	runCount  int64
	lastError string
	snapshot  *Snapshot
	sched     *cron.Cron
	entry     cron.EntryID
}

// New applies defaults to cfg and returns an idle service; call Run to
// start it.
func New(cfg Config) *Service {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Load == nil {
		cfg.Load = func() (model.Scenario, error) { return model.DefaultScenario(), nil }
	}
	return &Service{cfg: cfg, events: newBroker(cfg.EventsBuffer), startedAt: time.Now()}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.HandleFunc("/v1/reproject", s.handleReproject)
	return mux
}

// Run starts the HTTP endpoints and the reprojection schedule until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	sched := cron.New()
	entry, err := sched.AddFunc(s.cfg.Schedule, func() { _ = s.reproject("schedule") })
	if err != nil {
		return fmt.Errorf("register schedule %q: %w", s.cfg.Schedule, err)
	}
	s.mu.Lock()
	s.sched, s.entry = sched, entry
	s.mu.Unlock()

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	log.Info().Str("addr", s.cfg.Addr).Str("schedule", s.cfg.Schedule).Msg("daemon listening")

	// Status has nothing to report until the first projection lands.
	_ = s.reproject("startup")

	sched.Start()
	defer func() {
		<-sched.Stop().Done()
		log.Info().Msg("scheduler stopped")
	}()

	select {
	case <-ctx.Done():
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(stopCtx)
	case err := <-serveErr:
		return fmt.Errorf("serving %s: %w", s.cfg.Addr, err)
	}
}

// reproject reloads the scenario, runs the ensemble and publishes the
// result. A first run or a renamed scenario publishes a full snapshot;
// later runs publish a delta, and only when something moved. Errors are
// recorded on the status as well as returned.
func (s *Service) reproject(trigger string) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	out, err := s.project()
	now := time.Now()

	s.mu.Lock()
	s.lastRunAt = now
	s.runCount++
	if err != nil {
		s.lastError = err.Error()
		s.mu.Unlock()
		log.Error().Err(err).Str("trigger", trigger).Msg("projection failed")
		return err
	}
	snap := snapshotFromResult(out, now)
	prev := s.snapshot
	s.snapshot = &snap
	s.lastError = ""
	s.mu.Unlock()

	ev := Event{Type: EventSnapshot, Trigger: trigger, Timestamp: now, Snapshot: snap}
	if prev != nil && prev.Scenario == snap.Scenario {
		ev.Type, ev.Delta = EventProjectionDelta, diffSnapshots(*prev, snap)
	}
	if ev.Type == EventSnapshot || !ev.Delta.isZero() {
		ev = s.events.publish(ev)
	}

	log.Info().
		Str("trigger", trigger).
		Str("scenario", snap.Scenario).
		Int("runs", snap.Runs).
		Int64("event", ev.ID).
		Dur("elapsed", time.Since(start)).
		Msg("projection complete")
	return nil
}

func (s *Service) project() (*pipeline.RecordedResult, error) {
	scenario, err := s.cfg.Load()
	if err != nil {
		return nil, fmt.Errorf("loading scenario: %w", err)
	}

	var h *store.History
	if s.cfg.RecordHistory {
		hist, err := pipeline.OpenHistory()
		if err != nil {
			log.Warn().Err(err).Msg("history unavailable, projection will not be recorded")
		} else {
			defer func() { _ = hist.Close() }()
			h = hist
		}
	}

	return pipeline.RunWithHistory(scenario, pipeline.Options{
		Runs:    s.cfg.Runs,
		Workers: s.cfg.Workers,
		Seed:    s.cfg.Seed,
	}, h)
}

func snapshotFromResult(out *pipeline.RecordedResult, at time.Time) Snapshot {
	sum := out.Summary
	snap := Snapshot{
		At:           at,
		Scenario:     out.Result.Scenario.Name,
		Runs:         sum.Runs,
		Weeks:        sum.Weeks,
		Seed:         sum.Seed,
		InitialTotal: sum.InitialTotal,
		LiquidMean:   sum.Liquid.Mean,
		LiquidStdDev: sum.Liquid.StdDev,
		PShortfall:   sum.Liquid.FractionBelow,
		TotalMean:    sum.Total.Mean,
		TotalStdDev:  sum.Total.StdDev,
		PLoss:        sum.Total.FractionBelow,
		Accounts:     make(map[string]AccountSnapshot, len(sum.Accounts)),
		RecordID:     out.RecordID,
	}
	for a, st := range sum.Accounts {
		snap.Accounts[a.Key()] = AccountSnapshot{
			Mean: st.Mean, StdDev: st.StdDev,
			P10: st.P10, P50: st.P50, P90: st.P90,
		}
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		LiquidMean: curr.LiquidMean - prev.LiquidMean,
		TotalMean:  curr.TotalMean - prev.TotalMean,
		PShortfall: curr.PShortfall - prev.PShortfall,
		PLoss:      curr.PLoss - prev.PLoss,
	}
}

func (s *Service) snapshotStatus() Status {
	events, subs := s.events.counts()

	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{
		StartedAt:       s.startedAt,
		LastRunAt:       s.lastRunAt,
		Schedule:        s.cfg.Schedule,
		RunCount:        s.runCount,
		LastError:       s.lastError,
		EventCount:      events,
		SubscriberCount: subs,
	}
	if s.snapshot != nil {
		st.Summary = *s.snapshot
	}
	if s.sched != nil {
		st.NextRunAt = s.sched.Entry(s.entry).Next
	}
	return st
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.events.recent())
}

// handleReproject runs a projection now and answers with the new status.
func (s *Service) handleReproject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.reproject("api"); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, s.snapshotStatus())
}
