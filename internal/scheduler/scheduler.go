// Package scheduler runs the recurring status checks: one independent timer
// loop per monitored server, plus on-demand manual checks through the same
// pipeline.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wardstone/wardstone/internal/alerting"
	"github.com/wardstone/wardstone/internal/checker"
	"github.com/wardstone/wardstone/internal/models"
	"github.com/wardstone/wardstone/internal/notify"
	"github.com/wardstone/wardstone/internal/registry"
)

// task is one server's polling loop handle.
type task struct {
	stop chan struct{}
	done chan struct{}
}

// Scheduler owns the per-server polling loops. Loops are keyed by server id;
// stopping one server never affects the others.
type Scheduler struct {
	mu          sync.Mutex
	tasks       map[string]*task
	registry    *registry.Registry
	checkers    *checker.Set
	engine      *alerting.Engine
	notifier    *notify.Webhook
	timeout     time.Duration
	minInterval time.Duration
}

// New creates a scheduler. The notifier may be nil. Loops never poll more
// often than minInterval (0 disables the floor).
func New(reg *registry.Registry, checkers *checker.Set, engine *alerting.Engine, notifier *notify.Webhook, timeout, minInterval time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Scheduler{
		tasks:       make(map[string]*task),
		registry:    reg,
		checkers:    checkers,
		engine:      engine,
		notifier:    notifier,
		timeout:     timeout,
		minInterval: minInterval,
	}
}

// Start launches the polling loop for a server. It is a no-op when monitoring
// is disabled for the server, when the id is unknown, or when a loop is
// already running.
func (s *Scheduler) Start(id string) {
	srv, err := s.registry.Get(id)
	if err != nil {
		log.Warn().Str("server_id", id).Msg("Cannot start monitoring for unknown server")
		return
	}

	if !srv.Monitoring.Enabled {
		return
	}

	interval := time.Duration(srv.Monitoring.Interval) * time.Second
	if interval < s.minInterval {
		interval = s.minInterval
	}

	s.mu.Lock()
	if _, running := s.tasks[id]; running {
		s.mu.Unlock()
		return
	}

	t := &task{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	s.tasks[id] = t
	s.mu.Unlock()

	go s.loop(id, interval, t)

	log.Info().
		Str("server_id", id).
		Dur("interval", interval).
		Msg("Monitoring started")
}

// Stop cancels the polling loop for a server. Idempotent: stopping a server
// that is not running is a no-op. A check already in flight may still write
// one final record; results for deleted servers are dropped by the registry.
func (s *Scheduler) Stop(id string) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	close(t.stop)
	<-t.done

	log.Info().Str("server_id", id).Msg("Monitoring stopped")
}

// Restart stops and, if still enabled, starts the loop with the server's
// current settings.
func (s *Scheduler) Restart(id string) {
	s.Stop(id)
	s.Start(id)
}

// IsRunning reports whether a polling loop exists for the server.
func (s *Scheduler) IsRunning(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.tasks[id]

	return ok
}

// StopAll cancels every polling loop; used during shutdown.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = make(map[string]*task)
	s.mu.Unlock()

	for _, t := range tasks {
		close(t.stop)
	}
	for _, t := range tasks {
		<-t.done
	}
}

// loop fires a check every interval until stopped. The check runs on the loop
// goroutine, so a slow check simply swallows the missed ticks instead of
// piling up concurrent queries against the same host, and history stays in
// completion order.
func (s *Scheduler) loop(id string, interval time.Duration, t *task) {
	defer close(t.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			s.runCheck(context.Background(), id)
		}
	}
}

// ManualCheck performs one check outside the timer cadence, records it like
// any scheduled check, and returns the result to the caller.
func (s *Scheduler) ManualCheck(ctx context.Context, id string) (models.PollResult, error) {
	if _, err := s.registry.Get(id); err != nil {
		return models.PollResult{}, err
	}

	return s.runCheck(ctx, id), nil
}

// runCheck executes the full pipeline for one check: query the server,
// convert a transport failure into an offline result, record it, evaluate
// alerts and hand them to the notifier.
func (s *Scheduler) runCheck(ctx context.Context, id string) models.PollResult {
	srv, err := s.registry.Get(id)
	if err != nil {
		// Deleted while the tick was pending.
		return models.PollResult{}
	}

	checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.checkers.For(srv.Query).Check(checkCtx, srv.Host, srv.Port)
	if err != nil {
		// A failed check is data, not an error: it must never halt the loop.
		result = &models.PollResult{
			Online:    false,
			Error:     err.Error(),
			CheckedAt: time.Now(),
		}

		log.Debug().
			Err(err).
			Str("server_id", id).
			Str("host", srv.Host).
			Int("port", srv.Port).
			Msg("Status check failed")
	}

	if result.CheckedAt.IsZero() {
		result.CheckedAt = time.Now()
	}

	alerts := s.engine.Evaluate(&srv, result)

	if err := s.registry.RecordResult(id, *result, alerts); err != nil {
		if !errors.Is(err, registry.ErrNotFound) {
			log.Error().Err(err).Str("server_id", id).Msg("Failed to record check result")
		}
		return *result
	}

	log.Debug().
		Str("server_id", id).
		Bool("online", result.Online).
		Int("latency_ms", result.LatencyMs).
		Int("players", result.Players.Online).
		Int("alerts", len(alerts)).
		Msg("Check recorded")

	if s.notifier.Enabled() {
		for _, alert := range alerts {
			go s.notifier.Notify(context.Background(), srv, alert)
		}
	}

	return *result
}
