package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardstone/wardstone/internal/alerting"
	"github.com/wardstone/wardstone/internal/checker"
	"github.com/wardstone/wardstone/internal/models"
	"github.com/wardstone/wardstone/internal/registry"
)

// fakeChecker returns queued results in order, repeating the last one.
type fakeChecker struct {
	mu      sync.Mutex
	results []models.PollResult
	err     error
	calls   int
}

func (f *fakeChecker) Check(_ context.Context, _ string, _ int) (*models.PollResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	idx := f.calls - 1
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	result := f.results[idx]

	return &result, nil
}

func (f *fakeChecker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func newTestScheduler(t *testing.T, fake *fakeChecker) (*Scheduler, *registry.Registry) {
	t.Helper()

	reg := registry.New(nil)
	sched := New(reg, checker.NewSet(fake, fake), alerting.New(), nil, time.Second, 0)
	t.Cleanup(sched.StopAll)

	return sched, reg
}

func addServer(t *testing.T, reg *registry.Registry, monitoring models.MonitoringSettings) models.ServerConfig {
	t.Helper()

	srv, err := reg.Add(registry.AddRequest{
		Name:       "Hub",
		Host:       "play.example.com",
		Monitoring: &monitoring,
	})
	require.NoError(t, err)

	return srv
}

func TestManualCheckOffline(t *testing.T) {
	fake := &fakeChecker{results: []models.PollResult{{Online: false}}}
	sched, reg := newTestScheduler(t, fake)

	srv := addServer(t, reg, models.MonitoringSettings{
		Enabled:  true,
		Interval: 60,
		Alerts:   models.AlertToggles{Offline: true},
	})

	result, err := sched.ManualCheck(context.Background(), srv.ID)
	require.NoError(t, err)
	assert.False(t, result.Online)

	got, err := reg.Get(srv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOffline, got.Status)
	require.NotNil(t, got.LastCheck)

	state, err := reg.State(srv.ID)
	require.NoError(t, err)
	require.Len(t, state.Alerts, 1)
	assert.Equal(t, models.SeverityCritical, state.Alerts[0].Severity)
	assert.Equal(t, "Server Offline", state.Alerts[0].Title)
	assert.Equal(t, 1, state.Statistics.TotalChecks)
	assert.Zero(t, state.Statistics.Uptime)
}

func TestManualCheckUptimeSequence(t *testing.T) {
	fake := &fakeChecker{results: []models.PollResult{
		{Online: true, LatencyMs: 40},
		{Online: true, LatencyMs: 45},
		{Online: false},
	}}
	sched, reg := newTestScheduler(t, fake)

	srv := addServer(t, reg, models.MonitoringSettings{Enabled: true, Interval: 60})

	for i := 0; i < 3; i++ {
		_, err := sched.ManualCheck(context.Background(), srv.ID)
		require.NoError(t, err)
	}

	state, err := reg.State(srv.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Statistics.TotalChecks)
	assert.InDelta(t, 2.0/3.0, state.Statistics.Uptime, 1e-9)
	require.Len(t, state.History, 3)
	// History is ordered by completion.
	assert.True(t, state.History[0].Online)
	assert.False(t, state.History[2].Online)
}

func TestManualCheckUnknownServer(t *testing.T) {
	sched, _ := newTestScheduler(t, &fakeChecker{results: []models.PollResult{{Online: true}}})

	_, err := sched.ManualCheck(context.Background(), "nope")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestCheckerFailureBecomesOfflineResult(t *testing.T) {
	fake := &fakeChecker{err: errors.New("connection timed out")}
	sched, reg := newTestScheduler(t, fake)

	srv := addServer(t, reg, models.MonitoringSettings{
		Enabled:  true,
		Interval: 60,
		Alerts:   models.AlertToggles{Offline: true},
	})

	result, err := sched.ManualCheck(context.Background(), srv.ID)
	require.NoError(t, err)
	assert.False(t, result.Online)
	assert.Equal(t, "connection timed out", result.Error)

	state, err := reg.State(srv.ID)
	require.NoError(t, err)
	require.Len(t, state.History, 1)
	assert.Equal(t, "connection timed out", state.History[0].Error)
	require.Len(t, state.Alerts, 1)
	assert.Contains(t, state.Alerts[0].Message, "connection timed out")
}

func TestStartDisabledMonitoringIsNoop(t *testing.T) {
	sched, reg := newTestScheduler(t, &fakeChecker{results: []models.PollResult{{Online: true}}})

	srv := addServer(t, reg, models.MonitoringSettings{Enabled: false, Interval: 60})

	sched.Start(srv.ID)
	assert.False(t, sched.IsRunning(srv.ID))
}

func TestStartStopLifecycle(t *testing.T) {
	sched, reg := newTestScheduler(t, &fakeChecker{results: []models.PollResult{{Online: true}}})

	srv := addServer(t, reg, models.MonitoringSettings{Enabled: true, Interval: 300})

	sched.Start(srv.ID)
	assert.True(t, sched.IsRunning(srv.ID))

	// Starting twice keeps a single loop.
	sched.Start(srv.ID)
	assert.True(t, sched.IsRunning(srv.ID))

	sched.Stop(srv.ID)
	assert.False(t, sched.IsRunning(srv.ID))

	// Stop is idempotent.
	sched.Stop(srv.ID)
	assert.False(t, sched.IsRunning(srv.ID))
}

func TestStartUnknownServerIsNoop(t *testing.T) {
	sched, _ := newTestScheduler(t, &fakeChecker{results: []models.PollResult{{Online: true}}})

	sched.Start("nope")
	assert.False(t, sched.IsRunning("nope"))
}

func TestLoopRecordsChecks(t *testing.T) {
	fake := &fakeChecker{results: []models.PollResult{{Online: true, LatencyMs: 30}}}
	sched, reg := newTestScheduler(t, fake)

	srv := addServer(t, reg, models.MonitoringSettings{Enabled: true, Interval: 1})

	sched.Start(srv.ID)

	require.Eventually(t, func() bool {
		return fake.callCount() >= 2
	}, 5*time.Second, 50*time.Millisecond, "expected the loop to fire at least twice")

	sched.Stop(srv.ID)
	calls := fake.callCount()

	state, err := reg.State(srv.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, state.Statistics.TotalChecks, 2)

	// No further checks after stop.
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, calls, fake.callCount())
}

func TestPerServerIsolation(t *testing.T) {
	fake := &fakeChecker{results: []models.PollResult{{Online: true}}}
	sched, reg := newTestScheduler(t, fake)

	first := addServer(t, reg, models.MonitoringSettings{Enabled: true, Interval: 300})
	second, err := reg.Add(registry.AddRequest{
		Name:       "Survival",
		Host:       "mc.example.net",
		Monitoring: &models.MonitoringSettings{Enabled: true, Interval: 300},
	})
	require.NoError(t, err)

	sched.Start(first.ID)
	sched.Start(second.ID)

	sched.Stop(first.ID)
	assert.False(t, sched.IsRunning(first.ID))
	assert.True(t, sched.IsRunning(second.ID))
}

func TestStartEnforcesIntervalFloor(t *testing.T) {
	fake := &fakeChecker{results: []models.PollResult{{Online: true}}}
	reg := registry.New(nil)
	sched := New(reg, checker.NewSet(fake, fake), alerting.New(), nil, time.Second, 5*time.Second)
	t.Cleanup(sched.StopAll)

	srv := addServer(t, reg, models.MonitoringSettings{Enabled: true, Interval: 1})

	sched.Start(srv.ID)
	require.True(t, sched.IsRunning(srv.ID))

	// The configured 1s cadence is clamped to the 5s floor, so no tick fires
	// within the first 1.5s.
	time.Sleep(1500 * time.Millisecond)
	assert.Zero(t, fake.callCount())
}

func TestResultForDeletedServerIsDropped(t *testing.T) {
	fake := &fakeChecker{results: []models.PollResult{{Online: true}}}
	sched, reg := newTestScheduler(t, fake)

	srv := addServer(t, reg, models.MonitoringSettings{Enabled: true, Interval: 60})
	require.NoError(t, reg.Delete(srv.ID))

	// The pipeline must swallow the missing id, not panic or error out.
	result := sched.runCheck(context.Background(), srv.ID)
	assert.False(t, result.Online)

	_, err := reg.State(srv.ID)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}
