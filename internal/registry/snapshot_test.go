package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardstone/wardstone/internal/models"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := New(nil)
	_, err := src.Add(AddRequest{Name: "Hub", Host: "play.example.com", Tags: []string{"production"}})
	require.NoError(t, err)
	_, err = src.Add(AddRequest{Name: "Staging", Host: "staging.example.net"})
	require.NoError(t, err)

	snapshot := src.Export()
	require.Len(t, snapshot.Servers, 2)
	assert.False(t, snapshot.ExportedAt.IsZero())

	dst := New(nil)
	results := dst.Import(snapshot.Servers, false)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.True(t, res.Success)
		assert.NotEmpty(t, res.ServerID)
	}

	servers, summary := dst.List(models.ListFilter{})
	assert.Len(t, servers, 2)
	// Imported servers start fresh: unchecked, no inherited runtime state.
	assert.Equal(t, 2, summary.Unknown)
}

func TestImportPartialFailure(t *testing.T) {
	r := New(nil)

	results := r.Import([]models.ServerConfig{
		{Name: "Valid", Host: "play.example.com"},
		{Name: "", Host: "play.example.com"},
		{Name: "NoHost"},
	}, false)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)
	assert.False(t, results[2].Success)

	servers, _ := r.List(models.ListFilter{})
	assert.Len(t, servers, 1)
}

func TestImportOverwrite(t *testing.T) {
	r := New(nil)
	srv, err := r.Add(AddRequest{Name: "Hub", Host: "play.example.com"})
	require.NoError(t, err)

	require.NoError(t, r.RecordResult(srv.ID, models.PollResult{Online: true}, nil))

	incoming := models.ServerConfig{
		ID:          srv.ID,
		Name:        "Hub Renamed",
		Host:        "new.example.com",
		Port:        25570,
		Description: "moved",
	}

	// Without overwrite the taken id is rejected.
	results := r.Import([]models.ServerConfig{incoming}, false)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)

	// With overwrite the config is replaced but identity and runtime state survive.
	results = r.Import([]models.ServerConfig{incoming}, true)
	require.Len(t, results, 1)
	require.True(t, results[0].Success)
	assert.Equal(t, srv.ID, results[0].ServerID)

	got, err := r.Get(srv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hub Renamed", got.Name)
	assert.Equal(t, "new.example.com", got.Host)
	assert.Equal(t, models.StatusOnline, got.Status)
	assert.NotNil(t, got.LastCheck)

	state, err := r.State(srv.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Statistics.TotalChecks)
}

func TestAnalytics(t *testing.T) {
	r := New(nil)
	srv, err := r.Add(AddRequest{Name: "Hub", Host: "play.example.com"})
	require.NoError(t, err)

	now := time.Now()
	checks := []models.PollResult{
		{Online: true, LatencyMs: 100, Players: models.Players{Online: 10}, CheckedAt: now.Add(-3 * time.Hour)},
		{Online: true, LatencyMs: 300, Players: models.Players{Online: 30}, CheckedAt: now.Add(-2 * time.Hour)},
		{Online: false, CheckedAt: now.Add(-1 * time.Hour)},
		// Outside a 24h window when querying 30m.
		{Online: true, LatencyMs: 50, Players: models.Players{Online: 5}, CheckedAt: now.Add(-10 * time.Minute)},
	}
	for _, check := range checks {
		require.NoError(t, r.RecordResult(srv.ID, check, nil))
	}

	analytics, _, err := r.Analytics(srv.ID, "24h")
	require.NoError(t, err)
	assert.Equal(t, 4, analytics.Checks)
	assert.InDelta(t, 75.0, analytics.UptimePercent, 1e-9)
	assert.InDelta(t, 150.0, analytics.AvgLatencyMs, 1e-9) // (100+300+50)/3
	assert.Equal(t, 300, analytics.MaxLatencyMs)
	assert.Equal(t, 30, analytics.PeakPlayers)

	analytics, _, err = r.Analytics(srv.ID, "30m")
	require.NoError(t, err)
	assert.Equal(t, 1, analytics.Checks)
	assert.InDelta(t, 100.0, analytics.UptimePercent, 1e-9)

	_, _, err = r.Analytics("nope", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnalyticsRecommendations(t *testing.T) {
	r := New(nil)
	srv, err := r.Add(AddRequest{Name: "Hub", Host: "play.example.com"})
	require.NoError(t, err)

	// Monitoring disabled and no history yet.
	_, recs, err := r.Analytics(srv.ID, "")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	// Flaky server: uptime below 90%.
	for i := 0; i < 10; i++ {
		require.NoError(t, r.RecordResult(srv.ID, models.PollResult{Online: i%2 == 0}, nil))
	}

	_, recs, err = r.Analytics(srv.ID, "24h")
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Contains(t, recs[1], "Uptime")
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"", 24 * time.Hour},
		{"24h", 24 * time.Hour},
		{"30m", 30 * time.Minute},
		{"7d", 7 * 24 * time.Hour},
		{"bogus", 24 * time.Hour},
		{"-5m", 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, _ := parseRange(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImportOverwriteDuringDelete(t *testing.T) {
	resolver := newSlowResolver()
	r := New(resolver)

	srv, err := r.Add(AddRequest{Name: "Hub", Host: "play.example.com"})
	require.NoError(t, err)

	resolver.armed = true

	in := srv
	in.Name = "Imported Hub"

	done := make(chan []models.ImportResult, 1)
	go func() {
		done <- r.Import([]models.ServerConfig{in}, true)
	}()

	// Delete the server while the import is stuck in the host lookup.
	<-resolver.entered
	require.NoError(t, r.Delete(srv.ID))
	close(resolver.release)

	results := <-done
	require.Len(t, results, 1)
	require.True(t, results[0].Success, results[0].Error)

	// The deleted id stays gone; the import landed as a fresh server whose
	// monitoring record exists alongside the config.
	_, err = r.Get(srv.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := r.Get(results[0].ServerID)
	require.NoError(t, err)
	assert.Equal(t, "Imported Hub", got.Name)

	_, err = r.State(results[0].ServerID)
	require.NoError(t, err)
	require.NoError(t, r.RecordResult(results[0].ServerID, models.PollResult{Online: true}, nil))
}
