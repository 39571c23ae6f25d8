package alerting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardstone/wardstone/internal/models"
)

func testServer(toggles models.AlertToggles) *models.ServerConfig {
	return &models.ServerConfig{
		ID:   "srv-1",
		Name: "Hub",
		Host: "play.example.com",
		Port: 25565,
		Monitoring: models.MonitoringSettings{
			Enabled:  true,
			Interval: 60,
			Alerts:   toggles,
			Thresholds: models.Thresholds{
				MaxLatencyMs: 200,
				MaxPlayers:   50,
			},
		},
	}
}

func TestEvaluateRules(t *testing.T) {
	tests := []struct {
		name      string
		toggles   models.AlertToggles
		result    models.PollResult
		wantRules []string
	}{
		{
			name:      "offline triggers when enabled",
			toggles:   models.AlertToggles{Offline: true},
			result:    models.PollResult{Online: false},
			wantRules: []string{models.RuleOffline},
		},
		{
			name:      "offline suppressed when disabled",
			toggles:   models.AlertToggles{},
			result:    models.PollResult{Online: false},
			wantRules: nil,
		},
		{
			name:      "online never triggers offline",
			toggles:   models.AlertToggles{Offline: true},
			result:    models.PollResult{Online: true, LatencyMs: 50},
			wantRules: nil,
		},
		{
			name:      "high latency above threshold",
			toggles:   models.AlertToggles{HighLatency: true},
			result:    models.PollResult{Online: true, LatencyMs: 300},
			wantRules: []string{models.RuleHighLatency},
		},
		{
			name:      "latency at threshold does not trigger",
			toggles:   models.AlertToggles{HighLatency: true},
			result:    models.PollResult{Online: true, LatencyMs: 200},
			wantRules: nil,
		},
		{
			name:      "missing latency does not trigger",
			toggles:   models.AlertToggles{HighLatency: true},
			result:    models.PollResult{Online: false},
			wantRules: nil,
		},
		{
			name:      "player count above threshold",
			toggles:   models.AlertToggles{PlayerCount: true},
			result:    models.PollResult{Online: true, Players: models.Players{Online: 51, Max: 100}},
			wantRules: []string{models.RulePlayerCount},
		},
		{
			name:    "independent rules can fire together",
			toggles: models.AlertToggles{Offline: true, HighLatency: true, PlayerCount: true},
			result: models.PollResult{
				Online:    false,
				LatencyMs: 400,
				Players:   models.Players{Online: 60},
			},
			wantRules: []string{models.RuleOffline, models.RuleHighLatency, models.RulePlayerCount},
		},
	}

	engine := New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := engine.Evaluate(testServer(tt.toggles), &tt.result)

			rules := make([]string, 0, len(alerts))
			for _, alert := range alerts {
				rules = append(rules, alert.Rule)
			}

			if tt.wantRules == nil {
				assert.Empty(t, alerts)
			} else {
				assert.Equal(t, tt.wantRules, rules)
			}
		})
	}
}

func TestEvaluateAlertShape(t *testing.T) {
	engine := New()
	srv := testServer(models.AlertToggles{Offline: true})

	alerts := engine.Evaluate(srv, &models.PollResult{Online: false, Error: "connection refused"})
	require.Len(t, alerts, 1)

	alert := alerts[0]
	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, models.SeverityCritical, alert.Severity)
	assert.Equal(t, "Server Offline", alert.Title)
	assert.Contains(t, alert.Message, "connection refused")
	assert.False(t, alert.Acknowledged)
	assert.False(t, alert.CreatedAt.IsZero())
}

func TestEvaluateSeverities(t *testing.T) {
	engine := New()
	srv := testServer(models.AlertToggles{Offline: true, HighLatency: true, PlayerCount: true})

	alerts := engine.Evaluate(srv, &models.PollResult{
		Online:    false,
		LatencyMs: 999,
		Players:   models.Players{Online: 200},
	})
	require.Len(t, alerts, 3)

	bySeverity := map[models.AlertSeverity]int{}
	for _, alert := range alerts {
		bySeverity[alert.Severity]++
	}

	assert.Equal(t, 1, bySeverity[models.SeverityCritical])
	assert.Equal(t, 1, bySeverity[models.SeverityWarning])
	assert.Equal(t, 1, bySeverity[models.SeverityInfo])
}
