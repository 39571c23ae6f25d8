// Package alerting evaluates poll results against per-server alert settings.
package alerting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wardstone/wardstone/internal/models"
)

// Engine produces alerts from poll results. It is stateless: each evaluation
// looks only at one result and one server's settings, and the rules are
// independent, so a single poll can raise more than one alert.
type Engine struct{}

// New creates an alert engine.
func New() *Engine {
	return &Engine{}
}

// Evaluate applies the enabled alert rules to a single poll result.
func (e *Engine) Evaluate(server *models.ServerConfig, result *models.PollResult) []models.Alert {
	var alerts []models.Alert

	toggles := server.Monitoring.Alerts
	limits := server.Monitoring.Thresholds

	if toggles.Offline && !result.Online {
		msg := fmt.Sprintf("Server %q (%s:%d) is not responding", server.Name, server.Host, server.Port)
		if result.Error != "" {
			msg = fmt.Sprintf("%s: %s", msg, result.Error)
		}

		alerts = append(alerts, newAlert(models.RuleOffline, models.SeverityCritical, "Server Offline", msg))
	}

	if toggles.HighLatency && result.LatencyMs > 0 && result.LatencyMs > limits.MaxLatencyMs {
		msg := fmt.Sprintf("Latency %dms exceeds the configured maximum of %dms",
			result.LatencyMs, limits.MaxLatencyMs)

		alerts = append(alerts, newAlert(models.RuleHighLatency, models.SeverityWarning, "High Latency", msg))
	}

	if toggles.PlayerCount && result.Players.Online > limits.MaxPlayers {
		msg := fmt.Sprintf("%d players online, above the configured maximum of %d",
			result.Players.Online, limits.MaxPlayers)

		alerts = append(alerts, newAlert(models.RulePlayerCount, models.SeverityInfo, "Player Count Exceeded", msg))
	}

	return alerts
}

func newAlert(rule string, severity models.AlertSeverity, title, message string) models.Alert {
	return models.Alert{
		ID:        uuid.NewString(),
		Rule:      rule,
		Severity:  severity,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
}
