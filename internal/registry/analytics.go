package registry

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wardstone/wardstone/internal/models"
)

// Analytics aggregates the history within the given time range ("30m", "24h",
// "7d"; default 24h) and derives rule-based recommendations.
func (r *Registry) Analytics(id, timeRange string) (models.Analytics, []string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	srv, ok := r.servers[id]
	rec, recOK := r.records[id]
	if !ok || !recOK {
		return models.Analytics{}, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	rng, label := parseRange(timeRange)
	cutoff := time.Now().Add(-rng)

	analytics := models.Analytics{TimeRange: label}

	online := 0
	latencySum := 0
	latencyCount := 0

	for _, entry := range rec.history {
		if entry.Timestamp.Before(cutoff) {
			continue
		}

		analytics.Checks++
		if entry.Online {
			online++
		}
		if entry.LatencyMs > 0 {
			latencySum += entry.LatencyMs
			latencyCount++
			if entry.LatencyMs > analytics.MaxLatencyMs {
				analytics.MaxLatencyMs = entry.LatencyMs
			}
		}
		if entry.Players.Online > analytics.PeakPlayers {
			analytics.PeakPlayers = entry.Players.Online
		}
	}

	if analytics.Checks > 0 {
		analytics.UptimePercent = float64(online) / float64(analytics.Checks) * 100
	}
	if latencyCount > 0 {
		analytics.AvgLatencyMs = float64(latencySum) / float64(latencyCount)
	}

	return analytics, recommendations(srv, analytics), nil
}

// parseRange accepts Go durations plus a day suffix ("7d"). Unparseable input
// falls back to 24h.
func parseRange(timeRange string) (time.Duration, string) {
	if timeRange == "" {
		return 24 * time.Hour, "24h"
	}

	if strings.HasSuffix(timeRange, "d") {
		if days, err := strconv.Atoi(strings.TrimSuffix(timeRange, "d")); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour, timeRange
		}
	}

	if d, err := time.ParseDuration(timeRange); err == nil && d > 0 {
		return d, timeRange
	}

	return 24 * time.Hour, "24h"
}

// recommendations turns the aggregated numbers into short operator hints.
func recommendations(srv *models.ServerConfig, analytics models.Analytics) []string {
	recs := []string{}

	if !srv.Monitoring.Enabled {
		recs = append(recs, "Monitoring is disabled for this server; enable it to collect status history.")
	}

	if analytics.Checks == 0 {
		recs = append(recs, "No checks recorded in this time range yet; trigger a manual check or wait for the next poll.")
		return recs
	}

	if analytics.UptimePercent < 90 {
		recs = append(recs, fmt.Sprintf("Uptime is %.1f%% in this range; investigate crashes or network issues on %s.",
			analytics.UptimePercent, srv.Host))
	}

	limit := srv.Monitoring.Thresholds.MaxLatencyMs
	if limit > 0 && analytics.AvgLatencyMs > float64(limit) {
		recs = append(recs, fmt.Sprintf("Average latency %.0fms is above the configured maximum of %dms; consider a closer region or lighter tick load.",
			analytics.AvgLatencyMs, limit))
	}

	maxPlayers := srv.Monitoring.Thresholds.MaxPlayers
	if maxPlayers > 0 && analytics.PeakPlayers > maxPlayers {
		recs = append(recs, fmt.Sprintf("Peak player count %d exceeded the configured maximum of %d; consider raising the slot limit.",
			analytics.PeakPlayers, maxPlayers))
	}

	return recs
}
