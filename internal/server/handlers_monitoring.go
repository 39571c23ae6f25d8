package server

import (
	"net/http"
	"strconv"

	"github.com/wardstone/wardstone/internal/models"
	"github.com/wardstone/wardstone/internal/vars"
)

// handleManualCheck performs one check outside the timer cadence and returns
// the result together with the refreshed server state.
func (s *Server) handleManualCheck(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	result, err := s.scheduler.ManualCheck(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	srv, err := s.registry.Get(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"serverId":    id,
		"checkResult": result,
		"server":      srv,
	})
}

// handleAlerts lists a server's alerts, newest first, optionally limited and
// filtered by severity.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	query := r.URL.Query()

	severity := models.AlertSeverity(query.Get("severity"))
	switch severity {
	case "", models.SeverityCritical, models.SeverityWarning, models.SeverityInfo:
	default:
		writeError(w, http.StatusBadRequest, "invalid severity filter", map[string]any{
			"valid_severities": []models.AlertSeverity{models.SeverityCritical, models.SeverityWarning, models.SeverityInfo},
		})
		return
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		limit = parsed
	}

	alerts, summary, err := s.registry.Alerts(id, limit, severity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"alerts":  alerts,
		"summary": summary,
	})
}

// handleAcknowledgeAlert marks one alert as acknowledged.
func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := s.registry.Acknowledge(r.PathValue("id"), r.PathValue("alert"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"alert":   alert,
	})
}

// handleStats returns the cross-server status summary.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	_, summary := s.registry.List(models.ListFilter{})

	monitored := 0
	for _, id := range s.registry.IDs() {
		if s.scheduler.IsRunning(id) {
			monitored++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary":   summary,
		"monitored": monitored,
	})
}

// handleVersion returns the build metadata.
func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"build": vars.Info()})
}

// handleHealth is a liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
