package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/wardstone/wardstone/internal/models"
	"github.com/wardstone/wardstone/internal/registry"
)

// addServerRequest is the body of POST /api/server/add. The host may be given
// as "ip" (original clients) or "host".
type addServerRequest struct {
	Name        string                     `json:"name"`
	IP          string                     `json:"ip"`
	Host        string                     `json:"host"`
	Port        int                        `json:"port"`
	Description string                     `json:"description"`
	Tags        []string                   `json:"tags"`
	Query       models.QueryProtocol       `json:"query"`
	Monitoring  *models.MonitoringSettings `json:"monitoring"`
	Rcon        *models.RconConfig         `json:"rcon"`
	Backup      *models.BackupConfig       `json:"backup"`
}

// handleAddServer registers a new server and starts its polling loop when
// monitoring is enabled.
func (s *Server) handleAddServer(w http.ResponseWriter, r *http.Request) {
	var req addServerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	host := req.Host
	if host == "" {
		host = req.IP
	}

	srv, err := s.registry.Add(registry.AddRequest{
		Name:        req.Name,
		Host:        host,
		Port:        req.Port,
		Description: req.Description,
		Tags:        req.Tags,
		Query:       req.Query,
		Monitoring:  req.Monitoring,
		Rcon:        req.Rcon,
		Backup:      req.Backup,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if srv.Monitoring.Enabled {
		s.scheduler.Start(srv.ID)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"serverId": srv.ID,
		"server":   srv,
	})
}

// handleListServers returns all servers matching the query filters plus a
// status summary.
func (s *Server) handleListServers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	status := models.ServerStatus(query.Get("status"))
	switch status {
	case "", models.StatusUnknown, models.StatusOnline, models.StatusOffline:
	default:
		writeError(w, http.StatusBadRequest, "invalid status filter", map[string]any{
			"valid_statuses": []models.ServerStatus{models.StatusUnknown, models.StatusOnline, models.StatusOffline},
		})
		return
	}

	servers, summary := s.registry.List(models.ListFilter{
		Tag:    query.Get("tag"),
		Status: status,
		Search: query.Get("search"),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"servers": servers,
		"summary": summary,
	})
}

// handleGetServer returns the config, monitoring record, time-range analytics
// and recommendations for one server.
func (s *Server) handleGetServer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	srv, err := s.registry.Get(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	state, err := s.registry.State(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	analytics, recs, err := s.registry.Analytics(id, r.URL.Query().Get("timeRange"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"server":          srv,
		"monitoring":      state,
		"analytics":       analytics,
		"recommendations": recs,
		"isMonitored":     s.scheduler.IsRunning(id),
	})
}

// handleUpdateServer merges a partial update and restarts the polling loop
// when the monitoring settings changed.
func (s *Server) handleUpdateServer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var upd models.ServerUpdate
	if !s.decodeBody(w, r, &upd) {
		return
	}

	srv, monitoringChanged, err := s.registry.Update(id, upd)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if monitoringChanged {
		s.scheduler.Restart(id)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"server":  srv,
	})
}

// handleDeleteServer stops the polling loop and discards the server together
// with its monitoring record.
func (s *Server) handleDeleteServer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.scheduler.Stop(id)

	if err := s.registry.Delete(id); err != nil {
		writeDomainError(w, err)
		return
	}

	log.Info().Str("server_id", id).Msg("Server deleted via API")

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
