package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/wardstone/wardstone/internal/models"
)

// bulkWorkers bounds how many status checks a single bulk request runs at once.
const bulkWorkers = 10

// bulkRequest is the body of POST /api/servers/bulk.
type bulkRequest struct {
	Action    models.BulkAction    `json:"action"`
	ServerIDs []string             `json:"serverIds"`
	Config    *models.ServerUpdate `json:"config"`
}

// handleBulk applies one action across a list of servers with best-effort
// semantics: one server failing never aborts the rest.
func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if len(req.ServerIDs) == 0 {
		writeError(w, http.StatusBadRequest, "serverIds is required", nil)
		return
	}

	validActions := []models.BulkAction{
		models.BulkCheck, models.BulkUpdate, models.BulkStartMonitoring, models.BulkStopMonitoring,
	}

	switch req.Action {
	case models.BulkCheck:
	case models.BulkUpdate:
		if req.Config == nil {
			writeError(w, http.StatusBadRequest, "config is required for the update action", nil)
			return
		}
	case models.BulkStartMonitoring, models.BulkStopMonitoring:
	default:
		writeError(w, http.StatusBadRequest, "invalid action", map[string]any{
			"valid_actions": validActions,
		})
		return
	}

	var results []models.BulkResult
	if req.Action == models.BulkCheck {
		results = s.bulkCheck(r.Context(), req.ServerIDs)
	} else {
		results = make([]models.BulkResult, 0, len(req.ServerIDs))
		for _, id := range req.ServerIDs {
			results = append(results, s.bulkOne(id, req))
		}
	}

	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
		}
	}

	log.Info().
		Str("action", string(req.Action)).
		Int("total", len(results)).
		Int("succeeded", succeeded).
		Msg("Bulk operation finished")

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"summary": map[string]int{
			"total":     len(results),
			"succeeded": succeeded,
			"failed":    len(results) - succeeded,
		},
	})
}

// bulkCheck fans manual checks out over a bounded worker pool, keeping the
// results in input order.
func (s *Server) bulkCheck(ctx context.Context, ids []string) []models.BulkResult {
	results := make([]models.BulkResult, len(ids))
	jobs := make(chan int, len(ids))
	var wg sync.WaitGroup

	workers := bulkWorkers
	if len(ids) < workers {
		workers = len(ids)
	}

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				id := ids[idx]
				result := models.BulkResult{ServerID: id}

				check, err := s.scheduler.ManualCheck(ctx, id)
				if err != nil {
					result.Error = err.Error()
				} else {
					result.Success = true
					if !check.Online && check.Error != "" {
						result.Error = fmt.Sprintf("server offline: %s", check.Error)
					}
				}

				results[idx] = result
			}
		}()
	}

	for idx := range ids {
		jobs <- idx
	}
	close(jobs)

	wg.Wait()

	return results
}

// bulkOne applies a non-check bulk action to a single server.
func (s *Server) bulkOne(id string, req bulkRequest) models.BulkResult {
	result := models.BulkResult{ServerID: id}

	switch req.Action {
	case models.BulkUpdate:
		_, monitoringChanged, err := s.registry.Update(id, *req.Config)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		if monitoringChanged {
			s.scheduler.Restart(id)
		}

	case models.BulkStartMonitoring:
		if _, err := s.registry.SetMonitoringEnabled(id, true); err != nil {
			result.Error = err.Error()
			return result
		}
		s.scheduler.Start(id)

	case models.BulkStopMonitoring:
		if _, err := s.registry.SetMonitoringEnabled(id, false); err != nil {
			result.Error = err.Error()
			return result
		}
		s.scheduler.Stop(id)
	}

	result.Success = true

	return result
}

// handleExport serves a downloadable JSON snapshot of all server configs.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if format := r.URL.Query().Get("format"); format != "" && format != "json" {
		writeError(w, http.StatusBadRequest, "unsupported export format", map[string]any{
			"valid_formats": []string{"json"},
		})
		return
	}

	snapshot := s.registry.Export()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="wardstone-servers.json"`)
	writeSnapshot(w, snapshot)
}

// importRequest is the body of POST /api/import.
type importRequest struct {
	Servers   []models.ServerConfig `json:"servers"`
	Overwrite bool                  `json:"overwrite"`
}

// handleImport registers the posted servers with per-item results and
// reconciles each one's polling loop with its imported settings.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if len(req.Servers) == 0 {
		writeError(w, http.StatusBadRequest, "servers is required", nil)
		return
	}

	results := s.registry.Import(req.Servers, req.Overwrite)

	imported := 0
	for _, res := range results {
		if !res.Success {
			continue
		}
		imported++

		s.scheduler.Stop(res.ServerID)
		if srv, err := s.registry.Get(res.ServerID); err == nil && srv.Monitoring.Enabled {
			s.scheduler.Start(res.ServerID)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"imported": imported,
		"failed":   len(results) - imported,
		"results":  results,
	})
}
