// Package registry holds the in-memory state of all monitored servers: their
// configuration plus the one-to-one monitoring record (bounded check history,
// bounded alert list and running statistics).
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wardstone/wardstone/internal/models"
)

// CountryResolver annotates a host with an ISO country code. A nil resolver
// disables annotation. Lookups may block on DNS and are never called while the
// registry lock is held.
type CountryResolver interface {
	CountryForHost(host string) string
}

// Bounds of the per-server monitoring record.
const (
	maxHistory = 1000
	maxAlerts  = 100
)

// record is the monitoring state kept for one server. It is created together
// with the server config and discarded together with it.
type record struct {
	history []models.CheckRecord
	alerts  []models.Alert // most recent first
	stats   models.Statistics
}

// Registry is the single shared store of server configs and monitoring
// records. All access goes through one RWMutex; entries are keyed by the
// immutable server id.
type Registry struct {
	mu      sync.RWMutex
	servers map[string]*models.ServerConfig
	records map[string]*record
	geo     CountryResolver
}

// New creates an empty registry. The country resolver may be nil, which
// disables country annotation.
func New(geo CountryResolver) *Registry {
	return &Registry{
		servers: make(map[string]*models.ServerConfig),
		records: make(map[string]*record),
		geo:     geo,
	}
}

// AddRequest is the input for registering a server. Name and Host are
// required; everything else falls back to defaults.
type AddRequest struct {
	Name        string
	Host        string
	Port        int
	Description string
	Tags        []string
	Query       models.QueryProtocol
	Monitoring  *models.MonitoringSettings
	Rcon        *models.RconConfig
	Backup      *models.BackupConfig
}

// Add registers a new server and creates its empty monitoring record.
// Starting the polling loop is the caller's responsibility.
func (r *Registry) Add(req AddRequest) (models.ServerConfig, error) {
	if strings.TrimSpace(req.Name) == "" {
		return models.ServerConfig{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(req.Host) == "" {
		return models.ServerConfig{}, fmt.Errorf("%w: host is required", ErrValidation)
	}
	if req.Port < 0 || req.Port > 65535 {
		return models.ServerConfig{}, fmt.Errorf("%w: port %d out of range", ErrValidation, req.Port)
	}

	srv := models.ServerConfig{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Host:        strings.TrimSpace(req.Host),
		Port:        req.Port,
		Description: req.Description,
		Tags:        append([]string(nil), req.Tags...),
		Query:       req.Query,
		Monitoring:  models.DefaultMonitoringSettings(),
		Status:      models.StatusUnknown,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if srv.Port == 0 {
		srv.Port = models.DefaultPort
	}
	if srv.Tags == nil {
		srv.Tags = []string{}
	}
	if srv.Query == "" {
		srv.Query = models.QueryREST
	}
	if req.Monitoring != nil {
		srv.Monitoring = *req.Monitoring
	}
	if srv.Monitoring.Interval <= 0 {
		srv.Monitoring.Interval = models.DefaultMonitoringSettings().Interval
	}
	if req.Rcon != nil {
		srv.Rcon = *req.Rcon
	}
	if req.Backup != nil {
		srv.Backup = *req.Backup
	}

	srv.CountryCode = r.countryFor(srv.Host)

	r.mu.Lock()
	r.servers[srv.ID] = &srv
	r.records[srv.ID] = &record{}
	r.mu.Unlock()

	log.Info().
		Str("server_id", srv.ID).
		Str("name", srv.Name).
		Str("host", srv.Host).
		Int("port", srv.Port).
		Msg("Server registered")

	return cloneServer(&srv), nil
}

// Get returns a copy of the server config for the given id.
func (r *Registry) Get(id string) (models.ServerConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	srv, ok := r.servers[id]
	if !ok {
		return models.ServerConfig{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return cloneServer(srv), nil
}

// List returns all servers matching the filter (conjunctive) together with a
// status summary of the matched set, sorted by name.
func (r *Registry) List(filter models.ListFilter) ([]models.ServerConfig, models.ListSummary) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	servers := make([]models.ServerConfig, 0, len(r.servers))
	var summary models.ListSummary

	for _, srv := range r.servers {
		if !matches(srv, filter) {
			continue
		}

		servers = append(servers, cloneServer(srv))

		summary.Total++
		switch srv.Status {
		case models.StatusOnline:
			summary.Online++
		case models.StatusOffline:
			summary.Offline++
		default:
			summary.Unknown++
		}
	}

	sort.Slice(servers, func(i, j int) bool { return servers[i].Name < servers[j].Name })

	return servers, summary
}

// matches reports whether a server passes every provided filter field.
func matches(srv *models.ServerConfig, filter models.ListFilter) bool {
	if filter.Status != "" && srv.Status != filter.Status {
		return false
	}

	if filter.Tag != "" {
		found := false
		for _, tag := range srv.Tags {
			if tag == filter.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(srv.Name), needle) &&
			!strings.Contains(strings.ToLower(srv.Host), needle) {
			return false
		}
	}

	return true
}

// Update merges the non-nil fields of upd over the stored config. The id is
// never part of the merge. It reports whether the monitoring settings changed
// in a way that requires the polling loop to be restarted.
func (r *Registry) Update(id string, upd models.ServerUpdate) (models.ServerConfig, bool, error) {
	var host, country string
	if upd.Host != nil {
		host = strings.TrimSpace(*upd.Host)
		if host == "" {
			return models.ServerConfig{}, false, fmt.Errorf("%w: host cannot be empty", ErrValidation)
		}
		// DNS may block; resolve outside the lock.
		country = r.countryFor(host)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	srv, ok := r.servers[id]
	if !ok {
		return models.ServerConfig{}, false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return models.ServerConfig{}, false, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		srv.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Host != nil {
		srv.Host = host
		srv.CountryCode = country
	}
	if upd.Port != nil {
		if *upd.Port <= 0 || *upd.Port > 65535 {
			return models.ServerConfig{}, false, fmt.Errorf("%w: port %d out of range", ErrValidation, *upd.Port)
		}
		srv.Port = *upd.Port
	}
	if upd.Description != nil {
		srv.Description = *upd.Description
	}
	if upd.Tags != nil {
		srv.Tags = append([]string(nil), (*upd.Tags)...)
	}
	if upd.Query != nil {
		srv.Query = *upd.Query
	}
	if upd.Rcon != nil {
		srv.Rcon = *upd.Rcon
	}
	if upd.Backup != nil {
		srv.Backup = *upd.Backup
	}

	monitoringChanged := false
	if upd.Monitoring != nil {
		next := *upd.Monitoring
		if next.Interval <= 0 {
			next.Interval = srv.Monitoring.Interval
		}
		monitoringChanged = next.Enabled != srv.Monitoring.Enabled || next.Interval != srv.Monitoring.Interval
		srv.Monitoring = next
	}

	srv.UpdatedAt = time.Now()

	return cloneServer(srv), monitoringChanged, nil
}

// SetMonitoringEnabled flips only the monitoring enabled flag, leaving the
// rest of the settings untouched. Used by the bulk start/stop actions.
func (r *Registry) SetMonitoringEnabled(id string, enabled bool) (models.ServerConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	srv, ok := r.servers[id]
	if !ok {
		return models.ServerConfig{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	srv.Monitoring.Enabled = enabled
	srv.UpdatedAt = time.Now()

	return cloneServer(srv), nil
}

// Delete removes the server config together with its monitoring record.
// Stopping the polling loop is the caller's responsibility.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.servers[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(r.servers, id)
	delete(r.records, id)

	log.Info().Str("server_id", id).Msg("Server deleted")

	return nil
}

// RecordResult stores one completed check: it updates the derived status and
// lastCheck fields, appends the history entry (FIFO bounded), updates the
// running statistics and prepends any generated alerts (bounded, newest
// first). This is the only path that mutates derived status fields.
//
// A result for an id that is no longer registered is dropped with ErrNotFound;
// this is how a best-effort in-flight check after delete resolves.
func (r *Registry) RecordResult(id string, result models.PollResult, alerts []models.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	srv, ok := r.servers[id]
	rec, recOK := r.records[id]
	if !ok || !recOK {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	checkedAt := result.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now()
	}

	if result.Online {
		srv.Status = models.StatusOnline
	} else {
		srv.Status = models.StatusOffline
	}
	srv.LastCheck = &checkedAt

	rec.history = append(rec.history, models.CheckRecord{
		Timestamp: checkedAt,
		Online:    result.Online,
		Players:   result.Players,
		LatencyMs: result.LatencyMs,
		Version:   result.Version,
		Software:  result.Software,
		Error:     result.Error,
	})
	if len(rec.history) > maxHistory {
		rec.history = rec.history[len(rec.history)-maxHistory:]
	}

	online := 0.0
	if result.Online {
		online = 1.0
	}
	n := float64(rec.stats.TotalChecks + 1)
	rec.stats.Uptime = (rec.stats.Uptime*(n-1) + online) / n
	rec.stats.TotalChecks++

	if len(alerts) > 0 {
		rec.alerts = append(append([]models.Alert(nil), alerts...), rec.alerts...)
		if len(rec.alerts) > maxAlerts {
			rec.alerts = rec.alerts[:maxAlerts]
		}
	}

	return nil
}

// State returns a copy of the server's monitoring record.
func (r *Registry) State(id string) (models.MonitoringState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return models.MonitoringState{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return models.MonitoringState{
		History:    append([]models.CheckRecord(nil), rec.history...),
		Alerts:     append([]models.Alert(nil), rec.alerts...),
		Statistics: rec.stats,
	}, nil
}

// Alerts returns up to limit alerts (newest first, 0 means all), optionally
// filtered by severity, plus the severity summary over all stored alerts.
func (r *Registry) Alerts(id string, limit int, severity models.AlertSeverity) ([]models.Alert, models.AlertSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, models.AlertSummary{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var summary models.AlertSummary
	alerts := make([]models.Alert, 0, len(rec.alerts))

	for _, alert := range rec.alerts {
		summary.Total++
		switch alert.Severity {
		case models.SeverityCritical:
			summary.Critical++
		case models.SeverityWarning:
			summary.Warning++
		case models.SeverityInfo:
			summary.Info++
		}
		if !alert.Acknowledged {
			summary.Unacknowledged++
		}

		if severity != "" && alert.Severity != severity {
			continue
		}
		if limit > 0 && len(alerts) >= limit {
			continue
		}
		alerts = append(alerts, alert)
	}

	return alerts, summary, nil
}

// Acknowledge marks one alert as acknowledged.
func (r *Registry) Acknowledge(serverID, alertID string) (models.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[serverID]
	if !ok {
		return models.Alert{}, fmt.Errorf("%w: %s", ErrNotFound, serverID)
	}

	for i := range rec.alerts {
		if rec.alerts[i].ID == alertID {
			rec.alerts[i].Acknowledged = true
			return rec.alerts[i], nil
		}
	}

	return models.Alert{}, fmt.Errorf("%w: alert %s", ErrNotFound, alertID)
}

// IDs returns the ids of all registered servers.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.servers))
	for id := range r.servers {
		ids = append(ids, id)
	}

	return ids
}

// countryFor resolves the country code for a host, tolerating a nil resolver.
// Must not be called with r.mu held.
func (r *Registry) countryFor(host string) string {
	if r.geo == nil {
		return ""
	}

	return r.geo.CountryForHost(host)
}

// cloneServer copies a config so callers never share mutable state with the
// registry maps.
func cloneServer(srv *models.ServerConfig) models.ServerConfig {
	out := *srv
	out.Tags = append([]string(nil), srv.Tags...)
	if srv.LastCheck != nil {
		t := *srv.LastCheck
		out.LastCheck = &t
	}

	return out
}
