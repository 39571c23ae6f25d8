package registry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wardstone/wardstone/internal/models"
)

// Export returns a point-in-time snapshot of all server configs.
// Monitoring records are runtime state and are not part of the snapshot.
func (r *Registry) Export() models.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	servers := make([]models.ServerConfig, 0, len(r.servers))
	for _, srv := range r.servers {
		servers = append(servers, cloneServer(srv))
	}

	sort.Slice(servers, func(i, j int) bool { return servers[i].Name < servers[j].Name })

	return models.Snapshot{
		ExportedAt: time.Now(),
		Servers:    servers,
	}
}

// Import registers the given servers, one result per entry; a failing entry
// never aborts the rest. An entry whose id is already registered fails unless
// overwrite is set, in which case its config is replaced in place and its
// monitoring record kept. Entries without an id (or with an unknown one) are
// registered as new servers with a fresh id and empty record.
func (r *Registry) Import(servers []models.ServerConfig, overwrite bool) []models.ImportResult {
	results := make([]models.ImportResult, 0, len(servers))

	for _, in := range servers {
		res := models.ImportResult{Name: in.Name}

		id, err := r.importOne(in, overwrite)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Success = true
			res.ServerID = id
		}

		results = append(results, res)
	}

	return results
}

func (r *Registry) importOne(in models.ServerConfig, overwrite bool) (string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(in.Host) == "" {
		return "", fmt.Errorf("%w: host is required", ErrValidation)
	}

	// DNS may block; resolve outside the lock.
	country := r.countryFor(in.Host)

	// The existence check and the overwrite share one critical section, so a
	// concurrent delete can never split the config from its record.
	r.mu.Lock()
	existing, exists := r.servers[in.ID]
	if exists {
		if !overwrite {
			r.mu.Unlock()
			return "", fmt.Errorf("%w: %s", ErrAlreadyExists, in.ID)
		}

		// Replace the stored config but keep identity, runtime status and
		// the accumulated monitoring record.
		next := in
		next.ID = existing.ID
		next.Status = existing.Status
		next.LastCheck = existing.LastCheck
		next.CreatedAt = existing.CreatedAt
		next.UpdatedAt = time.Now()
		if next.Tags == nil {
			next.Tags = []string{}
		}
		if next.Query == "" {
			next.Query = models.QueryREST
		}
		if next.Monitoring.Interval <= 0 {
			next.Monitoring.Interval = models.DefaultMonitoringSettings().Interval
		}
		next.CountryCode = country
		r.servers[existing.ID] = &next
		r.mu.Unlock()

		log.Info().Str("server_id", existing.ID).Str("name", next.Name).Msg("Server overwritten by import")

		return existing.ID, nil
	}
	r.mu.Unlock()

	var monitoring *models.MonitoringSettings
	if in.Monitoring.Interval > 0 || in.Monitoring.Enabled {
		m := in.Monitoring
		monitoring = &m
	}

	srv, err := r.Add(AddRequest{
		Name:        in.Name,
		Host:        in.Host,
		Port:        in.Port,
		Description: in.Description,
		Tags:        in.Tags,
		Query:       in.Query,
		Monitoring:  monitoring,
		Rcon:        &in.Rcon,
		Backup:      &in.Backup,
	})
	if err != nil {
		return "", err
	}

	return srv.ID, nil
}
