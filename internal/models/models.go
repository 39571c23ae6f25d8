// Package models defines the data structures shared between the registry,
// scheduler, alerting and HTTP layers.
package models

import "time"

// ServerStatus is the derived availability state of a monitored server.
type ServerStatus string

// Server status values. A server stays StatusUnknown until its first check completes.
const (
	StatusUnknown ServerStatus = "unknown"
	StatusOnline  ServerStatus = "online"
	StatusOffline ServerStatus = "offline"
)

// QueryProtocol selects how a server's live status is fetched.
type QueryProtocol string

// Supported query protocols.
const (
	// QueryREST delegates to a third-party Minecraft status REST API.
	QueryREST QueryProtocol = "rest"
	// QueryA2S queries the server directly with the Source Engine Query protocol.
	QueryA2S QueryProtocol = "a2s"
)

// AlertToggles enables or disables individual alert rules for a server.
type AlertToggles struct {
	Offline        bool `json:"offline"`
	LowPerformance bool `json:"lowPerformance"`
	HighLatency    bool `json:"highLatency"`
	PlayerCount    bool `json:"playerCount"`
}

// Thresholds holds the numeric limits the alert rules compare against.
type Thresholds struct {
	MaxLatencyMs        int     `json:"maxLatencyMs"`
	MinPerformanceScore float64 `json:"minPerformanceScore"`
	MaxPlayers          int     `json:"maxPlayers"`
}

// MonitoringSettings controls the polling loop and alerting for one server.
type MonitoringSettings struct {
	Enabled    bool         `json:"enabled"`
	Interval   int          `json:"interval"` // seconds between checks
	Alerts     AlertToggles `json:"alerts"`
	Thresholds Thresholds   `json:"thresholds"`
}

// RconConfig holds optional remote-console credentials. Stored but unused by
// the monitoring pipeline; disabled by default.
type RconConfig struct {
	Enabled  bool   `json:"enabled"`
	Port     int    `json:"port,omitempty"`
	Password string `json:"password,omitempty"`
}

// BackupConfig describes an optional backup schedule. Stored but unused by
// the monitoring pipeline.
type BackupConfig struct {
	Enabled   bool   `json:"enabled"`
	Schedule  string `json:"schedule,omitempty"`
	Retention int    `json:"retention,omitempty"`
}

// ServerConfig is one registered game server. ID is assigned at creation and
// never changes; Status and LastCheck are written only through check results.
type ServerConfig struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Host        string             `json:"host"`
	Port        int                `json:"port"`
	Description string             `json:"description,omitempty"`
	Tags        []string           `json:"tags"`
	Query       QueryProtocol      `json:"query"`
	CountryCode string             `json:"country_code,omitempty"`
	Monitoring  MonitoringSettings `json:"monitoring"`
	Rcon        RconConfig         `json:"rcon"`
	Backup      BackupConfig       `json:"backup"`
	Status      ServerStatus       `json:"status"`
	LastCheck   *time.Time         `json:"last_check"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// DefaultPort is used when a server is registered without an explicit port.
const DefaultPort = 25565

// DefaultMonitoringSettings returns the monitoring settings applied when a
// server is registered without any.
func DefaultMonitoringSettings() MonitoringSettings {
	return MonitoringSettings{
		Enabled:  false,
		Interval: 300,
		Alerts:   AlertToggles{Offline: true},
		Thresholds: Thresholds{
			MaxLatencyMs:        500,
			MinPerformanceScore: 15,
			MaxPlayers:          100,
		},
	}
}

// Players holds the player counts reported by a status query.
type Players struct {
	Online int      `json:"online"`
	Max    int      `json:"max"`
	Sample []string `json:"sample,omitempty"`
}

// PollResult is the outcome of one status check. A failed check is a normal
// result with Online=false and Error set, never a Go error in the pipeline.
type PollResult struct {
	Online    bool      `json:"online"`
	Players   Players   `json:"players"`
	LatencyMs int       `json:"latency_ms,omitempty"` // 0 means not measured
	Version   string    `json:"version,omitempty"`
	Software  string    `json:"software,omitempty"`
	Map       string    `json:"map,omitempty"`
	Gamemode  string    `json:"gamemode,omitempty"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// CheckRecord is one history entry, appended in completion order.
type CheckRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Online    bool      `json:"online"`
	Players   Players   `json:"players"`
	LatencyMs int       `json:"latency_ms,omitempty"`
	Version   string    `json:"version,omitempty"`
	Software  string    `json:"software,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// AlertSeverity ranks generated alerts.
type AlertSeverity string

// Alert severities.
const (
	SeverityCritical AlertSeverity = "critical"
	SeverityWarning  AlertSeverity = "warning"
	SeverityInfo     AlertSeverity = "info"
)

// Alert rule names, also used as notifier cooldown keys.
const (
	RuleOffline     = "offline"
	RuleHighLatency = "highLatency"
	RulePlayerCount = "playerCount"
)

// Alert is a generated notification. Immutable once created except for the
// acknowledged flag.
type Alert struct {
	ID           string        `json:"id"`
	Rule         string        `json:"rule"`
	Severity     AlertSeverity `json:"severity"`
	Title        string        `json:"title"`
	Message      string        `json:"message"`
	CreatedAt    time.Time     `json:"created_at"`
	Acknowledged bool          `json:"acknowledged"`
}

// Statistics holds the running aggregates for one server.
type Statistics struct {
	TotalChecks int     `json:"total_checks"`
	Uptime      float64 `json:"uptime"` // fraction of checks that were online
}

// MonitoringState is a read snapshot of one server's monitoring record.
type MonitoringState struct {
	History    []CheckRecord `json:"history"`
	Alerts     []Alert       `json:"alerts"`
	Statistics Statistics    `json:"statistics"`
}

// Analytics summarizes a server's history over a time range.
type Analytics struct {
	TimeRange     string  `json:"time_range"`
	Checks        int     `json:"checks"`
	UptimePercent float64 `json:"uptime_percent"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	MaxLatencyMs  int     `json:"max_latency_ms"`
	PeakPlayers   int     `json:"peak_players"`
}

// ServerUpdate carries a partial update. Nil fields are left untouched; the
// server id is not part of the mergeable set.
type ServerUpdate struct {
	Name        *string             `json:"name,omitempty"`
	Host        *string             `json:"host,omitempty"`
	Port        *int                `json:"port,omitempty"`
	Description *string             `json:"description,omitempty"`
	Tags        *[]string           `json:"tags,omitempty"`
	Query       *QueryProtocol      `json:"query,omitempty"`
	Monitoring  *MonitoringSettings `json:"monitoring,omitempty"`
	Rcon        *RconConfig         `json:"rcon,omitempty"`
	Backup      *BackupConfig       `json:"backup,omitempty"`
}

// ListFilter narrows a registry listing. All set fields must match.
type ListFilter struct {
	Tag    string
	Status ServerStatus
	Search string // case-insensitive substring of name or host
}

// ListSummary is the status breakdown returned alongside a listing.
type ListSummary struct {
	Total   int `json:"total"`
	Online  int `json:"online"`
	Offline int `json:"offline"`
	Unknown int `json:"unknown"`
}

// AlertSummary is the severity breakdown returned alongside an alert listing.
type AlertSummary struct {
	Total          int `json:"total"`
	Critical       int `json:"critical"`
	Warning        int `json:"warning"`
	Info           int `json:"info"`
	Unacknowledged int `json:"unacknowledged"`
}

// BulkAction is one of the operations applicable to a list of servers.
type BulkAction string

// Bulk actions.
const (
	BulkCheck           BulkAction = "check"
	BulkUpdate          BulkAction = "update"
	BulkStartMonitoring BulkAction = "startMonitoring"
	BulkStopMonitoring  BulkAction = "stopMonitoring"
)

// BulkResult is the per-server outcome of a bulk operation.
type BulkResult struct {
	ServerID string `json:"server_id"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// Snapshot is the exportable state of the registry.
type Snapshot struct {
	ExportedAt time.Time      `json:"exported_at"`
	Servers    []ServerConfig `json:"servers"`
}

// ImportResult is the per-server outcome of a snapshot import.
type ImportResult struct {
	Name     string `json:"name"`
	ServerID string `json:"server_id,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}
