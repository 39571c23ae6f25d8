// Package notify delivers generated alerts to an external webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"text/template"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"github.com/wardstone/wardstone/internal/models"
)

// Config holds the webhook settings. An empty URL disables delivery.
type Config struct {
	URL      string
	Template string
	Cooldown time.Duration
}

// Webhook posts alerts as JSON to a configured URL, suppressing repeats of
// the same (server, rule) pair within the cooldown window. A nil *Webhook is
// valid and delivers nothing.
type Webhook struct {
	cfg      Config
	client   *http.Client
	tmpl     *template.Template
	mu       sync.Mutex
	lastSent map[uint64]time.Time
}

// NewWebhook creates a webhook notifier, or nil when no URL is configured.
// A broken payload template is reported and ignored.
func NewWebhook(cfg Config) *Webhook {
	if cfg.URL == "" {
		return nil
	}

	w := &Webhook{
		cfg:      cfg,
		client:   &http.Client{Timeout: 10 * time.Second},
		lastSent: make(map[uint64]time.Time),
	}

	if cfg.Template != "" {
		tmpl, err := template.New("webhook").Parse(cfg.Template)
		if err != nil {
			log.Error().Err(err).Msg("Invalid webhook template, using default payload")
		} else {
			w.tmpl = tmpl
		}
	}

	return w
}

// Enabled reports whether alerts will be delivered.
func (w *Webhook) Enabled() bool {
	return w != nil
}

// payload is the default JSON body sent to the webhook.
type payload struct {
	ServerID   string               `json:"server_id"`
	ServerName string               `json:"server_name"`
	Host       string               `json:"host"`
	Port       int                  `json:"port"`
	Severity   models.AlertSeverity `json:"severity"`
	Title      string               `json:"title"`
	Message    string               `json:"message"`
	Timestamp  string               `json:"timestamp"`
}

// Notify delivers one alert. Failures are logged and swallowed; alert
// delivery must never affect the monitoring pipeline.
func (w *Webhook) Notify(ctx context.Context, server models.ServerConfig, alert models.Alert) {
	if !w.Enabled() {
		return
	}

	if !w.passCooldown(server.ID, alert.Rule) {
		log.Debug().
			Str("server_id", server.ID).
			Str("rule", alert.Rule).
			Msg("Webhook notification suppressed by cooldown")
		return
	}

	body, err := w.render(server, alert)
	if err != nil {
		log.Error().Err(err).Str("server_id", server.ID).Msg("Failed to build webhook payload")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("Failed to create webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("server_id", server.ID).Msg("Webhook delivery failed")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Warn().
			Int("status", resp.StatusCode).
			Str("body", string(snippet)).
			Msg("Webhook returned non-2xx status")
		return
	}

	log.Debug().
		Str("server_id", server.ID).
		Str("rule", alert.Rule).
		Str("severity", string(alert.Severity)).
		Msg("Alert delivered to webhook")
}

// passCooldown records the send attempt and reports whether the (server, rule)
// pair is outside its cooldown window.
func (w *Webhook) passCooldown(serverID, rule string) bool {
	if w.cfg.Cooldown <= 0 {
		return true
	}

	key := xxhash.Sum64String(serverID + "|" + rule)

	w.mu.Lock()
	defer w.mu.Unlock()

	if last, ok := w.lastSent[key]; ok && time.Since(last) < w.cfg.Cooldown {
		return false
	}
	w.lastSent[key] = time.Now()

	return true
}

func (w *Webhook) render(server models.ServerConfig, alert models.Alert) ([]byte, error) {
	if w.tmpl == nil {
		return json.Marshal(payload{
			ServerID:   server.ID,
			ServerName: server.Name,
			Host:       server.Host,
			Port:       server.Port,
			Severity:   alert.Severity,
			Title:      alert.Title,
			Message:    alert.Message,
			Timestamp:  alert.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	var buf bytes.Buffer
	if err := w.tmpl.Execute(&buf, map[string]any{"server": server, "alert": alert}); err != nil {
		return nil, err
	}

	if !json.Valid(buf.Bytes()) {
		return nil, fmt.Errorf("webhook template produced invalid JSON")
	}

	return buf.Bytes(), nil
}
