package checker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wardstone/wardstone/internal/models"
)

// RESTChecker queries a third-party Minecraft status REST API
// (mcsrvstat-compatible response layout).
type RESTChecker struct {
	client  *http.Client
	baseURL string
}

// NewREST creates a RESTChecker against the given API base URL.
func NewREST(baseURL string, timeout time.Duration) *RESTChecker {
	return &RESTChecker{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// statusResponse mirrors the subset of the status API response we consume.
type statusResponse struct {
	Online  bool `json:"online"`
	Players struct {
		Online int `json:"online"`
		Max    int `json:"max"`
		List   []struct {
			Name string `json:"name"`
		} `json:"list"`
	} `json:"players"`
	Version  string `json:"version"`
	Software string `json:"software"`
	Map      struct {
		Clean string `json:"clean"`
	} `json:"map"`
	Gamemode string `json:"gamemode"`
	Debug    struct {
		Ping int `json:"ping"`
	} `json:"debug"`
}

// Check queries the status API for host:port. A server that is reported down
// is a normal result, not an error.
func (c *RESTChecker) Check(ctx context.Context, host string, port int) (*models.PollResult, error) {
	url := fmt.Sprintf("%s/%s:%d", c.baseURL, host, port)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	latency := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status API returned %d", resp.StatusCode)
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding status API response: %w", err)
	}

	result := &models.PollResult{
		Online:    body.Online,
		Version:   body.Version,
		Software:  body.Software,
		Map:       body.Map.Clean,
		Gamemode:  body.Gamemode,
		CheckedAt: time.Now(),
	}

	if body.Online {
		result.Players = models.Players{
			Online: body.Players.Online,
			Max:    body.Players.Max,
		}
		for _, p := range body.Players.List {
			result.Players.Sample = append(result.Players.Sample, p.Name)
		}

		// Prefer the ping measured by the API itself; fall back to our own
		// round trip to the API when it reports none.
		if body.Debug.Ping > 0 {
			result.LatencyMs = body.Debug.Ping
		} else {
			result.LatencyMs = int(latency.Milliseconds())
		}
	}

	return result, nil
}
