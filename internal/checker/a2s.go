package checker

import (
	"context"
	"time"

	"github.com/wardstone/wardstone/internal/models"
	"github.com/woozymasta/a2s/pkg/a2s"
)

// A2SChecker queries a game server directly over UDP with the Source Engine
// Query (A2S_INFO) protocol.
type A2SChecker struct {
	timeout    time.Duration
	bufferSize uint16
}

// NewA2S creates an A2SChecker with the given query timeout and buffer size.
func NewA2S(timeout time.Duration, bufferSize uint16) *A2SChecker {
	return &A2SChecker{timeout: timeout, bufferSize: bufferSize}
}

// Check requests A2S_INFO from host:port. The query library enforces its own
// timeout; ctx is accepted for interface symmetry.
func (c *A2SChecker) Check(_ context.Context, host string, port int) (*models.PollResult, error) {
	client, err := a2s.New(host, port)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	client.BufferSize = c.bufferSize
	client.Timeout = c.timeout

	start := time.Now()
	info, err := client.GetInfo()
	if err != nil {
		return nil, err
	}

	return &models.PollResult{
		Online: true,
		Players: models.Players{
			Online: int(info.Players),
			Max:    int(info.MaxPlayers),
		},
		LatencyMs: int(time.Since(start).Milliseconds()),
		Version:   info.Version,
		Software:  info.Game,
		Map:       info.Map,
		CheckedAt: time.Now(),
	}, nil
}
