// Package checker implements the status queries against monitored game servers.
package checker

import (
	"context"

	"github.com/wardstone/wardstone/internal/models"
)

// Checker performs one status query against a game server. Implementations
// return an error on transport failures; the scheduler converts those into
// offline poll results so that a bad check never halts the polling loop.
type Checker interface {
	Check(ctx context.Context, host string, port int) (*models.PollResult, error)
}

// Set holds one checker per supported query protocol.
type Set struct {
	rest Checker
	a2s  Checker
}

// NewSet builds the checker set used by the scheduler.
func NewSet(rest, a2s Checker) *Set {
	return &Set{rest: rest, a2s: a2s}
}

// For returns the checker for the given query protocol, defaulting to REST.
func (s *Set) For(query models.QueryProtocol) Checker {
	if query == models.QueryA2S {
		return s.a2s
	}

	return s.rest
}
