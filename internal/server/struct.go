package server

import (
	"time"

	"github.com/wardstone/wardstone/internal/config"
	"github.com/wardstone/wardstone/internal/registry"
	"github.com/wardstone/wardstone/internal/scheduler"
)

// Server holds the dependencies and settings required to handle HTTP requests.
type Server struct {
	// registry is the shared store of server configs and monitoring records.
	registry *registry.Registry

	// scheduler owns the per-server polling loops and manual checks.
	scheduler *scheduler.Scheduler

	// maxBody specifies the maximum allowed size (in bytes) for incoming
	// HTTP request bodies.
	maxBody int64

	// hardLimitCount is the maximum number of requests allowed per IP address
	// within the hardLimitWin duration.
	hardLimitCount int

	// hardLimitWin is the time window duration for the hard rate limiter.
	hardLimitWin time.Duration

	// trustProxy indicates whether the server should trust headers like
	// X-Forwarded-For or CF-Connecting-IP when determining the client's
	// real IP address.
	trustProxy bool
}

// New creates a new Server instance with the provided registry, scheduler
// and configuration.
func New(reg *registry.Registry, sched *scheduler.Scheduler, cfg *config.Config) *Server {
	return &Server{
		registry:       reg,
		scheduler:      sched,
		maxBody:        cfg.Server.MaxBodySize,
		trustProxy:     cfg.Server.TrustProxy,
		hardLimitCount: cfg.RateLimit.HardLimitCount,
		hardLimitWin:   cfg.RateLimit.HardLimitWin,
	}
}
