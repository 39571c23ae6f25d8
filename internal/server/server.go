// Package server implements the HTTP server, middleware, and request handlers
// of the monitoring API.
package server

import "net/http"

// Run configures the HTTP routes and returns the main handler.
func (s *Server) Run() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/server/add", http.HandlerFunc(s.handleAddServer))
	mux.Handle("GET /api/servers", http.HandlerFunc(s.handleListServers))
	mux.Handle("GET /api/server/{id}", http.HandlerFunc(s.handleGetServer))
	mux.Handle("PUT /api/server/{id}", http.HandlerFunc(s.handleUpdateServer))
	mux.Handle("DELETE /api/server/{id}", http.HandlerFunc(s.handleDeleteServer))

	mux.Handle("POST /api/server/{id}/check", http.HandlerFunc(s.handleManualCheck))
	mux.Handle("GET /api/server/{id}/alerts", http.HandlerFunc(s.handleAlerts))
	mux.Handle("POST /api/server/{id}/alerts/{alert}/ack", http.HandlerFunc(s.handleAcknowledgeAlert))

	mux.Handle("POST /api/servers/bulk", http.HandlerFunc(s.handleBulk))
	mux.Handle("GET /api/export", http.HandlerFunc(s.handleExport))
	mux.Handle("POST /api/import", http.HandlerFunc(s.handleImport))

	mux.Handle("GET /api/stats", http.HandlerFunc(s.handleStats))
	mux.Handle("GET /api/version", http.HandlerFunc(s.handleVersion))
	mux.Handle("GET /api/health", http.HandlerFunc(s.handleHealth))

	return s.LoggingMiddleware(s.RateLimitMiddleware(mux))
}
