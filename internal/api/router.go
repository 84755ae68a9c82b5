package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", s.handleHealth)

		// System metrics
		r.Get("/metrics", s.handleMetrics)

		// Catalog endpoints (static, read-only)
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/groups", s.handleListGroups)
			r.Get("/groups/{group}/endpoints", s.handleListEndpoints)
			r.Get("/groups/{group}/endpoints/{endpoint}", s.handleGetEndpoint)
			r.Get("/groups/{group}/endpoints/{endpoint}/path", s.handleBuildPath)
			r.Get("/search", s.handleSearch)
			r.Get("/stats", s.handleCatalogStats)
		})

		// Console session endpoints
		r.Route("/console", func(r chi.Router) {
			r.Post("/connect", s.handleConnect)
			r.Post("/disconnect", s.handleDisconnect)
			r.Get("/status", s.handleConsoleStatus)
			r.Get("/dangerous", s.handleDangerousEndpoints)
			r.Post("/read", s.handleRead)
			r.Post("/write", s.handleWrite)
		})

		// WebSocket (live console traffic)
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleMetrics returns operational statistics for monitoring.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	stats := s.client.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"console": stats,
		"catalog": s.catalog.Stats(),
		"websocket": map[string]any{
			"clients": s.hub.ClientCount(),
		},
	})
}
