package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wrenshall/mixcore/internal/catalog"
)

// handleListGroups returns every group in catalog order with summary counts.
// GET /api/v1/catalog/groups
func (s *Server) handleListGroups(w http.ResponseWriter, _ *http.Request) {
	groups := s.catalog.ListGroups()
	writeJSON(w, http.StatusOK, map[string]any{
		"groups": groups,
		"count":  len(groups),
	})
}

// handleListEndpoints returns the endpoints of one group in catalog order.
// GET /api/v1/catalog/groups/{group}/endpoints
func (s *Server) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")

	endpoints, err := s.catalog.ListEndpoints(group)
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"group":     group,
		"endpoints": endpoints,
		"count":     len(endpoints),
	})
}

// handleGetEndpoint returns the full spec for one endpoint plus its base
// address and deny-list status.
// GET /api/v1/catalog/groups/{group}/endpoints/{endpoint}
func (s *Server) handleGetEndpoint(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	endpoint := chi.URLParam(r, "endpoint")

	spec, err := s.catalog.GetEndpoint(group, endpoint)
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}

	// Base address without an instance index; harmless for multi-instance
	// endpoints since BuildPath only appends the suffix when asked.
	address, _ := s.catalog.BuildPath(group, endpoint, catalog.NoIndex)

	writeJSON(w, http.StatusOK, map[string]any{
		"group":     group,
		"endpoint":  endpoint,
		"spec":      spec,
		"address":   address,
		"dangerous": s.isDangerous(endpoint),
	})
}

// handleBuildPath returns the console address for an endpoint, optionally
// with an instance index.
// GET /api/v1/catalog/groups/{group}/endpoints/{endpoint}/path?index=2
func (s *Server) handleBuildPath(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	endpoint := chi.URLParam(r, "endpoint")

	index := catalog.NoIndex
	if raw := r.URL.Query().Get("index"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "index must be a non-negative integer")
			return
		}
		index = parsed
	}

	address, err := s.catalog.BuildPath(group, endpoint, index)
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"group":    group,
		"endpoint": endpoint,
		"address":  address,
	})
}

// maxSearchResults caps one search response.
const maxSearchResults = 200

// handleSearch performs a substring search across the catalog.
// GET /api/v1/catalog/search?q=fader+mic&group=VirtualMicInputs&type=enPPCFaderMessage
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeBadRequest(w, "q query parameter is required")
		return
	}

	filter := catalog.Filter{
		Group: r.URL.Query().Get("group"),
		Type:  r.URL.Query().Get("type"),
	}

	results := s.catalog.Search(query, filter)
	total := len(results)
	if total > maxSearchResults {
		results = results[:maxSearchResults]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
		"count":   len(results),
		"total":   total,
	})
}

// handleCatalogStats returns catalog-wide counts.
// GET /api/v1/catalog/stats
func (s *Server) handleCatalogStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Stats())
}
