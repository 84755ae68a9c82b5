package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wrenshall/mixcore/internal/catalog"
	"github.com/wrenshall/mixcore/internal/console"
)

// connectRequest is the body for POST /console/connect.
// Empty fields fall back to the configured console settings.
type connectRequest struct {
	Host       string `json:"host,omitempty"`
	SendPort   int    `json:"send_port,omitempty"`
	ListenPort int    `json:"listen_port,omitempty"`
}

// readRequest is the body for POST /console/read.
type readRequest struct {
	Group     string `json:"group"`
	Endpoint  string `json:"endpoint"`
	Index     *int   `json:"index,omitempty"`
	TimeoutMS int    `json:"timeout_ms,omitempty"`
}

// writeRequest is the body for POST /console/write.
type writeRequest struct {
	Group    string `json:"group"`
	Endpoint string `json:"endpoint"`
	Index    *int   `json:"index,omitempty"`
	Value    any    `json:"value"`
	Confirm  bool   `json:"confirm,omitempty"`
}

// handleConnect establishes the console session. A session that is already
// active is replaced.
// POST /api/v1/console/connect
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	cfg := console.ConnectionConfig{
		Host:       req.Host,
		SendPort:   req.SendPort,
		ListenPort: req.ListenPort,
	}
	if cfg.Host == "" {
		cfg.Host = s.conCfg.Host
	}
	if cfg.SendPort == 0 {
		cfg.SendPort = s.conCfg.SendPort
	}
	if cfg.ListenPort == 0 {
		cfg.ListenPort = s.conCfg.ListenPort
	}
	if cfg.Host == "" {
		writeBadRequest(w, "host is required (no configured default)")
		return
	}

	if err := s.client.Connect(cfg); err != nil {
		writeConsoleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.client.Stats())
}

// handleDisconnect tears down the console session. Disconnecting while
// already disconnected succeeds.
// POST /api/v1/console/disconnect
func (s *Server) handleDisconnect(w http.ResponseWriter, _ *http.Request) {
	if err := s.client.Disconnect(); err != nil {
		writeConsoleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"connected": false})
}

// handleConsoleStatus returns the current session statistics.
// GET /api/v1/console/status
func (s *Server) handleConsoleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.client.Stats())
}

// handleDangerousEndpoints returns the write deny-list.
// GET /api/v1/console/dangerous
func (s *Server) handleDangerousEndpoints(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"endpoints": console.DangerousEndpoints(),
	})
}

// handleRead queries an endpoint's current value and waits for the reply.
// A timeout is reported as no_response with HTTP 200, not as an error: a
// quiet console is a normal outcome.
// POST /api/v1/console/read
func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	var req readRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Group == "" || req.Endpoint == "" {
		writeBadRequest(w, "group and endpoint are required")
		return
	}

	timeout := time.Duration(req.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = time.Duration(s.conCfg.ReadTimeoutMS) * time.Millisecond
	}

	msg, err := s.client.GetValue(r.Context(), req.Group, req.Endpoint, indexOrNone(req.Index), timeout)
	if err != nil {
		writeConsoleError(w, err)
		return
	}
	if msg == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "no_response",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"address":     msg.Address,
		"arguments":   msg.Arguments,
		"received_at": msg.ReceivedAt.UTC().Format(time.RFC3339Nano),
	})
}

// handleWrite sets an endpoint's value. Writes to deny-listed endpoints are
// rejected with confirmation_required unless the request carries confirm:true;
// the rejected write never reaches the console.
// POST /api/v1/console/write
func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Group == "" || req.Endpoint == "" {
		writeBadRequest(w, "group and endpoint are required")
		return
	}

	if s.isDangerous(req.Endpoint) && !req.Confirm {
		s.logger.Warn("dangerous write rejected",
			"endpoint", req.Endpoint,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeError(w, http.StatusConflict, ErrCodeConfirmationRequired,
			fmt.Sprintf("%s requires confirm:true", req.Endpoint))
		return
	}

	if err := s.client.SetValue(r.Context(), req.Group, req.Endpoint, indexOrNone(req.Index), req.Value); err != nil {
		writeConsoleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// isDangerous reports whether writes to the endpoint require confirmation.
func (s *Server) isDangerous(endpoint string) bool {
	return console.IsDangerous(endpoint)
}

// decodeBody decodes a JSON request body, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// indexOrNone maps an optional JSON index onto the catalog convention.
func indexOrNone(index *int) int {
	if index == nil {
		return catalog.NoIndex
	}
	return *index
}
