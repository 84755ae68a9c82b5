package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/wrenshall/mixcore/internal/catalog"
	"github.com/wrenshall/mixcore/internal/console"
	"github.com/wrenshall/mixcore/internal/infrastructure/config"
	"github.com/wrenshall/mixcore/internal/infrastructure/logging"
)

const testTable = `{
  "VirtualMicInputs": {
    "enFader": {"multiPath": true, "type": "enPPCFaderMessage", "argumentType": "float", "description": "Channel fader level."},
    "enMute": {"multiPath": true, "type": "enPPCSwitchMessage", "argumentType": "integer", "description": "Channel mute.", "isAbsolute": true},
    "enMeter": {"multiPath": true, "type": "enPPCMeterMessage", "description": "Input level meter."}
  },
  "System": {
    "enReboot": {"multiPath": false, "type": "enPPCSwitchMessage", "argumentType": "integer", "description": "Reboots the console."}
  }
}`

// testHandler builds a routed server over a small catalog and a disconnected
// console client.
func testHandler(t *testing.T) http.Handler {
	t.Helper()

	dir := t.TempDir()
	main := filepath.Join(dir, "endpoints.json")
	fx := filepath.Join(dir, "fx_endpoints.json")
	if err := os.WriteFile(main, []byte(testTable), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(fx, []byte(`{}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cat, err := catalog.Load(main, fx)
	if err != nil {
		t.Fatalf("catalog.Load() error = %v", err)
	}

	logger := logging.Default()
	s, err := New(Deps{
		Logger:  logger,
		Catalog: cat,
		Client:  console.New(cat),
		Console: config.ConsoleConfig{ReadTimeoutMS: 50},
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.hub = NewHub(config.WebSocketConfig{}, logger)

	return s.buildRouter()
}

// doJSON performs one request and decodes the JSON response body.
func doJSON(t *testing.T, h http.Handler, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, decoded
}

func TestHealth(t *testing.T) {
	h := testHandler(t)

	status, body := doJSON(t, h, http.MethodGet, "/api/v1/health", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
}

func TestMetrics(t *testing.T) {
	h := testHandler(t)

	status, body := doJSON(t, h, http.MethodGet, "/api/v1/metrics", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	for _, key := range []string{"console", "catalog", "websocket"} {
		if _, ok := body[key]; !ok {
			t.Errorf("metrics missing %q section", key)
		}
	}
}

func TestListGroups(t *testing.T) {
	h := testHandler(t)

	status, body := doJSON(t, h, http.MethodGet, "/api/v1/catalog/groups", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["count"].(float64) != 2 {
		t.Errorf("count = %v, want 2", body["count"])
	}
}

func TestListEndpoints(t *testing.T) {
	h := testHandler(t)

	status, body := doJSON(t, h, http.MethodGet, "/api/v1/catalog/groups/VirtualMicInputs/endpoints", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["count"].(float64) != 3 {
		t.Errorf("count = %v, want 3", body["count"])
	}

	status, body = doJSON(t, h, http.MethodGet, "/api/v1/catalog/groups/NoSuchGroup/endpoints", nil)
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if body["code"] != ErrCodeNotFound {
		t.Errorf("code = %v, want not_found", body["code"])
	}
}

func TestGetEndpoint(t *testing.T) {
	h := testHandler(t)

	status, body := doJSON(t, h, http.MethodGet, "/api/v1/catalog/groups/System/endpoints/enReboot", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["dangerous"] != true {
		t.Error("enReboot not flagged dangerous")
	}
	if body["address"] != "/enPPCSwitchMessage/System/enReboot" {
		t.Errorf("address = %v", body["address"])
	}

	status, _ = doJSON(t, h, http.MethodGet, "/api/v1/catalog/groups/System/endpoints/enNoSuch", nil)
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
}

func TestBuildPath(t *testing.T) {
	h := testHandler(t)

	status, body := doJSON(t, h, http.MethodGet,
		"/api/v1/catalog/groups/VirtualMicInputs/endpoints/enFader/path?index=2", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["address"] != "/enPPCFaderMessage/VirtualMicInputs/enFader/2" {
		t.Errorf("address = %v", body["address"])
	}

	status, body = doJSON(t, h, http.MethodGet,
		"/api/v1/catalog/groups/VirtualMicInputs/endpoints/enFader/path", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["address"] != "/enPPCFaderMessage/VirtualMicInputs/enFader" {
		t.Errorf("address = %v", body["address"])
	}

	for _, raw := range []string{"abc", "-1", "1.5"} {
		status, body = doJSON(t, h, http.MethodGet,
			"/api/v1/catalog/groups/VirtualMicInputs/endpoints/enFader/path?index="+raw, nil)
		if status != http.StatusBadRequest {
			t.Errorf("index=%s status = %d, want 400", raw, status)
		}
		if body["code"] != ErrCodeBadRequest {
			t.Errorf("index=%s code = %v, want bad_request", raw, body["code"])
		}
	}
}

func TestSearch(t *testing.T) {
	h := testHandler(t)

	status, body := doJSON(t, h, http.MethodGet, "/api/v1/catalog/search?q=fader", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1", body["count"])
	}

	status, body = doJSON(t, h, http.MethodGet, "/api/v1/catalog/search", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if body["code"] != ErrCodeBadRequest {
		t.Errorf("code = %v, want bad_request", body["code"])
	}
}

func TestCatalogStats(t *testing.T) {
	h := testHandler(t)

	status, body := doJSON(t, h, http.MethodGet, "/api/v1/catalog/stats", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["groups"].(float64) != 2 {
		t.Errorf("groups = %v, want 2", body["groups"])
	}
	if body["endpoints"].(float64) != 4 {
		t.Errorf("endpoints = %v, want 4", body["endpoints"])
	}
}

func TestConsoleStatusDisconnected(t *testing.T) {
	h := testHandler(t)

	status, body := doJSON(t, h, http.MethodGet, "/api/v1/console/status", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["connected"] != false {
		t.Errorf("connected = %v, want false", body["connected"])
	}
}

func TestDangerousEndpoints(t *testing.T) {
	h := testHandler(t)

	status, body := doJSON(t, h, http.MethodGet, "/api/v1/console/dangerous", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	endpoints := body["endpoints"].([]any)
	if len(endpoints) != 2 || endpoints[0] != "enFactoryReset" || endpoints[1] != "enReboot" {
		t.Errorf("endpoints = %v", endpoints)
	}
}

func TestConnectRequiresHost(t *testing.T) {
	h := testHandler(t)

	// No host in the request and none configured.
	status, body := doJSON(t, h, http.MethodPost, "/api/v1/console/connect",
		map[string]any{})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if body["code"] != ErrCodeBadRequest {
		t.Errorf("code = %v, want bad_request", body["code"])
	}
}

func TestReadNotConnected(t *testing.T) {
	h := testHandler(t)

	status, body := doJSON(t, h, http.MethodPost, "/api/v1/console/read",
		map[string]any{"group": "VirtualMicInputs", "endpoint": "enFader"})
	if status != http.StatusConflict {
		t.Fatalf("status = %d, want 409", status)
	}
	if body["code"] != ErrCodeNotConnected {
		t.Errorf("code = %v, want not_connected", body["code"])
	}
}

func TestWriteNotConnected(t *testing.T) {
	h := testHandler(t)

	status, body := doJSON(t, h, http.MethodPost, "/api/v1/console/write",
		map[string]any{"group": "VirtualMicInputs", "endpoint": "enFader", "value": 0.5})
	if status != http.StatusConflict {
		t.Fatalf("status = %d, want 409", status)
	}
	if body["code"] != ErrCodeNotConnected {
		t.Errorf("code = %v, want not_connected", body["code"])
	}
}

func TestWriteConfirmationGate(t *testing.T) {
	h := testHandler(t)

	// The gate fires before anything touches the console, so even a
	// disconnected client rejects with confirmation_required.
	status, body := doJSON(t, h, http.MethodPost, "/api/v1/console/write",
		map[string]any{"group": "System", "endpoint": "enReboot", "value": 1})
	if status != http.StatusConflict {
		t.Fatalf("status = %d, want 409", status)
	}
	if body["code"] != ErrCodeConfirmationRequired {
		t.Errorf("code = %v, want confirmation_required", body["code"])
	}
}

func TestWriteValidation(t *testing.T) {
	h := testHandler(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing endpoint", map[string]any{"group": "System", "value": 1}},
		{"missing group", map[string]any{"endpoint": "enFader", "value": 1}},
		{"unknown field", map[string]any{"group": "System", "endpoint": "enFader", "bogus": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, h, http.MethodPost, "/api/v1/console/write", tt.body)
			if status != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", status)
			}
			if body["code"] != ErrCodeBadRequest {
				t.Errorf("code = %v, want bad_request", body["code"])
			}
		})
	}
}

func TestDisconnectIdempotent(t *testing.T) {
	h := testHandler(t)

	status, body := doJSON(t, h, http.MethodPost, "/api/v1/console/disconnect", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["connected"] != false {
		t.Errorf("connected = %v, want false", body["connected"])
	}
}
