package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// loadTestCatalog loads the fixture tables under testdata/.
func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	c, err := Load("testdata/endpoints.json", "testdata/fx_endpoints.json")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c
}

// writeTable writes raw JSON into a temp file and returns its path.
func writeTable(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "table.json")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	c := loadTestCatalog(t)

	if got := c.GroupCount(); got != 4 {
		t.Errorf("GroupCount() = %d, want 4", got)
	}
	if got := c.EndpointCount(); got != 7 {
		t.Errorf("EndpointCount() = %d, want 7", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/endpoints.json", "testdata/does_not_exist.json")
	if !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("Load() error = %v, want ErrLoadFailed", err)
	}
}

func TestLoadMalformedTable(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{
			name:     "not an object",
			contents: `[]`,
			wantErr:  "table:",
		},
		{
			name:     "missing type",
			contents: `{"G": {"enX": {"multiPath": false, "description": "x"}}}`,
			wantErr:  `endpoint "enX": missing type`,
		},
		{
			name:     "invalid argument type",
			contents: `{"G": {"enX": {"type": "enPPCFaderMessage", "argumentType": "double", "description": "x"}}}`,
			wantErr:  `invalid argumentType "double"`,
		},
		{
			name:     "duplicate group",
			contents: `{"G": {}, "G": {}}`,
			wantErr:  `group "G": duplicate key`,
		},
		{
			name:     "duplicate endpoint",
			contents: `{"G": {"enX": {"type": "t"}, "enX": {"type": "t"}}}`,
			wantErr:  `endpoint "enX": duplicate key`,
		},
		{
			name:     "spec not an object",
			contents: `{"G": {"enX": 42}}`,
			wantErr:  `endpoint "enX"`,
		},
	}

	valid := writeTable(t, `{}`)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTable(t, tt.contents)

			_, err := Load(path, valid)
			if !errors.Is(err, ErrLoadFailed) {
				t.Fatalf("Load() error = %v, want ErrLoadFailed", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMergePrecedence(t *testing.T) {
	c := loadTestCatalog(t)

	// "Shared" exists in both tables; the FX table's version replaces it
	// wholesale while the group keeps its original position.
	endpoints, err := c.ListEndpoints("Shared")
	if err != nil {
		t.Fatalf("ListEndpoints() error = %v", err)
	}
	if len(endpoints) != 1 || endpoints[0].Name != "enNew" {
		t.Fatalf("ListEndpoints(Shared) = %+v, want single enNew", endpoints)
	}

	groups := c.ListGroups()
	if groups[2].Name != "Shared" {
		t.Errorf("Shared at position %q, want index 2", groups[2].Name)
	}
}

func TestLoadShippedTables(t *testing.T) {
	c, err := Load("../../data/endpoints.json", "../../data/fx_endpoints.json")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.GroupCount() == 0 || c.EndpointCount() == 0 {
		t.Fatal("shipped tables loaded empty")
	}

	// Meters are read-only; everything else must declare an argument type.
	for _, g := range c.ListGroups() {
		endpoints, err := c.ListEndpoints(g.Name)
		if err != nil {
			t.Fatalf("ListEndpoints(%s) error = %v", g.Name, err)
		}
		for _, e := range endpoints {
			if e.Spec.Kind() == KindMeter && e.Spec.ArgumentType != ArgNone {
				t.Errorf("%s/%s: meter with argumentType %q", g.Name, e.Name, e.Spec.ArgumentType)
			}
			if e.Spec.Kind() != KindMeter && e.Spec.ArgumentType == ArgNone {
				t.Errorf("%s/%s: writable kind %s without argumentType", g.Name, e.Name, e.Spec.Kind())
			}
		}
	}
}
