package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// table is one parsed endpoint file with group insertion order preserved.
type table struct {
	order  []string
	groups map[string]*group
}

// group holds one group's endpoints with insertion order preserved.
type group struct {
	order []string
	specs map[string]EndpointSpec
}

// Load reads the two endpoint tables and merges them into a Catalog.
//
// The main table's groups come first in iteration order, then the FX table's.
// A group present in both tables is replaced wholesale by the FX table's
// version (last-loaded wins) while keeping its original position; the source
// data has no such collision, but the precedence is fixed here so a future
// one cannot silently interleave entries.
//
// A missing or malformed file is a fatal load error: the catalog must not
// serve partial data.
//
// Parameters:
//   - endpointsPath: path to the general-controls table
//   - fxPath: path to the effects-parameters table
//
// Returns:
//   - *Catalog: Loaded catalog ready for queries
//   - error: If either file cannot be read or parsed
func Load(endpointsPath, fxPath string) (*Catalog, error) {
	c := &Catalog{groups: make(map[string]*group)}

	for _, path := range []string{endpointsPath, fxPath} {
		t, err := loadTable(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, err)
		}
		c.merge(t)
	}

	return c, nil
}

// loadTable reads and parses one endpoint file.
func loadTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	t, err := parseTable(f)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return t, nil
}

// parseTable decodes a nested group → endpoint → spec JSON object.
//
// encoding/json maps do not preserve key order, so the table is walked with
// a token decoder to record the order groups and endpoints appear in the
// file. Iteration order of the catalog depends on it.
func parseTable(r io.Reader) (*table, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}

	t := &table{groups: make(map[string]*group)}
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, fmt.Errorf("group name: %w", err)
		}

		g, err := parseGroup(dec)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}

		if _, exists := t.groups[name]; exists {
			return nil, fmt.Errorf("group %q: duplicate key", name)
		}
		t.order = append(t.order, name)
		t.groups[name] = g
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	return t, nil
}

// parseGroup decodes one group object in file order.
func parseGroup(dec *json.Decoder) (*group, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	g := &group{specs: make(map[string]EndpointSpec)}
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, fmt.Errorf("endpoint name: %w", err)
		}

		var spec EndpointSpec
		if err := dec.Decode(&spec); err != nil {
			return nil, fmt.Errorf("endpoint %q: %w", name, err)
		}
		if spec.Type == "" {
			return nil, fmt.Errorf("endpoint %q: missing type", name)
		}
		if !validArgType(spec.ArgumentType) {
			return nil, fmt.Errorf("endpoint %q: invalid argumentType %q", name, spec.ArgumentType)
		}

		if _, exists := g.specs[name]; exists {
			return nil, fmt.Errorf("endpoint %q: duplicate key", name)
		}
		g.order = append(g.order, name)
		g.specs[name] = spec
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return g, nil
}

// merge appends a table's groups to the catalog. A group name already present
// is replaced in place (last-loaded wins, original position kept).
func (c *Catalog) merge(t *table) {
	for _, name := range t.order {
		if _, exists := c.groups[name]; !exists {
			c.order = append(c.order, name)
		}
		c.groups[name] = t.groups[name]
	}
}

// expectDelim consumes one token and verifies it is the given delimiter.
func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// readKey consumes one token and verifies it is an object key.
func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected string key, got %v", tok)
	}
	return key, nil
}

// validArgType reports whether t is one of the known argument types.
func validArgType(t ArgType) bool {
	switch t {
	case ArgNone, ArgFloat, ArgInteger, ArgString:
		return true
	default:
		return false
	}
}
