package catalog

import "fmt"

// NoIndex marks a path built without an instance index.
const NoIndex = -1

// Catalog is the merged, read-only lookup structure over the two endpoint
// tables. It is safe for concurrent use: nothing mutates it after Load.
type Catalog struct {
	order  []string
	groups map[string]*group
}

// ListGroups returns one GroupInfo per group in catalog insertion order
// (main table's groups first, then the FX table's).
func (c *Catalog) ListGroups() []GroupInfo {
	infos := make([]GroupInfo, 0, len(c.order))
	for _, name := range c.order {
		g := c.groups[name]

		types := make(map[string]int)
		for _, endpoint := range g.order {
			types[g.specs[endpoint].Type]++
		}

		infos = append(infos, GroupInfo{
			Name:      name,
			Endpoints: len(g.order),
			Types:     types,
		})
	}
	return infos
}

// ListEndpoints returns the endpoints of one group in catalog order.
//
// Group matching is exact and case-sensitive. Returns ErrGroupNotFound if the
// group is absent.
func (c *Catalog) ListEndpoints(groupName string) ([]Endpoint, error) {
	g, ok := c.groups[groupName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrGroupNotFound, groupName)
	}

	endpoints := make([]Endpoint, 0, len(g.order))
	for _, name := range g.order {
		endpoints = append(endpoints, Endpoint{Name: name, Spec: g.specs[name]})
	}
	return endpoints, nil
}

// GetEndpoint returns the spec for one endpoint.
//
// Both keys match exactly and case-sensitively. Returns ErrGroupNotFound or
// ErrEndpointNotFound.
func (c *Catalog) GetEndpoint(groupName, endpointName string) (EndpointSpec, error) {
	g, ok := c.groups[groupName]
	if !ok {
		return EndpointSpec{}, fmt.Errorf("%w: %q", ErrGroupNotFound, groupName)
	}
	spec, ok := g.specs[endpointName]
	if !ok {
		return EndpointSpec{}, fmt.Errorf("%w: %q/%q", ErrEndpointNotFound, groupName, endpointName)
	}
	return spec, nil
}

// BuildPath constructs the addressable path for an endpoint:
//
//	/{type}/{group}/{endpoint}[/{index}]
//
// The index suffix is appended only when the endpoint is multi-path AND a
// non-negative index was supplied (pass NoIndex for none). A multi-path
// endpoint addressed without an index simply omits the suffix — the console
// treats that as applying to all instances; callers that need a specific
// instance must supply the index themselves. An index supplied for a
// single-path endpoint is ignored.
//
// Parameters:
//   - groupName: group key, exact match
//   - endpointName: endpoint key, exact match
//   - index: 0-based instance index, or NoIndex
//
// Returns:
//   - string: The address
//   - error: ErrGroupNotFound or ErrEndpointNotFound
func (c *Catalog) BuildPath(groupName, endpointName string, index int) (string, error) {
	spec, err := c.GetEndpoint(groupName, endpointName)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("/%s/%s/%s", spec.Type, groupName, endpointName)
	if spec.MultiPath && index >= 0 {
		path = fmt.Sprintf("%s/%d", path, index)
	}
	return path, nil
}

// GroupCount returns the number of groups.
func (c *Catalog) GroupCount() int {
	return len(c.order)
}

// EndpointCount returns the total number of endpoints across all groups.
func (c *Catalog) EndpointCount() int {
	total := 0
	for _, g := range c.groups {
		total += len(g.order)
	}
	return total
}

// Stats computes catalog-wide aggregates.
func (c *Catalog) Stats() Stats {
	stats := Stats{
		Groups: len(c.order),
		Types:  make(map[string]int),
	}

	for _, name := range c.order {
		g := c.groups[name]
		stats.Endpoints += len(g.order)
		for _, endpoint := range g.order {
			spec := g.specs[endpoint]
			stats.Types[spec.Type]++
			if spec.Documented() {
				stats.Documented++
			}
		}
	}
	return stats
}
