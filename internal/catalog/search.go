package catalog

import "strings"

// Search scans the catalog for endpoints matching every term in query.
//
// The query is split on whitespace into lowercase terms. For each endpoint
// (after applying the optional exact-match filters) the group name, endpoint
// name, description, and wire type are concatenated and lowercased; the
// endpoint matches iff every term is a substring of that text. An empty or
// whitespace-only query therefore matches everything, and appending terms can
// only shrink the result set.
//
// This is a deliberate brute-force scan with no index — at a few thousand
// entries it is well under a millisecond and keeps the matching rules
// trivially auditable. Results come back in catalog iteration order, not
// relevance order.
func (c *Catalog) Search(query string, filter Filter) []SearchResult {
	terms := strings.Fields(strings.ToLower(query))

	var results []SearchResult
	for _, groupName := range c.order {
		if filter.Group != "" && filter.Group != groupName {
			continue
		}
		g := c.groups[groupName]

		for _, endpointName := range g.order {
			spec := g.specs[endpointName]
			if filter.Type != "" && filter.Type != spec.Type {
				continue
			}
			if !matchesAll(groupName, endpointName, spec, terms) {
				continue
			}

			results = append(results, SearchResult{
				Group:    groupName,
				Endpoint: endpointName,
				Spec:     spec,
				Address:  "/" + spec.Type + "/" + groupName + "/" + endpointName,
			})
		}
	}
	return results
}

// matchesAll reports whether every term is a substring of the endpoint's
// searchable text.
func matchesAll(groupName, endpointName string, spec EndpointSpec, terms []string) bool {
	if len(terms) == 0 {
		return true
	}

	haystack := strings.ToLower(groupName + endpointName + spec.Description + spec.Type)
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}
