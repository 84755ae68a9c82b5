package console

import "sort"

// dangerousEndpoints names the controls that must never be written without
// explicit human confirmation: both take the console away from the operator
// mid-show. The gate itself is enforced by the calling surfaces (HTTP API,
// MQTT relay), not by SetValue.
var dangerousEndpoints = map[string]struct{}{
	"enReboot":       {},
	"enFactoryReset": {},
}

// IsDangerous reports whether the endpoint name is on the deny-list.
// Pure and stateless: it does not consult the catalog or connection state.
func IsDangerous(endpointName string) bool {
	_, ok := dangerousEndpoints[endpointName]
	return ok
}

// DangerousEndpoints returns the deny-list in sorted order.
func DangerousEndpoints() []string {
	names := make([]string, 0, len(dangerousEndpoints))
	for name := range dangerousEndpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
