package catalog

import "errors"

// Domain errors for the catalog package.
var (
	// ErrLoadFailed is returned when an endpoint table cannot be read or
	// parsed. Load failure is fatal: the catalog never serves partial data.
	ErrLoadFailed = errors.New("catalog: loading endpoint table failed")

	// ErrGroupNotFound is returned when a group name is not in the catalog.
	ErrGroupNotFound = errors.New("catalog: group not found")

	// ErrEndpointNotFound is returned when an endpoint name is not in the
	// given group.
	ErrEndpointNotFound = errors.New("catalog: endpoint not found")
)
