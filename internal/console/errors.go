package console

import "errors"

// Domain errors for the console package.
var (
	// ErrNotConnected is returned when a read or write is attempted while no
	// console session is active. Recoverable by calling Connect.
	ErrNotConnected = errors.New("console: not connected")

	// ErrConnectionFailed is returned when a session cannot be established.
	ErrConnectionFailed = errors.New("console: connection failed")

	// ErrInvalidEndpoint is returned when the group/endpoint pair is absent
	// from the catalog.
	ErrInvalidEndpoint = errors.New("console: invalid endpoint")

	// ErrReadOnly is returned when a write is attempted on an endpoint with
	// no argument type (meters).
	ErrReadOnly = errors.New("console: endpoint is read-only")

	// ErrTypeMismatch is returned when a value cannot be encoded as the
	// endpoint's argument type.
	ErrTypeMismatch = errors.New("console: value type mismatch")

	// ErrSendFailed is returned when the transport rejects an outbound
	// message.
	ErrSendFailed = errors.New("console: send failed")
)
