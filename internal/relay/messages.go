package relay

import (
	"time"
)

// MQTT message types for the console relay.
// Commands arrive on mixcore/command/{action}, acknowledgements go out on
// mixcore/ack/{request_id}, read results on mixcore/response/{request_id},
// and console traffic is mirrored on mixcore/state/{address}.

// Command actions.
const (
	// ActionRead requests the current value of an endpoint.
	ActionRead = "read"

	// ActionWrite sets the value of an endpoint.
	ActionWrite = "write"
)

// Command is received from the bus to read or write one console endpoint.
// Topic: mixcore/command/read or mixcore/command/write
type Command struct {
	// RequestID uniquely identifies this command for correlation with its ack.
	RequestID string `json:"request_id"`

	// Group is the catalog group name (exact match, e.g. "VirtualMicInputs").
	Group string `json:"group"`

	// Endpoint is the catalog endpoint name (exact match, e.g. "enFader").
	Endpoint string `json:"endpoint"`

	// Index is the 0-based instance index for multi-instance endpoints.
	// Omit for single-instance endpoints.
	Index *int `json:"index,omitempty"`

	// Value is the value to write (write commands only).
	Value any `json:"value,omitempty"`

	// Confirm must be true when writing to an endpoint on the dangerous
	// deny-list. Without it the write is rejected, never sent.
	Confirm bool `json:"confirm,omitempty"`

	// TimeoutMS overrides the reply wait for read commands (milliseconds).
	TimeoutMS int `json:"timeout_ms,omitempty"`
}

// AckStatus represents the outcome of a command.
type AckStatus string

const (
	// AckOK indicates the command completed.
	AckOK AckStatus = "ok"

	// AckNoResponse indicates a read got no reply within the timeout.
	// The console stays silent for unknown or valueless addresses, so this
	// is a normal outcome, not a failure.
	AckNoResponse AckStatus = "no_response"

	// AckError indicates the command could not be executed.
	AckError AckStatus = "error"
)

// Error codes for failed commands.
const (
	ErrCodeNotConnected         = "not_connected"
	ErrCodeInvalidEndpoint      = "invalid_endpoint"
	ErrCodeReadOnly             = "read_only"
	ErrCodeTypeMismatch         = "type_mismatch"
	ErrCodeConfirmationRequired = "confirmation_required"
	ErrCodeInvalidPayload       = "invalid_payload"
	ErrCodeSendFailed           = "send_failed"
)

// Ack is published in response to a command. It signals the outcome only;
// the values of a successful read travel separately as a Response.
// Topic: mixcore/ack/{request_id}
type Ack struct {
	// RequestID is the ID from the original command.
	RequestID string `json:"request_id"`

	// Action is the command action ("read" or "write").
	Action string `json:"action"`

	// Timestamp is when the acknowledgement was generated (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Status indicates the outcome.
	Status AckStatus `json:"status"`

	// Address is the resolved console address, when the endpoint was valid.
	Address string `json:"address,omitempty"`

	// Error contains details when status is "error".
	Error *AckErrorDetail `json:"error,omitempty"`
}

// Response carries the reply values of one successful read command.
// Topic: mixcore/response/{request_id}
type Response struct {
	// RequestID is the ID from the original command.
	RequestID string `json:"request_id"`

	// Address is the console address the reply arrived on.
	Address string `json:"address"`

	// Arguments is the reply's raw argument list.
	Arguments []any `json:"arguments"`

	// Timestamp is when the reply arrived (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`
}

// Status reports the console session state.
// Topic: mixcore/console/status, Retained: yes
type Status struct {
	// Connected is true while a console session is active.
	Connected bool `json:"connected"`

	// Timestamp is when the state was observed (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`
}

// AckErrorDetail contains error details for failed commands.
type AckErrorDetail struct {
	// Code is the machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`
}

// State mirrors one inbound console message onto the bus.
// Topic: mixcore/state/{address}
// QoS: configured default, Retained: yes
type State struct {
	// Address is the console address the message was published on.
	Address string `json:"address"`

	// Arguments is the raw argument list.
	Arguments []any `json:"arguments"`

	// Timestamp is when the message arrived (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`
}

// newAck creates a success acknowledgement for a command.
func newAck(cmd Command, action, address string, status AckStatus) Ack {
	return Ack{
		RequestID: cmd.RequestID,
		Action:    action,
		Timestamp: time.Now().UTC(),
		Status:    status,
		Address:   address,
	}
}

// newAckError creates an acknowledgement with error details.
func newAckError(cmd Command, action, address, code, message string) Ack {
	return Ack{
		RequestID: cmd.RequestID,
		Action:    action,
		Timestamp: time.Now().UTC(),
		Status:    AckError,
		Address:   address,
		Error: &AckErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}
