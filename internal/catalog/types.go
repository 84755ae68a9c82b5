package catalog

import "strings"

// NoDescription is the placeholder used in the endpoint tables for controls
// whose purpose has not been documented yet.
const NoDescription = "No description available."

// ArgType identifies the wire argument type an endpoint accepts.
type ArgType string

// Argument types. ArgNone marks a read-only control (meters).
const (
	ArgNone    ArgType = ""
	ArgFloat   ArgType = "float"
	ArgInteger ArgType = "integer"
	ArgString  ArgType = "string"
)

// Kind classifies an endpoint's wire message shape.
type Kind string

// Message kinds derived from the wire type string.
const (
	KindFader  Kind = "Fader"
	KindRotary Kind = "Rotary"
	KindSwitch Kind = "Switch"
	KindString Kind = "String"
	KindMeter  Kind = "Meter"
	KindOther  Kind = "Other"
)

// EndpointSpec describes a single controllable parameter.
//
// Specs are immutable: they are loaded once from the static tables and never
// mutated at runtime.
type EndpointSpec struct {
	// MultiPath is true if the control exists once per instance (channel,
	// bus, etc.) and takes an appended index in its address.
	MultiPath bool `json:"multiPath"`

	// Type is the raw wire message type (e.g. "enPPCFaderMessage"). It forms
	// the first segment of the endpoint's address.
	Type string `json:"type"`

	// ArgumentType is the value type for writes. Empty means read-only.
	ArgumentType ArgType `json:"argumentType,omitempty"`

	// Description is human-readable documentation. May be the NoDescription
	// placeholder.
	Description string `json:"description"`

	// IsAbsolute, for switches, indicates whether a sent value sets state
	// directly rather than toggling. Nil when the table does not say.
	IsAbsolute *bool `json:"isAbsolute,omitempty"`
}

// Kind derives the message kind from the wire type string.
func (s EndpointSpec) Kind() Kind {
	switch {
	case strings.Contains(s.Type, "Fader"):
		return KindFader
	case strings.Contains(s.Type, "Rotary"):
		return KindRotary
	case strings.Contains(s.Type, "Switch"):
		return KindSwitch
	case strings.Contains(s.Type, "String"):
		return KindString
	case strings.Contains(s.Type, "Meter"):
		return KindMeter
	default:
		return KindOther
	}
}

// Documented reports whether the spec carries a real description rather than
// the placeholder.
func (s EndpointSpec) Documented() bool {
	return s.Description != "" && s.Description != NoDescription
}

// Endpoint pairs an endpoint name with its spec, in catalog order.
type Endpoint struct {
	Name string       `json:"name"`
	Spec EndpointSpec `json:"spec"`
}

// GroupInfo summarises one group. Computed on demand, never cached.
type GroupInfo struct {
	// Name is the group name.
	Name string `json:"name"`

	// Endpoints is the number of endpoints in the group.
	Endpoints int `json:"endpoints"`

	// Types is a histogram of wire message types within the group.
	Types map[string]int `json:"types"`
}

// SearchResult is one hit from Search. Address is built without an instance
// index because search does not know which instance the caller wants.
type SearchResult struct {
	Group    string       `json:"group"`
	Endpoint string       `json:"endpoint"`
	Spec     EndpointSpec `json:"spec"`
	Address  string       `json:"address"`
}

// Filter narrows a Search to one group and/or one wire message type.
// Both matches are exact and case-sensitive; empty fields match everything.
type Filter struct {
	Group string
	Type  string
}

// Stats aggregates catalog-wide counts.
type Stats struct {
	// Groups is the total group count.
	Groups int `json:"groups"`

	// Endpoints is the total endpoint count.
	Endpoints int `json:"endpoints"`

	// Documented counts endpoints whose description is not the placeholder.
	Documented int `json:"documented"`

	// Types is a histogram of wire message types across the whole catalog.
	Types map[string]int `json:"types"`
}
