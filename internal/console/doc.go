// Package console manages the single live session to a mixing console.
//
// Reads are query-and-wait: a bare-address OSC message goes out and the
// reply is correlated through a latest-value-per-address buffer. Writes are
// fire-and-forget with type checking and range clamping. The package also
// carries the fixed deny-list of endpoints that require explicit human
// confirmation before being sent; enforcing that confirmation is the calling
// surface's job.
package console
