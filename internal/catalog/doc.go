// Package catalog serves the static database of reverse-engineered console
// control addresses.
//
// Two JSON tables (general controls and effects parameters) are loaded once
// at startup with their file order preserved, merged, and exposed through
// read-only queries: group/endpoint enumeration, spec lookup, address
// construction, substring search, and aggregate statistics.
//
// Addresses have the form /{type}/{group}/{endpoint} with an optional
// 0-based /{index} suffix for multi-path endpoints.
package catalog
