// Package config loads and validates mixcore configuration.
//
// Configuration is read from a YAML file with hardcoded defaults applied
// first and MIXCORE_* environment variables applied last. A configuration
// that fails validation is rejected at startup rather than partially used.
package config
