// Package logging provides structured logging for mixcore built on log/slog.
//
// The Logger wraps slog.Logger with service defaults and config-driven
// format and level selection. Components receive a Logger (or a narrower
// local interface) by injection; none construct their own.
package logging
