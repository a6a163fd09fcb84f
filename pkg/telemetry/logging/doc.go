// Package logging configures the process-wide structured logger. Components
// obtain their loggers with slog.Default().With("component", ...), so setting
// the default handler here is all the wiring the rest of the service needs.
package logging
