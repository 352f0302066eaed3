// Package logging assembles the structured slog loggers used across replay.
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape and routing.
package logging
