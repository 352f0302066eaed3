// Package main hosts the replay CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into sync and
// backfill runs, recent-history views, user-registry management, and
// configuration scaffolding. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
package main
