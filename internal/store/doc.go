// Package store persists playback records and their derived metadata in
// SQLite. All rows are keyed by (track id, owner); writes are replace-semantic
// upserts and enrichment rows are constrained to existing tracks by a
// composite foreign key.
package store
