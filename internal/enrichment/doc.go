// Package enrichment fetches derived track metadata in bounded batches and
// aggregates it into the store's schema. Fetches are best-effort: a failing
// batch is skipped and surfaces only as a skip count, so callers retry gaps on
// the next sync or backfill rather than inline.
package enrichment
