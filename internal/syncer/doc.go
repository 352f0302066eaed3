// Package syncer orchestrates the reconciliation of the remote
// recently-played feed with the local store. Base records are written
// unconditionally; derived metadata is fetched only for records that lack it,
// so repeated runs converge without duplicate work. Backfill repairs gaps the
// best-effort batch fetcher left behind.
package syncer
