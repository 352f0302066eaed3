// Package streaming implements the HTTP client for the streaming-service API.
// Responses are decoded into named structs at this boundary; nothing untyped
// crosses into the sync pipeline. Remote failures are tagged transient so the
// batch fetcher can skip and retry them on a later run.
package streaming
