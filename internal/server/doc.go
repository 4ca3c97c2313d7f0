// Package server exposes the analysis engine over HTTP.
//
// Routes:
//
//	GET /analyze?target=<domain or username>   assembled report as JSON
//	GET /healthz                               liveness probe
//	GET /metrics                               Prometheus exposition
//
// Errors are returned as {"detail": "..."} with status 400 for a missing or
// short target, 429 when the client exceeded its request rate and 500 for any
// engine failure. The cause of a 500 is logged, never returned.
package server
