// Package server provides the webhook and jobs API HTTP server for the
// recap application.
//
// # Key Components
//
// ServerContext holds the wired collaborators shared by the HTTP server
// and the MCP tools: the processor, the in-memory JobTracker, and the
// rate-limited request queue whose shutdown it owns.
//
// Server exposes the Zoom webhook endpoints behind HMAC signature
// verification, answering endpoint.url_validation challenges inline. A
// recording.completed event spawns a background job running the full
// processing pipeline; its progress is queryable on the jobs API.
//
// Routes:
//   - POST /webhooks/recording-completed
//   - POST /webhooks/deauthorization
//   - POST /webhooks/meeting-deleted
//   - GET  /api/v1/jobs/{id}
//   - POST /api/v1/analyze
//   - GET  /healthz, GET /readyz (HealthChecker, Kubernetes probes)
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolated
// from application traffic.
//
// Job state is kept in memory only. A restart forgets unfinished jobs;
// the recording can be resubmitted, uploads are idempotent per session
// folder.
package server
