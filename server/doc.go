// Package server provides the HTTP server for the diarization service,
// using Gin with h2c so clients can stream large audio uploads over
// HTTP/2 cleartext.
//
// The server follows the component lifecycle pattern and ships with a
// standard middleware chain and operational endpoints.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging and an INTERNAL_ERROR body
//   - RequestID: X-Request-Id generation and propagation
//   - CORS: cross-origin resource sharing configuration
//   - BodySizeLimit: request body size limits sized for audio uploads
//   - RequestLogger: request logging with duration tracking
//   - RateLimit: per-client sliding-window rate limiting for /process
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: service status and pipeline load state
//   - /alive: Kubernetes liveness probe
//   - /ready: Kubernetes readiness probe
//   - /info: build and version information
//   - /metrics: runtime memory and goroutine statistics
package server
