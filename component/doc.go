// Package component defines the lifecycle interface and registry used by the
// diard entrypoint. The diarization pipeline and the HTTP server register as
// components; they are started in order, stopped in reverse, and report
// health through a single aggregation point.
package component
