// Package diarize implements the request pipeline of the diarization
// service: upload validation, staging to a temp file, engine invocation
// through the pipeline handle, and normalization of raw speaker turns into
// the response shape.
//
// Each request runs validate, stage, invoke, normalize, release strictly in
// order. The staged file is exclusive to its request and removed on every
// exit path.
package diarize
