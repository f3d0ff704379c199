// Package engine defines the boundary to the underlying speaker-diarization
// engine. The engine is treated as opaque: it can report its instantiated
// hyperparameter set, be re-instantiated with a modified set, and diarize an
// audio file on disk into speaker turns.
package engine

import "context"

// Params is an engine hyperparameter set grouped by stage, mirroring the
// instantiated-parameter shape of pyannote pipelines, e.g.
// params["clustering"]["threshold"] or params["segmentation"]["onset"].
type Params map[string]map[string]float64

// Clone returns a deep copy of the parameter set.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for stage, keys := range p {
		m := make(map[string]float64, len(keys))
		for k, v := range keys {
			m[k] = v
		}
		out[stage] = m
	}
	return out
}

// SpeakerConstraints bounds the number of speakers the engine may detect.
// Zero values mean unconstrained.
type SpeakerConstraints struct {
	// NumSpeakers is the exact number of speakers.
	NumSpeakers int `json:"num_speakers,omitempty"`
	// MinSpeakers is the minimum expected number of speakers.
	MinSpeakers int `json:"min_speakers,omitempty"`
	// MaxSpeakers is the maximum expected number of speakers.
	MaxSpeakers int `json:"max_speakers,omitempty"`
}

// Turn is one contiguous interval attributed to one speaker label, as
// produced by the engine. Labels are engine-assigned and not stable across
// calls or files.
type Turn struct {
	// Speaker is the engine-assigned speaker label.
	Speaker string `json:"speaker"`
	// Start is the turn start time in seconds.
	Start float64 `json:"start"`
	// End is the turn end time in seconds.
	End float64 `json:"end"`
}

// Pipeline is the interface diarization engine backends must implement.
type Pipeline interface {
	// Name returns the backend name.
	Name() string

	// Parameters returns the engine's current instantiated parameter set.
	Parameters(ctx context.Context) (Params, error)

	// Instantiate re-instantiates the engine with the given parameter set.
	Instantiate(ctx context.Context, params Params) error

	// Diarize runs speaker diarization on the audio file at path and returns
	// speaker turns in emission order.
	Diarize(ctx context.Context, path string, constraints SpeakerConstraints) ([]Turn, error)
}
