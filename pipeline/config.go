package pipeline

import (
	"fmt"
	"time"
)

const defaultPipeline = "pyannote/speaker-diarization-community-1"

// Config holds diarization pipeline configuration.
type Config struct {
	// Pipeline is the pretrained pipeline identifier.
	Pipeline string `yaml:"pipeline" mapstructure:"pipeline"`
	// AuthToken authenticates against the model provider. Optional but
	// recommended; without it loading may fail for gated models.
	AuthToken string `yaml:"auth_token" mapstructure:"auth_token"`
	// CacheDir is the local model artifact cache directory.
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"`
	// Speakers bounds the number of speakers per recording.
	Speakers SpeakersConfig `yaml:"speakers" mapstructure:"speakers"`
	// InvokeTimeout is the hard deadline for one diarization run.
	// Zero disables the deadline.
	InvokeTimeout time.Duration `yaml:"invoke_timeout" mapstructure:"invoke_timeout"`
	// Overrides tunes the pipeline's hyperparameters after loading.
	Overrides Overrides `yaml:"overrides" mapstructure:"overrides"`
}

// SpeakersConfig constrains how many speakers the engine may detect.
// The recordings this service exists for are two-person conversations, so
// all three bounds default to 2.
type SpeakersConfig struct {
	Num int `yaml:"num" mapstructure:"num"`
	Min int `yaml:"min" mapstructure:"min"`
	Max int `yaml:"max" mapstructure:"max"`
}

// Overrides holds optional hyperparameter overrides applied on top of the
// pipeline's instantiated defaults. Nil fields keep the pipeline default.
type Overrides struct {
	// ClusteringThreshold controls how aggressively voice embeddings merge
	// into one speaker identity (higher = more distinct speakers retained).
	ClusteringThreshold *float64 `yaml:"clustering_threshold" mapstructure:"clustering_threshold"`
	// SegMinDurationOn is the minimum speech-turn duration in seconds.
	SegMinDurationOn *float64 `yaml:"seg_min_duration_on" mapstructure:"seg_min_duration_on"`
	// SegMinDurationOff is the minimum gap duration in seconds.
	SegMinDurationOff *float64 `yaml:"seg_min_duration_off" mapstructure:"seg_min_duration_off"`
	// SegThreshold is the segmentation confidence threshold.
	SegThreshold *float64 `yaml:"seg_threshold" mapstructure:"seg_threshold"`
	// SegOnset is the speech-start detection threshold (0-1).
	SegOnset *float64 `yaml:"seg_onset" mapstructure:"seg_onset"`
	// SegOffset is the speech-end detection threshold (0-1).
	SegOffset *float64 `yaml:"seg_offset" mapstructure:"seg_offset"`
}

// Empty reports whether no override is set.
func (o Overrides) Empty() bool {
	return o.ClusteringThreshold == nil &&
		o.SegMinDurationOn == nil &&
		o.SegMinDurationOff == nil &&
		o.SegThreshold == nil &&
		o.SegOnset == nil &&
		o.SegOffset == nil
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Pipeline == "" {
		c.Pipeline = defaultPipeline
	}
	if c.Speakers.Num == 0 && c.Speakers.Min == 0 && c.Speakers.Max == 0 {
		c.Speakers = SpeakersConfig{Num: 2, Min: 2, Max: 2}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Pipeline == "" {
		return fmt.Errorf("pipeline.pipeline is required")
	}
	if c.Speakers.Num < 0 || c.Speakers.Min < 0 || c.Speakers.Max < 0 {
		return fmt.Errorf("pipeline.speakers values must be non-negative")
	}
	if c.Speakers.Min > 0 && c.Speakers.Max > 0 && c.Speakers.Min > c.Speakers.Max {
		return fmt.Errorf("pipeline.speakers.min must not exceed max (got: %d > %d)", c.Speakers.Min, c.Speakers.Max)
	}
	if c.InvokeTimeout < 0 {
		return fmt.Errorf("pipeline.invoke_timeout must be non-negative")
	}
	return nil
}
