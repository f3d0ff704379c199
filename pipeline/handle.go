// Package pipeline owns the process-wide handle to the diarization engine.
// The handle is constructed once at startup: it loads the named pretrained
// pipeline, applies the configured hyperparameter overrides, and is read-only
// afterwards. Its absence (a failed load) is the service's degraded state,
// visible to every request through Loaded.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/skillsenselab/diard/component"
	"github.com/skillsenselab/diard/engine"
	"github.com/skillsenselab/diard/logger"
	"github.com/skillsenselab/diard/util"
)

// Handle is the process-wide handle to the loaded diarization pipeline.
// It is shared read-only by all requests; engine invocations are serialized
// because the underlying engine is not re-entrant safe.
type Handle struct {
	cfg Config
	eng engine.Pipeline
	log *logger.Logger

	invokeMu sync.Mutex // one diarization at a time per process

	mu      sync.RWMutex
	loaded  bool
	lastErr error
}

// New creates an unloaded Handle. Start performs the actual load.
func New(cfg Config, eng engine.Pipeline, log *logger.Logger) *Handle {
	cfg.ApplyDefaults()
	return &Handle{
		cfg: cfg,
		eng: eng,
		log: log.WithComponent("pipeline"),
	}
}

// Name returns the component name.
func (h *Handle) Name() string { return "pipeline" }

// Start loads the pretrained pipeline and applies hyperparameter overrides.
// A load failure leaves the service in a degraded state rather than aborting
// startup: requests see 503 and /health reports the pipeline as not loaded.
func (h *Handle) Start(ctx context.Context) error {
	if err := h.load(ctx); err != nil {
		h.mu.Lock()
		h.lastErr = err
		h.mu.Unlock()
		h.log.Error("Failed to load pipeline", map[string]interface{}{
			"pipeline": h.cfg.Pipeline,
			"error":    err.Error(),
		})
		return nil
	}

	h.mu.Lock()
	h.loaded = true
	h.lastErr = nil
	h.mu.Unlock()
	h.log.Info("Pipeline loaded successfully", map[string]interface{}{
		"pipeline": h.cfg.Pipeline,
	})
	return nil
}

// Stop releases nothing; the engine is stateless between invocations.
func (h *Handle) Stop(ctx context.Context) error { return nil }

// Health reports whether the pipeline is loaded.
func (h *Handle) Health(ctx context.Context) component.Health {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.loaded {
		return component.Health{Name: h.Name(), Status: component.StatusHealthy}
	}
	msg := "pipeline not loaded"
	if h.lastErr != nil {
		msg = h.lastErr.Error()
	}
	return component.Health{Name: h.Name(), Status: component.StatusUnhealthy, Message: msg}
}

// Loaded reports whether the pipeline finished loading. Checked by every
// request before any file I/O happens.
func (h *Handle) Loaded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loaded
}

// load resolves the pipeline and re-instantiates it with merged overrides.
func (h *Handle) load(ctx context.Context) error {
	if h.cfg.AuthToken == "" {
		h.log.Warn("Auth token not set, attempting to load without token (may fail if model requires authentication)")
	} else {
		h.log.Debug("Loading pipeline with auth token", map[string]interface{}{
			"token": util.MaskSecret(h.cfg.AuthToken, 5),
		})
	}

	if h.cfg.Overrides.Empty() {
		// Still resolve the parameter set so a broken engine setup fails at
		// startup instead of on the first request.
		if _, err := h.eng.Parameters(ctx); err != nil {
			return fmt.Errorf("load pipeline %s: %w", h.cfg.Pipeline, err)
		}
		return nil
	}

	params, err := h.eng.Parameters(ctx)
	if err != nil {
		return fmt.Errorf("load pipeline %s: %w", h.cfg.Pipeline, err)
	}

	merged, applied, skipped := mergeOverrides(params, h.cfg.Overrides)
	for _, a := range applied {
		h.log.Info("Hyperparameter override applied", map[string]interface{}{
			"param": a.target, "value": a.value,
		})
	}
	for _, s := range skipped {
		// Absent target keys are skipped, not fatal: the engine's parameter
		// schema may change between versions.
		h.log.Warn("Hyperparameter override skipped, key absent in pipeline", map[string]interface{}{
			"param": s,
		})
	}

	if len(applied) == 0 {
		return nil
	}
	if err := h.eng.Instantiate(ctx, merged); err != nil {
		return fmt.Errorf("instantiate pipeline %s: %w", h.cfg.Pipeline, err)
	}
	return nil
}

// Diarize runs the engine against the staged audio file, applying the
// configured speaker constraint and invoke timeout.
func (h *Handle) Diarize(ctx context.Context, path string) ([]engine.Turn, error) {
	h.invokeMu.Lock()
	defer h.invokeMu.Unlock()

	if h.cfg.InvokeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.InvokeTimeout)
		defer cancel()
	}

	turns, err := h.eng.Diarize(ctx, path, engine.SpeakerConstraints{
		NumSpeakers: h.cfg.Speakers.Num,
		MinSpeakers: h.cfg.Speakers.Min,
		MaxSpeakers: h.cfg.Speakers.Max,
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("diarization timed out after %s: %w", h.cfg.InvokeTimeout, err)
		}
		return nil, err
	}
	return turns, nil
}

// appliedOverride records one override that found its target key.
type appliedOverride struct {
	target string
	value  float64
}

// overrideTarget binds a configured override to its engine parameter key.
type overrideTarget struct {
	stage string
	key   string
	value *float64
}

// mergeOverrides applies overrides whose target key exists in the current
// parameter set. Overrides targeting absent keys are returned as skipped.
func mergeOverrides(params engine.Params, o Overrides) (engine.Params, []appliedOverride, []string) {
	targets := []overrideTarget{
		{"clustering", "threshold", o.ClusteringThreshold},
		{"segmentation", "min_duration_on", o.SegMinDurationOn},
		{"segmentation", "min_duration_off", o.SegMinDurationOff},
		{"segmentation", "threshold", o.SegThreshold},
		{"segmentation", "onset", o.SegOnset},
		{"segmentation", "offset", o.SegOffset},
	}

	merged := params.Clone()
	var applied []appliedOverride
	var skipped []string

	for _, t := range targets {
		if t.value == nil {
			continue
		}
		name := t.stage + "." + t.key
		stage, ok := merged[t.stage]
		if !ok {
			skipped = append(skipped, name)
			continue
		}
		if _, ok := stage[t.key]; !ok {
			skipped = append(skipped, name)
			continue
		}
		stage[t.key] = *t.value
		applied = append(applied, appliedOverride{target: name, value: *t.value})
	}

	return merged, applied, skipped
}
