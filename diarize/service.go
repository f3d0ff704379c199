package diarize

import (
	"context"
	"time"

	"github.com/skillsenselab/diard/engine"
	"github.com/skillsenselab/diard/errors"
	"github.com/skillsenselab/diard/logger"
	"github.com/skillsenselab/diard/observability"
)

// Diarizer is the slice of the pipeline handle the service depends on.
type Diarizer interface {
	// Loaded reports whether the pipeline finished loading.
	Loaded() bool
	// Diarize runs the engine against the staged audio file.
	Diarize(ctx context.Context, path string) ([]engine.Turn, error)
}

// Service orchestrates one diarization request end to end:
// validate, stage, invoke, normalize, release. All failures come back as
// *errors.AppError; the staged file is released on every exit path.
type Service struct {
	diarizer Diarizer
	staging  *Staging
	log      *logger.Logger
	metrics  *observability.Metrics
}

// NewService creates a diarization service. metrics may be nil.
func NewService(diarizer Diarizer, staging *Staging, log *logger.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		diarizer: diarizer,
		staging:  staging,
		log:      log.WithComponent("diarize"),
		metrics:  metrics,
	}
}

// Process runs the full request pipeline for one upload.
// The pipeline presence check runs first, before any file I/O.
func (s *Service) Process(ctx context.Context, up Upload) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanProcess)
	defer span.End()

	start := time.Now()
	result, err := s.process(ctx, up)
	if err != nil {
		observability.SetSpanError(ctx, err)
		status := string(errors.ErrCodeInternal)
		if appErr, ok := errors.AsAppError(err); ok {
			status = string(appErr.Code)
		}
		s.metrics.RecordRequest(ctx, status, len(up.Data), time.Since(start))
		return nil, err
	}

	observability.SetSpanAttribute(ctx, "segments", len(result.Segments))
	s.metrics.RecordRequest(ctx, "success", len(up.Data), time.Since(start))
	return result, nil
}

func (s *Service) process(ctx context.Context, up Upload) (*Result, error) {
	if !s.diarizer.Loaded() {
		return nil, errors.PipelineUnavailable()
	}

	if err := ValidateUpload(up.ContentType, up.Filename); err != nil {
		return nil, err
	}

	staged, err := s.staging.Stage(up.Data, up.Filename)
	if err != nil {
		return nil, errors.Engine(err)
	}
	defer s.staging.Release(staged)

	s.log.Info("Processing audio file", map[string]interface{}{
		"filename": up.Filename,
		"bytes":    len(up.Data),
	})

	invokeStart := time.Now()
	turns, err := s.diarizer.Diarize(ctx, staged)
	if err != nil {
		return nil, errors.Engine(err)
	}
	s.metrics.RecordEngine(ctx, len(turns), time.Since(invokeStart))

	result, err := Normalize(turns)
	if err != nil {
		return nil, errors.Engine(err)
	}

	s.log.Info("Diarization complete", map[string]interface{}{
		"segments": len(result.Segments),
		"speakers": result.TotalSpeakers,
	})
	return result, nil
}
