// Command diard runs the speaker diarization HTTP service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/diard/component"
	"github.com/skillsenselab/diard/config"
	"github.com/skillsenselab/diard/diarize"
	"github.com/skillsenselab/diard/engine/runner"
	"github.com/skillsenselab/diard/logger"
	"github.com/skillsenselab/diard/observability"
	"github.com/skillsenselab/diard/pipeline"
	"github.com/skillsenselab/diard/server"
	"github.com/skillsenselab/diard/server/middleware"
	"github.com/skillsenselab/diard/version"
)

const serviceName = "diard"

func main() {
	if err := run(); err != nil {
		logger.Fatal("Service failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func run() error {
	cfg, err := config.Load(serviceName)
	if err != nil {
		return err
	}

	logger.Init(cfg.Logging)
	log := logger.NewDefault(cfg.Name)
	log.Info("Starting service", map[string]interface{}{
		"version":     version.GetShortVersion(),
		"environment": cfg.Environment,
		"pipeline":    cfg.Pipeline.Pipeline,
	})

	ctx := context.Background()

	var metrics *observability.Metrics
	if cfg.Observability.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Name, cfg.Version, cfg.Observability)
		if err != nil {
			return err
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()

		mp, err := observability.InitMeter(ctx, cfg.Name, cfg.Version, cfg.Observability)
		if err != nil {
			return err
		}
		defer func() { _ = mp.Shutdown(context.Background()) }()

		metrics, err = observability.NewMetrics(observability.Meter(cfg.Name))
		if err != nil {
			return err
		}
	}

	eng := runner.New(cfg.Worker, log)
	handle := pipeline.New(cfg.Pipeline, eng, log)

	staging := diarize.NewStaging(cfg.StagingDir, log)
	svc := diarize.NewService(handle, staging, log, metrics)

	srv := server.New(cfg.Server, log)
	registry := component.NewRegistry()
	if err := registry.Register(handle); err != nil {
		return err
	}
	if err := registry.Register(server.NewComponent(srv)); err != nil {
		return err
	}

	// Rate limiting guards the processing route only; probes stay unlimited.
	api := srv.GinEngine().Group("/")
	if cfg.Server.RequestsPerMinute > 0 {
		api.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.Server.RequestsPerMinute,
		}))
	}
	diarize.RegisterRoutes(api, svc)
	srv.ApplyDefaults(cfg.Name, handle.Loaded, registry.HealthAll)

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := registry.StartAll(startCtx); err != nil {
		return err
	}

	log.Info("Service ready", map[string]interface{}{
		"addr":            srv.Addr(),
		"pipeline_loaded": handle.Loaded(),
	})
	waitForSignal(log)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	return registry.StopAll(stopCtx)
}

// waitForSignal blocks until an interrupt or termination signal arrives.
func waitForSignal(log *logger.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	log.Info("Received shutdown signal", map[string]interface{}{
		"signal": sig.String(),
	})
}
