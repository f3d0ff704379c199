// Command fetch-model prefetches diarization model artifacts into the local
// cache so container startup does not depend on the model hub. Intended for
// image build steps.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/skillsenselab/diard/config"
	"github.com/skillsenselab/diard/hub"
	"github.com/skillsenselab/diard/logger"
)

func main() {
	var (
		pipelineID = flag.String("pipeline", "", "pipeline repository (default from config)")
		cacheDir   = flag.String("cache-dir", "", "artifact cache directory (default from config)")
		files      = flag.String("files", "config.yaml", "comma-separated artifact paths to fetch")
		timeout    = flag.Duration("timeout", 30*time.Minute, "overall fetch deadline")
	)
	flag.Parse()

	cfg, err := config.Load("diard")
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch-model: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging)
	log := logger.NewDefault("fetch-model")

	repo := cfg.Pipeline.Pipeline
	if *pipelineID != "" {
		repo = *pipelineID
	}
	dir := cfg.Pipeline.CacheDir
	if *cacheDir != "" {
		dir = *cacheDir
	}

	token := cfg.Pipeline.AuthToken
	if token == "" {
		token = os.Getenv("HF_TOKEN")
	}
	if token == "" {
		log.Fatal("No model provider token: set PIPELINE_AUTH_TOKEN or HF_TOKEN")
	}

	var specs []hub.FileSpec
	for _, f := range strings.Split(*files, ",") {
		if f = strings.TrimSpace(f); f != "" {
			specs = append(specs, hub.FileSpec{Path: f})
		}
	}

	client := hub.NewClient(hub.Config{
		Token:    token,
		CacheDir: dir,
	}, log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := client.FetchRepo(ctx, repo, specs); err != nil {
		log.Fatal("Model fetch failed", map[string]interface{}{
			"repo":  repo,
			"error": err.Error(),
		})
	}
	log.Info("Model artifacts ready", map[string]interface{}{
		"repo":      repo,
		"cache_dir": dir,
	})
}
