package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := Config{Name: "diard"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := Config{Name: "diard", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})

	t.Run("service name propagates to logging", func(t *testing.T) {
		cfg := Config{Name: "diard"}
		cfg.ApplyDefaults()
		if cfg.Logging.ServiceName != "diard" {
			t.Errorf("expected logging service name 'diard', got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("worker inherits pipeline identity", func(t *testing.T) {
		cfg := Config{Name: "diard"}
		cfg.Pipeline.AuthToken = "hf_secret"
		cfg.Pipeline.CacheDir = "/models"
		cfg.ApplyDefaults()

		if cfg.Worker.Pipeline != cfg.Pipeline.Pipeline {
			t.Errorf("worker pipeline %q != pipeline %q", cfg.Worker.Pipeline, cfg.Pipeline.Pipeline)
		}
		if cfg.Worker.AuthToken != "hf_secret" {
			t.Errorf("expected inherited auth token, got %q", cfg.Worker.AuthToken)
		}
		if cfg.Worker.CacheDir != "/models" {
			t.Errorf("expected inherited cache dir, got %q", cfg.Worker.CacheDir)
		}
	})

	t.Run("explicit worker settings win", func(t *testing.T) {
		cfg := Config{Name: "diard"}
		cfg.Pipeline.AuthToken = "hf_secret"
		cfg.Worker.AuthToken = "hf_other"
		cfg.ApplyDefaults()
		if cfg.Worker.AuthToken != "hf_other" {
			t.Errorf("expected explicit worker token kept, got %q", cfg.Worker.AuthToken)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{Name: "diard", Environment: "production"}
		cfg.ApplyDefaults()
		return cfg
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := valid()
		if err := cfg.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		cfg := valid()
		cfg.Name = ""
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "Name") {
			t.Fatalf("expected name validation error, got %v", err)
		}
	})

	t.Run("invalid environment", func(t *testing.T) {
		cfg := valid()
		cfg.Environment = "qa"
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected environment validation error")
		}
	})

	t.Run("invalid server port", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 99999
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "server.port") {
			t.Fatalf("expected server.port error, got %v", err)
		}
	})

	t.Run("invalid sample rate", func(t *testing.T) {
		cfg := valid()
		cfg.Observability.SampleRate = 1.5
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "sample_rate") {
			t.Fatalf("expected sample_rate error, got %v", err)
		}
	})
}

func TestLoadWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: diard
environment: staging
version: "1.0.0"
server:
  port: 9090
pipeline:
  speakers:
    num: 3
    min: 2
    max: 4
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load("diard", WithConfigFile(configPath), WithEnvFile(filepath.Join(dir, ".env")))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Pipeline.Speakers.Num != 3 || cfg.Pipeline.Speakers.Max != 4 {
		t.Errorf("speaker bounds not loaded: %+v", cfg.Pipeline.Speakers)
	}
	// Defaults still fill what the file left out.
	if cfg.Pipeline.Pipeline == "" {
		t.Error("expected default pipeline identifier")
	}
}

func TestLoadMissingFile(t *testing.T) {
	// With no config file found, Load still succeeds on defaults alone.
	cfg, err := Load("diard",
		WithConfigFile("/nonexistent/path.yml"),
		WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("expected Load to succeed with missing file, got %v", err)
	}
	if cfg.Name != "diard" {
		t.Errorf("expected service name fallback, got %q", cfg.Name)
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/diard/config.yml": true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("diard", LoaderConfig{})
	if files.ConfigFile != "./cmd/diard/config.yml" {
		t.Errorf("expected config file at ./cmd/diard/config.yml, got %q", files.ConfigFile)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestEnvKeyVariants(t *testing.T) {
	variants := generateEnvKeyVariants("PIPELINE_AUTH_TOKEN")
	want := map[string]bool{
		"pipeline_auth_token": false,
		"pipeline.auth.token": false,
		"pipeline.auth_token": false,
	}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("expected variant %q in %v", k, variants)
		}
	}
}
