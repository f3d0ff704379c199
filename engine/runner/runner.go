// Package runner implements the engine boundary by shelling out to the
// pyannote worker executable. Each call is a one-shot subprocess that prints
// a JSON document on stdout; the worker loads the pretrained pipeline from
// the local model cache.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/skillsenselab/diard/engine"
	"github.com/skillsenselab/diard/logger"
	"github.com/skillsenselab/diard/process"
)

const (
	// BackendName is the name this backend reports.
	BackendName = "pyannote-runner"

	defaultBinary      = "pyannote-worker"
	defaultGracePeriod = 10 * time.Second
)

// Config holds configuration for the pyannote worker runner.
type Config struct {
	// Binary is the worker executable, resolved via PATH if not absolute.
	Binary string `yaml:"binary" mapstructure:"binary"`
	// Pipeline is the pretrained pipeline identifier passed to the worker.
	Pipeline string `yaml:"pipeline" mapstructure:"pipeline"`
	// AuthToken authenticates against the model provider. Optional.
	AuthToken string `yaml:"auth_token" mapstructure:"auth_token"`
	// CacheDir is the local model artifact cache. Optional.
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"`
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Binary == "" {
		c.Binary = defaultBinary
	}
	if c.GracePeriod == 0 {
		c.GracePeriod = defaultGracePeriod
	}
}

// Runner invokes the pyannote worker as a subprocess.
type Runner struct {
	cfg Config
	log *logger.Logger

	mu     sync.RWMutex
	params engine.Params // instantiated set, passed with every diarize call
}

// New creates a new Runner.
func New(cfg Config, log *logger.Logger) *Runner {
	cfg.ApplyDefaults()
	return &Runner{
		cfg: cfg,
		log: log.WithComponent("runner"),
	}
}

// Name returns the backend name.
func (r *Runner) Name() string { return BackendName }

// Parameters asks the worker for the pipeline's instantiated parameter set.
func (r *Runner) Parameters(ctx context.Context) (engine.Params, error) {
	out, err := r.exec(ctx, []string{"parameters", "--pipeline", r.cfg.Pipeline})
	if err != nil {
		return nil, err
	}

	var params engine.Params
	if err := json.Unmarshal(out, &params); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}
	return params, nil
}

// Instantiate records the parameter set to be applied on every diarize call.
// The worker is stateless between invocations, so instantiation is realized
// by passing the merged set along with each run.
func (r *Runner) Instantiate(ctx context.Context, params engine.Params) error {
	r.mu.Lock()
	r.params = params.Clone()
	r.mu.Unlock()

	r.log.Debug("Parameter set instantiated", map[string]interface{}{
		"stages": len(params),
	})
	return nil
}

// Diarize runs the worker against the audio file at path.
func (r *Runner) Diarize(ctx context.Context, path string, constraints engine.SpeakerConstraints) ([]engine.Turn, error) {
	args := []string{"diarize", "--pipeline", r.cfg.Pipeline, "--audio", path}
	if constraints.NumSpeakers > 0 {
		args = append(args, "--num-speakers", strconv.Itoa(constraints.NumSpeakers))
	}
	if constraints.MinSpeakers > 0 {
		args = append(args, "--min-speakers", strconv.Itoa(constraints.MinSpeakers))
	}
	if constraints.MaxSpeakers > 0 {
		args = append(args, "--max-speakers", strconv.Itoa(constraints.MaxSpeakers))
	}

	r.mu.RLock()
	params := r.params
	r.mu.RUnlock()
	if len(params) > 0 {
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode parameters: %w", err)
		}
		args = append(args, "--params-json", string(encoded))
	}

	out, err := r.exec(ctx, args)
	if err != nil {
		return nil, err
	}
	return decodeTurns(out)
}

// exec runs the worker with the given args and returns its stdout.
func (r *Runner) exec(ctx context.Context, args []string) ([]byte, error) {
	result, err := process.Run(ctx, process.Command{
		Binary:      r.cfg.Binary,
		Args:        args,
		Env:         r.env(),
		GracePeriod: r.cfg.GracePeriod,
	})
	if err != nil {
		if result != nil && len(result.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %s: %w", r.cfg.Binary, stderrTail(result.Stderr), err)
		}
		return nil, fmt.Errorf("%s: %w", r.cfg.Binary, err)
	}
	return result.Stdout, nil
}

// env builds the worker environment: auth token and model cache location.
func (r *Runner) env() []string {
	var env []string
	if r.cfg.AuthToken != "" {
		env = append(env, "HF_TOKEN="+r.cfg.AuthToken)
	}
	if r.cfg.CacheDir != "" {
		env = append(env,
			"HF_HOME="+r.cfg.CacheDir,
			"HF_HUB_CACHE="+r.cfg.CacheDir,
		)
	}
	return env
}

// workerResponse is the JSON document the worker prints on stdout.
type workerResponse struct {
	Turns []engine.Turn `json:"turns"`
	Error string        `json:"error,omitempty"`
}

// decodeTurns parses the worker's diarize output.
func decodeTurns(out []byte) ([]engine.Turn, error) {
	var resp workerResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("decode worker output: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("worker error: %s", resp.Error)
	}
	if resp.Turns == nil {
		resp.Turns = []engine.Turn{}
	}
	return resp.Turns, nil
}

// stderrTail returns the last non-empty line of stderr for error messages.
func stderrTail(stderr []byte) string {
	lines := strings.Split(strings.TrimSpace(string(stderr)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
