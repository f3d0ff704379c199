// Package hub fetches model artifacts from a Hugging Face style hub so the
// pipeline cache can be prewarmed at image build time instead of first
// request. Downloads stream through a sha256 hash, land in a .part file, and
// are renamed into place only after verification.
package hub

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skillsenselab/diard/logger"
	"github.com/skillsenselab/diard/util"
	"github.com/skillsenselab/diard/version"
)

const (
	defaultEndpoint = "https://huggingface.co"
	defaultRetries  = 3
	defaultTimeout  = 10 * time.Minute
)

// Config holds hub client configuration.
type Config struct {
	// Endpoint is the hub base URL.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Token authenticates against the hub. Required for gated models.
	Token string `yaml:"token" mapstructure:"token"`
	// CacheDir is the local root for fetched artifacts.
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"`
	// Retries is the number of download attempts per file.
	Retries int `yaml:"retries" mapstructure:"retries"`
	// Timeout bounds one download request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = defaultEndpoint
	}
	if c.Retries == 0 {
		c.Retries = defaultRetries
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// FileSpec names one artifact within a repository. SHA256 is optional; when
// set, both fresh downloads and cache hits are verified against it.
type FileSpec struct {
	Path   string `yaml:"path" mapstructure:"path"`
	SHA256 string `yaml:"sha256" mapstructure:"sha256"`
}

// Client downloads model artifacts into the local cache.
type Client struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger
}

// NewClient creates a hub client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	cfg.ApplyDefaults()
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.WithComponent("hub"),
	}
}

// FetchRepo fetches every named file of a repository, skipping files already
// present and verified in the cache.
func (c *Client) FetchRepo(ctx context.Context, repo string, files []FileSpec) error {
	c.log.Info("Fetching model artifacts", map[string]interface{}{
		"repo":  repo,
		"files": len(files),
		"token": util.MaskSecret(c.cfg.Token, 4),
	})

	for _, f := range files {
		if err := c.FetchFile(ctx, repo, f); err != nil {
			return fmt.Errorf("fetch %s/%s: %w", repo, f.Path, err)
		}
	}
	return nil
}

// FetchFile downloads one artifact into the cache unless a verified copy is
// already there.
func (c *Client) FetchFile(ctx context.Context, repo string, spec FileSpec) error {
	dest := filepath.Join(c.cfg.CacheDir, filepath.FromSlash(repo), filepath.FromSlash(spec.Path))

	if c.cached(dest, spec.SHA256) {
		c.log.Debug("Artifact already cached", map[string]interface{}{
			"path": dest,
		})
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	url := fmt.Sprintf("%s/%s/resolve/main/%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), repo, spec.Path)

	var lastErr error
	for attempt := 1; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 1 {
			c.log.Warn("Retrying download", map[string]interface{}{
				"attempt": attempt,
				"max":     c.cfg.Retries,
				"url":     url,
			})
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
			}
		}

		lastErr = c.downloadOnce(ctx, url, dest, spec.SHA256)
		if lastErr == nil {
			c.log.Info("Artifact fetched", map[string]interface{}{
				"path": dest,
			})
			return nil
		}
	}
	return lastErr
}

// cached reports whether dest exists and, if a checksum is expected, matches it.
func (c *Client) cached(dest, expectedSHA256 string) bool {
	if _, err := os.Stat(dest); err != nil {
		return false
	}
	if expectedSHA256 == "" {
		return true
	}
	if err := VerifyChecksum(dest, expectedSHA256); err != nil {
		c.log.Warn("Cached artifact failed verification, refetching", map[string]interface{}{
			"path":  dest,
			"error": err.Error(),
		})
		return false
	}
	return true
}

func (c *Client) downloadOnce(ctx context.Context, url, dest, expectedSHA256 string) error {
	tempPath := dest + ".part"
	_ = os.Remove(tempPath)

	outFile, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	success := false
	defer func() {
		_ = outFile.Close()
		if !success {
			_ = os.Remove(tempPath)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "diard/"+version.GetShortVersion())
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(outFile, hash), resp.Body); err != nil {
		return fmt.Errorf("download body: %w", err)
	}

	if err := outFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}

	actual := hex.EncodeToString(hash.Sum(nil))
	expected := strings.ToLower(strings.TrimSpace(expectedSHA256))
	if expected != "" && actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}

	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tempPath, dest); err != nil {
		return fmt.Errorf("move temp file into destination: %w", err)
	}

	success = true
	return nil
}

// VerifyChecksum hashes the file at path and compares it against the
// expected sha256 hex digest.
func VerifyChecksum(path, expectedSHA256 string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash file: %w", err)
	}

	actual := hex.EncodeToString(h.Sum(nil))
	expected := strings.ToLower(strings.TrimSpace(expectedSHA256))
	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}
