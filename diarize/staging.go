package diarize

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/skillsenselab/diard/logger"
)

const defaultStagedExt = ".wav"

// Staging materializes in-memory uploads as uniquely named temporary files
// for the engine's file-path-based input contract. Every staged file lives
// for exactly one request.
type Staging struct {
	dir string
	log *logger.Logger
}

// NewStaging creates a staging manager writing into dir. An empty dir uses
// the system temporary directory.
func NewStaging(dir string, log *logger.Logger) *Staging {
	return &Staging{
		dir: dir,
		log: log.WithComponent("staging"),
	}
}

// Stage writes data to a uniquely named file and returns its path. The file
// extension is taken from the uploaded filename, defaulting to .wav.
func (s *Staging) Stage(data []byte, filename string) (string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = defaultStagedExt
	}

	f, err := os.CreateTemp(s.dir, "diard-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		s.Release(f.Name())
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		s.Release(f.Name())
		return "", fmt.Errorf("close staged file: %w", err)
	}

	s.log.Debug("Upload staged", map[string]interface{}{
		"path":  f.Name(),
		"bytes": len(data),
	})
	return f.Name(), nil
}

// Release removes a staged file. Removal failure is logged and swallowed: it
// cannot affect the correctness of an already-computed response and must
// never block it. Safe to call with an empty path or an already-removed file.
func (s *Staging) Release(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("Failed to remove staged file", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}
