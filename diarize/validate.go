package diarize

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/skillsenselab/diard/errors"
)

const genericBinaryType = "application/octet-stream"

// audioExtensions is the allow-list for extension fallback when the declared
// media type is missing or generic.
var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".aac":  true,
	".wma":  true,
	".opus": true,
	".mp4":  true,
	".m4v":  true,
}

// ValidateUpload applies the two-tier media-type policy: any audio/* declared
// type is accepted; a missing or generic type falls back to the extension
// allow-list; an explicit non-audio type is rejected regardless of extension.
// Validation is metadata-only — a mislabeled file passes here and fails in
// the engine instead.
func ValidateUpload(contentType, filename string) error {
	if strings.HasPrefix(contentType, "audio/") {
		return nil
	}

	if contentType == "" || contentType == genericBinaryType {
		ext := strings.ToLower(filepath.Ext(filename))
		if audioExtensions[ext] {
			return nil
		}
		declared := contentType
		if declared == "" {
			declared = "unknown"
		}
		return errors.UnsupportedMediaType(declared, fmt.Sprintf(
			"Invalid file type: %s. Expected audio file (supported extensions: %s).",
			declared, allowedExtensionList(),
		))
	}

	return errors.UnsupportedMediaType(contentType, fmt.Sprintf(
		"Invalid file type: %s. Expected audio file.", contentType,
	))
}

// allowedExtensionList renders the allow-list sorted for stable messages.
func allowedExtensionList() string {
	exts := make([]string, 0, len(audioExtensions))
	for ext := range audioExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
