package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	// ErrCodePipelineUnavailable indicates the diarization pipeline is not loaded.
	ErrCodePipelineUnavailable ErrorCode = "PIPELINE_UNAVAILABLE"
)

// Input errors
const (
	// ErrCodeUnsupportedMedia indicates the upload is not a recognized audio file.
	ErrCodeUnsupportedMedia ErrorCode = "UNSUPPORTED_MEDIA_TYPE"
	// ErrCodeInvalidInput indicates the request input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Processing errors
const (
	// ErrCodeEngine indicates the diarization engine failed on the staged audio.
	ErrCodeEngine ErrorCode = "ENGINE_ERROR"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodePipelineUnavailable: true,
	ErrCodeEngine:              false,
	ErrCodeInternal:            false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
