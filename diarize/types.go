package diarize

// Upload is one uploaded audio payload. It exists only within one request
// and is never persisted.
type Upload struct {
	// Data is the raw file content.
	Data []byte
	// ContentType is the declared media type. May be empty.
	ContentType string
	// Filename is the client-supplied file name. May be empty.
	Filename string
}

// Segment is one speaker turn in the normalized response.
type Segment struct {
	// Speaker is the engine-assigned speaker label.
	Speaker string `json:"speaker"`
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
	// Duration is End minus Start.
	Duration float64 `json:"duration"`
}

// Result is the normalized diarization response. Constructed fresh per
// request and immutable once returned.
type Result struct {
	Success bool `json:"success"`
	// Segments follow engine emission order (chronological).
	Segments []Segment `json:"segments"`
	// TotalSpeakers is the count of distinct speaker labels observed.
	TotalSpeakers int `json:"total_speakers"`
	// TotalDuration is the maximum end time across all segments.
	TotalDuration float64 `json:"total_duration"`
	// Message is a human-readable processing summary.
	Message string `json:"message,omitempty"`
}
