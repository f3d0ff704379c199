package diarize

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/diard/engine"
	"github.com/skillsenselab/diard/logger"
)

var errFake = errors.New("engine exploded")

func newTestRouter(t *testing.T, d Diarizer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewDefault("test")
	svc := NewService(d, NewStaging(t.TempDir(), log), log, nil)
	r := gin.New()
	RegisterRoutes(r, svc)
	return r
}

func multipartUpload(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		`form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func postProcess(t *testing.T, r *gin.Engine, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/process", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestProcessEndpointSuccess(t *testing.T) {
	fake := &fakeDiarizer{
		loaded: true,
		turns: []engine.Turn{
			{Speaker: "SPEAKER_00", Start: 0, End: 2},
			{Speaker: "SPEAKER_01", Start: 2, End: 3.5},
		},
	}
	r := newTestRouter(t, fake)

	body, ct := multipartUpload(t, "audio", "call.wav", "audio/wav", []byte("fake audio"))
	rr := postProcess(t, r, body, ct)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Success       bool      `json:"success"`
		Segments      []Segment `json:"segments"`
		TotalSpeakers int       `json:"total_speakers"`
		TotalDuration float64   `json:"total_duration"`
		Message       string    `json:"message"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if len(resp.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(resp.Segments))
	}
	if resp.Segments[0].Duration != 2.0 {
		t.Errorf("expected first duration 2.0, got %v", resp.Segments[0].Duration)
	}
	if resp.TotalSpeakers != 2 {
		t.Errorf("expected 2 speakers, got %d", resp.TotalSpeakers)
	}
	if resp.TotalDuration != 3.5 {
		t.Errorf("expected total duration 3.5, got %v", resp.TotalDuration)
	}
	if resp.Message != "Successfully processed 2 segments" {
		t.Errorf("unexpected message: %s", resp.Message)
	}
}

func TestProcessEndpointPipelineUnavailable(t *testing.T) {
	fake := &fakeDiarizer{loaded: false}
	r := newTestRouter(t, fake)

	body, ct := multipartUpload(t, "audio", "call.wav", "audio/wav", []byte("fake audio"))
	rr := postProcess(t, r, body, ct)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	assertErrorBody(t, rr, "PIPELINE_UNAVAILABLE")
}

func TestProcessEndpointRejectsNonAudio(t *testing.T) {
	fake := &fakeDiarizer{loaded: true}
	r := newTestRouter(t, fake)

	body, ct := multipartUpload(t, "audio", "notes.txt", "text/plain", []byte("hello"))
	rr := postProcess(t, r, body, ct)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	assertErrorBody(t, rr, "UNSUPPORTED_MEDIA_TYPE")
}

func TestProcessEndpointExtensionFallback(t *testing.T) {
	fake := &fakeDiarizer{
		loaded: true,
		turns:  []engine.Turn{{Speaker: "SPEAKER_00", Start: 0, End: 1}},
	}
	r := newTestRouter(t, fake)

	// No per-part Content-Type: the extension allow-list decides.
	body, ct := multipartUpload(t, "audio", "video.MP4", "", []byte("fake audio"))
	rr := postProcess(t, r, body, ct)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 via extension fallback, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestProcessEndpointEngineError(t *testing.T) {
	fake := &fakeDiarizer{loaded: true, err: errFake}
	r := newTestRouter(t, fake)

	body, ct := multipartUpload(t, "audio", "call.wav", "audio/wav", []byte("fake audio"))
	rr := postProcess(t, r, body, ct)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	assertErrorBody(t, rr, "ENGINE_ERROR")
}

func TestProcessEndpointMissingField(t *testing.T) {
	fake := &fakeDiarizer{loaded: true}
	r := newTestRouter(t, fake)

	body, ct := multipartUpload(t, "file", "call.wav", "audio/wav", []byte("fake audio"))
	rr := postProcess(t, r, body, ct)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	assertErrorBody(t, rr, "INVALID_INPUT")
}

func assertErrorBody(t *testing.T, rr *httptest.ResponseRecorder, wantCode string) {
	t.Helper()
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON error body: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error != wantCode {
		t.Errorf("expected error %s, got %s", wantCode, resp.Error)
	}
}
