package endpoint_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/diard/component"
	"github.com/skillsenselab/diard/server/endpoint"
)

func doGet(t *testing.T, handler gin.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET(path, handler)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	return rr
}

func TestHealthReportsPipelineState(t *testing.T) {
	for _, loaded := range []bool{true, false} {
		rr := doGet(t, endpoint.Health("diard", func() bool { return loaded }), "/health")

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var body struct {
			Status         string `json:"status"`
			Service        string `json:"service"`
			PipelineLoaded bool   `json:"pipeline_loaded"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if body.Status != "healthy" {
			t.Errorf("expected status healthy, got %s", body.Status)
		}
		if body.Service != "diard" {
			t.Errorf("expected service diard, got %s", body.Service)
		}
		if body.PipelineLoaded != loaded {
			t.Errorf("expected pipeline_loaded=%v, got %v", loaded, body.PipelineLoaded)
		}
	}
}

func TestHealthNilStatusFunc(t *testing.T) {
	rr := doGet(t, endpoint.Health("diard", nil), "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestReadiness(t *testing.T) {
	healthy := func(ctx context.Context) []component.Health {
		return []component.Health{{Name: "http-server", Status: component.StatusHealthy}}
	}
	rr := doGet(t, endpoint.Readiness("diard", healthy), "/ready")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 when components healthy, got %d", rr.Code)
	}

	unhealthy := func(ctx context.Context) []component.Health {
		return []component.Health{{Name: "http-server", Status: component.StatusUnhealthy}}
	}
	rr = doGet(t, endpoint.Readiness("diard", unhealthy), "/ready")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when a component is unhealthy, got %d", rr.Code)
	}

	degraded := func(ctx context.Context) []component.Health {
		return []component.Health{{Name: "diarization-pipeline", Status: component.StatusDegraded}}
	}
	rr = doGet(t, endpoint.Readiness("diard", degraded), "/ready")
	if rr.Code != http.StatusOK {
		t.Fatalf("degraded pipeline should not fail readiness, got %d", rr.Code)
	}
}
