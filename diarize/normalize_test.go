package diarize

import (
	"testing"

	"github.com/skillsenselab/diard/engine"
)

func TestNormalize(t *testing.T) {
	turns := []engine.Turn{
		{Speaker: "SPEAKER_00", Start: 0, End: 2},
		{Speaker: "SPEAKER_01", Start: 1.5, End: 3},
		{Speaker: "SPEAKER_00", Start: 3, End: 5},
	}

	result, err := Normalize(turns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Success {
		t.Error("expected success=true")
	}
	if result.TotalSpeakers != 2 {
		t.Errorf("expected 2 speakers, got %d", result.TotalSpeakers)
	}
	if result.TotalDuration != 5.0 {
		t.Errorf("expected total duration 5.0, got %v", result.TotalDuration)
	}
	if result.Message != "Successfully processed 3 segments" {
		t.Errorf("unexpected message: %s", result.Message)
	}

	wantDurations := []float64{2.0, 1.5, 2.0}
	if len(result.Segments) != len(wantDurations) {
		t.Fatalf("expected %d segments, got %d", len(wantDurations), len(result.Segments))
	}
	for i, seg := range result.Segments {
		if seg.Duration != wantDurations[i] {
			t.Errorf("segment %d: expected duration %v, got %v", i, wantDurations[i], seg.Duration)
		}
	}

	// Emission order is preserved even when turns overlap.
	if result.Segments[1].Speaker != "SPEAKER_01" || result.Segments[1].Start != 1.5 {
		t.Errorf("segment order not preserved: %+v", result.Segments)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	result, err := Normalize(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("zero turns should still be a success")
	}
	if len(result.Segments) != 0 {
		t.Errorf("expected empty segments, got %d", len(result.Segments))
	}
	if result.Segments == nil {
		t.Error("segments should encode as [] not null")
	}
	if result.TotalSpeakers != 0 {
		t.Errorf("expected 0 speakers, got %d", result.TotalSpeakers)
	}
	if result.TotalDuration != 0 {
		t.Errorf("expected 0 total duration, got %v", result.TotalDuration)
	}
	if result.Message != "Successfully processed 0 segments" {
		t.Errorf("unexpected message: %s", result.Message)
	}
}

func TestNormalizeNegativeDuration(t *testing.T) {
	turns := []engine.Turn{
		{Speaker: "SPEAKER_00", Start: 3, End: 2},
	}
	if _, err := Normalize(turns); err == nil {
		t.Fatal("expected error for end < start")
	}
}
