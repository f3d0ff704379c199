package diarize

import (
	"fmt"

	"github.com/skillsenselab/diard/engine"
)

// Normalize converts raw engine turns into the stable response shape.
// Segments keep engine emission order; total duration is the furthest-right
// end boundary, not the sum of durations (turns may overlap or gap). Zero
// turns is a valid, non-error result.
func Normalize(turns []engine.Turn) (*Result, error) {
	segments := make([]Segment, 0, len(turns))
	speakers := make(map[string]struct{})
	totalDuration := 0.0

	for _, turn := range turns {
		duration := turn.End - turn.Start
		if duration < 0 {
			return nil, fmt.Errorf("negative segment duration: speaker %s start=%v end=%v",
				turn.Speaker, turn.Start, turn.End)
		}

		segments = append(segments, Segment{
			Speaker:  turn.Speaker,
			Start:    turn.Start,
			End:      turn.End,
			Duration: duration,
		})

		speakers[turn.Speaker] = struct{}{}
		if turn.End > totalDuration {
			totalDuration = turn.End
		}
	}

	return &Result{
		Success:       true,
		Segments:      segments,
		TotalSpeakers: len(speakers),
		TotalDuration: totalDuration,
		Message:       fmt.Sprintf("Successfully processed %d segments", len(segments)),
	}, nil
}
