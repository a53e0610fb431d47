package events

import (
	"time"

	"explanation-coach-service/internal/models"
)

// NewAttemptSaved builds the saved event for a persisted attempt. Only
// computed metrics are carried; nil means the metric was absent.
func NewAttemptSaved(a models.Attempt, filler *models.FillerStats, pace *models.SpeakingMetrics) models.AttemptSaved {
	ev := models.AttemptSaved{
		EventType:          EventAttemptSaved,
		AttemptID:          a.AttemptID,
		Concept:            a.Concept,
		TargetAudience:     a.TargetAudience,
		Timestamp:          time.Now().UnixMilli(),
		GapCount:           len(a.AnalysisResult.Gaps),
		ReferencedChunkIDs: append([]int{}, a.ReferencedChunkIDs...),
	}
	if filler != nil {
		density := filler.FillerDensity
		ev.FillerDensity = &density
	}
	if pace != nil {
		ratio := pace.PauseRatio
		ev.PauseRatio = &ratio
	}
	return ev
}

// NewAttemptCompared builds the compared event for an attempt that carries a comparison.
func NewAttemptCompared(a models.Attempt, previousAttemptID string, fallback bool) models.AttemptCompared {
	ev := models.AttemptCompared{
		EventType:         EventAttemptCompared,
		AttemptID:         a.AttemptID,
		PreviousAttemptID: previousAttemptID,
		Timestamp:         time.Now().UnixMilli(),
		Fallback:          fallback,
	}
	if a.Comparison != nil {
		ev.ImprovementStatus = a.Comparison.ImprovementStatus
	}
	return ev
}
