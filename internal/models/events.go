// Package models defines the data structures shared across the analysis pipeline.
package models

// AttemptSaved is published after an attempt has been appended to the history store.
type AttemptSaved struct {
	EventType          string   `json:"eventType"`
	AttemptID          string   `json:"attemptId"`
	Concept            string   `json:"concept"`
	TargetAudience     string   `json:"targetAudience"`
	Timestamp          int64    `json:"timestamp"`
	GapCount           int      `json:"gapCount"`
	ReferencedChunkIDs []int    `json:"referencedChunkIds"`
	FillerDensity      *float64 `json:"fillerDensity,omitempty"`
	PauseRatio         *float64 `json:"pauseRatio,omitempty"`
}

// AttemptCompared is published when an attempt was compared against a previous one.
type AttemptCompared struct {
	EventType         string `json:"eventType"`
	AttemptID         string `json:"attemptId"`
	PreviousAttemptID string `json:"previousAttemptId"`
	Timestamp         int64  `json:"timestamp"`
	ImprovementStatus string `json:"improvementStatus"`
	Fallback          bool   `json:"fallback"`
}
