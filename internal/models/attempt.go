package models

// TimestampLayout is the fixed-width UTC ISO-8601 layout used for attempt
// timestamps. Fixed width keeps lexicographic order equal to chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Improvement statuses reported by a comparison.
const (
	ImprovementBetter = "better"
	ImprovementSame   = "same"
	ImprovementWorse  = "worse"
)

// ComparisonResult describes progress between two attempts.
type ComparisonResult struct {
	ImprovementStatus string   `json:"improvement_status"`
	KeyChanges        []string `json:"key_changes"`
	Encouragement     string   `json:"encouragement"`
}

// Attempt is one persisted explanation attempt. It is written once and never mutated.
type Attempt struct {
	AttemptID          string            `json:"attempt_id"`
	Timestamp          string            `json:"timestamp"`
	Concept            string            `json:"concept"`
	TargetAudience     string            `json:"target_audience"`
	ExplanationText    string            `json:"explanation_text"`
	AnalysisResult     AnalysisResult    `json:"analysis_result"`
	ReferencedChunkIDs []int             `json:"referenced_chunk_ids"`
	Comparison         *ComparisonResult `json:"comparison"`
}

// AnalysisRequest is the input of a single analysis run.
type AnalysisRequest struct {
	Concept               string  `json:"concept"`
	Explanation           string  `json:"explanation"`
	TargetAudience        string  `json:"target_audience"`
	SourceText            string  `json:"source_text,omitempty"`
	PreviousAttemptID     string  `json:"previous_attempt_id,omitempty"`
	TotalTimeSeconds      float64 `json:"total_time_seconds,omitempty"`
	ActiveSpeakingSeconds float64 `json:"active_speaking_seconds,omitempty"`
}

// AnalysisResponse is the assembled result of a single analysis run.
type AnalysisResponse struct {
	AttemptID        string            `json:"attempt_id"`
	Timestamp        string            `json:"timestamp"`
	Analysis         AnalysisResult    `json:"analysis"`
	Comparison       *ComparisonResult `json:"comparison,omitempty"`
	ReferencedChunks []ScoredChunk     `json:"referenced_chunks"`
	FusionStatus     string            `json:"fusion_status"`
}
