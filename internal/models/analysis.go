package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// FillerStats summarizes filler-word usage computed from an explanation text.
type FillerStats struct {
	TotalFillerCount int      `json:"total_filler_count"`
	FillerDensity    float64  `json:"filler_density"`
	CommonFillers    []string `json:"common_fillers"`
}

// SpeakingMetrics holds pace figures computed from recording durations.
type SpeakingMetrics struct {
	TotalTimeSeconds      float64 `json:"total_time_seconds"`
	ActiveSpeakingSeconds float64 `json:"active_speaking_seconds"`
	PauseRatio            float64 `json:"pause_ratio"`
}

// SpeakingClarity is narrative feedback about delivery.
type SpeakingClarity struct {
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// SpeakingMetricsAnalysis pairs computed pace figures with generated narrative.
type SpeakingMetricsAnalysis struct {
	SpeakingMetrics
	Insight     string   `json:"insight"`
	Suggestions []string `json:"suggestions"`
}

// FillerAnalysis pairs computed filler statistics with generated narrative.
type FillerAnalysis struct {
	FillerStats
	Insight     string   `json:"insight"`
	Suggestions []string `json:"suggestions"`
}

// InterviewerFollowup is a single depth-testing question.
type InterviewerFollowup struct {
	Question string `json:"question"`
	Intent   string `json:"intent"`
}

// AnalysisResult is the fused feedback for one explanation attempt.
type AnalysisResult struct {
	Summary             string                   `json:"summary"`
	Gaps                []string                 `json:"gaps"`
	Suggestions         []string                 `json:"suggestions"`
	FollowUpQuestions   []string                 `json:"follow_up_questions"`
	SpeakingClarity     *SpeakingClarity         `json:"speaking_clarity,omitempty"`
	SpeakingMetrics     *SpeakingMetricsAnalysis `json:"speaking_metrics,omitempty"`
	FillerAnalysis      *FillerAnalysis          `json:"filler_analysis,omitempty"`
	InterviewerFollowup *InterviewerFollowup     `json:"interviewer_followup,omitempty"`
}

// ErrNotObject is returned by DecodeAnalysis when the payload is not a JSON object.
var ErrNotObject = errors.New("analysis payload is not a JSON object")

// EmptyAnalysis returns an AnalysisResult with non-nil empty lists.
func EmptyAnalysis() AnalysisResult {
	return AnalysisResult{
		Gaps:              []string{},
		Suggestions:       []string{},
		FollowUpQuestions: []string{},
	}
}

// UnmarshalJSON accepts either a JSON object or a JSON string that encodes
// one. Anything that cannot be decoded normalizes to EmptyAnalysis.
func (a *AnalysisResult) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			*a = EmptyAnalysis()
			return nil
		}
		data = []byte(encoded)
	}

	res, err := DecodeAnalysis(data)
	if err != nil {
		*a = EmptyAnalysis()
		return nil
	}
	*a = res
	return nil
}

// DecodeAnalysis decodes a generated analysis object field by field. A field
// with an unexpected type falls back to its default instead of failing the
// whole payload; only a payload that is not a JSON object is an error.
func DecodeAnalysis(data []byte) (AnalysisResult, error) {
	fields, err := decodeObject(data)
	if err != nil {
		return AnalysisResult{}, err
	}

	res := EmptyAnalysis()
	res.Summary = decodeString(fields["summary"])
	res.Gaps = decodeStrings(fields["gaps"])
	res.Suggestions = decodeStrings(fields["suggestions"])
	res.FollowUpQuestions = decodeStrings(fields["follow_up_questions"])

	if obj, err := decodeObject(fields["speaking_clarity"]); err == nil {
		res.SpeakingClarity = &SpeakingClarity{
			Issues:      decodeStrings(obj["issues"]),
			Suggestions: decodeStrings(obj["suggestions"]),
		}
	}
	if obj, err := decodeObject(fields["speaking_metrics"]); err == nil {
		res.SpeakingMetrics = &SpeakingMetricsAnalysis{
			SpeakingMetrics: SpeakingMetrics{
				TotalTimeSeconds:      decodeFloat(obj["total_time_seconds"]),
				ActiveSpeakingSeconds: decodeFloat(obj["active_speaking_seconds"]),
				PauseRatio:            decodeFloat(obj["pause_ratio"]),
			},
			Insight:     decodeString(obj["insight"]),
			Suggestions: decodeStrings(obj["suggestions"]),
		}
	}
	if obj, err := decodeObject(fields["filler_analysis"]); err == nil {
		res.FillerAnalysis = &FillerAnalysis{
			FillerStats: FillerStats{
				TotalFillerCount: int(decodeFloat(obj["total_filler_count"])),
				FillerDensity:    decodeFloat(obj["filler_density"]),
				CommonFillers:    decodeStrings(obj["common_fillers"]),
			},
			Insight:     decodeString(obj["insight"]),
			Suggestions: decodeStrings(obj["suggestions"]),
		}
	}
	if obj, err := decodeObject(fields["interviewer_followup"]); err == nil {
		res.InterviewerFollowup = &InterviewerFollowup{
			Question: decodeString(obj["question"]),
			Intent:   decodeString(obj["intent"]),
		}
	}

	return res, nil
}

func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, ErrNotObject
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// decodeStrings accepts a list of strings, a single string, or a mixed list
// whose string elements are kept.
func decodeStrings(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if s := strings.TrimSpace(decodeString(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	if s := strings.TrimSpace(decodeString(raw)); s != "" {
		out = append(out, s)
	}
	return out
}

// decodeFloat accepts a JSON number or a numeric string.
func decodeFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	if s := decodeString(raw); s != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}
