// Package prompts holds the prompt templates sent to the generation provider.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"explanation-coach-service/internal/models"
)

// FeynmanSystem instructs the model to analyze an explanation and answer
// with a single JSON object.
const FeynmanSystem = `You are Richard Feynman. Help a student learn by analyzing their explanation.

Return ONLY raw JSON. No markdown. No intro/outro.

Instructions:
1. Compare the user's explanation to the concept's core truth.
2. Identify gaps in logic or understanding.
3. Provide constructive feedback.
4. Generate ONE 'interviewer_followup' question that tests depth or trade-offs (not just recall).
5. When speaking metrics are provided, use them as facts. Do not invent numbers.

Required JSON Structure:
{
    "summary": "assessment",
    "gaps": ["list", "of", "missing", "logic"],
    "suggestions": ["list", "of", "tips"],
    "follow_up_questions": ["question1", "question2"],
    "speaking_clarity": {
        "issues": ["rambling", "run-on sentences", "filler words"],
        "suggestions": ["pause more", "break it down"]
    },
    "speaking_metrics": {
        "active_speaking_seconds": 12,
        "total_time_seconds": 15,
        "pause_ratio": 0.2,
        "insight": "Good pace but many pauses",
        "suggestions": ["Try to maintain a steady flow"]
    },
    "filler_analysis": {
        "total_filler_count": 5,
        "filler_density": 0.05,
        "common_fillers": ["um", "like"],
        "insight": "High usage of 'like' indicates hesitation.",
        "suggestions": ["Pause instead of saying 'like'."]
    },
    "interviewer_followup": {
        "question": "If X is true, how would that affect Y?",
        "intent": "Testing depth of understanding on related concept."
    }
}`

// ComparisonSystem instructs the model to compare two attempts.
const ComparisonSystem = `You are Richard Feynman.
Your goal is to compare a student's previous explanation of a concept with their current one to track progress.

Analyze the two explanations based on:
1. Clarity: Did they simplify the jargon?
2. Accuracy: Did they fix the logical gaps identified previously?
3. Completeness: Did they incorporate new information?

Return ONLY valid JSON matching this structure exactly:
{
    "improvement_status": "better | same | worse",
    "key_changes": ["Specific thing they fixed", "New confusion introduced"],
    "encouragement": "A brief, encouraging comment on their progress and the next thing to focus on."
}`

var analysisTmpl = template.Must(template.New("analysis").Parse(`
Context: The user is explaining '{{.Concept}}' to a '{{.TargetAudience}}'.

User's Explanation:
"{{.Explanation}}"
{{if .Speaking}}
Speaking context (measured, not estimated):
{{.Speaking}}
{{end}}{{if .References}}
Reference material excerpts:
{{range .References}}[chunk {{.ChunkID}}] {{.Text}}
{{end}}{{end}}
Analyze this explanation strictly using the Feynman principles.
`))

var comparisonTmpl = template.Must(template.New("comparison").Parse(`
Concept: {{.Concept}}

Previous Explanation:
"{{.PreviousText}}"

Previous Gaps Identified:
{{.PreviousGaps}}

Current Explanation:
"{{.CurrentText}}"

Current Gaps Identified:
{{.CurrentGaps}}

Compare them. Did the student fix the gaps?
`))

// AnalysisInput is the data rendered into the analysis user prompt.
type AnalysisInput struct {
	Concept        string
	TargetAudience string
	Explanation    string
	Filler         *models.FillerStats
	Pace           *models.SpeakingMetrics
	References     []models.ScoredChunk
}

// Analysis renders the analysis user prompt. Speaking context and reference
// excerpts are omitted when absent.
func Analysis(in AnalysisInput) (string, error) {
	data := struct {
		Concept        string
		TargetAudience string
		Explanation    string
		Speaking       string
		References     []models.ScoredChunk
	}{
		Concept:        in.Concept,
		TargetAudience: in.TargetAudience,
		Explanation:    in.Explanation,
		Speaking:       speakingContext(in.Filler, in.Pace),
		References:     in.References,
	}

	var b strings.Builder
	if err := analysisTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render analysis prompt: %w", err)
	}
	return b.String(), nil
}

// ComparisonInput is the data rendered into the comparison user prompt.
type ComparisonInput struct {
	Concept      string
	PreviousText string
	PreviousGaps []string
	CurrentText  string
	CurrentGaps  []string
}

// Comparison renders the comparison user prompt. Gap lists are rendered as JSON arrays.
func Comparison(in ComparisonInput) (string, error) {
	data := struct {
		Concept      string
		PreviousText string
		PreviousGaps string
		CurrentText  string
		CurrentGaps  string
	}{
		Concept:      in.Concept,
		PreviousText: in.PreviousText,
		PreviousGaps: jsonList(in.PreviousGaps),
		CurrentText:  in.CurrentText,
		CurrentGaps:  jsonList(in.CurrentGaps),
	}

	var b strings.Builder
	if err := comparisonTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render comparison prompt: %w", err)
	}
	return b.String(), nil
}

func speakingContext(filler *models.FillerStats, pace *models.SpeakingMetrics) string {
	var lines []string
	if pace != nil {
		lines = append(lines, fmt.Sprintf(
			"- Total time: %.1fs, active speaking: %.1fs, pause ratio: %.2f",
			pace.TotalTimeSeconds, pace.ActiveSpeakingSeconds, pace.PauseRatio))
	}
	if filler != nil {
		lines = append(lines, fmt.Sprintf(
			"- Filler words: %d (density %.3f), most common: %s",
			filler.TotalFillerCount, filler.FillerDensity, strings.Join(filler.CommonFillers, ", ")))
	}
	return strings.Join(lines, "\n")
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
