package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"explanation-coach-service/internal/models"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow)
	bad     = color.New(color.FgRed, color.Bold)
	faint   = color.New(color.Faint)
)

func printAnalysis(w io.Writer, resp *models.AnalysisResponse) {
	faint.Fprintf(w, "attempt %s  %s  fusion=%s\n", resp.AttemptID, resp.Timestamp, resp.FusionStatus)
	printResult(w, resp.Analysis)

	if len(resp.ReferencedChunks) > 0 {
		heading.Fprintln(w, "References")
		for _, c := range resp.ReferencedChunks {
			fmt.Fprintf(w, "  [chunk %d] score=%d  %s\n", c.ChunkID, c.RelevanceScore, truncate(c.Text, 70))
		}
	}
	if resp.Comparison != nil {
		printComparison(w, resp.Comparison)
	}
}

func printAttempt(w io.Writer, a *models.Attempt) {
	heading.Fprintf(w, "%s", a.Concept)
	faint.Fprintf(w, "  (for %s)\n", a.TargetAudience)
	faint.Fprintf(w, "attempt %s  %s\n", a.AttemptID, a.Timestamp)
	fmt.Fprintf(w, "\n%s\n\n", a.ExplanationText)
	printResult(w, a.AnalysisResult)
	if a.Comparison != nil {
		printComparison(w, a.Comparison)
	}
}

func printHistory(w io.Writer, attempts []models.Attempt) {
	if len(attempts) == 0 {
		warn.Fprintln(w, "No attempts yet.")
		return
	}
	for _, a := range attempts {
		status := ""
		if a.Comparison != nil {
			status = statusColor(a.Comparison.ImprovementStatus).Sprint(a.Comparison.ImprovementStatus)
		}
		fmt.Fprintf(w, "%s  %s  %-30s gaps=%d %s\n",
			faint.Sprint(a.Timestamp), a.AttemptID, truncate(a.Concept, 30), len(a.AnalysisResult.Gaps), status)
	}
}

func printResult(w io.Writer, r models.AnalysisResult) {
	heading.Fprintln(w, "Summary")
	fmt.Fprintf(w, "  %s\n", r.Summary)
	printList(w, "Gaps", r.Gaps, bad)
	printList(w, "Suggestions", r.Suggestions, good)
	printList(w, "Follow-up questions", r.FollowUpQuestions, warn)

	if m := r.SpeakingMetrics; m != nil {
		heading.Fprintln(w, "Pace")
		fmt.Fprintf(w, "  total %.1fs, active %.1fs, pause ratio %.2f\n", m.TotalTimeSeconds, m.ActiveSpeakingSeconds, m.PauseRatio)
		if m.Insight != "" {
			fmt.Fprintf(w, "  %s\n", m.Insight)
		}
	}
	if f := r.FillerAnalysis; f != nil {
		heading.Fprintln(w, "Fillers")
		fmt.Fprintf(w, "  %d fillers (density %.3f): %s\n", f.TotalFillerCount, f.FillerDensity, strings.Join(f.CommonFillers, ", "))
		if f.Insight != "" {
			fmt.Fprintf(w, "  %s\n", f.Insight)
		}
	}
	if q := r.InterviewerFollowup; q != nil && q.Question != "" {
		heading.Fprintln(w, "Interviewer follow-up")
		fmt.Fprintf(w, "  %s\n", q.Question)
	}
}

func printComparison(w io.Writer, c *models.ComparisonResult) {
	heading.Fprint(w, "Progress: ")
	statusColor(c.ImprovementStatus).Fprintln(w, strings.ToUpper(c.ImprovementStatus))
	for _, k := range c.KeyChanges {
		fmt.Fprintf(w, "  - %s\n", k)
	}
	if c.Encouragement != "" {
		fmt.Fprintf(w, "  %s\n", c.Encouragement)
	}
}

func printList(w io.Writer, title string, items []string, bullet *color.Color) {
	if len(items) == 0 {
		return
	}
	heading.Fprintln(w, title)
	for _, it := range items {
		fmt.Fprintf(w, "  %s %s\n", bullet.Sprint("•"), it)
	}
}

func statusColor(status string) *color.Color {
	switch status {
	case models.ImprovementBetter:
		return good
	case models.ImprovementWorse:
		return bad
	default:
		return warn
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
