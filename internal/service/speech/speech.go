// Package speech computes deterministic delivery metrics for an explanation:
// filler-word usage from the text and pace from recording durations.
// Nothing here depends on generation.
package speech

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"explanation-coach-service/internal/models"
	"explanation-coach-service/internal/service/outcome"
)

// MinWords is the smallest word count for which filler statistics are computed.
const MinWords = 5

// MaxCommonFillers bounds FillerStats.CommonFillers.
const MaxCommonFillers = 3

// Vocabulary is the ordered filler vocabulary. Order breaks ties between
// equally frequent fillers.
var Vocabulary = []string{
	"um", "uh", "er", "ah", "like", "you know", "so", "basically",
	"actually", "literally", "i mean", "kind of", "sort of", "right",
}

var fillerPatterns = compileVocabulary(Vocabulary)

func compileVocabulary(terms []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(terms))
	for i, term := range terms {
		words := strings.Fields(term)
		for j, w := range words {
			words[j] = regexp.QuoteMeta(w)
		}
		patterns[i] = regexp.MustCompile(`(?i)\b` + strings.Join(words, `\s+`) + `\b`)
	}
	return patterns
}

// DetectFillers counts whole-word, case-insensitive filler matches.
// It returns outcome.Absent when the text has fewer than MinWords words or
// contains no filler at all.
func DetectFillers(text string) (models.FillerStats, outcome.State) {
	wordCount := len(strings.Fields(text))
	if wordCount < MinWords {
		return models.FillerStats{}, outcome.Absent
	}

	type termCount struct {
		term  string
		count int
	}

	var (
		total  int
		counts []termCount
	)
	for i, p := range fillerPatterns {
		n := len(p.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		total += n
		counts = append(counts, termCount{term: Vocabulary[i], count: n})
	}
	if total == 0 {
		return models.FillerStats{}, outcome.Absent
	}

	// counts is in vocabulary order, so a stable sort keeps that order on ties.
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})

	common := make([]string, 0, MaxCommonFillers)
	for _, c := range counts {
		if len(common) == MaxCommonFillers {
			break
		}
		common = append(common, c.term)
	}

	return models.FillerStats{
		TotalFillerCount: total,
		FillerDensity:    round(math.Min(float64(total)/float64(wordCount), 1), 3),
		CommonFillers:    common,
	}, outcome.Present
}

// ComputePace derives the pause ratio (total-active)/total from recording
// durations. It returns outcome.Absent unless totalSeconds is positive. The
// ratio is not clamped: active time longer than the recording yields a
// negative ratio.
func ComputePace(totalSeconds, activeSeconds float64) (models.SpeakingMetrics, outcome.State) {
	if !(totalSeconds > 0) {
		return models.SpeakingMetrics{}, outcome.Absent
	}

	ratio := (totalSeconds - activeSeconds) / totalSeconds

	return models.SpeakingMetrics{
		TotalTimeSeconds:      totalSeconds,
		ActiveSpeakingSeconds: activeSeconds,
		PauseRatio:            round(ratio, 2),
	}, outcome.Present
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
