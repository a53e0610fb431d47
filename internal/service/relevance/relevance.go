// Package relevance ranks chunks against a query by keyword overlap.
package relevance

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"explanation-coach-service/internal/models"
)

var wordPattern = regexp.MustCompile(`\w+`)

var stopwords = map[string]struct{}{
	"the": {}, "be": {}, "to": {}, "of": {}, "and": {}, "a": {}, "in": {}, "that": {},
	"have": {}, "i": {}, "it": {}, "for": {}, "not": {}, "on": {}, "with": {}, "he": {},
	"as": {}, "you": {}, "do": {}, "at": {}, "this": {}, "but": {}, "his": {}, "by": {},
	"from": {}, "they": {}, "we": {}, "say": {}, "her": {}, "she": {}, "or": {}, "an": {},
	"will": {}, "my": {}, "one": {}, "all": {}, "would": {}, "there": {}, "their": {},
	"what": {}, "so": {}, "up": {}, "out": {}, "if": {}, "about": {}, "who": {}, "get": {},
	"which": {}, "go": {}, "me": {}, "is": {}, "are": {}, "was": {}, "were": {},
}

// Keywords normalizes text into its set of keywords: lowercase word tokens
// that are not stopwords and are longer than two characters.
func Keywords(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// Score returns the number of keywords shared by the two keyword sets.
func Score(query, chunk map[string]struct{}) int {
	if len(chunk) < len(query) {
		query, chunk = chunk, query
	}
	n := 0
	for k := range query {
		if _, ok := chunk[k]; ok {
			n++
		}
	}
	return n
}

// Select returns up to topK chunks ordered by descending overlap score, ties
// kept in source order. Zero-score chunks are included when fewer than topK
// chunks overlap the query. A blank query returns the first topK chunks
// unscored.
func Select(query string, chunks []models.Chunk, topK int) []models.ScoredChunk {
	if len(chunks) == 0 || topK <= 0 {
		return []models.ScoredChunk{}
	}

	if strings.TrimSpace(query) == "" {
		n := min(topK, len(chunks))
		out := make([]models.ScoredChunk, n)
		for i := 0; i < n; i++ {
			out[i] = models.ScoredChunk{Chunk: chunks[i]}
		}
		return out
	}

	queryKeywords := Keywords(query)
	scored := make([]models.ScoredChunk, len(chunks))
	for i, c := range chunks {
		scored[i] = models.ScoredChunk{
			Chunk:          c,
			RelevanceScore: Score(queryKeywords, Keywords(c.Text)),
			Scored:         true,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	selected := scored[:min(topK, len(scored))]

	log.Debug().
		Int("selected", len(selected)).
		Int("pool", len(chunks)).
		Int("topScore", selected[0].RelevanceScore).
		Msg("Selected reference chunks")

	return selected
}

// SelectRelevant is Select restricted to chunks sharing at least one keyword
// with the query. A blank query selects nothing.
func SelectRelevant(query string, chunks []models.Chunk, topK int) []models.ScoredChunk {
	if strings.TrimSpace(query) == "" || topK <= 0 {
		return []models.ScoredChunk{}
	}

	var out []models.ScoredChunk
	for _, c := range Select(query, chunks, len(chunks)) {
		if c.RelevanceScore == 0 {
			break
		}
		out = append(out, c)
		if len(out) == topK {
			break
		}
	}
	if out == nil {
		return []models.ScoredChunk{}
	}
	return out
}
