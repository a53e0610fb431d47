// Package chunker splits source text into ordered, possibly overlapping chunks.
//
// Sizes are measured either in whitespace-delimited words (a proxy for model
// tokens, not a tokenizer-exact count) or in characters accumulated paragraph
// by paragraph.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"explanation-coach-service/internal/models"
)

// Unit selects how chunk size is measured.
type Unit int

const (
	// UnitWords windows over whitespace tokens. Used for analysis windows.
	UnitWords Unit = iota
	// UnitChars accumulates paragraphs up to a character budget. Used for reference documents.
	UnitChars
)

// String returns the string representation of the unit.
func (u Unit) String() string {
	switch u {
	case UnitWords:
		return "words"
	case UnitChars:
		return "chars"
	default:
		return "unknown"
	}
}

// ParseUnit maps a configuration value to a Unit, defaulting to UnitChars.
func ParseUnit(s string) Unit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "words", "tokens":
		return UnitWords
	default:
		return UnitChars
	}
}

// Options configures a chunking run. MaxSize and Overlap are expressed in Unit.
type Options struct {
	Unit    Unit
	MaxSize int
	Overlap int
}

// DefaultWordOptions returns the defaults for word windows.
func DefaultWordOptions() Options {
	return Options{Unit: UnitWords, MaxSize: 700, Overlap: 50}
}

// DefaultParagraphOptions returns the defaults for reference-document chunking.
func DefaultParagraphOptions() Options {
	return Options{Unit: UnitChars, MaxSize: 1500, Overlap: 200}
}

// Chunk splits text according to opts. Empty or whitespace-only text yields
// an empty slice.
func Chunk(text string, opts Options) []models.Chunk {
	var chunks []models.Chunk
	switch opts.Unit {
	case UnitWords:
		chunks = ByWords(text, opts.MaxSize, opts.Overlap)
	default:
		chunks = ByParagraphs(text, opts.MaxSize, opts.Overlap)
	}

	log.Debug().
		Str("unit", opts.Unit.String()).
		Int("chunks", len(chunks)).
		Msg("Chunked source text")
	return chunks
}

// ByWords windows over the whitespace tokens of text. Windows advance by
// maxTokens-overlapTokens, clamped to at least one token, and stop at the
// first window that reaches the end of the stream.
func ByWords(text string, maxTokens, overlapTokens int) []models.Chunk {
	words := strings.Fields(text)
	chunks := []models.Chunk{}
	if len(words) == 0 {
		return chunks
	}
	if maxTokens < 1 {
		maxTokens = 1
	}

	step := maxTokens - overlapTokens
	if step < 1 {
		step = 1
	}

	total := len(words)
	for start := 0; start < total; start += step {
		end := min(start+maxTokens, total)
		chunks = append(chunks, models.Chunk{
			ChunkID:        len(chunks),
			Text:           strings.Join(words[start:end], " "),
			TokenEstimate:  end - start,
			StartWordIndex: start,
			EndWordIndex:   end,
		})
		if end == total {
			break
		}
	}
	return chunks
}

type paragraph struct {
	text   string
	start  int // index of the first word in the source token stream
	words  int
	length int // characters
}

// ByParagraphs accumulates blank-line separated paragraphs until adding the
// next one would exceed maxChars. The last paragraph of a completed chunk that
// holds more than one paragraph seeds the next chunk when it is shorter than
// overlapChars.
func ByParagraphs(text string, maxChars, overlapChars int) []models.Chunk {
	chunks := []models.Chunk{}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var current []paragraph
	currentLen := 0
	offset := 0

	emit := func() {
		first, last := current[0], current[len(current)-1]
		texts := make([]string, len(current))
		for i, p := range current {
			texts[i] = p.text
		}
		end := last.start + last.words
		chunks = append(chunks, models.Chunk{
			ChunkID:        len(chunks),
			Text:           strings.Join(texts, "\n\n"),
			TokenEstimate:  end - first.start,
			StartWordIndex: first.start,
			EndWordIndex:   end,
		})
	}

	for _, raw := range strings.Split(text, "\n\n") {
		words := len(strings.Fields(raw))
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			offset += words
			continue
		}

		p := paragraph{
			text:   trimmed,
			start:  offset,
			words:  words,
			length: utf8.RuneCountInString(trimmed),
		}
		offset += words

		if len(current) > 0 && currentLen+p.length > maxChars {
			emit()
			last := current[len(current)-1]
			if len(current) > 1 && last.length < overlapChars {
				current = []paragraph{last}
				currentLen = last.length
			} else {
				current = nil
				currentLen = 0
			}
		}

		current = append(current, p)
		currentLen += p.length
	}

	if len(current) > 0 {
		emit()
	}
	return chunks
}
