package chunker

import (
	"fmt"
	"strings"
	"testing"

	"explanation-coach-service/internal/models"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(w, " ")
}

func checkWindowInvariants(t *testing.T, chunks []models.Chunk, total int) {
	t.Helper()
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	for i, c := range chunks {
		if c.ChunkID != i {
			t.Errorf("chunk %d: expected id %d, got %d", i, i, c.ChunkID)
		}
		if c.EndWordIndex-c.StartWordIndex != c.TokenEstimate {
			t.Errorf("chunk %d: end-start=%d, token estimate=%d", i, c.EndWordIndex-c.StartWordIndex, c.TokenEstimate)
		}
		if i > 0 && c.StartWordIndex <= chunks[i-1].StartWordIndex {
			t.Errorf("chunk %d: start %d not greater than previous %d", i, c.StartWordIndex, chunks[i-1].StartWordIndex)
		}
	}
	if last := chunks[len(chunks)-1]; last.EndWordIndex != total {
		t.Errorf("expected final end index %d, got %d", total, last.EndWordIndex)
	}
}

func TestByWords_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t  \n"} {
		chunks := ByWords(in, 10, 2)
		if chunks == nil || len(chunks) != 0 {
			t.Errorf("ByWords(%q): expected empty non-nil slice, got %#v", in, chunks)
		}
	}
}

func TestByWords_Windows(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		max        int
		overlap    int
		wantChunks int
	}{
		{"single window", 5, 10, 2, 1},
		{"exact fit", 10, 10, 2, 1},
		{"two windows", 12, 10, 2, 2},
		{"no overlap", 30, 10, 0, 3},
		{"overlap", 25, 10, 5, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ByWords(words(tt.total), tt.max, tt.overlap)
			if len(chunks) != tt.wantChunks {
				t.Fatalf("expected %d chunks, got %d", tt.wantChunks, len(chunks))
			}
			checkWindowInvariants(t, chunks, tt.total)
		})
	}
}

func TestByWords_OverlapAtLeastMaxClampsStep(t *testing.T) {
	chunks := ByWords(words(6), 3, 5)

	// step clamps to 1: windows start at 0,1,2,3 and the fourth reaches the end
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	checkWindowInvariants(t, chunks, 6)
}

func TestByWords_CollapsesWhitespace(t *testing.T) {
	chunks := ByWords("alpha \n\n  beta\t\tgamma", 10, 0)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "alpha beta gamma" {
		t.Errorf("expected collapsed text, got %q", chunks[0].Text)
	}
}

func TestByWords_NeverRepeatsFinalWindow(t *testing.T) {
	chunks := ByWords(words(20), 10, 0)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[1].StartWordIndex != 10 || chunks[1].EndWordIndex != 20 {
		t.Errorf("unexpected final window [%d,%d)", chunks[1].StartWordIndex, chunks[1].EndWordIndex)
	}
}

func TestByWords_InvariantsAcrossSizes(t *testing.T) {
	for total := 1; total <= 40; total += 3 {
		for max := 1; max <= 12; max++ {
			for overlap := 0; overlap <= max+1; overlap++ {
				chunks := ByWords(words(total), max, overlap)
				checkWindowInvariants(t, chunks, total)
			}
		}
	}
}

func TestByParagraphs_Empty(t *testing.T) {
	if chunks := ByParagraphs("\n\n  \r\n\r\n", 100, 10); len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestByParagraphs_AccumulatesUntilBudget(t *testing.T) {
	text := "aaaa aaaa\n\nbbbb bbbb\n\ncccc cccc"

	chunks := ByParagraphs(text, 20, 0)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(chunks), chunks)
	}
	if chunks[0].Text != "aaaa aaaa\n\nbbbb bbbb" {
		t.Errorf("unexpected first chunk %q", chunks[0].Text)
	}
	if chunks[1].Text != "cccc cccc" {
		t.Errorf("unexpected second chunk %q", chunks[1].Text)
	}
	checkWindowInvariants(t, chunks, 6)
}

func TestByParagraphs_SeedsNextChunkWithShortParagraph(t *testing.T) {
	text := "first paragraph here\n\nsmall\n\nthird paragraph here"

	chunks := ByParagraphs(text, 30, 10)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(chunks), chunks)
	}
	if !strings.HasPrefix(chunks[1].Text, "small\n\n") {
		t.Errorf("expected second chunk seeded with 'small', got %q", chunks[1].Text)
	}
	if chunks[1].StartWordIndex != 3 {
		t.Errorf("expected seeded chunk to start at word 3, got %d", chunks[1].StartWordIndex)
	}
	checkWindowInvariants(t, chunks, 7)
}

func TestByParagraphs_LongLastParagraphNotSeeded(t *testing.T) {
	text := "a\n\nthree four five six\n\nseven eight nine ten"

	chunks := ByParagraphs(text, 25, 5)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(chunks), chunks)
	}
	if chunks[1].Text != "seven eight nine ten" {
		t.Errorf("expected unseeded second chunk, got %q", chunks[1].Text)
	}
	checkWindowInvariants(t, chunks, 9)
}

func TestByParagraphs_CRLF(t *testing.T) {
	chunks := ByParagraphs("alpha beta\r\n\r\ngamma", 5, 0)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	checkWindowInvariants(t, chunks, 3)
}

func TestChunk_DispatchesOnUnit(t *testing.T) {
	text := words(30)

	byWords := Chunk(text, Options{Unit: UnitWords, MaxSize: 10, Overlap: 0})
	if len(byWords) != 3 {
		t.Errorf("expected 3 word chunks, got %d", len(byWords))
	}

	byChars := Chunk(text, Options{Unit: UnitChars, MaxSize: 10, Overlap: 0})
	if len(byChars) != 1 {
		t.Errorf("expected single paragraph chunk, got %d", len(byChars))
	}
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in   string
		want Unit
	}{
		{"words", UnitWords},
		{"TOKENS", UnitWords},
		{"chars", UnitChars},
		{"", UnitChars},
		{"paragraphs", UnitChars},
	}
	for _, tt := range tests {
		if got := ParseUnit(tt.in); got != tt.want {
			t.Errorf("ParseUnit(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
