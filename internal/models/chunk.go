package models

// Chunk is an ordered segment of a source text. Word indexes refer to the
// whitespace-token stream of the source, so EndWordIndex-StartWordIndex equals
// TokenEstimate.
type Chunk struct {
	ChunkID        int    `json:"chunk_id"`
	Text           string `json:"text"`
	TokenEstimate  int    `json:"token_estimate"`
	StartWordIndex int    `json:"start_word_index"`
	EndWordIndex   int    `json:"end_word_index"`
}

// ScoredChunk is a Chunk with its keyword-overlap score against a query.
// Scored is false when the chunk was returned without scoring (blank query).
type ScoredChunk struct {
	Chunk
	RelevanceScore int  `json:"relevance_score"`
	Scored         bool `json:"scored"`
}

// ChunkIDs returns the identifiers of the given chunks in order.
func ChunkIDs(chunks []ScoredChunk) []int {
	ids := make([]int, 0, len(chunks))
	for _, c := range chunks {
		ids = append(ids, c.ChunkID)
	}
	return ids
}
