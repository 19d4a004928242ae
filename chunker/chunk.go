// Package chunker implements an adaptive, multi-strategy text-chunking engine.
// A Factory owns one instance of every strategy, can pick the best one for a
// piece of content, and every strategy produces the same bounded Chunk records
// suitable for downstream embedding and indexing.
package chunker

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// Strategy names, also used as chunk_method on emitted chunks.
const (
	StrategySemantic      = "semantic"
	StrategyMDStructure   = "mdstructure"
	StrategySentence      = "sentence"
	StrategyFixedSize     = "fixed_size"
	StrategySlidingWindow = "sliding_window"
	StrategyParagraph     = "paragraph"
)

var (
	// ErrUnavailable is returned when a strategy is invoked without its
	// required capability (e.g. semantic chunking without an embedder).
	ErrUnavailable = errors.New("chunker: strategy not available")

	// ErrConfiguration is returned for invalid option values before any
	// processing begins.
	ErrConfiguration = errors.New("chunker: invalid configuration")
)

// Chunk is the unit of output: a bounded span of the input plus metadata.
// Chunks are write-once records owned by the caller; the engine keeps no
// reference to them after Segment returns.
type Chunk struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	StartChar int    `json:"start_char"`
	EndChar   int    `json:"end_char"`
	Size      int    `json:"size"`
	WordCount int    `json:"word_count"`
	// TokenCount is an approximate LLM token count (tiktoken when the
	// encoder loads, chars/4 otherwise).
	TokenCount int    `json:"token_count"`
	Method     string `json:"chunk_method"`

	// Sentence-strategy metadata.
	SentenceCount         int     `json:"sentence_count,omitempty"`
	AvgSentenceConfidence float64 `json:"avg_sentence_confidence,omitempty"`
	AvgSentenceLength     float64 `json:"avg_sentence_length,omitempty"`
	MinSentenceLength     int     `json:"min_sentence_length,omitempty"`
	MaxSentenceLength     int     `json:"max_sentence_length,omitempty"`

	// Semantic-strategy metadata: mean pairwise cosine similarity among the
	// chunk's own sentences (1.0 for a single-sentence chunk).
	SemanticScore float64 `json:"semantic_score,omitempty"`

	// Markdown-structure metadata.
	Headers          []Header       `json:"headers,omitempty"`
	HeaderContext    string         `json:"header_context,omitempty"`
	MarkdownElements map[string]int `json:"markdown_elements,omitempty"`
	StructureLevel   int            `json:"structure_level,omitempty"`
}

// Header is one entry of the markdown header stack active for a chunk.
type Header struct {
	Line  string `json:"line"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Descriptor describes a registered strategy for introspection. It is never
// consulted by the segmentation control flow itself.
type Descriptor struct {
	Name         string   `json:"name"`
	Available    bool     `json:"available"`
	BestUseCases []string `json:"best_for"`
}

// Chunker is the contract every strategy implements. Segment is a single-pass
// finite production; it returns ErrUnavailable when called while Available is
// false, and returns no chunks (and no error) for empty or whitespace-only
// content.
type Chunker interface {
	Name() string
	Available() bool
	Segment(ctx context.Context, content string, cfg Config) ([]Chunk, error)
}

// Embedder is the injected sentence-embedding capability consumed by the
// semantic strategy. Implementations must tolerate concurrent read access;
// the engine calls it from whatever goroutine invoked Segment.
type Embedder interface {
	EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error)
}

// SentenceSpan is one sentence reported by a SentenceSegmenter, with exact
// character offsets into the original text.
type SentenceSpan struct {
	Text  string
	Start int
	End   int
}

// SentenceSegmenter is an optional higher-accuracy sentence-boundary
// provider. When absent the sentence strategy falls back to its regex path.
type SentenceSegmenter interface {
	SegmentSentences(text string) ([]SentenceSpan, error)
}

func newChunk(method string, index int, content string, start int) Chunk {
	return Chunk{
		ID:         chunkID(method, index),
		Content:    content,
		StartChar:  start,
		EndChar:    start + len(content),
		Size:       len(content),
		WordCount:  len(strings.Fields(content)),
		TokenCount: estimateTokens(content),
		Method:     method,
	}
}

func chunkID(method string, index int) string {
	return method + "_chunk_" + strconv.Itoa(index)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// packWords greedily packs whitespace-delimited words into pieces no larger
// than maxSize, joined by single spaces. A word longer than maxSize becomes
// its own piece.
func packWords(text string, maxSize int) []string {
	var pieces []string
	var current []string
	size := 0
	for _, word := range strings.Fields(text) {
		wordSize := len(word) + 1
		if size+wordSize > maxSize && len(current) > 0 {
			pieces = append(pieces, strings.Join(current, " "))
			current = []string{word}
			size = len(word)
			continue
		}
		current = append(current, word)
		size += wordSize
	}
	if len(current) > 0 {
		pieces = append(pieces, strings.Join(current, " "))
	}
	return pieces
}
