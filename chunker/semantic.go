package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/roivaz/textchunk/internal/logging"
)

// Semantic chunks on embedding-similarity breakpoints: consecutive sentences
// whose cosine similarity drops below a threshold start a new chunk. It
// requires an injected Embedder; without one it is unavailable. A failing
// embedder degrades the call to plain size-bounded sentence packing instead
// of aborting.
type Semantic struct {
	embedder Embedder
	log      logging.Logger
}

// NewSemantic returns the semantic strategy. embedder may be nil, which
// leaves the strategy unavailable.
func NewSemantic(embedder Embedder, log logging.Logger) *Semantic {
	return &Semantic{embedder: embedder, log: log.WithName("semantic")}
}

func (c *Semantic) Name() string    { return StrategySemantic }
func (c *Semantic) Available() bool { return c.embedder != nil }

func (c *Semantic) Segment(ctx context.Context, content string, cfg Config) ([]Chunk, error) {
	if !c.Available() {
		return nil, fmt.Errorf("%w: semantic chunking needs an embedder", ErrUnavailable)
	}
	if err := cfg.validateSizes(); err != nil {
		return nil, err
	}
	if isBlank(content) {
		return nil, nil
	}

	thresholdType := cfg.String(KeyBreakpointType, BreakpointPercentile)
	thresholdAmount := cfg.Float(KeyBreakpointAmount, 85)
	maxSize := cfg.Int(KeyMaxChunkSize, 1500)
	minSize := cfg.Int(KeyMinChunkSize, 100)

	sentences := sentenceTexts(content)
	if len(sentences) <= 1 {
		chunk := newChunk(StrategySemantic, 0, strings.TrimSpace(content), 0)
		chunk.SentenceCount = 1
		chunk.SemanticScore = 1
		return []Chunk{chunk}, nil
	}

	vectors, err := c.embedder.EmbedTexts(ctx, sentences)
	if err == nil && len(vectors) != len(sentences) {
		err = fmt.Errorf("embedder returned %d vectors for %d sentences", len(vectors), len(sentences))
	}
	if err != nil {
		// Transient capability failure: degrade to plain sentence
		// packing for this call rather than failing the document.
		c.log.Error(err, "embedding failed, degrading to sentence packing")
		return c.packSentences(sentences, maxSize), nil
	}

	similarities := make([]float64, len(vectors)-1)
	for i := 0; i < len(vectors)-1; i++ {
		similarities[i] = cosineSimilarity(vectors[i], vectors[i+1])
	}
	threshold := breakpointThreshold(similarities, thresholdType, thresholdAmount)
	breakpoints := findBreakpoints(similarities, threshold, len(sentences))

	chunks := c.assemble(sentences, vectors, breakpoints, maxSize, minSize)
	c.log.Debug("semantic chunking complete",
		"sentences", len(sentences), "breakpoints", len(breakpoints), "chunks", len(chunks))
	return chunks, nil
}

// sentenceTexts splits content into bare sentence strings using the same
// boundary rule as the sentence strategy's regex path.
func sentenceTexts(content string) []string {
	spans := splitSentencesRegex(content)
	texts := make([]string, len(spans))
	for i, s := range spans {
		texts[i] = s.text
	}
	return texts
}

// breakpointThreshold derives the similarity cutoff from the configured
// threshold type.
func breakpointThreshold(similarities []float64, thresholdType string, amount float64) float64 {
	switch thresholdType {
	case BreakpointPercentile:
		return percentile(similarities, 100-amount)
	case BreakpointStdDev:
		return mean(similarities) - amount/100*stddev(similarities)
	default:
		return amount
	}
}

// findBreakpoints places a break after sentence i whenever the similarity to
// sentence i+1 falls below threshold. The end of the document is always a
// forced breakpoint.
func findBreakpoints(similarities []float64, threshold float64, sentenceCount int) []int {
	var breakpoints []int
	for i, sim := range similarities {
		if sim < threshold {
			breakpoints = append(breakpoints, i+1)
		}
	}
	if len(breakpoints) == 0 || breakpoints[len(breakpoints)-1] != sentenceCount {
		breakpoints = append(breakpoints, sentenceCount)
	}
	return breakpoints
}

func (c *Semantic) assemble(sentences []string, vectors [][]float32, breakpoints []int, maxSize, minSize int) []Chunk {
	var chunks []Chunk
	var prevVectors [][]float32
	start := 0
	offset := 0

	for _, bp := range breakpoints {
		group := sentences[start:bp]
		groupVectors := vectors[start:bp]
		start = bp
		text := strings.Join(group, " ")
		if text == "" {
			continue
		}

		switch {
		case len(text) > maxSize:
			for _, piece := range packWords(text, maxSize) {
				chunk := newChunk(StrategySemantic, len(chunks), piece, offset)
				chunk.SentenceCount = max(1, estimateSentenceCount(piece))
				chunks = append(chunks, chunk)
				offset += len(piece) + 1
			}
			prevVectors = nil

		case len(text) >= minSize:
			chunk := newChunk(StrategySemantic, len(chunks), text, offset)
			chunk.SentenceCount = len(group)
			chunk.SemanticScore = meanPairwiseSimilarity(groupVectors)
			chunks = append(chunks, chunk)
			offset += len(text) + 1
			prevVectors = groupVectors

		default:
			// Undersized segment: merge into the previous chunk when
			// the result still fits, otherwise keep it standalone.
			merged := false
			if len(chunks) > 0 {
				prev := &chunks[len(chunks)-1]
				joined := prev.Content + " " + text
				if len(joined) <= maxSize {
					prev.Content = joined
					prev.EndChar = prev.StartChar + len(joined)
					prev.Size = len(joined)
					prev.WordCount = len(strings.Fields(joined))
					prev.TokenCount = estimateTokens(joined)
					prev.SentenceCount += len(group)
					if prevVectors != nil {
						combined := make([][]float32, 0, len(prevVectors)+len(groupVectors))
						combined = append(combined, prevVectors...)
						combined = append(combined, groupVectors...)
						prevVectors = combined
						prev.SemanticScore = meanPairwiseSimilarity(prevVectors)
					}
					merged = true
				}
			}
			if !merged {
				chunk := newChunk(StrategySemantic, len(chunks), text, offset)
				chunk.SentenceCount = len(group)
				chunk.SemanticScore = meanPairwiseSimilarity(groupVectors)
				chunks = append(chunks, chunk)
				prevVectors = groupVectors
			}
			offset += len(text) + 1
		}
	}
	return chunks
}

// packSentences is the degraded assembly: greedy sentence packing bounded by
// maxSize, no embeddings and no semantic score.
func (c *Semantic) packSentences(sentences []string, maxSize int) []Chunk {
	var chunks []Chunk
	var group []string
	size := 0
	offset := 0

	emit := func() {
		if len(group) == 0 {
			return
		}
		text := strings.Join(group, " ")
		chunk := newChunk(StrategySemantic, len(chunks), text, offset)
		chunk.SentenceCount = len(group)
		chunks = append(chunks, chunk)
		offset += len(text) + 1
		group = nil
		size = 0
	}

	for _, sentence := range sentences {
		sentenceSize := len(sentence) + 1
		if size+sentenceSize > maxSize && len(group) > 0 {
			emit()
		}
		group = append(group, sentence)
		size += sentenceSize
	}
	emit()
	return chunks
}
