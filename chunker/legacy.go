package chunker

import (
	"context"
	"strings"
)

// FixedSize splits content into contiguous, non-overlapping windows of
// exactly chunk_size characters; the final window may be shorter.
type FixedSize struct{}

// NewFixedSize returns the fixed-size strategy.
func NewFixedSize() *FixedSize { return &FixedSize{} }

func (c *FixedSize) Name() string    { return StrategyFixedSize }
func (c *FixedSize) Available() bool { return true }

func (c *FixedSize) Segment(_ context.Context, content string, cfg Config) ([]Chunk, error) {
	if err := cfg.validateSizes(); err != nil {
		return nil, err
	}
	if isBlank(content) {
		return nil, nil
	}
	size := cfg.Int(KeyChunkSize, 1000)

	var chunks []Chunk
	for start := 0; start < len(content); start += size {
		end := min(start+size, len(content))
		chunks = append(chunks, newChunk(StrategyFixedSize, len(chunks), content[start:end], start))
	}
	return chunks, nil
}

// SlidingWindow emits windows of chunk_size characters starting every
// step_size = chunk_size * (1 - overlap) characters. Overlapping chunks are
// the point of this strategy; offsets are window-relative to the original
// content and may overlap.
type SlidingWindow struct{}

// NewSlidingWindow returns the sliding-window strategy.
func NewSlidingWindow() *SlidingWindow { return &SlidingWindow{} }

func (c *SlidingWindow) Name() string    { return StrategySlidingWindow }
func (c *SlidingWindow) Available() bool { return true }

func (c *SlidingWindow) Segment(_ context.Context, content string, cfg Config) ([]Chunk, error) {
	if err := cfg.validateSizes(); err != nil {
		return nil, err
	}
	if isBlank(content) {
		return nil, nil
	}
	size := cfg.Int(KeyChunkSize, 1000)
	overlap := cfg.Float(KeyOverlap, 0.2)
	step := max(1, int(float64(size)*(1-overlap)))

	var chunks []Chunk
	for start := 0; start < len(content); start += step {
		end := min(start+size, len(content))
		window := content[start:end]
		if isBlank(window) {
			break
		}
		chunks = append(chunks, newChunk(StrategySlidingWindow, len(chunks), window, start))
	}
	return chunks, nil
}

// Paragraph splits on blank-line boundaries and greedily packs paragraphs
// until adding the next one would exceed max_chunk_size.
type Paragraph struct{}

// NewParagraph returns the paragraph strategy.
func NewParagraph() *Paragraph { return &Paragraph{} }

func (c *Paragraph) Name() string    { return StrategyParagraph }
func (c *Paragraph) Available() bool { return true }

func (c *Paragraph) Segment(_ context.Context, content string, cfg Config) ([]Chunk, error) {
	if err := cfg.validateSizes(); err != nil {
		return nil, err
	}
	if isBlank(content) {
		return nil, nil
	}
	maxSize := cfg.Int(KeyMaxChunkSize, 2000)

	var chunks []Chunk
	var buf string
	offset := 0
	for _, paragraph := range strings.Split(content, "\n\n") {
		joined := paragraph
		if buf != "" {
			joined = buf + "\n\n" + paragraph
		}
		if len(joined) > maxSize && buf != "" {
			chunks = append(chunks, newChunk(StrategyParagraph, len(chunks), strings.TrimSpace(buf), offset))
			offset += len(buf) + 2
			buf = paragraph
			continue
		}
		buf = joined
	}
	if !isBlank(buf) {
		chunks = append(chunks, newChunk(StrategyParagraph, len(chunks), strings.TrimSpace(buf), offset))
	}
	return chunks, nil
}
