package chunker

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/roivaz/textchunk/internal/logging"
)

// fakeEmbedder returns canned vectors keyed by sentence text, or a fixed
// error.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (e *fakeEmbedder) EmbedTexts(_ context.Context, inputs []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(inputs))
	for i, input := range inputs {
		if v, ok := e.vectors[input]; ok {
			out[i] = v
		} else {
			out[i] = []float32{1, 0}
		}
	}
	return out, nil
}

func TestSemantic_UnavailableWithoutEmbedder(t *testing.T) {
	c := NewSemantic(nil, logging.Discard())
	if c.Available() {
		t.Fatalf("semantic should be unavailable without an embedder")
	}
	_, err := c.Segment(context.Background(), "Some text here.", Config{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSemantic_BreakpointSplitsTopics(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"Cats purr when they are content.":  {1, 0},
		"Kittens chase anything that moves.": {0.95, 0.05},
		"The quarterly revenue fell sharply.": {0, 1},
	}}
	c := NewSemantic(embedder, logging.Discard())
	content := "Cats purr when they are content. Kittens chase anything that moves. The quarterly revenue fell sharply."
	chunks, err := c.Segment(context.Background(), content, Config{
		KeyBreakpointType:   "absolute",
		KeyBreakpointAmount: 0.5,
		KeyMinChunkSize:     0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Content, "Kittens") {
		t.Fatalf("first chunk should hold both cat sentences: %q", chunks[0].Content)
	}
	if chunks[1].Content != "The quarterly revenue fell sharply." {
		t.Fatalf("unexpected second chunk: %q", chunks[1].Content)
	}
	if chunks[0].SemanticScore < 0.9 {
		t.Fatalf("coherent chunk should score high, got %v", chunks[0].SemanticScore)
	}
	if chunks[1].SemanticScore != 1.0 {
		t.Fatalf("single-sentence chunk scores 1.0, got %v", chunks[1].SemanticScore)
	}
}

func TestSemantic_SingleSentence(t *testing.T) {
	embedder := &fakeEmbedder{}
	c := NewSemantic(embedder, logging.Discard())
	chunks, err := c.Segment(context.Background(), "Just the one sentence.", Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if embedder.calls != 0 {
		t.Fatalf("single sentence should not hit the embedder")
	}
	if chunks[0].SemanticScore != 1.0 {
		t.Fatalf("single-sentence chunk scores 1.0, got %v", chunks[0].SemanticScore)
	}
}

func TestSemantic_EmbedderFailureDegrades(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("connection refused")}
	c := NewSemantic(embedder, logging.Discard())
	content := "First sentence here. Second sentence here. Third sentence here."
	chunks, err := c.Segment(context.Background(), content, Config{KeyMinChunkSize: 0})
	if err != nil {
		t.Fatalf("degraded call must still succeed, got %v", err)
	}
	if len(chunks) == 0 {
		t.Fatalf("expected chunks from the degraded path")
	}
	for i, chunk := range chunks {
		if chunk.SemanticScore != 0 {
			t.Fatalf("chunk %d: degraded chunks carry no semantic score", i)
		}
		if chunk.Method != StrategySemantic {
			t.Fatalf("chunk %d: unexpected method %s", i, chunk.Method)
		}
	}
}

func TestSemantic_VectorCountMismatchDegrades(t *testing.T) {
	embedder := &mismatchEmbedder{}
	c := NewSemantic(embedder, logging.Discard())
	chunks, err := c.Segment(context.Background(), "One here. Two here. Three here.", Config{KeyMinChunkSize: 0})
	if err != nil {
		t.Fatalf("degraded call must still succeed, got %v", err)
	}
	if len(chunks) == 0 {
		t.Fatalf("expected chunks from the degraded path")
	}
}

type mismatchEmbedder struct{}

func (*mismatchEmbedder) EmbedTexts(_ context.Context, inputs []string) ([][]float32, error) {
	return [][]float32{{1, 0}}, nil
}

func TestSemantic_OversizedSegmentWordPacks(t *testing.T) {
	embedder := &fakeEmbedder{}
	c := NewSemantic(embedder, logging.Discard())
	content := strings.Repeat("every sentence looks alike here. ", 20)
	chunks, err := c.Segment(context.Background(), content, Config{
		KeyBreakpointType:   "absolute",
		KeyBreakpointAmount: 0.0, // no mid-document breakpoints
		KeyMaxChunkSize:     120,
		KeyMinChunkSize:     0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected word-packed sub-chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Size > 120 {
			t.Fatalf("chunk %d exceeds max size: %d", i, chunk.Size)
		}
	}
}

func TestSemantic_SmallSegmentMergesIntoPrevious(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"The opening statement runs long enough to stand alone.": {1, 0},
		"Tiny tail.": {0, 1},
	}}
	c := NewSemantic(embedder, logging.Discard())
	content := "The opening statement runs long enough to stand alone. Tiny tail."
	chunks, err := c.Segment(context.Background(), content, Config{
		KeyBreakpointType:   "absolute",
		KeyBreakpointAmount: 0.5,
		KeyMinChunkSize:     20,
		KeyMaxChunkSize:     200,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected the small segment to merge, got %d chunks", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Content, "Tiny tail.") {
		t.Fatalf("merged chunk should end with the small segment: %q", chunks[0].Content)
	}
	if chunks[0].SentenceCount != 2 {
		t.Fatalf("merged chunk should count both sentences, got %d", chunks[0].SentenceCount)
	}
}

func TestSemantic_ThresholdTypes(t *testing.T) {
	similarities := []float64{0.9, 0.8, 0.2, 0.7}

	// percentile 85 -> the 15th-percentile similarity.
	got := breakpointThreshold(similarities, BreakpointPercentile, 85)
	want := percentile(similarities, 15)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("percentile threshold: expected %v, got %v", want, got)
	}

	// standard_deviation 100 -> mean - stddev.
	got = breakpointThreshold(similarities, BreakpointStdDev, 100)
	want = mean(similarities) - stddev(similarities)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("stddev threshold: expected %v, got %v", want, got)
	}

	// anything else is taken literally.
	if got := breakpointThreshold(similarities, "absolute", 0.42); got != 0.42 {
		t.Fatalf("literal threshold: expected 0.42, got %v", got)
	}
}

func TestSemantic_EndIsAlwaysABreakpoint(t *testing.T) {
	breakpoints := findBreakpoints([]float64{0.9, 0.9}, 0.5, 3)
	if len(breakpoints) != 1 || breakpoints[0] != 3 {
		t.Fatalf("expected forced end breakpoint [3], got %v", breakpoints)
	}
	breakpoints = findBreakpoints([]float64{0.1, 0.9}, 0.5, 3)
	if len(breakpoints) != 2 || breakpoints[0] != 1 || breakpoints[1] != 3 {
		t.Fatalf("expected [1 3], got %v", breakpoints)
	}
}

func TestSemantic_EmptyContent(t *testing.T) {
	c := NewSemantic(&fakeEmbedder{}, logging.Discard())
	chunks, err := c.Segment(context.Background(), "  ", Config{})
	if err != nil || len(chunks) != 0 {
		t.Fatalf("expected no chunks and no error, got %d chunks, %v", len(chunks), err)
	}
}
