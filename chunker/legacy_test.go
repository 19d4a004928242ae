package chunker

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFixedSize_ExactWindows(t *testing.T) {
	content := strings.Repeat("a", 2500)
	chunks, err := NewFixedSize().Segment(context.Background(), content, Config{KeyChunkSize: 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantSizes := []int{1000, 1000, 500}
	wantStarts := []int{0, 1000, 2000}
	for i, chunk := range chunks {
		if chunk.Size != wantSizes[i] {
			t.Fatalf("chunk %d: expected size %d, got %d", i, wantSizes[i], chunk.Size)
		}
		if chunk.StartChar != wantStarts[i] {
			t.Fatalf("chunk %d: expected start %d, got %d", i, wantStarts[i], chunk.StartChar)
		}
		if chunk.EndChar != chunk.StartChar+chunk.Size {
			t.Fatalf("chunk %d: end/start/size mismatch", i)
		}
		if chunk.Method != StrategyFixedSize {
			t.Fatalf("chunk %d: unexpected method %s", i, chunk.Method)
		}
	}
	var joined strings.Builder
	for _, chunk := range chunks {
		joined.WriteString(chunk.Content)
	}
	if joined.String() != content {
		t.Fatalf("concatenated chunks do not reconstruct the content")
	}
}

func TestFixedSize_EmptyContent(t *testing.T) {
	chunks, err := NewFixedSize().Segment(context.Background(), "   \n\t ", Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for blank content, got %d", len(chunks))
	}
}

func TestFixedSize_RejectsInvalidChunkSize(t *testing.T) {
	_, err := NewFixedSize().Segment(context.Background(), "some text", Config{KeyChunkSize: 0})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestSlidingWindow_Overlap(t *testing.T) {
	content := strings.Repeat("abcde ", 100) // 600 chars
	chunks, err := NewSlidingWindow().Segment(context.Background(), content,
		Config{KeyChunkSize: 100, KeyOverlap: 0.2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		if step := chunks[i].StartChar - chunks[i-1].StartChar; step != 80 {
			t.Fatalf("chunk %d: expected step 80, got %d", i, step)
		}
	}
	for i, chunk := range chunks {
		if chunk.Size > 100 {
			t.Fatalf("chunk %d exceeds window size: %d", i, chunk.Size)
		}
	}
}

func TestSlidingWindow_RejectsBadOverlap(t *testing.T) {
	for _, overlap := range []float64{-0.1, 1.0, 1.5} {
		_, err := NewSlidingWindow().Segment(context.Background(), "text", Config{KeyOverlap: overlap})
		if !errors.Is(err, ErrConfiguration) {
			t.Fatalf("overlap %v: expected ErrConfiguration, got %v", overlap, err)
		}
	}
}

func TestParagraph_GreedyPacking(t *testing.T) {
	paragraphs := []string{
		strings.Repeat("first ", 20),
		strings.Repeat("second ", 20),
		strings.Repeat("third ", 20),
	}
	content := strings.Join(paragraphs, "\n\n")
	chunks, err := NewParagraph().Segment(context.Background(), content, Config{KeyMaxChunkSize: 280})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Content, "first") || !strings.Contains(chunks[0].Content, "second") {
		t.Fatalf("first chunk should pack two paragraphs: %q", chunks[0].Content)
	}
	if !strings.Contains(chunks[1].Content, "third") {
		t.Fatalf("second chunk should hold the final paragraph")
	}
}

func TestParagraph_FinalBufferAlwaysFlushed(t *testing.T) {
	chunks, err := NewParagraph().Segment(context.Background(), "only one short paragraph", Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "only one short paragraph" {
		t.Fatalf("unexpected content %q", chunks[0].Content)
	}
}

func TestLegacyChunkers_AlwaysAvailable(t *testing.T) {
	for _, c := range []Chunker{NewFixedSize(), NewSlidingWindow(), NewParagraph()} {
		if !c.Available() {
			t.Fatalf("%s should always be available", c.Name())
		}
	}
}
