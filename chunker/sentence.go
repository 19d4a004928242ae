package chunker

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roivaz/textchunk/internal/logging"
)

var (
	sentenceBoundaryRe = regexp.MustCompile(`[.!?]+(\s+|$)`)
	terminalPunctRe    = regexp.MustCompile(`[.!?]$`)
	abbreviationRe     = regexp.MustCompile(`\b(?:Mr|Mrs|Dr|Prof|Inc|Ltd|etc)\.$`)
)

// Sentence chunks on sentence boundaries with size- and count-bounded
// assembly. Boundary detection uses the injected segmenter when one was
// supplied at construction, and a regex heuristic otherwise; the path is
// fixed at construction, never re-probed per call.
type Sentence struct {
	segmenter SentenceSegmenter
	log       logging.Logger
}

// NewSentence returns the sentence strategy. segmenter may be nil, in which
// case the regex path is used.
func NewSentence(segmenter SentenceSegmenter, log logging.Logger) *Sentence {
	return &Sentence{segmenter: segmenter, log: log.WithName("sentence")}
}

func (c *Sentence) Name() string    { return StrategySentence }
func (c *Sentence) Available() bool { return true }

// sentenceSpan is one detected sentence with offsets into the original
// content and a boundary-detection confidence.
type sentenceSpan struct {
	text       string
	start, end int
	confidence float64
}

func (c *Sentence) Segment(_ context.Context, content string, cfg Config) ([]Chunk, error) {
	if err := cfg.validateSizes(); err != nil {
		return nil, err
	}
	if isBlank(content) {
		return nil, nil
	}

	maxSentences := cfg.Int(KeyMaxSentencesPerChunk, 10)
	minSentences := cfg.Int(KeyMinSentencesPerChunk, 1)
	maxSize := cfg.Int(KeyMaxChunkSize, 2000)
	minSize := cfg.Int(KeyMinChunkSize, 100)
	overlap := cfg.Int(KeyOverlapSentences, 0)

	sentences := c.splitSentences(content)
	if len(sentences) == 0 {
		return []Chunk{c.wholeDocumentChunk(content)}, nil
	}

	chunks := c.assemble(sentences, maxSentences, minSentences, maxSize, minSize, overlap)
	c.log.Debug("sentence chunking complete", "sentences", len(sentences), "chunks", len(chunks))
	return chunks, nil
}

func (c *Sentence) splitSentences(content string) []sentenceSpan {
	if c.segmenter != nil {
		spans, err := c.segmenter.SegmentSentences(content)
		if err == nil {
			if out := spansToSentences(content, spans); out != nil {
				return out
			}
			err = errBadSpans
		}
		c.log.Error(err, "segmenter failed, using regex boundaries")
	}
	return splitSentencesRegex(content)
}

var errBadSpans = errors.New("segmenter returned invalid spans")

// spansToSentences validates segmenter output against the content. Any span
// with out-of-range or non-monotonic offsets invalidates the whole result.
func spansToSentences(content string, spans []SentenceSpan) []sentenceSpan {
	out := make([]sentenceSpan, 0, len(spans))
	last := 0
	for _, sp := range spans {
		if sp.Start < last || sp.End < sp.Start || sp.End > len(content) {
			return nil
		}
		last = sp.End
		text := strings.TrimSpace(sp.Text)
		if text == "" {
			continue
		}
		out = append(out, sentenceSpan{text: text, start: sp.Start, end: sp.End, confidence: 1.0})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// splitSentencesRegex splits on terminal-punctuation runs followed by
// whitespace or end of string, scoring each sentence with a boundary
// confidence heuristic.
func splitSentencesRegex(content string) []sentenceSpan {
	boundaries := sentenceBoundaryRe.FindAllStringIndex(content, -1)
	if len(boundaries) == 0 {
		text := strings.TrimSpace(content)
		if text == "" {
			return nil
		}
		return []sentenceSpan{{text: text, start: 0, end: len(content), confidence: 0.5}}
	}

	var sentences []sentenceSpan
	start := 0
	for _, loc := range boundaries {
		end := loc[1]
		if text := strings.TrimSpace(content[start:end]); text != "" {
			sentences = append(sentences, sentenceSpan{
				text:       text,
				start:      start + leadingSpace(content[start:end]),
				end:        end,
				confidence: sentenceConfidence(text),
			})
		}
		start = end
	}
	if start < len(content) {
		// Trailing text with no terminal boundary is kept as a
		// low-confidence final sentence.
		if text := strings.TrimSpace(content[start:]); text != "" {
			sentences = append(sentences, sentenceSpan{
				text:       text,
				start:      start + leadingSpace(content[start:]),
				end:        len(content),
				confidence: 0.3,
			})
		}
	}
	return sentences
}

func leadingSpace(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t\r\n"))
}

// sentenceConfidence scores how likely text is a real sentence, clamped to
// [0,1].
func sentenceConfidence(text string) float64 {
	confidence := 0.5
	if len(strings.Fields(text)) >= 3 {
		confidence += 0.2
	}
	if r, _ := utf8.DecodeRuneInString(text); unicode.IsUpper(r) {
		confidence += 0.2
	}
	if terminalPunctRe.MatchString(text) {
		confidence += 0.3
	}
	if abbreviationRe.MatchString(text) {
		confidence -= 0.3
	}
	if len(text) < 10 {
		confidence -= 0.2
	}
	return math.Min(1, math.Max(0, confidence))
}

func (c *Sentence) assemble(sentences []sentenceSpan, maxSentences, minSentences, maxSize, minSize, overlap int) []Chunk {
	var chunks []Chunk
	i := 0
	for i < len(sentences) {
		groupStart := i
		var group []sentenceSpan
		size := 0

		for i < len(sentences) && len(group) < maxSentences {
			s := sentences[i]
			potential := size + len(s.text)
			if len(group) > 0 {
				potential++ // joining space
			}
			if potential > maxSize && len(group) > 0 {
				break
			}
			group = append(group, s)
			size = potential
			i++
		}

		// Top up below-minimum chunks while the size budget allows.
		for len(group) < minSentences && i < len(sentences) {
			s := sentences[i]
			potential := size + len(s.text) + 1
			if potential > maxSize {
				break
			}
			group = append(group, s)
			size = potential
			i++
		}

		chunk := c.buildChunk(group, len(chunks))
		if chunk.Size >= minSize || len(chunks) == 0 {
			chunks = append(chunks, chunk)
		} else {
			prev := &chunks[len(chunks)-1]
			if !mergeSentenceChunks(prev, chunk, maxSize) {
				chunk.ID = chunkID(StrategySentence, len(chunks))
				chunks = append(chunks, chunk)
			}
		}

		if overlap > 0 && i < len(sentences) {
			next := i - min(overlap, len(group))
			// Never rewind to (or before) the start of the window just
			// consumed; that would stall the cursor.
			if next <= groupStart {
				next = groupStart + 1
			}
			i = next
		}
	}
	return chunks
}

func (c *Sentence) buildChunk(group []sentenceSpan, index int) Chunk {
	texts := make([]string, len(group))
	var confidenceSum float64
	minLen, maxLen, lenSum := len(group[0].text), 0, 0
	for i, s := range group {
		texts[i] = s.text
		confidenceSum += s.confidence
		lenSum += len(s.text)
		minLen = min(minLen, len(s.text))
		maxLen = max(maxLen, len(s.text))
	}

	chunk := newChunk(StrategySentence, index, strings.Join(texts, " "), group[0].start)
	chunk.SentenceCount = len(group)
	chunk.AvgSentenceConfidence = confidenceSum / float64(len(group))
	chunk.AvgSentenceLength = float64(lenSum) / float64(len(group))
	chunk.MinSentenceLength = minLen
	chunk.MaxSentenceLength = maxLen
	return chunk
}

// mergeSentenceChunks folds an undersized chunk into its predecessor when the
// merged content still fits maxSize.
func mergeSentenceChunks(prev *Chunk, next Chunk, maxSize int) bool {
	merged := prev.Content + " " + next.Content
	if len(merged) > maxSize {
		return false
	}
	prevCount := prev.SentenceCount
	prev.Content = merged
	prev.EndChar = prev.StartChar + len(merged)
	prev.Size = len(merged)
	prev.WordCount = len(strings.Fields(merged))
	prev.TokenCount = estimateTokens(merged)
	prev.SentenceCount += next.SentenceCount
	prev.AvgSentenceConfidence = (prev.AvgSentenceConfidence + next.AvgSentenceConfidence) / 2
	if prev.SentenceCount > 0 {
		prev.AvgSentenceLength = (prev.AvgSentenceLength*float64(prevCount) +
			next.AvgSentenceLength*float64(next.SentenceCount)) / float64(prev.SentenceCount)
	}
	prev.MinSentenceLength = min(prev.MinSentenceLength, next.MinSentenceLength)
	prev.MaxSentenceLength = max(prev.MaxSentenceLength, next.MaxSentenceLength)
	return true
}

func (c *Sentence) wholeDocumentChunk(content string) Chunk {
	chunk := newChunk(StrategySentence, 0, content, 0)
	chunk.SentenceCount = 1
	chunk.AvgSentenceConfidence = 0.5
	chunk.AvgSentenceLength = float64(len(content))
	chunk.MinSentenceLength = len(content)
	chunk.MaxSentenceLength = len(content)
	return chunk
}
