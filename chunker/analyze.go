package chunker

import (
	"regexp"
	"strings"
)

// Thresholds are the hand-tuned constants driving auto-selection. They are
// carried as data on the Factory so they can be recalibrated without code
// changes; the defaults mirror the values the engine shipped with.
//
// TODO: recalibrate against a labeled corpus; these values have no recorded
// empirical justification.
type Thresholds struct {
	// MarkdownKinds is the number of distinct markdown pattern kinds that
	// must match before content counts as markdown.
	MarkdownKinds int
	// StructureSentences and StructureLength gate the "structured content"
	// semantic route.
	StructureSentences int
	StructureLength    int
	// SentenceBandMin/Max bound the sentence-chunker route.
	SentenceBandMin int
	SentenceBandMax int
	// LongContentLength routes very long content to semantic.
	LongContentLength int
}

// DefaultThresholds returns the stock auto-selection thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MarkdownKinds:      3,
		StructureSentences: 10,
		StructureLength:    1000,
		SentenceBandMin:    5,
		SentenceBandMax:    50,
		LongContentLength:  5000,
	}
}

// markdownPatterns is the fixed pattern set shared by markdown detection and
// per-chunk markdown element counting. Image links are a separate kind from
// plain links.
var markdownPatterns = []struct {
	kind string
	re   *regexp.Regexp
}{
	{"headers", regexp.MustCompile(`(?m)^#{1,6}\s+`)},
	{"bold", regexp.MustCompile(`\*\*[^*]+\*\*`)},
	{"italic", regexp.MustCompile(`\*[^*]+\*`)},
	{"code_blocks", regexp.MustCompile("```[^`]*```")},
	{"inline_code", regexp.MustCompile("`[^`]+`")},
	{"links", regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`)},
	{"images", regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)},
	{"lists", regexp.MustCompile(`(?m)^\s*[-*+]\s+`)},
	{"numbered_lists", regexp.MustCompile(`(?m)^\s*\d+\.\s+`)},
	{"tables", regexp.MustCompile(`\|.*\|`)},
}

var (
	headerLineRe   = regexp.MustCompile(`(?m)^(#{1,6}\s+|\w+:|\d+\.)`)
	setextHeaderRe = regexp.MustCompile(`(?m)^[^\s].*\n(?:=+|-+)[ \t]*$`)
	blankGapRe     = regexp.MustCompile(`\n\s*\n`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]+`)
)

// detectMarkdown reports whether the content reads as markdown: at least
// min distinct pattern kinds must match at least once.
func detectMarkdown(content string, min int) bool {
	score := 0
	for _, p := range markdownPatterns {
		if p.re.MatchString(content) {
			score++
			if score >= min {
				return true
			}
		}
	}
	return false
}

// detectStructure reports whether the content has clear structural elements:
// a header-like line, or several blank-line-separated paragraphs.
func detectStructure(content string) bool {
	if headerLineRe.MatchString(content) || setextHeaderRe.MatchString(content) {
		return true
	}
	hasParagraphs := len(strings.Split(content, "\n\n")) > 3
	return hasParagraphs && blankGapRe.MatchString(content)
}

// estimateSentenceCount counts terminal punctuation runs as a cheap proxy for
// the number of sentences.
func estimateSentenceCount(content string) int {
	return len(sentenceEndRe.FindAllStringIndex(content, -1))
}

// countMarkdownElements tallies per-construct occurrences for chunk metadata.
func countMarkdownElements(content string) map[string]int {
	elements := make(map[string]int, len(markdownPatterns))
	for _, p := range markdownPatterns {
		elements[p.kind] = len(p.re.FindAllStringIndex(content, -1))
	}
	return elements
}
