package chunker

import (
	"context"
	"regexp"
	"strings"

	"github.com/roivaz/textchunk/internal/logging"
)

var (
	atxHeaderRe       = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	setextH1Re        = regexp.MustCompile(`^=+$`)
	setextH2Re        = regexp.MustCompile(`^-+$`)
	headerContextJoin = " > "
)

// MDStructure chunks markdown by its header/section structure, carrying the
// active header stack as context metadata on every chunk. Documents without
// any header fall back to plain paragraph chunking.
type MDStructure struct {
	log logging.Logger
}

// NewMDStructure returns the markdown-structure strategy.
func NewMDStructure(log logging.Logger) *MDStructure {
	return &MDStructure{log: log.WithName("mdstructure")}
}

func (c *MDStructure) Name() string    { return StrategyMDStructure }
func (c *MDStructure) Available() bool { return true }

// mdSection is one header-delimited span of the document. The zero-level
// section collects content before the first header.
type mdSection struct {
	headerLine string
	headerText string
	level      int
	body       []string
}

func (c *MDStructure) Segment(_ context.Context, content string, cfg Config) ([]Chunk, error) {
	if err := cfg.validateSizes(); err != nil {
		return nil, err
	}
	if isBlank(content) {
		return nil, nil
	}

	chunkSize := cfg.Int(KeyChunkSize, 1500)
	minSize := cfg.Int(KeyMinChunkSize, 100)
	maxSize := cfg.Int(KeyMaxChunkSize, 3000)
	respectHeaders := cfg.Bool(KeyRespectHeaders, true)
	includeHeaders := cfg.Bool(KeyIncludeHeaders, true)

	sections := parseMarkdownSections(content)
	if !hasHeaders(sections) {
		c.log.Debug("no headers found, falling back to paragraph chunking")
		return c.paragraphFallback(content, chunkSize), nil
	}

	chunks := c.assemble(sections, chunkSize, minSize, maxSize, respectHeaders, includeHeaders)
	c.log.Debug("mdstructure chunking complete", "sections", len(sections), "chunks", len(chunks))
	return chunks, nil
}

// parseMarkdownSections scans lines, recognizing ATX and Setext headers.
// Setext underlines are consumed as part of the header.
func parseMarkdownSections(content string) []mdSection {
	lines := strings.Split(content, "\n")
	var sections []mdSection
	current := mdSection{}

	push := func() {
		if current.headerLine != "" || !isBlank(strings.Join(current.body, "\n")) {
			sections = append(sections, current)
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if m := atxHeaderRe.FindStringSubmatch(trimmed); m != nil {
			push()
			current = mdSection{headerLine: trimmed, headerText: m[2], level: len(m[1])}
			continue
		}

		if trimmed != "" && i+1 < len(lines) {
			underline := strings.TrimSpace(lines[i+1])
			level := 0
			if setextH1Re.MatchString(underline) {
				level = 1
			} else if setextH2Re.MatchString(underline) {
				level = 2
			}
			if level > 0 {
				push()
				current = mdSection{headerLine: trimmed, headerText: trimmed, level: level}
				i++ // consume the underline
				continue
			}
		}

		current.body = append(current.body, line)
	}
	push()
	return sections
}

func hasHeaders(sections []mdSection) bool {
	for _, s := range sections {
		if s.level > 0 {
			return true
		}
	}
	return false
}

func (c *MDStructure) assemble(sections []mdSection, chunkSize, minSize, maxSize int, respectHeaders, includeHeaders bool) []Chunk {
	var chunks []Chunk
	var stack []Header
	var buf string
	var bufHeaders []Header
	offset := 0

	flush := func() {
		text := strings.TrimSpace(buf)
		buf = ""
		if text == "" {
			return
		}
		chunk := c.buildChunk(text, len(chunks), offset, bufHeaders)
		if chunk.Size >= minSize || len(chunks) == 0 {
			chunks = append(chunks, chunk)
		} else if !c.mergeIntoPrevious(&chunks[len(chunks)-1], text, maxSize) {
			chunk.ID = chunkID(StrategyMDStructure, len(chunks))
			chunks = append(chunks, chunk)
		}
		offset = chunks[len(chunks)-1].EndChar + 2
	}

	for _, section := range sections {
		if section.level > 0 {
			if respectHeaders && buf != "" {
				flush()
			}
			// Pop same-or-deeper headers, then push this one.
			top := 0
			for top < len(stack) && stack[top].Level < section.level {
				top++
			}
			stack = append(stack[:top], Header{
				Line:  section.headerLine,
				Text:  section.headerText,
				Level: section.level,
			})
		}

		sectionText := buildSectionText(section, includeHeaders)
		if sectionText == "" {
			continue
		}

		joined := sectionText
		if buf != "" {
			joined = buf + "\n\n" + sectionText
		}
		if len(joined) > chunkSize && buf != "" {
			flush()
			buf = sectionText
			bufHeaders = cloneHeaders(stack)
		} else {
			if buf == "" {
				bufHeaders = cloneHeaders(stack)
			}
			buf = joined
		}

		// An oversized buffer is split immediately at paragraph
		// boundaries, every piece tagged with the same header context.
		if len(buf) > maxSize {
			for _, piece := range splitByParagraphs(buf, maxSize) {
				chunk := c.buildChunk(piece, len(chunks), offset, bufHeaders)
				chunks = append(chunks, chunk)
				offset = chunk.EndChar + 2
			}
			buf = ""
		}
	}
	flush()
	return chunks
}

func buildSectionText(section mdSection, includeHeaders bool) string {
	body := strings.TrimSpace(strings.Join(section.body, "\n"))
	if includeHeaders && section.headerLine != "" {
		if body == "" {
			return section.headerLine
		}
		return section.headerLine + "\n\n" + body
	}
	return body
}

// splitByParagraphs greedily packs blank-line-separated paragraphs into
// pieces no larger than maxSize; a single oversized paragraph is word-packed.
func splitByParagraphs(text string, maxSize int) []string {
	var pieces []string
	var buf string
	emit := func() {
		if trimmed := strings.TrimSpace(buf); trimmed != "" {
			if len(trimmed) > maxSize {
				pieces = append(pieces, packWords(trimmed, maxSize)...)
			} else {
				pieces = append(pieces, trimmed)
			}
		}
		buf = ""
	}
	for _, paragraph := range strings.Split(text, "\n\n") {
		joined := paragraph
		if buf != "" {
			joined = buf + "\n\n" + paragraph
		}
		if len(joined) > maxSize && buf != "" {
			emit()
			buf = paragraph
			continue
		}
		buf = joined
	}
	emit()
	return pieces
}

func (c *MDStructure) buildChunk(content string, index, offset int, headers []Header) Chunk {
	chunk := newChunk(StrategyMDStructure, index, content, offset)
	chunk.Headers = cloneHeaders(headers)
	chunk.HeaderContext = joinHeaderContext(headers)
	chunk.MarkdownElements = countMarkdownElements(content)
	if len(headers) > 0 {
		chunk.StructureLevel = headers[len(headers)-1].Level
	}
	return chunk
}

func (c *MDStructure) mergeIntoPrevious(prev *Chunk, text string, maxSize int) bool {
	merged := prev.Content + "\n\n" + text
	if len(merged) > maxSize {
		return false
	}
	prev.Content = merged
	prev.EndChar = prev.StartChar + len(merged)
	prev.Size = len(merged)
	prev.WordCount = len(strings.Fields(merged))
	prev.TokenCount = estimateTokens(merged)
	prev.MarkdownElements = countMarkdownElements(merged)
	return true
}

// paragraphFallback chunks documents without any markdown header, keeping
// the mdstructure metadata shape with an empty header stack.
func (c *MDStructure) paragraphFallback(content string, chunkSize int) []Chunk {
	var chunks []Chunk
	var buf string
	offset := 0
	emit := func() {
		text := strings.TrimSpace(buf)
		buf = ""
		if text == "" {
			return
		}
		chunk := c.buildChunk(text, len(chunks), offset, nil)
		chunks = append(chunks, chunk)
		offset = chunk.EndChar + 2
	}
	for _, paragraph := range strings.Split(content, "\n\n") {
		joined := paragraph
		if buf != "" {
			joined = buf + "\n\n" + paragraph
		}
		if len(joined) > chunkSize && buf != "" {
			emit()
			buf = paragraph
			continue
		}
		buf = joined
	}
	emit()
	return chunks
}

func cloneHeaders(headers []Header) []Header {
	if len(headers) == 0 {
		return nil
	}
	out := make([]Header, len(headers))
	copy(out, headers)
	return out
}

func joinHeaderContext(headers []Header) string {
	if len(headers) == 0 {
		return ""
	}
	texts := make([]string, len(headers))
	for i, h := range headers {
		texts[i] = h.Text
	}
	return strings.Join(texts, headerContextJoin)
}
