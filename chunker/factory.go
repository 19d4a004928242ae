package chunker

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/roivaz/textchunk/internal/logging"
)

// StrategyAuto asks the factory to pick a strategy from content analysis.
const StrategyAuto = "auto"

// Factory owns one instance of every strategy and selects among them, either
// honoring an explicit default_strategy or analyzing the content. The
// strategy table is built once at construction and is plain data; tests can
// substitute or disable individual strategies through WithChunker.
type Factory struct {
	chunkers   map[string]Chunker
	thresholds Thresholds
	log        logging.Logger
}

// Option configures a Factory.
type Option func(*factoryOptions)

type factoryOptions struct {
	embedder   Embedder
	segmenter  SentenceSegmenter
	thresholds Thresholds
	log        logging.Logger
	overrides  []Chunker
}

// WithEmbedder injects the sentence-embedding capability consumed by the
// semantic strategy.
func WithEmbedder(e Embedder) Option {
	return func(o *factoryOptions) { o.embedder = e }
}

// WithSegmenter injects a higher-accuracy sentence-boundary provider for the
// sentence strategy.
func WithSegmenter(s SentenceSegmenter) Option {
	return func(o *factoryOptions) { o.segmenter = s }
}

// WithThresholds overrides the auto-selection thresholds.
func WithThresholds(t Thresholds) Option {
	return func(o *factoryOptions) { o.thresholds = t }
}

// WithLogger sets the factory logger; strategies derive theirs from it.
func WithLogger(log logging.Logger) Option {
	return func(o *factoryOptions) { o.log = log }
}

// WithChunker replaces the registered strategy with the same name. Intended
// for tests and callers plugging in custom strategies.
func WithChunker(c Chunker) Option {
	return func(o *factoryOptions) { o.overrides = append(o.overrides, c) }
}

// NewFactory builds the strategy table and returns the factory.
func NewFactory(opts ...Option) *Factory {
	options := factoryOptions{
		thresholds: DefaultThresholds(),
		log:        logging.New(logr.Logger{}),
	}
	for _, opt := range opts {
		opt(&options)
	}

	log := options.log.WithName("chunker")
	table := map[string]Chunker{
		StrategySemantic:      NewSemantic(options.embedder, log),
		StrategyMDStructure:   NewMDStructure(log),
		StrategySentence:      NewSentence(options.segmenter, log),
		StrategyFixedSize:     NewFixedSize(),
		StrategySlidingWindow: NewSlidingWindow(),
		StrategyParagraph:     NewParagraph(),
	}
	for _, override := range options.overrides {
		table[override.Name()] = override
	}

	return &Factory{chunkers: table, thresholds: options.thresholds, log: log}
}

// Select picks a strategy for the content. An explicit, available
// default_strategy wins; otherwise ("auto", auto_select_strategy, unknown or
// unavailable strategy) content analysis decides. Select never fails: the
// decision list bottoms out at always-available strategies.
func (f *Factory) Select(content string, cfg Config) (Chunker, string) {
	strategy := cfg.String(KeyDefaultStrategy, StrategySlidingWindow)
	if strategy == StrategyAuto || cfg.Bool(KeyAutoSelectStrategy, false) {
		return f.autoSelect(content)
	}
	if chunker, ok := f.chunkers[strategy]; ok {
		if chunker.Available() {
			return chunker, strategy
		}
		f.log.Info("requested strategy unavailable, auto-selecting", "strategy", strategy)
		return f.autoSelect(content)
	}
	f.log.Info("unknown strategy, auto-selecting", "strategy", strategy)
	return f.autoSelect(content)
}

func (f *Factory) autoSelect(content string) (Chunker, string) {
	t := f.thresholds
	length := len(content)
	isMarkdown := detectMarkdown(content, t.MarkdownKinds)
	isStructured := detectStructure(content)
	sentences := estimateSentenceCount(content)

	switch {
	case isMarkdown && f.available(StrategyMDStructure):
		f.log.Debug("auto-selected mdstructure", "reason", "markdown detected")
		return f.chunkers[StrategyMDStructure], StrategyMDStructure

	case isStructured && sentences >= t.StructureSentences &&
		f.available(StrategySemantic) && length > t.StructureLength:
		f.log.Debug("auto-selected semantic", "reason", "structured content")
		return f.chunkers[StrategySemantic], StrategySemantic

	case sentences >= t.SentenceBandMin && sentences <= t.SentenceBandMax &&
		f.available(StrategySentence):
		f.log.Debug("auto-selected sentence", "reason", "clear sentence boundaries")
		return f.chunkers[StrategySentence], StrategySentence

	case length > t.LongContentLength && f.available(StrategySemantic):
		f.log.Debug("auto-selected semantic", "reason", "long content")
		return f.chunkers[StrategySemantic], StrategySemantic

	case f.available(StrategySlidingWindow):
		f.log.Debug("auto-selected sliding_window", "reason", "default")
		return f.chunkers[StrategySlidingWindow], StrategySlidingWindow

	default:
		f.log.Debug("auto-selected fixed_size", "reason", "fallback")
		return f.chunkers[StrategyFixedSize], StrategyFixedSize
	}
}

func (f *Factory) available(name string) bool {
	chunker, ok := f.chunkers[name]
	return ok && chunker.Available()
}

// Segment selects a strategy and runs it in one call, returning the chunks
// and the name of the strategy that produced them.
func (f *Factory) Segment(ctx context.Context, content string, cfg Config) ([]Chunk, string, error) {
	chunker, name := f.Select(content, cfg)
	chunks, err := chunker.Segment(ctx, content, cfg)
	if err != nil {
		return nil, name, fmt.Errorf("segment with %s: %w", name, err)
	}
	return chunks, name, nil
}

// Chunker returns the registered strategy with the given name.
func (f *Factory) Chunker(name string) (Chunker, bool) {
	chunker, ok := f.chunkers[name]
	return chunker, ok
}

// AvailableChunkers reports availability for every registered strategy.
func (f *Factory) AvailableChunkers() map[string]bool {
	out := make(map[string]bool, len(f.chunkers))
	for name, chunker := range f.chunkers {
		out[name] = chunker.Available()
	}
	return out
}

// ChunkerInfo returns the introspection descriptor for a strategy.
func (f *Factory) ChunkerInfo(name string) (Descriptor, error) {
	chunker, ok := f.chunkers[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: unknown strategy %q", ErrConfiguration, name)
	}
	return Descriptor{
		Name:         name,
		Available:    chunker.Available(),
		BestUseCases: bestUseCases[name],
	}, nil
}

// bestUseCases is static introspection data, never consulted by selection.
var bestUseCases = map[string][]string{
	StrategySemantic: {
		"Long documents with varied topics",
		"Academic papers and research",
		"Technical documentation",
		"Content requiring topic coherence",
	},
	StrategyMDStructure: {
		"Markdown documents",
		"Documentation with headers",
		"Structured content with sections",
		"README files and wikis",
	},
	StrategySentence: {
		"Content with clear sentence boundaries",
		"Narrative text and stories",
		"News articles",
		"Conversational content",
	},
	StrategySlidingWindow: {
		"General purpose chunking",
		"Consistent chunk sizes needed",
		"Simple content without structure",
		"Default choice for most content",
	},
	StrategyFixedSize: {
		"Character-based size requirements",
		"Simple text processing",
		"Performance-critical applications",
		"Uniform chunk sizes required",
	},
	StrategyParagraph: {
		"Content with clear paragraph structure",
		"Preserving natural breaks",
		"Informal text and blogs",
		"Content with topic changes per paragraph",
	},
}
