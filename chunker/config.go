package chunker

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// Config is a flat mapping of named options. Every strategy reads its own
// recognized subset; unknown keys are ignored and missing keys take the
// documented defaults.
type Config map[string]any

// Option keys recognized across the strategies and the factory.
const (
	KeyChunkSize            = "chunk_size"
	KeyMinChunkSize         = "min_chunk_size"
	KeyMaxChunkSize         = "max_chunk_size"
	KeyOverlap              = "overlap"
	KeyMaxSentencesPerChunk = "max_sentences_per_chunk"
	KeyMinSentencesPerChunk = "min_sentences_per_chunk"
	KeyOverlapSentences     = "overlap_sentences"
	KeyRespectHeaders       = "respect_headers"
	KeyIncludeHeaders       = "include_headers"
	KeyBreakpointType       = "breakpoint_threshold_type"
	KeyBreakpointAmount     = "breakpoint_threshold_amount"
	KeyDefaultStrategy      = "default_strategy"
	KeyAutoSelectStrategy   = "auto_select_strategy"
)

// Breakpoint threshold types for the semantic strategy.
const (
	BreakpointPercentile = "percentile"
	BreakpointStdDev     = "standard_deviation"
)

// Int returns the option as an int, or def when absent.
func (c Config) Int(key string, def int) int {
	if v, ok := c[key]; ok {
		return cast.ToInt(v)
	}
	return def
}

// Float returns the option as a float64, or def when absent.
func (c Config) Float(key string, def float64) float64 {
	if v, ok := c[key]; ok {
		return cast.ToFloat64(v)
	}
	return def
}

// String returns the option as a string, or def when absent.
func (c Config) String(key string, def string) string {
	if v, ok := c[key]; ok {
		return cast.ToString(v)
	}
	return def
}

// Bool returns the option as a bool, or def when absent.
func (c Config) Bool(key string, def bool) bool {
	if v, ok := c[key]; ok {
		return cast.ToBool(v)
	}
	return def
}

// ConfigFromJSON builds a Config from a serialized JSON object. Nested values
// are ignored; the option space is flat by contract.
func ConfigFromJSON(raw string) (Config, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: malformed JSON options", ErrConfiguration)
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("%w: options must be a JSON object", ErrConfiguration)
	}
	cfg := Config{}
	parsed.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.String:
			cfg[key.String()] = value.String()
		case gjson.Number:
			cfg[key.String()] = value.Float()
		case gjson.True, gjson.False:
			cfg[key.String()] = value.Bool()
		}
		return true
	})
	return cfg, nil
}

// validateSizes rejects invalid option values before any processing begins.
// Zero min_chunk_size is legal and disables minimum-size merging.
func (c Config) validateSizes() error {
	for _, key := range []string{KeyChunkSize, KeyMaxChunkSize, KeyMaxSentencesPerChunk} {
		if v, ok := c[key]; ok {
			if cast.ToInt(v) <= 0 {
				return fmt.Errorf("%w: %s must be positive, got %v", ErrConfiguration, key, v)
			}
		}
	}
	for _, key := range []string{KeyMinChunkSize, KeyMinSentencesPerChunk, KeyOverlapSentences} {
		if v, ok := c[key]; ok {
			if cast.ToInt(v) < 0 {
				return fmt.Errorf("%w: %s must not be negative, got %v", ErrConfiguration, key, v)
			}
		}
	}
	if v, ok := c[KeyOverlap]; ok {
		overlap := cast.ToFloat64(v)
		if overlap < 0 || overlap >= 1 {
			return fmt.Errorf("%w: %s must be in [0,1), got %v", ErrConfiguration, KeyOverlap, v)
		}
	}
	return nil
}
