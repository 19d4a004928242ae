package chunker

import (
	"errors"
	"testing"
)

func TestConfig_TypedAccessWithDefaults(t *testing.T) {
	cfg := Config{
		KeyChunkSize:       "1200", // strings coerce
		KeyOverlap:         0.25,
		KeyDefaultStrategy: StrategySentence,
		KeyIncludeHeaders:  false,
	}
	if got := cfg.Int(KeyChunkSize, 1000); got != 1200 {
		t.Fatalf("expected 1200, got %d", got)
	}
	if got := cfg.Int(KeyMaxChunkSize, 2000); got != 2000 {
		t.Fatalf("missing key should take the default, got %d", got)
	}
	if got := cfg.Float(KeyOverlap, 0.2); got != 0.25 {
		t.Fatalf("expected 0.25, got %v", got)
	}
	if got := cfg.String(KeyDefaultStrategy, "sliding_window"); got != StrategySentence {
		t.Fatalf("expected sentence, got %s", got)
	}
	if cfg.Bool(KeyIncludeHeaders, true) {
		t.Fatalf("explicit false must win over the default")
	}
	if !cfg.Bool(KeyRespectHeaders, true) {
		t.Fatalf("missing bool should take the default")
	}
}

func TestConfig_UnknownKeysIgnored(t *testing.T) {
	cfg := Config{"some_future_option": 42}
	if err := cfg.validateSizes(); err != nil {
		t.Fatalf("unknown keys must not fail validation: %v", err)
	}
}

func TestConfig_ValidateSizes(t *testing.T) {
	bad := []Config{
		{KeyChunkSize: 0},
		{KeyChunkSize: -5},
		{KeyMaxChunkSize: 0},
		{KeyMaxSentencesPerChunk: 0},
		{KeyMinChunkSize: -1},
		{KeyOverlapSentences: -2},
		{KeyOverlap: -0.1},
		{KeyOverlap: 1.0},
	}
	for i, cfg := range bad {
		if err := cfg.validateSizes(); !errors.Is(err, ErrConfiguration) {
			t.Fatalf("case %d: expected ErrConfiguration, got %v", i, err)
		}
	}

	good := []Config{
		{},
		{KeyMinChunkSize: 0},
		{KeyChunkSize: 1, KeyOverlap: 0.0},
		{KeyOverlap: 0.99},
	}
	for i, cfg := range good {
		if err := cfg.validateSizes(); err != nil {
			t.Fatalf("case %d: unexpected error: %v", i, err)
		}
	}
}

func TestConfigFromJSON(t *testing.T) {
	cfg, err := ConfigFromJSON(`{"chunk_size": 800, "default_strategy": "auto", "respect_headers": false, "nested": {"x": 1}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.Int(KeyChunkSize, 0); got != 800 {
		t.Fatalf("expected 800, got %d", got)
	}
	if got := cfg.String(KeyDefaultStrategy, ""); got != StrategyAuto {
		t.Fatalf("expected auto, got %s", got)
	}
	if cfg.Bool(KeyRespectHeaders, true) {
		t.Fatalf("expected respect_headers false")
	}
	if _, ok := cfg["nested"]; ok {
		t.Fatalf("nested values must be dropped")
	}
}

func TestConfigFromJSON_Malformed(t *testing.T) {
	for _, raw := range []string{"{not json", `"just a string"`, "[1,2,3]"} {
		if _, err := ConfigFromJSON(raw); !errors.Is(err, ErrConfiguration) {
			t.Fatalf("%q: expected ErrConfiguration, got %v", raw, err)
		}
	}
}
