package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roivaz/textchunk/chunker"
)

func TestEngineDefaults(t *testing.T) {
	Init()
	cfg := Engine()
	if got := cfg.String(chunker.KeyDefaultStrategy, ""); got != chunker.StrategySlidingWindow {
		t.Fatalf("expected sliding_window default, got %s", got)
	}
	if got := cfg.Int(chunker.KeyChunkSize, 0); got != 1000 {
		t.Fatalf("expected chunk_size 1000, got %d", got)
	}
	if got := cfg.Float(chunker.KeyOverlap, 0); got != 0.2 {
		t.Fatalf("expected overlap 0.2, got %v", got)
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "640")
	Init()
	if got := ChunkSize(); got != 640 {
		t.Fatalf("expected env override 640, got %d", got)
	}
}

func TestLoadOptionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	data := "chunk_size: 512\ndefault_strategy: sentence\nrespect_headers: false\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write options file: %v", err)
	}

	cfg, err := LoadOptionsFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.Int(chunker.KeyChunkSize, 0); got != 512 {
		t.Fatalf("expected 512, got %d", got)
	}
	if got := cfg.String(chunker.KeyDefaultStrategy, ""); got != chunker.StrategySentence {
		t.Fatalf("expected sentence, got %s", got)
	}
	if cfg.Bool(chunker.KeyRespectHeaders, true) {
		t.Fatalf("expected respect_headers false")
	}
}

func TestLoadOptionsFile_Missing(t *testing.T) {
	if _, err := LoadOptionsFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
