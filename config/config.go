// Package config loads process-level chunking defaults from the environment
// and option files. Per-call options remain a chunker.Config; this package
// only materializes the starting point.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"

	"github.com/roivaz/textchunk/chunker"
)

// Init wires the environment into viper and applies defaults. An optional
// .env file is honored when present.
func Init() {
	viper.AutomaticEnv()
	_ = godotenv.Load()
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyOllamaURL, "http://localhost:11434")
	viper.SetDefault(KeyEmbeddingModel, "nomic-embed-text")
	viper.SetDefault(KeyEmbedTimeout, 60)
	viper.SetDefault(KeyDefaultStrategy, chunker.StrategySlidingWindow)
	viper.SetDefault(KeyAutoSelect, false)
	viper.SetDefault(KeyChunkSize, 1000)
	viper.SetDefault(KeyMinChunkSize, 100)
	viper.SetDefault(KeyMaxChunkSize, 2000)
	viper.SetDefault(KeyOverlap, 0.2)
}

func LogLevel() string         { return viper.GetString(KeyLogLevel) }
func OllamaURL() string        { return viper.GetString(KeyOllamaURL) }
func EmbeddingModel() string   { return viper.GetString(KeyEmbeddingModel) }
func EmbedTimeoutSeconds() int { return viper.GetInt(KeyEmbedTimeout) }
func DefaultStrategy() string  { return viper.GetString(KeyDefaultStrategy) }
func AutoSelect() bool         { return viper.GetBool(KeyAutoSelect) }
func ChunkSize() int           { return viper.GetInt(KeyChunkSize) }
func MinChunkSize() int        { return viper.GetInt(KeyMinChunkSize) }
func MaxChunkSize() int        { return viper.GetInt(KeyMaxChunkSize) }
func Overlap() float64         { return viper.GetFloat64(KeyOverlap) }

// Engine materializes the environment-derived per-call option map.
func Engine() chunker.Config {
	return chunker.Config{
		chunker.KeyDefaultStrategy:    DefaultStrategy(),
		chunker.KeyAutoSelectStrategy: AutoSelect(),
		chunker.KeyChunkSize:          ChunkSize(),
		chunker.KeyMinChunkSize:       MinChunkSize(),
		chunker.KeyMaxChunkSize:       MaxChunkSize(),
		chunker.KeyOverlap:            Overlap(),
	}
}

// LoadOptionsFile reads a YAML (or JSON) option file into a chunker.Config.
// Unknown keys are carried through; the engine ignores what it does not
// recognize.
func LoadOptionsFile(path string) (chunker.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read options file: %w", err)
	}
	var cfg chunker.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse options file %s: %w", path, err)
	}
	return cfg, nil
}
