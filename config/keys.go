package config

const (
	KeyLogLevel        = "log_level"
	KeyOllamaURL       = "ollama_url"
	KeyEmbeddingModel  = "embedding_model_name"
	KeyEmbedTimeout    = "embedding_timeout_seconds"
	KeyDefaultStrategy = "default_strategy"
	KeyAutoSelect      = "auto_select_strategy"
	KeyChunkSize       = "chunk_size"
	KeyMinChunkSize    = "min_chunk_size"
	KeyMaxChunkSize    = "max_chunk_size"
	KeyOverlap         = "overlap"
)
