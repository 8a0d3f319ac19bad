// Package config provides configuration loading for policyd.
//
// Configuration is loaded from a YAML file and overridden by environment
// variables, with hardcoded defaults as the final fallback.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete policyd configuration.
type Config struct {
	Logging     LoggingConfig     `koanf:"logging"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	LLM         LLMConfig         `koanf:"llm"`
	Retrieval   RetrievalConfig   `koanf:"retrieval"`
	Chunking    ChunkingConfig    `koanf:"chunking"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is the output encoding: json or console.
	Format string `koanf:"format"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	// Provider is the store backend: "chromem" (embedded, default) or "qdrant".
	Provider string        `koanf:"provider"`
	Chromem  ChromemConfig `koanf:"chromem"`
	Qdrant   QdrantConfig  `koanf:"qdrant"`
}

// ChromemConfig holds configuration for the embedded chromem-go store.
type ChromemConfig struct {
	// Path is the directory for persistent storage.
	Path string `koanf:"path"`
	// Compress enables gzip compression for stored data.
	Compress bool `koanf:"compress"`
	// Collection is the collection name holding all policy chunks.
	Collection string `koanf:"collection"`
	// VectorSize is the embedding dimension. Must match the embedding model.
	VectorSize int `koanf:"vector_size"`
}

// QdrantConfig holds configuration for an external Qdrant server.
type QdrantConfig struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	Collection string `koanf:"collection"`
	VectorSize int    `koanf:"vector_size"`
	UseTLS     bool   `koanf:"use_tls"`
}

// EmbeddingsConfig holds embedding provider configuration.
type EmbeddingsConfig struct {
	// Provider is the embedding backend: "fastembed" (local ONNX, default)
	// or "openai" (OpenAI-compatible HTTP API, including TEI).
	Provider string `koanf:"provider"`
	// Model is the embedding model name.
	Model string `koanf:"model"`
	// CacheDir is the model download cache (fastembed only).
	CacheDir string `koanf:"cache_dir"`
	// BaseURL is the API base URL (openai provider only).
	BaseURL string `koanf:"base_url"`
	// APIKey is the API key (openai provider only, optional for TEI).
	APIKey Secret `koanf:"api_key"`
}

// LLMConfig holds configuration for the answer-generation model.
type LLMConfig struct {
	// Model is the Anthropic model identifier.
	Model string `koanf:"model"`
	// BaseURL is the Anthropic API base URL.
	BaseURL string `koanf:"base_url"`
	// APIKey is the Anthropic API key. Falls back to ANTHROPIC_API_KEY.
	APIKey Secret `koanf:"api_key"`
	// MaxTokens caps the completion length.
	MaxTokens int `koanf:"max_tokens"`
	// Temperature controls sampling randomness. Kept low for grounded answers.
	Temperature float64 `koanf:"temperature"`
	// Timeout bounds a single model invocation.
	Timeout time.Duration `koanf:"timeout"`
}

// RetrievalConfig holds similarity search parameters.
type RetrievalConfig struct {
	// TopK is the number of candidates fetched per question.
	TopK int `koanf:"top_k"`
	// MaxDistance is the relevance threshold: results with cosine distance
	// at or above this value are discarded.
	MaxDistance float64 `koanf:"max_distance"`
}

// ChunkingConfig holds text chunking parameters.
type ChunkingConfig struct {
	// Size is the maximum chunk length in characters.
	Size int `koanf:"size"`
	// Overlap is the number of characters shared between adjacent chunks.
	Overlap int `koanf:"overlap"`
}

// applyDefaults fills unset fields with default values.
func applyDefaults(c *Config) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.VectorStore.Provider == "" {
		c.VectorStore.Provider = "chromem"
	}
	if c.VectorStore.Chromem.Path == "" {
		c.VectorStore.Chromem.Path = "~/.local/share/policyd/vectorstore"
	}
	if c.VectorStore.Chromem.Collection == "" {
		c.VectorStore.Chromem.Collection = "hr_policies"
	}
	if c.VectorStore.Chromem.VectorSize == 0 {
		c.VectorStore.Chromem.VectorSize = 384
	}
	if c.VectorStore.Qdrant.Host == "" {
		c.VectorStore.Qdrant.Host = "localhost"
	}
	if c.VectorStore.Qdrant.Port == 0 {
		c.VectorStore.Qdrant.Port = 6334
	}
	if c.VectorStore.Qdrant.Collection == "" {
		c.VectorStore.Qdrant.Collection = "hr_policies"
	}
	if c.VectorStore.Qdrant.VectorSize == 0 {
		c.VectorStore.Qdrant.VectorSize = 384
	}
	if c.Embeddings.Provider == "" {
		c.Embeddings.Provider = "fastembed"
	}
	if c.Embeddings.Model == "" {
		c.Embeddings.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if c.Embeddings.CacheDir == "" {
		c.Embeddings.CacheDir = "~/.cache/policyd/models"
	}
	if c.Embeddings.BaseURL == "" {
		c.Embeddings.BaseURL = "http://localhost:8080/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "claude-sonnet-4-20250514"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.anthropic.com"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.3
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 60 * time.Second
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 5
	}
	if c.Retrieval.MaxDistance == 0 {
		c.Retrieval.MaxDistance = 0.7
	}
	if c.Chunking.Size == 0 {
		c.Chunking.Size = 500
	}
	if c.Chunking.Overlap == 0 {
		c.Chunking.Overlap = 50
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %q (must be json or console)", c.Logging.Format)
	}

	switch c.VectorStore.Provider {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("invalid vectorstore provider: %q (supported: chromem, qdrant)", c.VectorStore.Provider)
	}

	switch c.Embeddings.Provider {
	case "fastembed", "openai":
	default:
		return fmt.Errorf("invalid embeddings provider: %q (supported: fastembed, openai)", c.Embeddings.Provider)
	}

	if c.VectorStore.Qdrant.Port < 1 || c.VectorStore.Qdrant.Port > 65535 {
		return fmt.Errorf("invalid qdrant port: %d (must be 1-65535)", c.VectorStore.Qdrant.Port)
	}

	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm max_tokens must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		return fmt.Errorf("llm temperature must be in [0,1], got %g", c.LLM.Temperature)
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm timeout must be positive")
	}

	if c.Retrieval.TopK <= 0 {
		return errors.New("retrieval top_k must be positive")
	}
	if c.Retrieval.MaxDistance <= 0 || c.Retrieval.MaxDistance > 2 {
		return fmt.Errorf("retrieval max_distance must be in (0,2], got %g", c.Retrieval.MaxDistance)
	}

	if c.Chunking.Size <= 0 {
		return errors.New("chunking size must be positive")
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking overlap must be in [0, size), got overlap=%d size=%d", c.Chunking.Overlap, c.Chunking.Size)
	}

	return nil
}
