package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Point at a path that does not exist so only defaults apply.
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "chromem", cfg.VectorStore.Provider)
	assert.Equal(t, "hr_policies", cfg.VectorStore.Chromem.Collection)
	assert.Equal(t, 384, cfg.VectorStore.Chromem.VectorSize)
	assert.Equal(t, "fastembed", cfg.Embeddings.Provider)
	assert.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", cfg.Embeddings.Model)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.7, cfg.Retrieval.MaxDistance, 1e-9)
	assert.Equal(t, 500, cfg.Chunking.Size)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: debug
  format: json
vectorstore:
  provider: qdrant
  qdrant:
    host: qdrant.internal
    port: 7334
retrieval:
  top_k: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "qdrant", cfg.VectorStore.Provider)
	assert.Equal(t, "qdrant.internal", cfg.VectorStore.Qdrant.Host)
	assert.Equal(t, 7334, cfg.VectorStore.Qdrant.Port)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	// Unset sections still get defaults.
	assert.Equal(t, 500, cfg.Chunking.Size)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retrieval:\n  top_k: 3\n"), 0600))

	t.Setenv("POLICYD_RETRIEVAL_TOP_K", "8")
	t.Setenv("POLICYD_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvNestedBackendKeys(t *testing.T) {
	t.Setenv("POLICYD_VECTORSTORE_CHROMEM_PATH", "/tmp/policyd-test-index")
	t.Setenv("POLICYD_VECTORSTORE_QDRANT_USE_TLS", "true")
	t.Setenv("POLICYD_VECTORSTORE_QDRANT_PORT", "7334")
	t.Setenv("POLICYD_LLM_MAX_TOKENS", "2048")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/policyd-test-index", cfg.VectorStore.Chromem.Path)
	assert.True(t, cfg.VectorStore.Qdrant.UseTLS)
	assert.Equal(t, 7334, cfg.VectorStore.Qdrant.Port)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"POLICYD_LOGGING_LEVEL":              "logging.level",
		"POLICYD_RETRIEVAL_TOP_K":            "retrieval.top_k",
		"POLICYD_VECTORSTORE_PROVIDER":       "vectorstore.provider",
		"POLICYD_VECTORSTORE_CHROMEM_PATH":   "vectorstore.chromem.path",
		"POLICYD_VECTORSTORE_QDRANT_USE_TLS": "vectorstore.qdrant.use_tls",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestLoad_AnthropicKeyFallback(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sk-ant-test", cfg.LLM.APIKey.Value())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		applyDefaults(c)
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad provider", func(c *Config) { c.VectorStore.Provider = "milvus" }, "vectorstore provider"},
		{"bad embeddings provider", func(c *Config) { c.Embeddings.Provider = "cohere" }, "embeddings provider"},
		{"bad logging format", func(c *Config) { c.Logging.Format = "xml" }, "logging format"},
		{"overlap equals size", func(c *Config) { c.Chunking.Overlap = c.Chunking.Size }, "overlap"},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }, "overlap"},
		{"zero top_k", func(c *Config) { c.Retrieval.TopK = -1 }, "top_k"},
		{"distance out of range", func(c *Config) { c.Retrieval.MaxDistance = 2.5 }, "max_distance"},
		{"temperature out of range", func(c *Config) { c.LLM.Temperature = 1.5 }, "temperature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("sk-ant-very-secret")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "sk-ant-very-secret", s.Value())
	assert.True(t, s.IsSet())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"[REDACTED]"`, string(data))

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}
