package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// envPrefix is the prefix for policyd environment variables.
const envPrefix = "POLICYD_"

// Load loads configuration from a YAML file, then overrides with environment
// variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (POLICYD_LLM_MODEL, POLICYD_RETRIEVAL_TOP_K, ...)
//  2. YAML config file (default: ~/.config/policyd/config.yaml)
//  3. Hardcoded defaults
//
// The Anthropic API key additionally falls back to the conventional
// ANTHROPIC_API_KEY variable, and the OpenAI-compatible embedding key to
// OPENAI_API_KEY.
//
// Environment variables map section-first; see envKey for the exact rules.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "policyd", "config.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file %s exceeds %d bytes", configPath, maxConfigFileSize)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Override with environment variables.
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Conventional API key fallbacks.
	if !cfg.LLM.APIKey.IsSet() {
		cfg.LLM.APIKey = Secret(os.Getenv("ANTHROPIC_API_KEY"))
	}
	if !cfg.Embeddings.APIKey.IsSet() {
		cfg.Embeddings.APIKey = Secret(os.Getenv("OPENAI_API_KEY"))
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envKey maps a POLICYD_* variable name onto a config path. The first
// underscore splits section from field and the field keeps its underscores;
// the vector store backends form a second level:
//
//	POLICYD_LLM_MAX_TOKENS              -> llm.max_tokens
//	POLICYD_VECTORSTORE_PROVIDER        -> vectorstore.provider
//	POLICYD_VECTORSTORE_CHROMEM_PATH    -> vectorstore.chromem.path
//	POLICYD_VECTORSTORE_QDRANT_USE_TLS  -> vectorstore.qdrant.use_tls
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}

	section, field := parts[0], parts[1]
	if section == "vectorstore" {
		for _, backend := range []string{"chromem", "qdrant"} {
			if strings.HasPrefix(field, backend+"_") {
				return section + "." + backend + "." + strings.TrimPrefix(field, backend+"_")
			}
		}
	}
	return section + "." + field
}
