package ai

import (
	"testing"
	"time"
)

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"adds v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"keeps existing v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty host untouched", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithHost(tt.host))
			if tt.host == "" {
				cfg.ChatHost = ""
				cfg.EmbeddingHost = ""
			}
			cfg.Normalize()
			if cfg.ChatHost != tt.want {
				t.Errorf("ChatHost = %q, want %q", cfg.ChatHost, tt.want)
			}
			if cfg.EmbeddingHost != tt.want {
				t.Errorf("EmbeddingHost = %q, want %q", cfg.EmbeddingHost, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		if err := DefaultConfig().Validate(); err != nil {
			t.Errorf("expected default config to validate, got %v", err)
		}
	})

	t.Run("missing chat model", func(t *testing.T) {
		cfg := NewConfig(WithChatModel(""))
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for empty ChatModel")
		}
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel(""))
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for empty EmbeddingModel")
		}
	})

	t.Run("negative timeout", func(t *testing.T) {
		cfg := NewConfig(WithCallTimeout(-1 * time.Second))
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for negative CallTimeout")
		}
	})
}

func TestConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithChatHost("http://chat:9100/v1"),
		WithEmbeddingHost("http://embed:9200/v1"),
		WithChatModel("gpt-4-turbo"),
		WithEmbeddingModel("text-embedding-3-small"),
		WithCallTimeout(10*time.Second),
	)

	if cfg.ChatHost != "http://chat:9100/v1" {
		t.Errorf("unexpected ChatHost: %q", cfg.ChatHost)
	}
	if cfg.EmbeddingHost != "http://embed:9200/v1" {
		t.Errorf("unexpected EmbeddingHost: %q", cfg.EmbeddingHost)
	}
	if cfg.ChatModel != "gpt-4-turbo" {
		t.Errorf("unexpected ChatModel: %q", cfg.ChatModel)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("unexpected EmbeddingModel: %q", cfg.EmbeddingModel)
	}
	if cfg.CallTimeout != 10*time.Second {
		t.Errorf("unexpected CallTimeout: %v", cfg.CallTimeout)
	}
}
