package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/transcribe/internal/images"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TRANSCRIBE_PROVIDER", "TRANSCRIBE_MODEL", "TRANSCRIBE_TEMPERATURE", "TRANSCRIBE_TIMEOUT",
		"TRANSCRIBE_MAX_UPLOAD_BYTES", "TRANSCRIBE_LANGUAGE", "LOG_LEVEL", "TRANSCRIBE_ALLOW_PRIVATE_URLS",
		"GEMINI_API_KEY", "API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OLLAMA_URL", "OLLAMA_HOST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", cfg.Provider)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}
	if cfg.MaxUploadBytes != images.DefaultMaxBytes {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, images.DefaultMaxBytes)
	}
	if cfg.DefaultLanguage != "Spanish" {
		t.Errorf("DefaultLanguage = %q, want Spanish", cfg.DefaultLanguage)
	}
	if cfg.GeminiAPIKey != "" {
		t.Errorf("GeminiAPIKey = %q, want empty", cfg.GeminiAPIKey)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSCRIBE_PROVIDER", "OpenAI")
	t.Setenv("TRANSCRIBE_TIMEOUT", "15")
	t.Setenv("TRANSCRIBE_MAX_UPLOAD_BYTES", "1024")
	t.Setenv("API_KEY", "legacy")
	t.Setenv("OLLAMA_HOST", "http://gpu:11434")

	cfg := Load()
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", cfg.Timeout)
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Errorf("MaxUploadBytes = %d, want 1024", cfg.MaxUploadBytes)
	}
	if cfg.GeminiAPIKey != "legacy" {
		t.Errorf("GeminiAPIKey = %q, want legacy fallback", cfg.GeminiAPIKey)
	}
	if cfg.OllamaURL != "http://gpu:11434" {
		t.Errorf("OllamaURL = %q", cfg.OllamaURL)
	}

	t.Setenv("GEMINI_API_KEY", "primary")
	if got := Load().GeminiAPIKey; got != "primary" {
		t.Errorf("GeminiAPIKey = %q, want primary", got)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSCRIBE_TIMEOUT", "soon")
	t.Setenv("TRANSCRIBE_MAX_UPLOAD_BYTES", "-5")

	cfg := Load()
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want default", cfg.Timeout)
	}
	if cfg.MaxUploadBytes != images.DefaultMaxBytes {
		t.Errorf("MaxUploadBytes = %d, want default", cfg.MaxUploadBytes)
	}
}

func TestLanguageIsResolved(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSCRIBE_LANGUAGE", "es")
	if got := Load().DefaultLanguage; got != "Spanish" {
		t.Errorf("DefaultLanguage = %q, want Spanish", got)
	}

	t.Setenv("TRANSCRIBE_LANGUAGE", "ja")
	if got := Load().DefaultLanguage; got != "Japanese" {
		t.Errorf("DefaultLanguage = %q, want Japanese", got)
	}

	t.Setenv("TRANSCRIBE_LANGUAGE", "und")
	if got := Load().DefaultLanguage; got != "Spanish" {
		t.Errorf("DefaultLanguage = %q, want default for an invalid language", got)
	}
}

func TestAllowPrivateURLs(t *testing.T) {
	clearEnv(t)
	if Load().AllowPrivateURLs {
		t.Error("private URLs should be refused by default")
	}

	t.Setenv("TRANSCRIBE_ALLOW_PRIVATE_URLS", "true")
	if !Load().AllowPrivateURLs {
		t.Error("expected AllowPrivateURLs from env")
	}

	t.Setenv("TRANSCRIBE_ALLOW_PRIVATE_URLS", "sometimes")
	if Load().AllowPrivateURLs {
		t.Error("an invalid boolean should fall back to false")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := &Config{LogLevel: in}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
