package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/transcribe/internal/images"
	"github.com/lehigh-university-libraries/transcribe/internal/languages"
)

// Config holds the settings shared by the CLI and the web server
type Config struct {
	Provider        string
	Model           string
	Temperature     float64
	Timeout         time.Duration
	MaxUploadBytes  int64
	DefaultLanguage string
	LogLevel        string

	// AllowPrivateURLs lets the server fetch images from internal hosts
	AllowPrivateURLs bool

	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaURL     string
}

// Load reads configuration from the environment. Call godotenv first if a
// .env file should be honoured.
func Load() *Config {
	return &Config{
		Provider:        strings.ToLower(getEnvOrDefault("TRANSCRIBE_PROVIDER", "gemini")),
		Model:           os.Getenv("TRANSCRIBE_MODEL"),
		Temperature:     getFloat("TRANSCRIBE_TEMPERATURE", 0),
		Timeout:         getDuration("TRANSCRIBE_TIMEOUT", 60*time.Second),
		MaxUploadBytes:  getInt64("TRANSCRIBE_MAX_UPLOAD_BYTES", images.DefaultMaxBytes),
		DefaultLanguage: getLanguage("TRANSCRIBE_LANGUAGE", "Spanish"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),

		AllowPrivateURLs: getBool("TRANSCRIBE_ALLOW_PRIVATE_URLS"),

		// API_KEY is the name older deployments of the web tool used
		GeminiAPIKey:  firstEnv("GEMINI_API_KEY", "API_KEY"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OllamaURL:     firstEnv("OLLAMA_URL", "OLLAMA_HOST"),
	}
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	// Plain integers are seconds
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	slog.Warn("Ignoring invalid duration", "key", key, "value", v)
	return def
}

// getLanguage resolves a language name or code, e.g. "es" -> "Spanish"
func getLanguage(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	name, err := languages.Resolve(v)
	if err != nil {
		slog.Warn("Ignoring invalid language", "key", key, "value", v)
		return def
	}
	return name
}

func getBool(key string) bool {
	v := os.Getenv(key)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("Ignoring invalid boolean", "key", key, "value", v)
		return false
	}
	return b
}

func getInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("Ignoring invalid integer", "key", key, "value", v)
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		slog.Warn("Ignoring invalid number", "key", key, "value", v)
		return def
	}
	return f
}
