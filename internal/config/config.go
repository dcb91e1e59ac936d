package config

import (
	"log"
	"os"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port     string
	LogLevel string

	GCPProjectID string
	GCPLocation  string
	GeminiModel  string

	AnthropicAPIKey string
	ClaudeModel     string

	StorageBackend string // "memory", "sqlite" or "firestore"
	SQLitePath     string

	TutorBackend string // "mock", "gemini" or "claude"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads all env vars and builds the config
func Load() *Config {
	modeStr := getEnv("LINGUA_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	defaultTutor := "gemini"
	if mode == ModeLocal {
		defaultTutor = "mock"
	}

	cfg := &Config{
		Mode: mode,

		Port:     getEnv("LINGUA_PORT", "8080"),
		LogLevel: getEnv("LINGUA_LOG_LEVEL", "info"),

		GCPProjectID: getEnv("LINGUA_GCP_PROJECT", ""),
		GCPLocation:  getEnv("LINGUA_GCP_LOCATION", "us-central1"),
		GeminiModel:  getEnv("LINGUA_GEMINI_MODEL", "gemini-2.5-flash"),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		ClaudeModel:     getEnv("LINGUA_CLAUDE_MODEL", "claude-sonnet-4-20250514"),

		StorageBackend: getEnv("LINGUA_STORAGE_BACKEND", "memory"),
		SQLitePath:     getEnv("LINGUA_SQLITE_PATH", "data"),

		TutorBackend: getEnv("LINGUA_TUTOR_BACKEND", defaultTutor),
	}

	// Minimal validation for combinations that cannot work.
	if cfg.StorageBackend == "firestore" && cfg.GCPProjectID == "" {
		log.Fatal("LINGUA_GCP_PROJECT must be set for the firestore storage backend")
	}
	if cfg.TutorBackend == "gemini" && cfg.GCPProjectID == "" {
		log.Fatal("LINGUA_GCP_PROJECT must be set for the gemini tutor backend")
	}
	if cfg.TutorBackend == "claude" && cfg.AnthropicAPIKey == "" {
		log.Fatal("ANTHROPIC_API_KEY must be set for the claude tutor backend")
	}

	return cfg
}
