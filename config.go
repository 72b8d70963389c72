package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service configuration read from the environment.
type Config struct {
	Port         string
	LogMode      string
	StoreDriver  string
	DBPath       string
	DataFile     string
	SeedFile     string
	DocumentName string

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	LLMTimeout time.Duration

	AllowedOrigins []string

	// Warnings collects problems found while loading. They are logged once the
	// logger exists.
	Warnings []string
}

// LoadConfig reads .env if present, then the process environment.
func LoadConfig() Config {
	cfg := Config{}
	if err := godotenv.Load(); err != nil {
		cfg.Warnings = append(cfg.Warnings, ".env file not found, using system environment variables")
	}

	cfg.Port = getEnv("PORT", "8080")
	cfg.LogMode = getEnv("LOG_MODE", "dev")
	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", "sqlite"))
	cfg.DBPath = getEnv("DB_PATH", "course.db")
	cfg.DataFile = getEnv("DATA_FILE", "data.json")
	cfg.SeedFile = getEnv("SEED_FILE", "data/course.json")
	cfg.DocumentName = getEnv("DOCUMENT_NAME", "course")

	cfg.LLMAPIKey = getEnv("LLM_API_KEY", "")
	cfg.LLMBaseURL = getEnv("LLM_BASE_URL", "https://api.deepseek.com")
	cfg.LLMModel = getEnv("LLM_MODEL", "deepseek-chat")
	cfg.LLMTimeout = time.Duration(cfg.getEnvInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second

	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", ""))

	if cfg.StoreDriver != "sqlite" && cfg.StoreDriver != "file" {
		cfg.Warnings = append(cfg.Warnings, "unknown STORE_DRIVER "+strconv.Quote(cfg.StoreDriver)+", using sqlite")
		cfg.StoreDriver = "sqlite"
	}
	if cfg.LLMAPIKey == "" {
		cfg.Warnings = append(cfg.Warnings, "LLM_API_KEY is not set, generation is disabled")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (cfg *Config) getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		cfg.Warnings = append(cfg.Warnings, "invalid "+key+" "+strconv.Quote(v)+", using "+strconv.Itoa(fallback))
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.TrimRight(part, "/"))
		}
	}
	return out
}
