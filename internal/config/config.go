package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Database (generation ledger)
	DatabasePath string

	// S3-compatible object store
	S3BucketName  string
	S3AccessKey   string
	S3SecretKey   string
	S3EndpointURL string // Optional custom endpoint (MinIO, Ceph, ODF)
	S3Region      string // Default: us-east-1

	// HTTP relay
	ListenAddr string

	// Prompt generator
	PromptCount   int
	PromptsOutput string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:  getEnv("DATABASE_PATH", "data/benchview.db"),
		S3BucketName:  getEnv("S3_BUCKET_NAME", ""),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getEnv("S3_SECRET_KEY", ""),
		S3EndpointURL: getEnv("S3_ENDPOINT_URL", ""),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		PromptsOutput: getEnv("PROMPTS_OUTPUT", "historical_prompts.jsonl"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	count, err := strconv.Atoi(getEnv("PROMPT_COUNT", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROMPT_COUNT: %w", err)
	}
	cfg.PromptCount = count

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

// ValidateForGenerate checks configuration needed for prompt generation.
func (c *Config) ValidateForGenerate() error {
	if c.PromptCount <= 0 {
		return fmt.Errorf("PROMPT_COUNT must be positive, got %d", c.PromptCount)
	}
	if c.PromptsOutput == "" {
		return fmt.Errorf("PROMPTS_OUTPUT is required")
	}
	return nil
}

// ValidateForStore checks configuration needed to reach the object store.
func (c *Config) ValidateForStore() error {
	if c.S3BucketName == "" {
		return fmt.Errorf("S3_BUCKET_NAME is required")
	}
	if c.S3AccessKey == "" {
		return fmt.Errorf("S3_ACCESS_KEY is required")
	}
	if c.S3SecretKey == "" {
		return fmt.Errorf("S3_SECRET_KEY is required")
	}
	return nil
}

// ValidateForServe checks configuration needed for serve mode.
// A missing store configuration is not fatal here: the relay starts
// and answers /data with a configuration error instead.
func (c *Config) ValidateForServe() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR is required")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
