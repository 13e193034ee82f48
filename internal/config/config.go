package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Inference endpoint. Any OpenAI-compatible server works; the default
	// targets a local Ollama instance.
	LLMBaseURL          string        `envconfig:"LLM_BASE_URL" default:"http://localhost:11434/v1"`
	LLMAPIKey           string        `envconfig:"LLM_API_KEY" default:"ollama"`
	LLMModel            string        `envconfig:"LLM_MODEL" default:"llama3"`
	EmbeddingModel      string        `envconfig:"EMBEDDING_MODEL" default:"nomic-embed-text"`
	EmbeddingDimensions int           `envconfig:"EMBEDDING_DIMENSIONS" default:"768"`
	StepTimeout         time.Duration `envconfig:"STEP_TIMEOUT" default:"120s"`

	// Retrieval
	RetrieveK int `envconfig:"RETRIEVE_K" default:"3"`

	// Ingestion
	UploadDir string `envconfig:"UPLOAD_DIR" default:"./uploads"`

	// Optional bearer token protecting the API. Empty disables auth.
	APIKey string `envconfig:"API_KEY"`

	// Optional Sentry error tracking. Empty DSN disables it.
	SentryDSN         string  `envconfig:"SENTRY_DSN"`
	SentryEnvironment string  `envconfig:"SENTRY_ENVIRONMENT" default:"development"`
	SentrySampleRate  float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE" default:"1.0"`

	// Optional S3-compatible archive for original source files
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"sage-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("SAGE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.RetrieveK <= 0 {
		return nil, fmt.Errorf("SAGE_RETRIEVE_K must be positive, got %d", cfg.RetrieveK)
	}
	if cfg.EmbeddingDimensions <= 0 {
		return nil, fmt.Errorf("SAGE_EMBEDDING_DIMENSIONS must be positive, got %d", cfg.EmbeddingDimensions)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasAuth() bool {
	return c.APIKey != ""
}
