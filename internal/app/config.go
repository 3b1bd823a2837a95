// Package app is the composition root: it turns environment config into the
// concrete pipeline, ingestion loader and their clients.
package app

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/skillsage/server/internal/agent/model"
	"github.com/skillsage/server/internal/core"
	pkgpostgres "github.com/skillsage/server/pkg/postgres"
	pkgredis "github.com/skillsage/server/pkg/redis"
)

// Config defines all configurable parameters, sourced from environment
// variables (loaded from .env for local runs).
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Postgres pkgpostgres.Config
	Redis    pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Intent       model.IntentModelConfig
	Answer       model.AnswerModelConfig
	Embedding    model.EmbeddingConfig
	Pipeline     model.PipelineConfig
	Retrieval    model.RetrievalConfig
	Access       model.AccessConfig
	Conversation model.ConversationConfig

	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// LoadConfig reads envFile when it exists, then processes the environment.
func LoadConfig(envFile string) (Config, error) {
	var cfg Config
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("process environment config: %w", err)
	}
	return cfg, nil
}

func (c Config) Env() core.Environment {
	return core.ParseEnvironment(c.Environment)
}

// ConversationTTL parses CONVERSATION_TTL.
func (c Config) ConversationTTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(c.Conversation.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid CONVERSATION_TTL %q: %w", c.Conversation.TTL, err)
	}
	return ttl, nil
}
