package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// AES-256 key for sealing group API keys, 64 hex characters
	EncryptionKey string `env:"ENCRYPTION_KEY,required"`

	// Generation backend (any OpenAI-compatible endpoint)
	GenerationBaseURL string `env:"GENERATION_BASE_URL" envDefault:"https://api.openai.com/v1"`
	GenerationModel   string `env:"GENERATION_MODEL" envDefault:"gpt-4o-mini"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
