package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// AI gateway (OpenAI-compatible streaming endpoint)
	GatewayURL   string `env:"AI_GATEWAY_URL" envDefault:"https://ai.gateway.lovable.dev/v1"`
	GatewayKey   string `env:"AI_GATEWAY_KEY,required"`
	GatewayModel string `env:"AI_GATEWAY_MODEL" envDefault:"google/gemini-3-flash-preview"`

	// Per-1M-token prices used for local cost accounting (USD)
	PromptPrice     float64 `env:"PROMPT_PRICE_PER_1M" envDefault:"0.10"`
	CompletionPrice float64 `env:"COMPLETION_PRICE_PER_1M" envDefault:"0.40"`
	MarkupPercent   float64 `env:"MARKUP_PERCENT" envDefault:"0"`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
