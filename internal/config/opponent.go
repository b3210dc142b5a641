package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type OpponentConfig struct {
	BaseURL string        `env:"OPPONENT_BASE_URL" envDefault:"https://api.openai.com"`
	APIKey  string        `env:"OPPONENT_API_KEY"`
	Model   string        `env:"OPPONENT_MODEL" envDefault:"gpt-4o-mini"`
	Timeout time.Duration `env:"OPPONENT_TIMEOUT" envDefault:"20s"`
}

func LoadOpponent() (OpponentConfig, error) {
	var cfg OpponentConfig
	err := env.Parse(&cfg)
	return cfg, err
}
