package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// GameConfig holds every timing and pacing knob of the orchestration core.
type GameConfig struct {
	MatchTimeout  time.Duration `env:"MATCH_TIMEOUT" envDefault:"10s"`
	SweepInterval time.Duration `env:"MATCH_SWEEP_INTERVAL" envDefault:"1s"`

	GuessPromptThreshold int     `env:"GUESS_PROMPT_THRESHOLD" envDefault:"8"`
	MessageCeiling       int     `env:"MESSAGE_CEILING" envDefault:"10"`
	EarlyEndReplyChance  float64 `env:"EARLY_END_REPLY_CHANCE" envDefault:"0.4"`

	SyntheticGuessDelay time.Duration `env:"SYNTHETIC_GUESS_DELAY" envDefault:"2s"`
	RevealDelayMin      time.Duration `env:"REVEAL_DELAY_MIN" envDefault:"3s"`
	RevealDelayMax      time.Duration `env:"REVEAL_DELAY_MAX" envDefault:"4s"`
	ResultGrace         time.Duration `env:"RESULT_GRACE" envDefault:"5s"`
	DisconnectGrace     time.Duration `env:"DISCONNECT_GRACE" envDefault:"10s"`

	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"60s"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"30m"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}
