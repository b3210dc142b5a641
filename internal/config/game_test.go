package config

import (
	"testing"
	"time"
)

func TestLoadGameDefaults(t *testing.T) {
	cfg, err := LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() error = %v", err)
	}
	if cfg.MatchTimeout != 10*time.Second {
		t.Fatalf("MatchTimeout = %v, want 10s", cfg.MatchTimeout)
	}
	if cfg.GuessPromptThreshold != 8 {
		t.Fatalf("GuessPromptThreshold = %d, want 8", cfg.GuessPromptThreshold)
	}
	if cfg.DisconnectGrace != 10*time.Second {
		t.Fatalf("DisconnectGrace = %v, want 10s", cfg.DisconnectGrace)
	}
	if cfg.EarlyEndReplyChance != 0.4 {
		t.Fatalf("EarlyEndReplyChance = %v, want 0.4", cfg.EarlyEndReplyChance)
	}
}

func TestLoadGameOverrides(t *testing.T) {
	t.Setenv("MATCH_TIMEOUT", "3s")
	t.Setenv("MESSAGE_CEILING", "12")
	t.Setenv("REVEAL_DELAY_MIN", "1s")

	cfg, err := LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() error = %v", err)
	}
	if cfg.MatchTimeout != 3*time.Second {
		t.Fatalf("MatchTimeout = %v", cfg.MatchTimeout)
	}
	if cfg.MessageCeiling != 12 || cfg.RevealDelayMin != time.Second {
		t.Fatalf("unexpected game config: %+v", cfg)
	}
}
