package game

import "math/rand"

// EndingPolicy decides when a conversation with a synthetic opponent stops
// producing replies and when the synthetic side is forced to guess.
//
// With the default thresholds the forced guess fires deterministically at
// GuessPromptThreshold, so the probabilistic reply window between the
// threshold and the ceiling only takes effect when an operator raises the
// threshold. The window is kept as an explicit tunable rather than inline
// randomness.
type EndingPolicy struct {
	GuessPromptThreshold int
	MessageCeiling       int
	ReplyChance          float64

	rng *rand.Rand
}

func NewEndingPolicy(guessPromptThreshold, messageCeiling int, replyChance float64, rng *rand.Rand) *EndingPolicy {
	return &EndingPolicy{
		GuessPromptThreshold: guessPromptThreshold,
		MessageCeiling:       messageCeiling,
		ReplyChance:          replyChance,
		rng:                  rng,
	}
}

// ShouldForceGuess reports whether the synthetic side must submit its guess
// now. Only meaningful when the opponent is synthetic.
func (p *EndingPolicy) ShouldForceGuess(messageCount int, opponentSynthetic bool) bool {
	if !opponentSynthetic {
		return false
	}
	return messageCount >= p.GuessPromptThreshold
}

// ShouldReply reports whether the synthetic side replies to the latest
// message. Below the threshold it always replies; inside the flexible window
// it replies with ReplyChance; at the ceiling it never does.
func (p *EndingPolicy) ShouldReply(messageCount int) bool {
	if messageCount >= p.MessageCeiling {
		return false
	}
	if messageCount >= p.GuessPromptThreshold {
		return p.rng.Float64() < p.ReplyChance
	}
	return true
}
