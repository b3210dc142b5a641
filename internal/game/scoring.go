package game

import "math"

// ScoringConfig exposes every point source and threshold as a tunable.
type ScoringConfig struct {
	CorrectGuessPoints int
	DeceptionPoints    int

	QuickChatThreshold  int
	MediumChatThreshold int
	LongChatThreshold   int
	QuickChatBonus      int
	MediumChatBonus     int
	LongChatBonus       int

	QuickTimeThreshold  int // seconds
	MediumTimeThreshold int
	LongTimeThreshold   int
	QuickTimeBonus      int
	MediumTimeBonus     int
	LongTimeBonus       int

	FastLatencyThreshold   float64 // seconds
	MediumLatencyThreshold float64
	FastMultiplier         float64
	MediumMultiplier       float64
}

func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		CorrectGuessPoints: 100,
		DeceptionPoints:    50,

		QuickChatThreshold:  5,
		MediumChatThreshold: 10,
		LongChatThreshold:   15,
		QuickChatBonus:      50,
		MediumChatBonus:     30,
		LongChatBonus:       20,

		QuickTimeThreshold:  60,
		MediumTimeThreshold: 120,
		LongTimeThreshold:   180,
		QuickTimeBonus:      50,
		MediumTimeBonus:     30,
		LongTimeBonus:       20,

		FastLatencyThreshold:   5,
		MediumLatencyThreshold: 10,
		FastMultiplier:         1.5,
		MediumMultiplier:       1.25,
	}
}

// Factors are the inputs to one player's score.
type Factors struct {
	CorrectGuess        bool
	MessageCount        int
	DurationSeconds     int
	DeceptionSuccess    bool
	MeanResponseLatency float64 // seconds
}

type Breakdown struct {
	BasePoints     int     `json:"basePoints"`
	MessageBonus   int     `json:"messageBonus"`
	TimeBonus      int     `json:"timeBonus"`
	DeceptionBonus int     `json:"deceptionBonus"`
	Multiplier     float64 `json:"multiplier"`
	Total          int     `json:"total"`
}

// CalculateScore is pure: identical factors always produce an identical
// breakdown.
func (c ScoringConfig) CalculateScore(f Factors) Breakdown {
	b := Breakdown{Multiplier: c.Multiplier(f.MeanResponseLatency)}
	if f.CorrectGuess {
		b.BasePoints = c.CorrectGuessPoints
	}
	b.MessageBonus = c.messageBonus(f.MessageCount)
	b.TimeBonus = c.timeBonus(f.DurationSeconds)
	if f.DeceptionSuccess {
		b.DeceptionBonus = c.DeceptionPoints
	}
	raw := b.BasePoints + b.MessageBonus + b.TimeBonus + b.DeceptionBonus
	b.Total = int(math.Round(float64(raw) * b.Multiplier))
	return b
}

// Shorter resolved conversations earn more.
func (c ScoringConfig) messageBonus(count int) int {
	switch {
	case count <= c.QuickChatThreshold:
		return c.QuickChatBonus
	case count <= c.MediumChatThreshold:
		return c.MediumChatBonus
	case count <= c.LongChatThreshold:
		return c.LongChatBonus
	}
	return 0
}

func (c ScoringConfig) timeBonus(seconds int) int {
	switch {
	case seconds <= c.QuickTimeThreshold:
		return c.QuickTimeBonus
	case seconds <= c.MediumTimeThreshold:
		return c.MediumTimeBonus
	case seconds <= c.LongTimeThreshold:
		return c.LongTimeBonus
	}
	return 0
}

// Multiplier rewards snappy conversational pacing.
func (c ScoringConfig) Multiplier(meanLatency float64) float64 {
	switch {
	case meanLatency < c.FastLatencyThreshold:
		return c.FastMultiplier
	case meanLatency < c.MediumLatencyThreshold:
		return c.MediumMultiplier
	}
	return 1
}
