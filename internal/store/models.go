package store

import "time"

type User struct {
	ID        string
	Username  string
	TokenHash string
	Stats     UserStats
	CreatedAt time.Time
}

type UserStats struct {
	GamesPlayed          int
	GamesWon             int
	CorrectGuesses       int
	SuccessfulDeceptions int
	TotalPoints          int64
}

// WinRate in percent, rounded down to the played count's precision.
func (s UserStats) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.GamesWon) / float64(s.GamesPlayed) * 100
}

func (s UserStats) AveragePoints() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalPoints) / float64(s.GamesPlayed)
}

type LeaderboardEntry struct {
	Rank                 int    `json:"rank"`
	Username             string `json:"username"`
	TotalPoints          int64  `json:"totalPoints"`
	GamesPlayed          int    `json:"gamesPlayed"`
	GamesWon             int    `json:"gamesWon"`
	CorrectGuesses       int    `json:"correctGuesses"`
	SuccessfulDeceptions int    `json:"successfulDeceptions"`
}

// GameOutcome is the per-user stats delta applied when a session completes.
type GameOutcome struct {
	Points           int
	Won              bool
	CorrectGuess     bool
	DeceptionSuccess bool
}
