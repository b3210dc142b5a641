package game

import "time"

type PlayerResult struct {
	PlayerID         string
	Verdict          Verdict
	ActualOpponent   Verdict
	Correct          bool
	DeceptionSuccess bool
	Score            Breakdown
}

type Result struct {
	WinnerID            string // empty means draw
	A                   PlayerResult
	B                   PlayerResult
	MessageCount        int
	DurationSeconds     int
	MeanResponseLatency float64
}

// ComputeResult scores a session once both guesses are present. It never
// mutates the session.
func ComputeResult(s *Session, cfg ScoringConfig, now time.Time) (Result, error) {
	if !s.BothGuessed() {
		return Result{}, ErrGuessesMissing
	}

	duration := int(now.Sub(s.StartTime) / time.Second)
	latency := MeanResponseLatency(s.Messages)

	a := playerResult(s, s.PlayerA, *s.GuessA, *s.GuessB, cfg, duration, latency)
	b := playerResult(s, s.PlayerB, *s.GuessB, *s.GuessA, cfg, duration, latency)

	res := Result{
		A:                   a,
		B:                   b,
		MessageCount:        len(s.Messages),
		DurationSeconds:     duration,
		MeanResponseLatency: latency,
	}
	// A winner exists only when exactly one side guessed correctly.
	switch {
	case a.Correct && !b.Correct:
		res.WinnerID = s.PlayerA.UserID
	case b.Correct && !a.Correct:
		res.WinnerID = s.PlayerB.UserID
	}
	return res, nil
}

func playerResult(s *Session, me PlayerRef, mine, theirs Guess, cfg ScoringConfig, duration int, latency float64) PlayerResult {
	opp, _ := s.Opponent(me.UserID)
	correct := mine.Verdict == opp.Nature()
	deceived := theirs.Verdict != me.Nature()

	score := cfg.CalculateScore(Factors{
		CorrectGuess:        correct,
		MessageCount:        len(s.Messages),
		DurationSeconds:     duration,
		DeceptionSuccess:    deceived,
		MeanResponseLatency: latency,
	})
	return PlayerResult{
		PlayerID:         me.UserID,
		Verdict:          mine.Verdict,
		ActualOpponent:   opp.Nature(),
		Correct:          correct,
		DeceptionSuccess: deceived,
		Score:            score,
	}
}

// MeanResponseLatency is the average gap between consecutive messages, in
// seconds. Zero for conversations shorter than two messages.
func MeanResponseLatency(messages []Message) float64 {
	if len(messages) < 2 {
		return 0
	}
	var total time.Duration
	for i := 1; i < len(messages); i++ {
		total += messages[i].Timestamp.Sub(messages[i-1].Timestamp)
	}
	return total.Seconds() / float64(len(messages)-1)
}
