package game

import (
	"testing"
	"time"
)

func TestComputeResultSingleCorrectWins(t *testing.T) {
	s := testSession(true) // user-b synthetic
	now := s.StartTime
	s.AppendMessage("m1", "user-a", "hey", now.Add(2*time.Second))
	s.AppendMessage("m2", "user-b", "yo", now.Add(4*time.Second))
	s.RecordGuess("user-a", VerdictSynthetic, now.Add(30*time.Second))
	s.RecordGuess("user-b", VerdictSynthetic, now.Add(32*time.Second))

	res, err := ComputeResult(s, DefaultScoring(), now.Add(40*time.Second))
	if err != nil {
		t.Fatalf("ComputeResult: %v", err)
	}
	if !res.A.Correct {
		t.Fatal("human guessed synthetic against a synthetic opponent; should be correct")
	}
	if res.B.Correct {
		t.Fatal("synthetic guessed synthetic against a human; should be wrong")
	}
	if res.WinnerID != "user-a" {
		t.Fatalf("WinnerID = %q, want user-a", res.WinnerID)
	}
	// The human saw through the synthetic, so the synthetic deceived nobody.
	if res.B.DeceptionSuccess {
		t.Fatal("synthetic scored deception although the human saw through it")
	}
	// The synthetic misjudged the human, so the human's deception succeeded.
	if !res.A.DeceptionSuccess {
		t.Fatal("human deceived the synthetic but DeceptionSuccess is false")
	}
}

func TestComputeResultDrawWhenBothCorrect(t *testing.T) {
	s := testSession(false) // two humans
	now := s.StartTime
	s.RecordGuess("user-a", VerdictHuman, now.Add(10*time.Second))
	s.RecordGuess("user-b", VerdictHuman, now.Add(11*time.Second))

	res, err := ComputeResult(s, DefaultScoring(), now.Add(20*time.Second))
	if err != nil {
		t.Fatalf("ComputeResult: %v", err)
	}
	if !res.A.Correct || !res.B.Correct {
		t.Fatalf("both should be correct: %+v %+v", res.A, res.B)
	}
	if res.WinnerID != "" {
		t.Fatalf("WinnerID = %q, want draw", res.WinnerID)
	}
}

func TestComputeResultDrawWhenBothWrong(t *testing.T) {
	s := testSession(false)
	now := s.StartTime
	s.RecordGuess("user-a", VerdictSynthetic, now.Add(10*time.Second))
	s.RecordGuess("user-b", VerdictSynthetic, now.Add(11*time.Second))

	res, err := ComputeResult(s, DefaultScoring(), now.Add(20*time.Second))
	if err != nil {
		t.Fatalf("ComputeResult: %v", err)
	}
	if res.WinnerID != "" {
		t.Fatalf("WinnerID = %q, want draw", res.WinnerID)
	}
	// Each human was called synthetic, so both deceptions succeeded.
	if !res.A.DeceptionSuccess || !res.B.DeceptionSuccess {
		t.Fatalf("both sides deceived: %+v %+v", res.A, res.B)
	}
}

func TestComputeResultRequiresBothGuesses(t *testing.T) {
	s := testSession(true)
	s.RecordGuess("user-a", VerdictSynthetic, s.StartTime.Add(5*time.Second))
	if _, err := ComputeResult(s, DefaultScoring(), s.StartTime.Add(10*time.Second)); err != ErrGuessesMissing {
		t.Fatalf("err = %v, want ErrGuessesMissing", err)
	}
}

func TestMeanResponseLatency(t *testing.T) {
	base := time.Unix(5000, 0)
	msgs := []Message{
		{Timestamp: base},
		{Timestamp: base.Add(2 * time.Second)},
		{Timestamp: base.Add(6 * time.Second)},
	}
	if got := MeanResponseLatency(msgs); got != 3 {
		t.Fatalf("MeanResponseLatency = %v, want 3", got)
	}
	if got := MeanResponseLatency(msgs[:1]); got != 0 {
		t.Fatalf("MeanResponseLatency single message = %v, want 0", got)
	}
	if got := MeanResponseLatency(nil); got != 0 {
		t.Fatalf("MeanResponseLatency nil = %v, want 0", got)
	}
}
