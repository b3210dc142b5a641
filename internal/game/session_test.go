package game

import (
	"testing"
	"time"
)

func testSession(syntheticB bool) *Session {
	a := PlayerRef{UserID: "user-a"}
	b := PlayerRef{UserID: "user-b", Synthetic: syntheticB}
	return NewSession("sess-1", a, b, "student", time.Unix(1000, 0))
}

func TestAppendMessageMonotonicTimestamps(t *testing.T) {
	s := testSession(false)
	base := time.Unix(2000, 0)
	s.AppendMessage("m1", "user-a", "hi", base)
	s.AppendMessage("m2", "user-b", "hey", base.Add(2*time.Second))
	// A clock reading behind the previous append must not reorder the log.
	s.AppendMessage("m3", "user-a", "sup", base.Add(time.Second))

	if len(s.Messages) != 3 {
		t.Fatalf("len(Messages) = %d, want 3", len(s.Messages))
	}
	for i := 1; i < len(s.Messages); i++ {
		if s.Messages[i].Timestamp.Before(s.Messages[i-1].Timestamp) {
			t.Fatalf("message %d timestamp %v precedes %v", i, s.Messages[i].Timestamp, s.Messages[i-1].Timestamp)
		}
	}
}

func TestRecordGuessIdempotent(t *testing.T) {
	s := testSession(true)
	now := time.Unix(3000, 0)

	if !s.RecordGuess("user-a", VerdictSynthetic, now) {
		t.Fatal("first guess not recorded")
	}
	if s.RecordGuess("user-a", VerdictHuman, now.Add(time.Second)) {
		t.Fatal("second guess from same player was recorded")
	}
	if s.GuessA.Verdict != VerdictSynthetic {
		t.Fatalf("GuessA.Verdict = %q, want %q", s.GuessA.Verdict, VerdictSynthetic)
	}
	if s.GuessA.Timestamp != now {
		t.Fatalf("GuessA.Timestamp changed to %v", s.GuessA.Timestamp)
	}
}

func TestRecordGuessUnknownPlayer(t *testing.T) {
	s := testSession(false)
	if s.RecordGuess("stranger", VerdictHuman, time.Now()) {
		t.Fatal("guess from non-participant was recorded")
	}
	if s.GuessA != nil || s.GuessB != nil {
		t.Fatal("state mutated by non-participant guess")
	}
}

func TestGuessingPhase(t *testing.T) {
	s := testSession(true)
	if s.InGuessingPhase() {
		t.Fatal("fresh session already in guessing phase")
	}
	s.RecordGuess("user-b", VerdictHuman, time.Now())
	if !s.InGuessingPhase() {
		t.Fatal("one guess present but not in guessing phase")
	}
	if s.BothGuessed() {
		t.Fatal("BothGuessed with a single guess")
	}
	s.RecordGuess("user-a", VerdictSynthetic, time.Now())
	if !s.BothGuessed() {
		t.Fatal("BothGuessed false with two guesses")
	}
}

func TestOpponentLookup(t *testing.T) {
	s := testSession(true)
	opp, ok := s.Opponent("user-a")
	if !ok || opp.UserID != "user-b" || !opp.Synthetic {
		t.Fatalf("Opponent(user-a) = %+v ok=%v", opp, ok)
	}
	if _, ok := s.Opponent("stranger"); ok {
		t.Fatal("Opponent found for non-participant")
	}
}
