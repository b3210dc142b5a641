package game

import "time"

type Verdict string

const (
	VerdictHuman     Verdict = "human"
	VerdictSynthetic Verdict = "synthetic"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// PlayerRef identifies one side of a session. Synthetic players have no
// live connection; their identity is an opaque generated id.
type PlayerRef struct {
	UserID    string
	Synthetic bool
}

func (p PlayerRef) Nature() Verdict {
	if p.Synthetic {
		return VerdictSynthetic
	}
	return VerdictHuman
}

type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Guess struct {
	PlayerID  string    `json:"playerId"`
	Verdict   Verdict   `json:"verdict"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the central aggregate: one matched conversation with its
// message log, guesses and outcome.
type Session struct {
	ID          string
	PlayerA     PlayerRef
	PlayerB     PlayerRef
	Personality string
	Status      Status
	StartTime   time.Time
	EndTime     time.Time
	Messages    []Message
	GuessA      *Guess
	GuessB      *Guess
	PointsA     int
	PointsB     int
	WinnerID    string
}

func NewSession(id string, a, b PlayerRef, personality string, now time.Time) *Session {
	return &Session{
		ID:          id,
		PlayerA:     a,
		PlayerB:     b,
		Personality: personality,
		Status:      StatusActive,
		StartTime:   now,
	}
}

func (s *Session) Player(userID string) (PlayerRef, bool) {
	switch userID {
	case s.PlayerA.UserID:
		return s.PlayerA, true
	case s.PlayerB.UserID:
		return s.PlayerB, true
	}
	return PlayerRef{}, false
}

func (s *Session) Opponent(userID string) (PlayerRef, bool) {
	switch userID {
	case s.PlayerA.UserID:
		return s.PlayerB, true
	case s.PlayerB.UserID:
		return s.PlayerA, true
	}
	return PlayerRef{}, false
}

func (s *Session) SyntheticPlayer() (PlayerRef, bool) {
	if s.PlayerA.Synthetic {
		return s.PlayerA, true
	}
	if s.PlayerB.Synthetic {
		return s.PlayerB, true
	}
	return PlayerRef{}, false
}

// AppendMessage appends with a server-assigned monotonic timestamp. The log
// is ordered by arrival, never by client clocks.
func (s *Session) AppendMessage(id, senderID, content string, now time.Time) Message {
	if n := len(s.Messages); n > 0 && now.Before(s.Messages[n-1].Timestamp) {
		now = s.Messages[n-1].Timestamp
	}
	msg := Message{ID: id, SenderID: senderID, Content: content, Timestamp: now}
	s.Messages = append(s.Messages, msg)
	return msg
}

// RecordGuess stores the first guess per player; later submissions from the
// same player are a no-op. Reports whether the guess was recorded.
func (s *Session) RecordGuess(playerID string, verdict Verdict, now time.Time) bool {
	slot := s.guessSlot(playerID)
	if slot == nil {
		return false
	}
	if *slot != nil {
		return false
	}
	*slot = &Guess{PlayerID: playerID, Verdict: verdict, Timestamp: now}
	return true
}

func (s *Session) guessSlot(playerID string) **Guess {
	switch playerID {
	case s.PlayerA.UserID:
		return &s.GuessA
	case s.PlayerB.UserID:
		return &s.GuessB
	}
	return nil
}

func (s *Session) GuessFor(playerID string) *Guess {
	if slot := s.guessSlot(playerID); slot != nil {
		return *slot
	}
	return nil
}

func (s *Session) BothGuessed() bool {
	return s.GuessA != nil && s.GuessB != nil
}

// InGuessingPhase reports whether any guess has been recorded; no chat is
// allowed past that point.
func (s *Session) InGuessingPhase() bool {
	return s.GuessA != nil || s.GuessB != nil
}
