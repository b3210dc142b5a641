package arena

import (
	"time"

	"turing-arena/internal/game"
)

// Outbound event types. Inbound types live with the transport.
const (
	EventQueueJoined         = "queue-joined"
	EventQueueStatus         = "queue-status"
	EventSessionStarted      = "session-started"
	EventNewMessage          = "new-message"
	EventOpponentTyping      = "opponent-typing"
	EventMessageLimitWarning = "message-limit-warning"
	EventOpponentGuessed     = "opponent-guessed"
	EventSessionResult       = "session-result"
	EventSessionEnded        = "session-ended"
	EventError               = "error"
)

type QueueJoinedEvent struct {
	Type string `json:"type"`
}

type QueueStatusEvent struct {
	Type         string `json:"type"`
	WaitingCount int    `json:"waitingCount"`
}

// OpponentInfo describes the matched counterpart. For synthetic opponents the
// id is an opaque generated identity and the username a fixed alias; the
// synthetic flag itself is part of the protocol.
type OpponentInfo struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	IsSynthetic bool   `json:"isSynthetic"`
}

type SessionStartedEvent struct {
	Type      string       `json:"type"`
	SessionID string       `json:"sessionId"`
	Opponent  OpponentInfo `json:"opponent"`
}

type NewMessageEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"sessionId"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type OpponentTypingEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

type MessageLimitWarningEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// OpponentGuessedEvent tells a participant their counterpart has guessed. It
// never carries the verdict.
type OpponentGuessedEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

type ScorePayload struct {
	Total     int            `json:"total"`
	Breakdown game.Breakdown `json:"breakdown"`
}

type PlayerResultPayload struct {
	Verdict    game.Verdict `json:"verdict"`
	Correct    bool         `json:"correct"`
	Score      ScorePayload `json:"score"`
	Multiplier float64      `json:"multiplier"`
}

type SessionStats struct {
	MessageCount        int     `json:"messageCount"`
	DurationSeconds     int     `json:"durationSeconds"`
	MeanResponseLatency float64 `json:"meanResponseLatency"`
}

// SessionResultEvent is personalized per recipient.
type SessionResultEvent struct {
	Type      string              `json:"type"`
	SessionID string              `json:"sessionId"`
	WinnerID  string              `json:"winnerId,omitempty"`
	You       PlayerResultPayload `json:"you"`
	Opponent  PlayerResultPayload `json:"opponent"`
	Stats     SessionStats        `json:"stats"`
}

type SessionEndedEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
