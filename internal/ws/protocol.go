package ws

// Inbound message types. Outbound events are defined in the arena package
// next to the code that emits them.
const (
	msgJoinQueue    = "join-queue"
	msgLeaveQueue   = "leave-queue"
	msgSendMessage  = "send-message"
	msgMakeGuess    = "make-guess"
	msgLeaveSession = "leave-session"
)

type SendMessageInbound struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type MakeGuessInbound struct {
	Type    string `json:"type"`
	Verdict string `json:"verdict"`
}
