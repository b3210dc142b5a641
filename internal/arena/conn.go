// Package arena holds the session orchestration core: the matchmaking queue,
// the session lifecycle state machine, guess reconciliation and the
// connection registry.
package arena

// Conn is one live client connection. Send must not block the caller;
// implementations buffer or drop.
type Conn interface {
	ConnID() string
	Send(event any)
}

// Participant is one side of a matchmaking cycle or session. Synthetic
// participants have no connection; every send site checks the variant
// explicitly instead of relying on a stub conn.
type Participant struct {
	UserID    string
	Username  string
	Synthetic bool
	Conn      Conn
}

func (p Participant) send(event any) {
	if p.Synthetic || p.Conn == nil {
		return
	}
	p.Conn.Send(event)
}
