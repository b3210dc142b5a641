// Package ws is the websocket transport: it authenticates connections,
// decodes inbound frames and hands them to the orchestration core.
package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"turing-arena/internal/arena"
	"turing-arena/internal/game"
	"turing-arena/internal/store"
)

const maxMessageLen = 500

type Client struct {
	id   string
	user *store.User
	conn *websocket.Conn
	send chan []byte
}

func (c *Client) ConnID() string { return c.id }

// Send marshals and queues the event. A stalled reader drops events rather
// than wedging the session that produced them.
func (c *Client) Send(event any) {
	msg, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("marshal outbound event")
		return
	}
	safeSend(c.send, msg)
}

type Server struct {
	store    *store.Store
	queue    *arena.Queue
	manager  *arena.Manager
	registry *arena.Registry
	sched    *arena.Scheduler
	upgrader websocket.Upgrader
}

func NewServer(st *store.Store, queue *arena.Queue, manager *arena.Manager, registry *arena.Registry, sched *arena.Scheduler) *Server {
	return &Server{
		store:    st,
		queue:    queue,
		manager:  manager,
		registry: registry,
		sched:    sched,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUserByToken(r.Context(), bearerToken(r))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{id: store.NewID(), user: user, conn: conn, send: make(chan []byte, 64)}

	if old := s.registry.Register(user.ID, client); old != nil {
		if oc, ok := old.(*Client); ok {
			safeClose(oc.send)
			_ = oc.conn.Close()
		}
	}
	go s.writeLoop(client)

	if s.manager.Resume(user.ID) {
		log.Info().Str("user_id", user.ID).Msg("client re-attached to session")
	}
	s.readLoop(client)
}

// bearerToken accepts the token either as an Authorization header or as a
// query parameter, since browser websocket clients cannot set headers.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		if s.registry.Unregister(c.user.ID, c.id) {
			s.queue.Cancel(c.user.ID)
			s.manager.HandleDisconnect(c.user.ID)
		}
		safeClose(c.send)
		_ = c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}
		switch base.Type {
		case msgJoinQueue:
			s.handleJoinQueue(c)
		case msgLeaveQueue:
			s.queue.Cancel(c.user.ID)
		case msgSendMessage:
			var in SendMessageInbound
			if err := json.Unmarshal(msg, &in); err != nil {
				continue
			}
			s.handleSendMessage(c, in)
		case msgMakeGuess:
			var in MakeGuessInbound
			if err := json.Unmarshal(msg, &in); err != nil {
				continue
			}
			s.handleMakeGuess(c, in)
		case msgLeaveSession:
			if sid, ok := s.registry.SessionByConn(c.id); ok {
				s.manager.EndByForfeit(sid, c.user.ID, "opponent left")
			}
		}
	}
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (s *Server) handleJoinQueue(c *Client) {
	if _, ok := s.registry.SessionByUser(c.user.ID); ok {
		s.sendError(c, "already_in_session")
		return
	}
	s.queue.Enqueue(arena.Participant{
		UserID:   c.user.ID,
		Username: c.user.Username,
		Conn:     c,
	}, s.sched.Now())
}

func (s *Server) handleSendMessage(c *Client, in SendMessageInbound) {
	content := strings.TrimSpace(in.Content)
	if content == "" || utf8.RuneCountInString(content) > maxMessageLen {
		s.sendError(c, "invalid_message")
		return
	}
	sid, ok := s.registry.SessionByConn(c.id)
	if !ok {
		s.sendError(c, "no_active_session")
		return
	}
	if err := s.manager.SubmitMessage(sid, c.user.ID, content); err != nil {
		s.sendError(c, mapError(err))
	}
}

func (s *Server) handleMakeGuess(c *Client, in MakeGuessInbound) {
	verdict := game.Verdict(in.Verdict)
	if verdict != game.VerdictHuman && verdict != game.VerdictSynthetic {
		s.sendError(c, "invalid_verdict")
		return
	}
	sid, ok := s.registry.SessionByConn(c.id)
	if !ok {
		s.sendError(c, "no_active_session")
		return
	}
	if err := s.manager.SubmitGuess(sid, c.user.ID, verdict); err != nil {
		s.sendError(c, mapError(err))
	}
}

func (s *Server) sendError(c *Client, code string) {
	c.Send(arena.ErrorEvent{Type: arena.EventError, Message: code})
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func safeSend(ch chan []byte, msg []byte) {
	defer func() {
		_ = recover()
	}()
	select {
	case ch <- msg:
	default:
	}
}

func mapError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, arena.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, game.ErrSessionNotActive):
		return "session_not_active"
	case errors.Is(err, game.ErrGuessingPhase):
		return "guessing_phase"
	case errors.Is(err, game.ErrNotParticipant):
		return "not_participant"
	}
	return "unknown_error"
}
