package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"turing-arena/internal/arena"
	"turing-arena/internal/config"
	"turing-arena/internal/game"
	"turing-arena/internal/store"
	"turing-arena/internal/testutil"
)

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws?token=query-tok", nil)
	if got := bearerToken(r); got != "query-tok" {
		t.Fatalf("query token = %q", got)
	}
	r.Header.Set("Authorization", "Bearer header-tok")
	if got := bearerToken(r); got != "header-tok" {
		t.Fatalf("header token = %q", got)
	}
}

func TestMapError(t *testing.T) {
	cases := map[error]string{
		nil:                      "",
		arena.ErrSessionNotFound: "session_not_found",
		game.ErrSessionNotActive: "session_not_active",
		game.ErrGuessingPhase:    "guessing_phase",
		game.ErrNotParticipant:   "not_participant",
		context.DeadlineExceeded: "unknown_error",
	}
	for err, want := range cases {
		if got := mapError(err); got != want {
			t.Fatalf("mapError(%v) = %q, want %q", err, got, want)
		}
	}
}

type wsFixture struct {
	srv *httptest.Server
}

func newWSFixture(t *testing.T, st *store.Store) *wsFixture {
	t.Helper()
	cfg := config.GameConfig{
		MatchTimeout:         10 * time.Second,
		GuessPromptThreshold: 8,
		MessageCeiling:       10,
		SyntheticGuessDelay:  2 * time.Second,
		RevealDelayMin:       50 * time.Millisecond,
		RevealDelayMax:       60 * time.Millisecond,
		ResultGrace:          time.Second,
		DisconnectGrace:      time.Second,
		SessionTTL:           30 * time.Minute,
	}
	reg := arena.NewRegistry()
	sched := arena.NewScheduler(clockwork.NewRealClock())
	queue := arena.NewQueue(cfg.MatchTimeout)
	engine := noopEngine{}
	manager := arena.NewManager(cfg, game.DefaultScoring(), st, engine, reg, sched)
	server := NewServer(st, queue, manager, reg, sched)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.HandleWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	// Matchmaking sweep, same cadence as production.
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	go func() {
		tick := time.NewTicker(50 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case now := <-tick.C:
				queue.Sweep(now, manager)
			}
		}
	}()
	return &wsFixture{srv: srv}
}

type noopEngine struct{}

func (noopEngine) PersonalityFor(string) string { return "student" }
func (noopEngine) GenerateReply(context.Context, []game.Message, string, string) (string, time.Duration, error) {
	return "hm", 10 * time.Millisecond, nil
}
func (noopEngine) GenerateGuess(context.Context, []game.Message, string) (game.Verdict, error) {
	return game.VerdictHuman, nil
}

func (f *wsFixture) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn, wantType string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", wantType, err)
		}
		var ev map[string]any
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if ev["type"] == wantType {
			return ev
		}
	}
	t.Fatalf("no %q event before deadline", wantType)
	return nil
}

func TestHandleWSRejectsBadToken(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	f := newWSFixture(t, st)

	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws?token=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial with bad token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestTwoClientsMatchAndChat(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()
	if _, err := st.CreateUser(ctx, "alice", "tok-a"); err != nil {
		t.Fatalf("create alice: %v", err)
	}
	if _, err := st.CreateUser(ctx, "bob", "tok-b"); err != nil {
		t.Fatalf("create bob: %v", err)
	}
	f := newWSFixture(t, st)

	connA := f.dial(t, "tok-a")
	connB := f.dial(t, "tok-b")

	join := []byte(`{"type":"join-queue"}`)
	if err := connA.WriteMessage(websocket.TextMessage, join); err != nil {
		t.Fatal(err)
	}
	readEvent(t, connA, arena.EventQueueJoined)
	if err := connB.WriteMessage(websocket.TextMessage, join); err != nil {
		t.Fatal(err)
	}

	startedA := readEvent(t, connA, arena.EventSessionStarted)
	startedB := readEvent(t, connB, arena.EventSessionStarted)
	if startedA["sessionId"] != startedB["sessionId"] {
		t.Fatalf("session ids differ: %v vs %v", startedA["sessionId"], startedB["sessionId"])
	}
	opp, _ := startedA["opponent"].(map[string]any)
	if opp["username"] != "bob" || opp["isSynthetic"] == true {
		t.Fatalf("alice's opponent = %v", opp)
	}

	if err := connA.WriteMessage(websocket.TextMessage, []byte(`{"type":"send-message","content":"hi there"}`)); err != nil {
		t.Fatal(err)
	}
	msg := readEvent(t, connB, arena.EventNewMessage)
	if msg["content"] != "hi there" {
		t.Fatalf("message = %v", msg)
	}

	// A blank message is a protocol error, not a broadcast.
	if err := connA.WriteMessage(websocket.TextMessage, []byte(`{"type":"send-message","content":"   "}`)); err != nil {
		t.Fatal(err)
	}
	ev := readEvent(t, connA, arena.EventError)
	if ev["message"] != "invalid_message" {
		t.Fatalf("error = %v", ev)
	}
}

func TestGuessFlowOverWire(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()
	if _, err := st.CreateUser(ctx, "alice", "tok-a"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.CreateUser(ctx, "bob", "tok-b"); err != nil {
		t.Fatal(err)
	}
	f := newWSFixture(t, st)

	connA := f.dial(t, "tok-a")
	connB := f.dial(t, "tok-b")
	join := []byte(`{"type":"join-queue"}`)
	_ = connA.WriteMessage(websocket.TextMessage, join)
	_ = connB.WriteMessage(websocket.TextMessage, join)
	readEvent(t, connA, arena.EventSessionStarted)
	readEvent(t, connB, arena.EventSessionStarted)

	if err := connA.WriteMessage(websocket.TextMessage, []byte(`{"type":"make-guess","verdict":"human"}`)); err != nil {
		t.Fatal(err)
	}
	readEvent(t, connB, arena.EventOpponentGuessed)

	// Chat is frozen once a guess lands.
	if err := connB.WriteMessage(websocket.TextMessage, []byte(`{"type":"send-message","content":"wait"}`)); err != nil {
		t.Fatal(err)
	}
	ev := readEvent(t, connB, arena.EventError)
	if ev["message"] != "guessing_phase" {
		t.Fatalf("error = %v", ev)
	}

	if err := connB.WriteMessage(websocket.TextMessage, []byte(`{"type":"make-guess","verdict":"synthetic"}`)); err != nil {
		t.Fatal(err)
	}
	resA := readEvent(t, connA, arena.EventSessionResult)
	you, _ := resA["you"].(map[string]any)
	if you["correct"] != true {
		t.Fatalf("alice's result = %v", resA)
	}
	if resA["winnerId"] != startedUserID(t, st, "alice") {
		t.Fatalf("winner = %v", resA["winnerId"])
	}
	readEvent(t, connB, arena.EventSessionResult)
}

func startedUserID(t *testing.T, st *store.Store, username string) string {
	t.Helper()
	u, err := st.GetUserByUsername(context.Background(), username)
	if err != nil {
		t.Fatalf("lookup %s: %v", username, err)
	}
	return u.ID
}

func TestInvalidVerdictRejected(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	if _, err := st.CreateUser(context.Background(), "alice", "tok-a"); err != nil {
		t.Fatal(err)
	}
	f := newWSFixture(t, st)
	conn := f.dial(t, "tok-a")

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"make-guess","verdict":"robot"}`)); err != nil {
		t.Fatal(err)
	}
	ev := readEvent(t, conn, arena.EventError)
	if ev["message"] != "invalid_verdict" {
		t.Fatalf("error = %v", ev)
	}
}
