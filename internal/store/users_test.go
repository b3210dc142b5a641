package store_test

import (
	"context"
	"testing"

	"turing-arena/internal/store"
	"turing-arena/internal/testutil"
)

func TestCreateAndAuthenticateUser(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	created, err := st.CreateUser(ctx, "alice", "token-alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := st.GetUserByToken(ctx, "token-alice")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got.ID != created.ID || got.Username != "alice" {
		t.Fatalf("got %+v", got)
	}

	if _, err := st.GetUserByToken(ctx, "wrong-token"); err != store.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRotateToken(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	u, err := st.CreateUser(ctx, "bob", "old-token")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := st.RotateToken(ctx, u.ID, "new-token"); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, err := st.GetUserByToken(ctx, "old-token"); err != store.ErrNotFound {
		t.Fatalf("old token still valid: %v", err)
	}
	if _, err := st.GetUserByToken(ctx, "new-token"); err != nil {
		t.Fatalf("new token rejected: %v", err)
	}
}

func TestApplyGameOutcomeAndLeaderboard(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice, err := st.CreateUser(ctx, "alice", "tok-a")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := st.CreateUser(ctx, "bob", "tok-b")
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	if err := st.ApplyGameOutcome(ctx, alice.ID, store.GameOutcome{Points: 300, Won: true, CorrectGuess: true, DeceptionSuccess: true}); err != nil {
		t.Fatalf("apply alice: %v", err)
	}
	if err := st.ApplyGameOutcome(ctx, bob.ID, store.GameOutcome{Points: 50}); err != nil {
		t.Fatalf("apply bob: %v", err)
	}

	got, err := st.GetUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("get alice: %v", err)
	}
	if got.Stats.GamesPlayed != 1 || got.Stats.GamesWon != 1 || got.Stats.TotalPoints != 300 {
		t.Fatalf("alice stats = %+v", got.Stats)
	}
	if got.Stats.WinRate() != 100 {
		t.Fatalf("win rate = %v", got.Stats.WinRate())
	}

	board, err := st.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("len(board) = %d", len(board))
	}
	if board[0].Username != "alice" || board[0].Rank != 1 {
		t.Fatalf("board[0] = %+v", board[0])
	}
	if board[1].Username != "bob" || board[1].Rank != 2 {
		t.Fatalf("board[1] = %+v", board[1])
	}

	if err := st.ApplyGameOutcome(ctx, "missing-user", store.GameOutcome{}); err != store.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
