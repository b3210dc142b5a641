package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"turing-arena/internal/game"
)

// SaveSession upserts the full session snapshot. The orchestrator calls it on
// every state change; a failed write is retried implicitly on the next save.
func (s *Store) SaveSession(ctx context.Context, sess *game.Session) error {
	messages, err := json.Marshal(sess.Messages)
	if err != nil {
		return err
	}
	guessA, err := marshalGuess(sess.GuessA)
	if err != nil {
		return err
	}
	guessB, err := marshalGuess(sess.GuessB)
	if err != nil {
		return err
	}
	var endedAt *time.Time
	if !sess.EndTime.IsZero() {
		endedAt = &sess.EndTime
	}

	_, err = s.Pool.Exec(ctx, `
		INSERT INTO sessions (id, player_a, player_a_synthetic, player_b, player_b_synthetic,
			personality, status, started_at, ended_at, messages, guess_a, guess_b,
			points_a, points_b, winner_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			ended_at = EXCLUDED.ended_at,
			messages = EXCLUDED.messages,
			guess_a = EXCLUDED.guess_a,
			guess_b = EXCLUDED.guess_b,
			points_a = EXCLUDED.points_a,
			points_b = EXCLUDED.points_b,
			winner_id = EXCLUDED.winner_id`,
		sess.ID, sess.PlayerA.UserID, sess.PlayerA.Synthetic,
		sess.PlayerB.UserID, sess.PlayerB.Synthetic,
		sess.Personality, string(sess.Status), sess.StartTime, endedAt,
		messages, guessA, guessB, sess.PointsA, sess.PointsB, sess.WinnerID)
	return err
}

func (s *Store) GetSession(ctx context.Context, id string) (*game.Session, error) {
	return s.scanSession(s.Pool.QueryRow(ctx, sessionSelect+` WHERE id = $1`, id))
}

// FindActiveSessionByUser returns the active session a user participates in,
// if any. Used to re-attach a reconnecting client.
func (s *Store) FindActiveSessionByUser(ctx context.Context, userID string) (*game.Session, error) {
	return s.scanSession(s.Pool.QueryRow(ctx,
		sessionSelect+` WHERE status = 'active' AND (player_a = $1 OR player_b = $1)
		ORDER BY started_at DESC LIMIT 1`, userID))
}

const sessionSelect = `SELECT id, player_a, player_a_synthetic, player_b, player_b_synthetic,
	personality, status, started_at, ended_at, messages, guess_a, guess_b,
	points_a, points_b, winner_id FROM sessions`

func (s *Store) scanSession(row pgx.Row) (*game.Session, error) {
	var (
		sess     game.Session
		status   string
		endedAt  *time.Time
		messages []byte
		guessA   []byte
		guessB   []byte
	)
	err := row.Scan(&sess.ID, &sess.PlayerA.UserID, &sess.PlayerA.Synthetic,
		&sess.PlayerB.UserID, &sess.PlayerB.Synthetic,
		&sess.Personality, &status, &sess.StartTime, &endedAt,
		&messages, &guessA, &guessB, &sess.PointsA, &sess.PointsB, &sess.WinnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sess.Status = game.Status(status)
	if endedAt != nil {
		sess.EndTime = *endedAt
	}
	if err := json.Unmarshal(messages, &sess.Messages); err != nil {
		return nil, err
	}
	if sess.GuessA, err = unmarshalGuess(guessA); err != nil {
		return nil, err
	}
	if sess.GuessB, err = unmarshalGuess(guessB); err != nil {
		return nil, err
	}
	return &sess, nil
}

func marshalGuess(g *game.Guess) ([]byte, error) {
	if g == nil {
		return nil, nil
	}
	return json.Marshal(g)
}

func unmarshalGuess(b []byte) (*game.Guess, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var g game.Guess
	if err := json.Unmarshal(b, &g); err != nil {
		return nil, err
	}
	return &g, nil
}
