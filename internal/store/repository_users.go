package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateUser(ctx context.Context, username, token string) (*User, error) {
	u := &User{ID: NewID(), Username: username, TokenHash: HashToken(token)}
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO users (id, username, token_hash) VALUES ($1, $2, $3)`,
		u.ID, u.Username, u.TokenHash)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) GetUserByToken(ctx context.Context, token string) (*User, error) {
	return s.scanUser(s.Pool.QueryRow(ctx, userSelect+` WHERE token_hash = $1`, HashToken(token)))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.scanUser(s.Pool.QueryRow(ctx, userSelect+` WHERE username = $1`, username))
}

func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	return s.scanUser(s.Pool.QueryRow(ctx, userSelect+` WHERE id = $1`, id))
}

// RotateToken reissues the opaque bearer identity for a user.
func (s *Store) RotateToken(ctx context.Context, userID, token string) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE users SET token_hash = $1 WHERE id = $2`, HashToken(token), userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const userSelect = `SELECT id, username, token_hash, games_played, games_won,
	correct_guesses, successful_deceptions, total_points, created_at FROM users`

func (s *Store) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.TokenHash,
		&u.Stats.GamesPlayed, &u.Stats.GamesWon, &u.Stats.CorrectGuesses,
		&u.Stats.SuccessfulDeceptions, &u.Stats.TotalPoints, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ApplyGameOutcome folds one finished session into a user's lifetime stats.
func (s *Store) ApplyGameOutcome(ctx context.Context, userID string, out GameOutcome) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE users SET
			games_played = games_played + 1,
			games_won = games_won + CASE WHEN $2 THEN 1 ELSE 0 END,
			correct_guesses = correct_guesses + CASE WHEN $3 THEN 1 ELSE 0 END,
			successful_deceptions = successful_deceptions + CASE WHEN $4 THEN 1 ELSE 0 END,
			total_points = total_points + $5
		WHERE id = $1`,
		userID, out.Won, out.CorrectGuess, out.DeceptionSuccess, out.Points)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT username, total_points, games_played, games_won, correct_guesses, successful_deceptions
		FROM users ORDER BY total_points DESC, username ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.TotalPoints, &e.GamesPlayed, &e.GamesWon,
			&e.CorrectGuesses, &e.SuccessfulDeceptions); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
