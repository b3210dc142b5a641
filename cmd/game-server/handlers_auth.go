package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"turing-arena/internal/store"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,24}$`)

func registerHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		body.Username = strings.TrimSpace(body.Username)
		if !usernamePattern.MatchString(body.Username) {
			writeHTTPError(w, http.StatusBadRequest, "invalid_username")
			return
		}
		if _, err := st.GetUserByUsername(r.Context(), body.Username); err == nil {
			writeHTTPError(w, http.StatusConflict, "username_taken")
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}

		token := "ta_" + uuid.NewString()
		user, err := st.CreateUser(r.Context(), body.Username, token)
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"userId":   user.ID,
			"username": user.Username,
			"token":    token,
		})
	}
}

// loginHandler validates a token and returns the matching profile. The token
// itself is the credential; there is no password.
func loginHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		user, err := st.GetUserByToken(r.Context(), body.Token)
		if err != nil {
			writeHTTPError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		_ = json.NewEncoder(w).Encode(profilePayload(user))
	}
}

func profileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(userContextKey{}).(*store.User)
		_ = json.NewEncoder(w).Encode(profilePayload(user))
	}
}

func profilePayload(u *store.User) map[string]any {
	return map[string]any{
		"userId":   u.ID,
		"username": u.Username,
		"stats": map[string]any{
			"gamesPlayed":          u.Stats.GamesPlayed,
			"gamesWon":             u.Stats.GamesWon,
			"winRate":              u.Stats.WinRate(),
			"correctGuesses":       u.Stats.CorrectGuesses,
			"successfulDeceptions": u.Stats.SuccessfulDeceptions,
			"totalPoints":          u.Stats.TotalPoints,
			"averagePoints":        u.Stats.AveragePoints(),
		},
	}
}

type userContextKey struct{}

func userAuthMiddleware(st *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			prefix := "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			user, err := st.GetUserByToken(r.Context(), auth[len(prefix):])
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
