package main

import (
	"encoding/json"
	"net/http"

	"turing-arena/internal/store"
)

func leaderboardHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseLimit(r)
		items, err := st.Leaderboard(r.Context(), limit)
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": items,
			"limit": limit,
		})
	}
}
