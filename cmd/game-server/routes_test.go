package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"turing-arena/internal/arena"
	"turing-arena/internal/config"
	"turing-arena/internal/game"
	"turing-arena/internal/store"
	"turing-arena/internal/ws"
)

func buildTestRouter() *chi.Mux {
	st := &store.Store{}
	reg := arena.NewRegistry()
	sched := arena.NewScheduler(clockwork.NewRealClock())
	queue := arena.NewQueue(10 * time.Second)
	manager := arena.NewManager(config.GameConfig{}, game.DefaultScoring(), nil, nil, reg, sched)
	wsServer := ws.NewServer(st, queue, manager, reg, sched)
	return newRouter(st, manager, wsServer)
}

func TestRouterExposesExpectedRoutes(t *testing.T) {
	r := buildTestRouter()

	want := map[string]bool{
		"GET /healthz":            false,
		"GET /ws":                 false,
		"POST /api/auth/register": false,
		"POST /api/auth/login":    false,
		"GET /api/leaderboard":    false,
		"GET /api/profile":        false,
	}
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		key := method + " " + route
		if _, ok := want[key]; ok {
			want[key] = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	for route, seen := range want {
		if !seen {
			t.Errorf("route %s not registered", route)
		}
	}
}
