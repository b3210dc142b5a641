package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"turing-arena/internal/arena"
	"turing-arena/internal/config"
	"turing-arena/internal/game"
	"turing-arena/internal/logging"
	"turing-arena/internal/opponent"
	"turing-arena/internal/store"
	"turing-arena/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	registry := arena.NewRegistry()
	sched := arena.NewScheduler(clockwork.NewRealClock())
	queue := arena.NewQueue(cfg.Game.MatchTimeout)
	engine := opponent.NewClient(cfg.Opponent)
	manager := arena.NewManager(cfg.Game, game.DefaultScoring(), st, engine, registry, sched)
	wsServer := ws.NewServer(st, queue, manager, registry, sched)

	jobs, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal().Err(err).Msg("job scheduler init failed")
	}
	if _, err := jobs.NewJob(
		gocron.DurationJob(cfg.Game.SweepInterval),
		gocron.NewTask(func() { queue.Sweep(time.Now(), manager) }),
	); err != nil {
		log.Fatal().Err(err).Msg("register matchmaking sweep failed")
	}
	if _, err := jobs.NewJob(
		gocron.DurationJob(cfg.Game.JanitorInterval),
		gocron.NewTask(func() { manager.SweepStale(time.Now()) }),
	); err != nil {
		log.Fatal().Err(err).Msg("register session janitor failed")
	}
	jobs.Start()
	defer func() { _ = jobs.Shutdown() }()

	r := newRouter(st, manager, wsServer)

	// No ReadTimeout: the websocket endpoint carries idle long-lived
	// connections.
	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	st.Close()
}
