package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bombom-game-server/api"
	"bombom-game-server/config"
	"bombom-game-server/loghandler"
	"bombom-game-server/matchmaking"
	"bombom-game-server/storage"
	"bombom-game-server/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err2 := godotenv.Load("server/.env"); err2 != nil {
			slog.Info("no .env file found; using environment variables")
		}
	}

	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stdout, slog.LevelInfo)))

	cfg := config.Load()

	if cfg.AuthBaseURL == "" {
		slog.Warn("AUTH_BASE_URL is not set; auth messages will be rejected and matches will not be persisted per user")
	} else {
		slog.Info("auth configured", "baseURL", cfg.AuthBaseURL)
	}

	slog.Info("configuration loaded",
		"wsPort", cfg.WSPort,
		"turnLimitSec", cfg.TurnLimitSec,
		"memorizeCountdownSec", cfg.MemorizeCountdownSec,
		"penaltyDrawCount", cfg.PenaltyDrawCount,
		"matchTargetScore", cfg.MatchTargetScore)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("storage init failed; continuing without persistence", "err", err)
		store = nil
	}
	if store == nil {
		slog.Warn("DATABASE_URL not set or unreachable; match history disabled")
	}
	defer store.Close()

	mm := matchmaking.NewMatchmaker(cfg, store)
	go mm.Run()

	hub := ws.NewHub(cfg, mm)
	go hub.Run(ctx)

	var historyStore storage.HistoryStore
	if store != nil {
		historyStore = store
	}
	apiHandler := api.NewHandler(cfg, historyStore)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", hub.ServeWS)
	r.Get("/api/history", apiHandler.History)
	r.Options("/api/history", apiHandler.History)
	r.Get("/api/leaderboard", apiHandler.Leaderboard)
	r.Options("/api/leaderboard", apiHandler.Leaderboard)
	r.Get("/api/health", apiHandler.Health)

	addr := fmt.Sprintf(":%d", cfg.WSPort)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		srv.Shutdown(context.Background())
	}()

	slog.Info("Bombom server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
