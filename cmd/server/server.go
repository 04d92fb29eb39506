package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/combat-api/internal/orchestrators/encounter"
	"github.com/KirkDiggler/combat-api/internal/pkg/clock"
	"github.com/KirkDiggler/combat-api/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/combat-api/internal/redis"
	"github.com/KirkDiggler/combat-api/internal/repositories/encounters"
	"github.com/KirkDiggler/combat-api/internal/sessions"
)

type serverConfig struct {
	Port        int           `env:"COMBAT_API_PORT" envDefault:"8080"`
	RedisAddr   string        `env:"COMBAT_API_REDIS_ADDR"`
	TurnTimeout time.Duration `env:"COMBAT_API_TURN_TIMEOUT" envDefault:"2m"`
}

var portFlag int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the combat server",
	Long:  `Start the websocket server that hosts combat encounters.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().IntVar(&portFlag, "port", 0, "listen port (overrides COMBAT_API_PORT)")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Missing .env is fine, configuration falls back to defaults.
	_ = godotenv.Load()

	var cfg serverConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if portFlag != 0 {
		cfg.Port = portFlag
	}

	repo, err := buildRepository(&cfg)
	if err != nil {
		return err
	}

	service, err := encounter.NewOrchestrator(&encounter.Config{
		Repository:  repo,
		IDGenerator: idgen.NewUUID("enc"),
	})
	if err != nil {
		return fmt.Errorf("failed to create encounter orchestrator: %w", err)
	}

	hub := sessions.NewHub()
	handler, err := sessions.NewHandler(&sessions.HandlerConfig{
		Service:     service,
		Hub:         hub,
		Clock:       clock.New(),
		TurnTimeout: cfg.TurnTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create session handler: %w", err)
	}
	defer handler.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("combat server starting",
			"port", cfg.Port,
			"turn_timeout", cfg.TurnTimeout)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-sigChan:
		slog.Info("received shutdown signal, gracefully stopping")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown timeout exceeded, forcing stop", "error", err)
			_ = srv.Close()
		} else {
			slog.Info("server stopped gracefully")
		}

		return nil
	case err := <-errChan:
		return err
	}
}

func buildRepository(cfg *serverConfig) (encounters.Repository, error) {
	if cfg.RedisAddr == "" {
		slog.Info("no redis address configured, using in-memory encounter storage")
		return encounters.NewInMemory(nil), nil
	}

	client, err := redisclient.NewClient(cfg.RedisAddr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	repo, err := encounters.NewRedisRepository(&encounters.Config{
		Client: client,
		Clock:  clock.New(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create encounter repository: %w", err)
	}

	slog.Info("using redis encounter storage", "addr", cfg.RedisAddr)
	return repo, nil
}
