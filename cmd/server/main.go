package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/tahcohcat/calmkid/config"
	"github.com/tahcohcat/calmkid/internal/api"
	"github.com/tahcohcat/calmkid/internal/auth"
	"github.com/tahcohcat/calmkid/internal/database"
	"github.com/tahcohcat/calmkid/internal/llm"
	"github.com/tahcohcat/calmkid/internal/logger"
	"github.com/tahcohcat/calmkid/internal/services"
	"github.com/tahcohcat/calmkid/internal/tips"
	"github.com/tahcohcat/calmkid/internal/tts"
	"github.com/tahcohcat/calmkid/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		logger.New().WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetGlobalLevel(logger.ParseLevel(cfg.Log.Level))
	log := logger.New()

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	hub := websocket.NewHub(cfg.Server.AllowedOrigins)
	defer hub.Close()

	svc := services.New(db, services.Options{
		Timeout:  cfg.StoreTimeout(),
		Location: cfg.Location(),
		Notifier: hub,
	}, cfg.Suggestions.Limit)

	client, err := llm.NewLLMClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.IsModelAvailable(ctx); err != nil {
			log.WithError(err).Warn("LLM unavailable, personalised tips fall back to the static set")
		}
		cancel()
	}

	narrator, err := tts.New(context.Background(), cfg.Tts)
	if err != nil {
		log.WithError(err).Warn("narration disabled")
		narrator = tts.NewDummyTts()
	}
	if closer, ok := narrator.(io.Closer); ok {
		defer closer.Close()
	}

	sessions := auth.NewSessions(cfg.Auth.SessionSecret)

	h := api.New(svc, api.Options{
		Sessions: sessions,
		Advisor:  tips.NewAdvisor(client),
		Narrator: narrator,
		Notifier: hub,
	})
	defer h.Close()

	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/api/v1").Subrouter())
	hub.RegisterRoutes(r, sessions)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("CalmKid server starting on port %s (db %s, llm %s, tts %s)",
			cfg.Server.Port, cfg.Database.Path, cfg.LLM.Provider, narrator.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
