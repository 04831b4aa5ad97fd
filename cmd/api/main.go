package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/lifesim-engine/internal/config"
	"github.com/jwebster45206/lifesim-engine/internal/engine"
	"github.com/jwebster45206/lifesim-engine/internal/handlers"
	"github.com/jwebster45206/lifesim-engine/internal/logger"
	"github.com/jwebster45206/lifesim-engine/internal/middleware"
	"github.com/jwebster45206/lifesim-engine/internal/services"
	"github.com/jwebster45206/lifesim-engine/internal/storage"
	"github.com/jwebster45206/lifesim-engine/pkg/sim"
	pkgstorage "github.com/jwebster45206/lifesim-engine/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Life Sim API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName,
		"store_driver", cfg.StoreDriver)

	tuning, err := cfg.LoadTuning()
	if err != nil {
		log.Error("Failed to load simulation tuning", "error", err, "file", cfg.TuningFile)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	generator, closeGenerator, err := newGenerator(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize generator", "error", err)
		os.Exit(1)
	}
	defer closeGenerator()

	cache, err := storage.NewRedisStateCache(cfg.RedisURL, cfg.StateTTL, log)
	if err != nil {
		log.Error("Failed to create Redis cache", "error", err)
		os.Exit(1)
	}
	if err := cache.WaitForConnection(ctx); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	store, err := newCharacterStore(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open character store", "error", err)
		os.Exit(1)
	}

	processor := engine.NewTurnProcessor(store, cache, generator, sim.NewRand(cfg.SimSeed), tuning, log,
		engine.WithGeneratorTimeout(cfg.LLMTimeout))

	turnHandler, err := handlers.NewTurnHandler(processor, log)
	if err != nil {
		log.Error("Failed to create turn handler", "error", err)
		os.Exit(1)
	}
	characterHandler := handlers.NewCharacterHandler(store, cache, log)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(cache, store, log))
	mux.Handle("/v1/turns", turnHandler)
	mux.Handle("/v1/characters", characterHandler)
	mux.Handle("/v1/characters/", characterHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(log, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing character store", "error", err)
	}
	if err := cache.Close(); err != nil {
		log.Error("Error closing cache connection", "error", err)
	}

	log.Info("Server exited")
}

// newGenerator builds the configured narration generator. A nil generator
// means every turn uses the local fallback narration.
func newGenerator(ctx context.Context, cfg *config.Config, log *slog.Logger) (services.Generator, func(), error) {
	noop := func() {}

	switch cfg.LLMProvider {
	case config.ProviderGroq:
		log.Info("Using Groq generator")
		return services.NewGroqService(cfg.GroqAPIKey, cfg.ModelName, cfg.LLMTimeout, log), noop, nil
	case config.ProviderAnthropic:
		log.Info("Using Anthropic generator")
		return services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, cfg.LLMTimeout, log), noop, nil
	case config.ProviderGemini:
		gemini, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.ModelName, log)
		if err != nil {
			return nil, noop, err
		}
		log.Info("Using Gemini generator")
		return gemini, func() {
			if err := gemini.Close(); err != nil {
				log.Error("Error closing Gemini client", "error", err)
			}
		}, nil
	default:
		log.Warn("No generator configured, narration will use local fallbacks")
		return nil, noop, nil
	}
}

func newCharacterStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (pkgstorage.CharacterStore, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		return storage.OpenPostgres(ctx, cfg.DatabaseURL, log)
	default:
		return storage.OpenSQLite(cfg.SQLitePath, log)
	}
}
