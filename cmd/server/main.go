package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wordbridge/wordbridge/internal/adapter/dynamo"
	httpAdapter "github.com/wordbridge/wordbridge/internal/adapter/http"
	"github.com/wordbridge/wordbridge/internal/adapter/http/handlers"
	"github.com/wordbridge/wordbridge/internal/adapter/memstore"
	"github.com/wordbridge/wordbridge/internal/adapter/token"
	"github.com/wordbridge/wordbridge/internal/core/ports"
	"github.com/wordbridge/wordbridge/internal/core/services"
	"github.com/wordbridge/wordbridge/internal/sampler"
)

const (
	Version     = "1.1.0"
	ServiceName = "WordBridge Backend"
)

type Config struct {
	HTTPPort string

	StoreBackend   string // "dynamo" or "memory"
	WordsTable     string
	SentencesTable string
	PoolIndex      string
	UserIndex      string
	SentenceIndex  string

	DataDir          string // memory backend snapshots
	SnapshotInterval time.Duration

	JWTSecret string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ShutdownTimeout  time.Duration
}

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	printBanner(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wordStore, sentenceStore, err := setupStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Store setup error: %v", err)
	}

	tokens, err := token.NewJWTMaker(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Token setup error: %v", err)
	}

	rnd := sampler.NewRand()
	api := handlers.NewAPI(
		services.NewWordService(wordStore, rnd),
		services.NewSentenceService(sentenceStore, rnd),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpAdapter.NewServer(api, tokens).Router(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, draining connections...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	log.Println("Bye.")
}

// setupStores picks the persistence backend. The memory backend restores its
// snapshot on boot and keeps snapshotting until shutdown.
func setupStores(ctx context.Context, cfg *Config) (ports.WordStore, ports.SentenceStore, error) {
	switch cfg.StoreBackend {
	case "dynamo":
		db, err := dynamo.NewClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		words := dynamo.NewWordStore(db, cfg.WordsTable, cfg.PoolIndex, cfg.UserIndex)
		sentences := dynamo.NewSentenceStore(db, cfg.SentencesTable, cfg.SentenceIndex)
		return words, sentences, nil

	case "memory":
		store := memstore.New()
		path := cfg.DataDir + "/wordbridge.snap"
		if err := store.Restore(path); err != nil {
			return nil, nil, fmt.Errorf("restore snapshot: %w", err)
		}
		store.PeriodicSnapshot(ctx, path, cfg.SnapshotInterval)
		log.Printf("Memory backend active, snapshots in %s", cfg.DataDir)
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func loadConfig() (*Config, error) {
	cfg := &Config{
		HTTPPort: getenv("PORT", "8080"),

		StoreBackend:   getenv("STORE_BACKEND", "dynamo"),
		WordsTable:     getenv("WORDS_TABLE", ""),
		SentencesTable: getenv("SENTENCES_TABLE", ""),
		PoolIndex:      getenv("POOL_INDEX", dynamo.DefaultPoolIndex),
		UserIndex:      getenv("USER_INDEX", dynamo.DefaultUserIndex),
		SentenceIndex:  getenv("SENTENCE_INDEX", dynamo.DefaultSentenceIndex),

		DataDir:          getenv("DATA_DIR", "./data"),
		SnapshotInterval: getenvDuration("SNAPSHOT_INTERVAL", 30*time.Second),

		JWTSecret: getenv("JWT_SECRET", ""),

		HTTPReadTimeout:  getenvDuration("HTTP_READ_TIMEOUT", 30*time.Second),
		HTTPWriteTimeout: getenvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		HTTPIdleTimeout:  getenvDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
		ShutdownTimeout:  getenvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.StoreBackend == "memory" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.StoreBackend != "dynamo" && cfg.StoreBackend != "memory" {
		return fmt.Errorf("STORE_BACKEND must be 'dynamo' or 'memory', got %q", cfg.StoreBackend)
	}
	if cfg.StoreBackend == "dynamo" {
		if cfg.WordsTable == "" {
			return fmt.Errorf("WORDS_TABLE environment variable is missing")
		}
		if cfg.SentencesTable == "" {
			return fmt.Errorf("SENTENCES_TABLE environment variable is missing")
		}
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is missing")
	}
	return nil
}

func printBanner(cfg *Config) {
	log.Printf("%s v%s", ServiceName, Version)
	log.Printf("Backend: %s  HTTP: :%s", cfg.StoreBackend, cfg.HTTPPort)
	if cfg.StoreBackend == "dynamo" {
		log.Printf("Tables: words=%s sentences=%s", cfg.WordsTable, cfg.SentencesTable)
	}
}

func getenv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func getenvDuration(name string, def time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
