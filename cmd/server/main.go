package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	web "ezlearn/internal/adapters/http"
	"ezlearn/internal/adapters/http/perf"
	"ezlearn/internal/adapters/media"
	"ezlearn/internal/adapters/platform"
	"ezlearn/internal/adapters/platform/remote"
	"ezlearn/internal/adapters/storage"
	"ezlearn/internal/application/console"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// config is the server configuration after .env, environment and flags.
type config struct {
	addr        string
	env         string
	dbPath      string
	mediaDir    string
	platform    string
	platformURL string
	seedPath    string
	jwtSecret   []byte
	slowQuery   time.Duration
	logLevel    slog.Level
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("invalid configuration: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel})))

	collector := perf.NewCollector(perf.DefaultRingSize)

	mediaStore, err := media.NewStore(cfg.mediaDir, "/media/")
	if err != nil {
		log.Fatalf("failed to open media directory: %v", err)
	}

	var backend platform.Platform
	switch cfg.platform {
	case "local":
		local, closeDB, err := openLocal(cfg, mediaStore, collector)
		if err != nil {
			log.Fatalf("failed to start local platform: %v", err)
		}
		defer closeDB()
		backend = local
	case "remote":
		backend = remote.New(cfg.platformURL, &http.Client{Timeout: remote.DefaultTimeout})
		slog.Info("platform_event", "event", "remote_platform", "url", cfg.platformURL)
	default:
		log.Fatalf("unknown platform %q (want local or remote)", cfg.platform)
	}

	ws := console.NewWorkspace(console.Deps{
		Platform: platform.NewTimed(backend, collector),
		Previews: mediaStore,
		Now:      time.Now,
	})
	mux := web.NewMux(ws, mediaStore, collector)

	log.Printf("EzLearn console %s starting on %s (env=%s, platform=%s, schema=%d)",
		version, cfg.addr, cfg.env, cfg.platform, storage.LatestSchemaVersion())

	if err := http.ListenAndServe(cfg.addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadConfig reads EZLEARN_* variables and lets flags override them.
func loadConfig(args []string) (config, error) {
	cfg := config{
		addr:        envOrDefault("EZLEARN_ADDR", ":8080"),
		env:         envOrDefault("EZLEARN_ENV", "development"),
		dbPath:      envOrDefault("EZLEARN_DB", "ezlearn.db"),
		mediaDir:    envOrDefault("EZLEARN_MEDIA_DIR", "media"),
		platform:    envOrDefault("EZLEARN_PLATFORM", "local"),
		platformURL: os.Getenv("EZLEARN_PLATFORM_URL"),
		seedPath:    os.Getenv("EZLEARN_SEED"),
		slowQuery:   storage.DefaultSlowQuery,
	}

	flags := pflag.NewFlagSet("ezlearn", pflag.ContinueOnError)
	flags.StringVar(&cfg.addr, "addr", cfg.addr, "listen address")
	flags.StringVar(&cfg.dbPath, "db", cfg.dbPath, "sqlite database path (local platform)")
	flags.StringVar(&cfg.mediaDir, "media-dir", cfg.mediaDir, "directory for thumbnails, lectures and previews")
	flags.StringVar(&cfg.platform, "platform", cfg.platform, "platform backend: local or remote")
	flags.StringVar(&cfg.platformURL, "platform-url", cfg.platformURL, "base URL of the remote platform")
	flags.StringVar(&cfg.seedPath, "seed", cfg.seedPath, "YAML fixtures to load into the local platform")
	level := flags.String("log-level", envOrDefault("EZLEARN_LOG_LEVEL", "info"), "debug, info, warn or error")
	if err := flags.Parse(args); err != nil {
		return config{}, err
	}

	if err := cfg.logLevel.UnmarshalText([]byte(*level)); err != nil {
		return config{}, fmt.Errorf("log level: %w", err)
	}
	if v := os.Getenv("EZLEARN_SLOW_QUERY_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return config{}, fmt.Errorf("EZLEARN_SLOW_QUERY_MS must be a positive integer")
		}
		cfg.slowQuery = time.Duration(ms) * time.Millisecond
	}
	if cfg.platform == "remote" && strings.TrimSpace(cfg.platformURL) == "" {
		return config{}, fmt.Errorf("--platform-url is required for the remote platform")
	}

	secret, err := loadJWTSecret(cfg.env)
	if err != nil {
		return config{}, err
	}
	cfg.jwtSecret = secret
	return cfg, nil
}

// loadJWTSecret reads EZLEARN_JWT_SECRET. In production it MUST be set; in
// development a random secret is generated per startup.
func loadJWTSecret(env string) ([]byte, error) {
	if v := os.Getenv("EZLEARN_JWT_SECRET"); v != "" {
		return []byte(v), nil
	}
	if env == "production" {
		return nil, errors.New("EZLEARN_JWT_SECRET is required in production")
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate JWT secret: %w", err)
	}
	log.Println("WARNING: using random JWT secret (credentials won't survive restart). Set EZLEARN_JWT_SECRET for production.")
	return secret, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
