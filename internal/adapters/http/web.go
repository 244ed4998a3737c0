package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"ezlearn/internal/adapters/http/middleware"
	"ezlearn/internal/adapters/http/perf"
	"ezlearn/internal/application/console"
)

// MediaServer serves stored thumbnails, lectures and previews.
type MediaServer interface {
	Handler() http.Handler
	Prefix() string
}

// loadCSRFKey reads the CSRF secret from EZLEARN_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("EZLEARN_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("EZLEARN_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("EZLEARN_ENV") == "production" {
		log.Fatal("EZLEARN_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set EZLEARN_CSRF_KEY for production.")
	return key
}

// trustedOrigins reads EZLEARN_TRUSTED_ORIGINS (comma-separated host:port).
func trustedOrigins() []string {
	v := os.Getenv("EZLEARN_TRUSTED_ORIGINS")
	if v == "" {
		return []string{"localhost:8080", "127.0.0.1:8080"}
	}
	var out []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Global workspace instance (set by NewMux)
var workspace *console.Workspace

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 20

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// NewMux wires HTTP handlers for the console API.
func NewMux(ws *console.Workspace, media MediaServer, collector *perf.Collector) http.Handler {
	workspace = ws
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("EZLEARN_ENV") == "production"

	mux := http.NewServeMux()
	if media != nil {
		mux.Handle(media.Prefix(), media.Handler())
	}
	registerRoutes(mux)

	csrfKey := loadCSRFKey()
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> LabelRoute -> Mux
	return middleware.Chain(mux,
		middleware.LabelRoute,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, trustedOrigins()),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
