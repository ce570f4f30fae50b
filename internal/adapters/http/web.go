package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"noticeboard/internal/adapters/email"
	"noticeboard/internal/adapters/http/middleware"
	noticeStore "noticeboard/internal/adapters/storage/notice"
)

// Stores holds all storage dependencies.
type Stores struct {
	NoticeStore noticeStore.Store
}

// Options carries the handler-layer configuration.
type Options struct {
	// CSRFKeyHex is the 64-hex-character CSRF secret. Blank generates a
	// random per-startup key (development only).
	CSRFKeyHex string
	Production bool

	// AuthorID is the placeholder logged-in user id injected into every
	// mutating request until real authentication exists.
	AuthorID string

	// Announcement email settings for pinned notices.
	Sender       email.Sender
	AnnounceTo   []string
	AnnounceFrom string
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global handler options (set by NewMux)
var options Options

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// loadCSRFKey decodes the configured CSRF secret (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is
// generated per startup.
func loadCSRFKey(keyHex string, production bool) []byte {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("CSRF key must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if production {
		log.Fatal("a CSRF key is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (tokens won't survive restart). Configure csrf_key for production.")
	return key
}

// NewMux wires HTTP handlers for the notice board.
func NewMux(s *Stores, opts Options) http.Handler {
	stores = s
	options = opts
	if options.Sender == nil {
		options.Sender = email.NewNoopSender()
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	csrfKey := loadCSRFKey(opts.CSRFKeyHex, opts.Production)

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: RequestID -> Timing -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.RateLimit(limiter),
		middleware.Timing(),
		middleware.RequestID,
	)
}
