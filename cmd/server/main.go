package main

import (
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"

	_ "modernc.org/sqlite"

	emailPkg "noticeboard/internal/adapters/email"
	web "noticeboard/internal/adapters/http"
	"noticeboard/internal/adapters/storage"
	noticeStore "noticeboard/internal/adapters/storage/notice"
	"noticeboard/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfgPath := os.Getenv("NOTICEBOARD_CONFIG")
	if cfgPath == "" {
		cfgPath = "noticeboard.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	setupLogging(cfg)

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}

	log.Println("Database initialized successfully!")

	// Wrap DB with slow-query instrumentation
	timedDB := storage.NewTimedDB(db)

	stores := &web.Stores{
		NoticeStore: noticeStore.NewSQLiteStore(timedDB),
	}

	// Configure announcement email sender
	var sender emailPkg.Sender
	if cfg.Email.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.Email.ResendKey, cfg.Email.From)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			log.Println("WARNING: resend_key is not set — pinned-notice emails are DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set NOTICEBOARD_RESEND_KEY for real delivery)")
		}
	}

	mux := web.NewMux(stores, web.Options{
		CSRFKeyHex:   cfg.CSRFKey,
		Production:   cfg.IsProduction(),
		AuthorID:     cfg.AuthorID,
		Sender:       sender,
		AnnounceTo:   cfg.Email.AnnounceTo,
		AnnounceFrom: cfg.Email.From,
	})

	log.Printf("Notice board %s starting on %s (env=%s)", version, cfg.Addr, cfg.Environment)

	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// setupLogging installs the default slog handler: JSON in production,
// human-readable text with debug level otherwise.
func setupLogging(cfg config.Config) {
	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
}
