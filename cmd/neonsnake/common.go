package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/neonsnake/internal/config"
	"github.com/vovakirdan/neonsnake/internal/controller"
	"github.com/vovakirdan/neonsnake/internal/core"
	"github.com/vovakirdan/neonsnake/internal/registry"
	"github.com/vovakirdan/neonsnake/internal/storage"
)

const defaultDBPath = "~/.neonsnake/neonsnake.db"

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// newLogger creates a logger at the level chosen by --log-level.
func newLogger(w io.Writer, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// tuiLogger logs to ~/.neonsnake/neonsnake.log so output never lands on
// the alternate screen. The returned func closes the file.
func tuiLogger() (*log.Logger, func()) {
	home, err := os.UserHomeDir()
	if err != nil {
		return newLogger(io.Discard, "neonsnake"), func() {}
	}
	dir := filepath.Join(home, ".neonsnake")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newLogger(io.Discard, "neonsnake"), func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "neonsnake.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return newLogger(io.Discard, "neonsnake"), func() {}
	}
	return newLogger(f, "neonsnake"), func() { f.Close() }
}

// loadConfig loads the layered configuration or exits.
func loadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fail("%v", err)
	}
	return cfg
}

// runtimeConfig resolves the terminal size and the seed.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return core.RuntimeConfig{
		ScreenW: width,
		ScreenH: height,
		Seed:    seed,
	}
}

// openStore opens the database, or returns nil with a warning so the game
// still runs without persistence.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open database, progress will not be saved", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}

// mustOpenStore opens the database or exits.
func mustOpenStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("could not open database: %v", err)
	}
	return store
}

// newCommentator builds the configured backend. A backend that cannot be
// built leaves commentary on its fallback text.
func newCommentator(cfg config.CommentaryConfig, seed int64, logger *log.Logger) registry.Commentator {
	c, err := registry.Create(cfg.Backend, registry.Options{
		URL:     cfg.URL,
		Timeout: cfg.Timeout(),
		Latency: cfg.Latency(),
		Seed:    seed,
	})
	if err != nil {
		logger.Warn("commentary disabled", "backend", cfg.Backend, "error", err)
		return nil
	}
	return c
}

// controllerOptions wires the store into every persistence slot it fills.
func controllerOptions(cfg config.Config, store *storage.Store, rc core.RuntimeConfig, logger *log.Logger) controller.Options {
	opts := controller.Options{
		Config:      cfg,
		Commentator: newCommentator(cfg.Commentary, rc.Seed, logger),
		Logger:      logger,
		Seed:        rc.Seed,
		Player:      localPlayer(),
	}
	// A nil *Store must not become a non-nil interface.
	if store != nil {
		opts.Store = store
		opts.Scores = store
		opts.Episodes = store
	}
	return opts
}

func localPlayer() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}
