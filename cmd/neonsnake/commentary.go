package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/neonsnake/internal/commentary"
	"github.com/vovakirdan/neonsnake/internal/config"
	"github.com/vovakirdan/neonsnake/internal/controller"
	"github.com/vovakirdan/neonsnake/internal/registry"
)

// commentaryPath is where the HTTP service answers.
const commentaryPath = "/api/commentary"

var (
	flagHTTPAddr string
	flagBackend  string
	flagURL      string
	flagScore    int
)

var commentaryCmd = &cobra.Command{
	Use:   "commentary",
	Short: "Run or query the post-game commentary service",
	Long: `The game asks a commentary backend for a one-line remark after every
manual game over. Backends are chosen by commentary.backend in the config.

Examples:
  neonsnake commentary backends
  neonsnake commentary ask --score 12
  neonsnake commentary serve --addr :3000
  neonsnake commentary ask --backend remote --url http://localhost:3000/api/commentary --score 3`,
}

var commentaryBackendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List commentary backends",
	Args:  cobra.NoArgs,
	Run:   runCommentaryBackends,
}

var commentaryAskCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask the configured backend about a score",
	Args:  cobra.NoArgs,
	Run:   runCommentaryAsk,
}

var commentaryServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve commentary over HTTP",
	Long: `Serve the commentary JSON contract:

  POST ` + commentaryPath + `  {"score": 7}  ->  {"commentary": "..."}

Other methods answer 405. Backend failures answer 500 with {"error": "..."}.
Point another instance at it with commentary.backend: remote.`,
	Args: cobra.NoArgs,
	Run:  runCommentaryServe,
}

func init() {
	commentaryCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Backend name (overrides config)")
	commentaryCmd.PersistentFlags().StringVar(&flagURL, "url", "", "Remote backend URL (overrides config)")
	commentaryAskCmd.Flags().IntVar(&flagScore, "score", 0, "Final score to comment on")
	commentaryServeCmd.Flags().StringVar(&flagHTTPAddr, "addr", ":3000", "HTTP listen address")

	commentaryCmd.AddCommand(commentaryBackendsCmd)
	commentaryCmd.AddCommand(commentaryAskCmd)
	commentaryCmd.AddCommand(commentaryServeCmd)
}

// commentaryConfig applies the command-line overrides.
func commentaryConfig() config.CommentaryConfig {
	cfg := loadConfig().Commentary
	if flagBackend != "" {
		cfg.Backend = flagBackend
	}
	if flagURL != "" {
		cfg.URL = flagURL
	}
	return cfg
}

func createCommentator(cfg config.CommentaryConfig) registry.Commentator {
	c, err := registry.Create(cfg.Backend, registry.Options{
		URL:     cfg.URL,
		Timeout: cfg.Timeout(),
		Latency: cfg.Latency(),
		Seed:    runtimeConfig().Seed,
	})
	if err != nil {
		fail("%v", err)
	}
	return c
}

func runCommentaryBackends(_ *cobra.Command, _ []string) {
	backends := registry.List()

	maxLen := 4 // "Name" header
	for _, b := range backends {
		if len(b.Name) > maxLen {
			maxLen = len(b.Name)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxLen, "Name", "Description")
	fmt.Printf("  %-*s  %s\n", maxLen, "----", "-----------")
	for _, b := range backends {
		fmt.Printf("  %-*s  %s\n", maxLen, b.Name, b.Description)
	}
}

func runCommentaryAsk(_ *cobra.Command, _ []string) {
	if flagScore < 0 {
		fail("--score must not be negative")
	}
	c := createCommentator(commentaryConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	text, err := c.Summarize(ctx, flagScore)
	if err != nil || text == "" {
		fmt.Fprintf(os.Stderr, "Warning: commentary unavailable: %v\n", err)
		text = controller.FallbackCommentary
	}
	fmt.Println(text)
}

func runCommentaryServe(_ *cobra.Command, _ []string) {
	cfg := commentaryConfig()
	if cfg.Backend == "remote" {
		fail("refusing to serve the remote backend; pick a local one with --backend")
	}
	logger := newLogger(os.Stderr, "neonsnake-commentary")
	backend := createCommentator(cfg)

	mux := http.NewServeMux()
	mux.Handle(commentaryPath, commentary.NewHandler(backend, logger))

	server := &http.Server{
		Addr:              flagHTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			done <- syscall.SIGTERM
		}
	}()

	logger.Info("serving commentary", "address", flagHTTPAddr, "path", commentaryPath, "backend", cfg.Backend)
	<-done
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		fail("%v", err)
	}
}
