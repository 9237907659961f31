package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/ssh-vom/anime-browser/internal/browse"
	"github.com/ssh-vom/anime-browser/internal/config"
	"github.com/ssh-vom/anime-browser/internal/cover"
	"github.com/ssh-vom/anime-browser/internal/providers/anime/animeapi"
	"github.com/ssh-vom/anime-browser/internal/ui"
	"github.com/ssh-vom/anime-browser/internal/web"
)

func main() {
	verboseFlag := flag.Bool("verbose", false, "show verbose logs")
	apiFlag := flag.String("api", "", "anime API base URL (default "+config.DefaultAPIURL+")")
	serveFlag := flag.String("serve", "", "serve the web interface on this address instead of starting the TUI")
	viewFlag := flag.String("view", "", "view to open first: home, top-ten, search or random")
	flag.Parse()

	if *viewFlag != "" {
		if _, ok := browse.ParseView(*viewFlag); !ok {
			fmt.Fprintf(os.Stderr, "Unknown view %q\n", *viewFlag)
			os.Exit(1)
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *verboseFlag {
		cfg.Verbose = true
	}
	if *apiFlag != "" {
		cfg.APIURL = *apiFlag
	}
	if *viewFlag != "" {
		cfg.StartView = *viewFlag
	}

	httpClient := newHTTPClient()

	if *serveFlag != "" {
		cfg.Listen = *serveFlag
		if err := serve(cfg, httpClient); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// The TUI owns the terminal; logs only surface in its log pane.
	logger := log.NewWithOptions(io.Discard, log.Options{Prefix: "anime-browser"})
	deps, startupErr := buildDependencies(cfg, httpClient, logger)

	program := tea.NewProgram(ui.NewModel(cfg, deps, func(cfg config.Config) (ui.Dependencies, error) {
		return buildDependencies(cfg, httpClient, logger)
	}, logger, startupErr), tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}
}

func serve(cfg config.Config, httpClient *http.Client) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "anime-browser",
		ReportTimestamp: true,
	})
	if cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	deps, err := buildDependencies(cfg, httpClient, logger)
	if err != nil {
		return err
	}

	server := web.NewServer(deps.Provider, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.ListenAddr())
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildDependencies(cfg config.Config, httpClient *http.Client, logger *log.Logger) (ui.Dependencies, error) {
	baseURL, err := cfg.BaseURL()
	if err != nil {
		return ui.Dependencies{}, err
	}
	provider := animeapi.New(httpClient, baseURL, logger)
	logger.Info("Using anime API", "url", provider.BaseURL())
	return ui.Dependencies{
		Provider: provider,
		Covers:   cover.NewFetcher(httpClient),
	}, nil
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
