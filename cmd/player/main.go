package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jscyril/preview_player/internal/audio"
	"github.com/jscyril/preview_player/internal/config"
	"github.com/jscyril/preview_player/internal/layout"
	"github.com/jscyril/preview_player/internal/metrics"
	"github.com/jscyril/preview_player/internal/playlist"
	"github.com/jscyril/preview_player/internal/render"
	"github.com/jscyril/preview_player/internal/search"
	"github.com/jscyril/preview_player/internal/transport"
	"github.com/jscyril/preview_player/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	configPath := config.GetConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create data directory
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file
	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	log.WithField("config", configPath).Info("starting preview player")

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := metrics.New()

	client := search.NewClient(cfg.SearchEndpoint, cfg.SearchEntity, cfg.SearchLimit, cfg.SearchTimeout.Duration)
	dispatcher := search.NewDispatcher(client, cfg.PopularTerm, log.WithField("component", "search"), m)

	engine := audio.NewAudioEngine(audio.Options{
		Client:     &http.Client{},
		Transcoder: cfg.Transcoder,
		Volume:     cfg.DefaultVolume,
		Log:        log.WithField("component", "audio"),
	})
	engine.Start(ctx)

	session := playlist.NewSession()
	surface := ui.NewSurface(ctx)
	controller := transport.New(session, engine, surface, transport.Options{
		Log:         log.WithField("component", "transport"),
		Metrics:     m,
		ArtworkSize: cfg.DetailArtworkSize,
	})

	model := ui.NewModel(ctx, ui.Deps{
		Dispatcher: dispatcher,
		Renderer:   render.NewRenderer(session, controller, cfg.GridArtworkSize),
		Controller: controller,
		Player:     engine,
		Panels:     layout.NewPanels(cfg.Breakpoint, cfg.CellWidth),
		Surface:    surface,
		Keys:       cfg.KeyBindings,
		SeekStep:   cfg.SeekStep,
		Theme:      cfg.Theme,
		Log:        log.WithField("component", "ui"),
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		if err := ui.Run(ctx, model); err != nil {
			return fmt.Errorf("run ui: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return controller.Run(ctx)
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			log.WithField("addr", cfg.MetricsAddr).Info("serving metrics")
			return m.Serve(ctx, cfg.MetricsAddr)
		})
	}

	err = g.Wait()
	log.WithError(err).Info("preview player stopped")
	return err
}

func newLogger(cfg *config.Config) (*logrus.Logger, func(), error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	path := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	log := logrus.New()
	log.SetOutput(f)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	return log, func() { f.Close() }, nil
}
