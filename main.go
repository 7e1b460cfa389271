package main

import (
	"context"
	"embed"
	"flag"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lab1702/solar-web/config"
	"github.com/lab1702/solar-web/feed"
	"github.com/lab1702/solar-web/metrics"
	"github.com/lab1702/solar-web/server"
	"github.com/lab1702/solar-web/solar"
	"github.com/lab1702/solar-web/termview"
)

//go:embed static/*
var staticFiles embed.FS

func main() {
	port := flag.String("port", "", "Server port (overrides SERVER_PORT)")
	terminal := flag.Bool("terminal", false, "Render in this terminal instead of serving browsers")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	config.InitLogger(cfg.Logging)
	server.DebugInput = cfg.Debug.Input

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()
	comets, closeCache := newCometLoader(ctx, cfg, collector)
	defer closeCache()

	if *terminal {
		if err := runTerminal(ctx, cfg, comets); err != nil {
			slog.Error("Terminal view failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runServer(ctx, cfg, collector, comets); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// newCometLoader builds the comet feed loader, or returns nil when the feed is off
func newCometLoader(ctx context.Context, cfg *config.Config, collector *metrics.Collector) (*feed.Loader, func()) {
	if !cfg.Feed.Enabled {
		slog.Info("Comet feed disabled")
		return nil, func() {}
	}

	var cache feed.Cache = feed.NewMemoryCache()
	closeCache := func() {}
	rdb, err := feed.ConnectRedis(ctx, cfg.Redis)
	switch {
	case err != nil:
		slog.Warn("Redis unavailable, using in-memory comet cache", "error", err)
	case rdb != nil:
		cache = feed.NewRedisCache(rdb)
		closeCache = func() {
			if err := rdb.Close(); err != nil {
				slog.Warn("Failed to close Redis client", "error", err)
			}
		}
	}

	client := feed.NewClient(cfg.Feed.URL, cfg.Feed.Timeout)
	return feed.NewLoader(client, cache, cfg.Feed.CacheTTL, cfg.Feed.MaxComets, collector), closeCache
}

func runServer(ctx context.Context, cfg *config.Config, collector *metrics.Collector, comets *feed.Loader) error {
	slog.Info("Starting Solar Web Server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)

	s := server.NewServer(server.Options{
		FrameRate:      cfg.Server.FrameRate,
		AllowedOrigins: cfg.Frontend.AllowedOrigins,
		Input:          cfg.Input,
	}, collector)
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go s.Run(loopCtx)

	if comets != nil {
		go s.LoadComets(ctx, comets)
	}

	// Serve static files from the static subdirectory
	fsys, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.Routes(fsys, server.NewCORS(cfg.Frontend)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "url", "http://localhost:"+cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Stop the frame loop first so every connection gets a close frame
	stopLoop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Server shutdown error", "error", err)
	}

	slog.Info("Server stopped", "frames", s.Frame())
	return nil
}

func runTerminal(ctx context.Context, cfg *config.Config, comets *feed.Loader) error {
	// The screen owns stdout; logs would tear the picture
	slog.SetDefault(config.NewLogger(io.Discard, cfg.Logging))

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	view, err := termview.New(screen, solar.DefaultBodies)
	if err != nil {
		return err
	}

	if comets != nil {
		go func() {
			specs, err := comets.Load(ctx)
			if err != nil || len(specs) == 0 {
				return
			}
			view.AddComets(specs)
		}()
	}

	return view.Run(ctx)
}
