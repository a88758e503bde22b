package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/replog/internal/advisor"
	"github.com/claude/replog/internal/config"
	"github.com/claude/replog/internal/resttimer"
	"github.com/claude/replog/internal/server"
	"github.com/claude/replog/internal/storage"
	"github.com/claude/replog/internal/workout"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("RepLog starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database. No degraded mode: an unreachable store is fatal.
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Rest timer with its external presentation hook
	var notifier resttimer.Notifier = resttimer.NopNotifier{}
	if cfg.RestTimer.WebhookURL != "" {
		notifier = resttimer.NewWebhookNotifier(cfg.RestTimer.WebhookURL, log)
	}
	timer := resttimer.New(notifier, log)

	// Session lifecycle manager; adopt any session left open by a
	// previous run
	manager := workout.NewManager(db, 1, log)
	manager.SetRestTimer(timer)
	if resumed, err := manager.ResumeIfExists(ctx); err != nil {
		log.Warn("session resume failed", "error", err)
	} else if resumed {
		log.Info("resumed unfinished session")
	}

	// Two independent periodic tasks: the 1 Hz session clock and the
	// 100 ms rest tick. Each recomputes from its own wall-clock anchor;
	// they share no state.
	tickCtx, stopTicks := context.WithCancel(ctx)
	defer stopTicks()
	go runTicker(tickCtx, time.Second, manager.Tick)
	go runTicker(tickCtx, 100*time.Millisecond, func() { timer.Tick() })

	// Optional AI advisory client
	var advisorClient *advisor.Client
	if cfg.Advisor.APIKey != "" {
		advisorClient = advisor.NewClient(cfg.Advisor.BaseURL, cfg.Advisor.APIKey, cfg.Advisor.Model, log)
		log.Info("advisor configured", "model", cfg.Advisor.Model)
	}

	// Create server
	srv := server.New(db, manager, timer, advisorClient, server.Options{
		APIKey:             cfg.Auth.APIKey,
		Units:              cfg.Units.UnitSystem(),
		DefaultRestSeconds: cfg.RestTimer.DefaultSeconds,
	}, log)

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)
	stopTicks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

func runTicker(ctx context.Context, interval time.Duration, fn func()) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn()
		}
	}
}
