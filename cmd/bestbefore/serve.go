package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/bestbefore/internal/analysis"
	"github.com/erazemk/bestbefore/internal/api"
	"github.com/erazemk/bestbefore/internal/config"
	"github.com/erazemk/bestbefore/internal/credential"
	"github.com/erazemk/bestbefore/internal/notify"
	"github.com/erazemk/bestbefore/internal/reminder"
	"github.com/erazemk/bestbefore/internal/store"
	"github.com/erazemk/bestbefore/internal/web"
)

func cmdServe(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "data directory for the encrypted credential")
	fs.IntVar(&cfg.ReminderHour, "hour", cfg.ReminderHour, "local hour reminders fire at")
	fs.StringVar(&cfg.BarkKey, "bark-key", cfg.BarkKey, "Bark device key (default: log reminders only)")

	logPath, err := parseFlags(fs, cfg, args)
	if err != nil {
		return err
	}
	if cfg.ReminderHour < 0 || cfg.ReminderHour > 23 {
		return fmt.Errorf("invalid -hour %d", cfg.ReminderHour)
	}

	return withLogger(cfg, logPath, func() error { return serve(cfg) })
}

func serve(cfg *config.Config) error {
	database, err := openDatabase(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, database)
	if err != nil {
		return err
	}

	// Notification platform: registrations in SQLite, delivered by Bark or the log.
	var sender notify.Sender = notify.LogSender{}
	if cfg.BarkKey != "" {
		sender = notify.NewBarkSender(cfg.BarkURL, cfg.BarkKey)
		slog.Info("reminders delivered via bark", "url", cfg.BarkURL)
	}
	platform := notify.NewLocal(database, sender)

	scheduler := reminder.NewScheduler(platform, &reminder.Capability{})
	scheduler.Hour = cfg.ReminderHour
	orch := reminder.NewOrchestrator(st, scheduler)
	st.SetObserver(orch)

	if err := orch.Start(ctx); err != nil {
		slog.Error("startup reconciliation failed", "error", err)
	}

	fileCreds, err := credential.NewFileBackend(cfg.DataDir, cfg.MachineID)
	if err != nil {
		return fmt.Errorf("setting up credential store: %w", err)
	}
	creds := credential.NewStore(fileCreds, credential.StateBackend{Store: st})

	apiRouter := api.NewRouter(api.Deps{
		Store:       st,
		Reminders:   orch,
		Credentials: creds,
		Analyzer:    analysis.NewClient(cfg.GeminiAPIURL, cfg.GeminiModel),
	})

	webRouter, err := web.NewRouter(st, orch.Supported)
	if err != nil {
		return fmt.Errorf("loading web templates: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.RecoverMiddleware(api.LoggingMiddleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	deliveryDone := make(chan struct{})
	go func() {
		defer close(deliveryDone)
		platform.Run(ctx, cfg.DeliveryInterval)
	}()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		stop()
		<-deliveryDone
		return fmt.Errorf("server error: %w", err)
	}

	<-deliveryDone
	orch.Wait()
	slog.Info("server stopped, closing database")
	return nil
}

