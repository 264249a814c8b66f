package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"gomical/internal/config"
	"gomical/internal/export"
	"gomical/internal/holiday"
	appLog "gomical/internal/log"
	"gomical/internal/store"
	"gomical/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	debug      bool
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("gomical starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides the config file if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		appLog.Error("failed to load timezone, falling back to local", err, "timezone", conf.Timezone)
		loc = time.Local
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"state_path", conf.StatePath,
		"holiday_url", conf.Holidays.URL,
		"export_dir", conf.Export.Dir,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	st := store.Open(conf.StatePath)

	holidays := holiday.NewService(conf.Holidays.URL)
	// Fetch once in the background; the calendar renders without holiday
	// annotations until (and unless) this succeeds.
	go func() {
		if err := holidays.Fetch(ctx); err != nil {
			appLog.Warn("holiday feed unavailable", "reason", err.Error())
		}
	}()

	var scheduler *cron.Cron
	if conf.Holidays.RefreshCron != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(conf.Holidays.RefreshCron, func() {
			if err := holidays.Fetch(ctx); err != nil {
				appLog.Warn("holiday feed refresh failed", "reason", err.Error())
			}
		})
		if err != nil {
			appLog.Error("invalid holiday refresh schedule", err, "cron", conf.Holidays.RefreshCron)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	exporter := export.New(
		export.NewChromeCapturer(conf.Export.CaptureWidth, conf.Export.CaptureHeight),
		export.NewMarotoAssembler(),
		export.Options{
			BaseURL:      "http://" + conf.Listen,
			Dir:          conf.Export.Dir,
			MonthTimeout: time.Duration(conf.Export.MonthTimeoutSec) * time.Second,
			YearTimeout:  time.Duration(conf.Export.YearTimeoutSec) * time.Second,
		},
	)

	srv, err := web.NewServer(conf, st, holidays, exporter, loc)
	if err != nil {
		appLog.Error("failed to build server", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:    conf.Listen,
		Handler: srv.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLog.Error("shutdown failed", err)
		}
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("server failed", err)
		os.Exit(1)
	}

	appLog.Info("gomical exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "gomical.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
