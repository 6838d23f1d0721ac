package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/makt28/alertrelay/internal/config"
	"github.com/makt28/alertrelay/internal/notify"
	"github.com/makt28/alertrelay/internal/web"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

func main() {
	d := config.DefaultConfig()
	app := &cli.App{
		Name:  "alertrelay",
		Usage: "relay monitoring alerts into Discord channels",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: d.System.Port, EnvVars: []string{"PORT"}, Usage: "HTTP listen port"},
			&cli.StringFlag{Name: "discord-token", EnvVars: []string{"DISCORD_TOKEN", "DISCORD_BOT_TOKEN"}, Usage: "Discord bot token"},
			&cli.StringFlag{Name: "log-level", Value: d.System.LogLevel, EnvVars: []string{"LOG_LEVEL"}, Usage: "debug, info, warn or error"},
			&cli.DurationFlag{Name: "platform-timeout", Value: d.System.PlatformTimeout, EnvVars: []string{"PLATFORM_TIMEOUT"}, Usage: "Timeout for each Discord API call"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("alertrelay exited", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	// --- 1. Load Config ---
	cfg := config.Config{
		System: config.SystemConfig{
			Port:            c.Int("port"),
			LogLevel:        c.String("log-level"),
			PlatformTimeout: c.Duration("platform-timeout"),
		},
		Discord: config.DiscordConfig{Token: c.String("discord-token")},
	}
	cfg.ApplyDefaults()

	// --- 2. Setup Logger ---
	setupLogger(cfg.System.LogLevel)

	if err := cfg.Validate(); err != nil {
		return err
	}

	// --- 3. Create Discord Session ---
	session, err := notify.NewDiscordSession(cfg.Discord.Token)
	if err != nil {
		return err
	}

	// --- 4. Start HTTP Server ---
	router := web.NewRouter(web.Options{
		Platform:        session,
		PlatformTimeout: cfg.System.PlatformTimeout,
		MaxBodyBytes:    cfg.System.MaxBodyBytes,
	})
	srv := &http.Server{
		Addr:              cfg.ListenAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("alert relay is running", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// The session authenticates in the background; requests get 503 until it is ready.
	g.Go(func() error {
		slog.Info("connecting to discord")
		return session.Open()
	})

	// --- 5. Graceful Shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return multierr.Combine(
			srv.Shutdown(shutdownCtx),
			session.Close(),
		)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("alert relay stopped gracefully")
	return nil
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		handler = tint.NewHandler(os.Stderr, &tint.Options{Level: logLevel, TimeFormat: time.Kitchen})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}
	slog.SetDefault(slog.New(handler))
}
