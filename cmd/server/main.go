package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/unishare/backend/internal/app"
	"github.com/unishare/backend/internal/auth"
	"github.com/unishare/backend/internal/config"
	"github.com/unishare/backend/internal/cookie"
	"github.com/unishare/backend/internal/db"
	"github.com/unishare/backend/internal/handlers"
	"github.com/unishare/backend/internal/server"
	"github.com/unishare/backend/internal/session"
	"github.com/unishare/backend/internal/storage"
	"github.com/unishare/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg config.Config
	config.MustLoad(&cfg)

	log := newLogger(cfg)
	slog.SetDefault(log)

	if err := run(ctx, &cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(handler).With("app", cfg.AppName)
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, log); err != nil {
		return err
	}

	sessionStore := session.SelectStore(ctx, cfg.Session, cfg.IsProduction(), pool, log)
	sessions := session.NewManager(sessionStore, cfg.Session, log)

	cookies, err := cookie.New(cfg.CookieSecrets)
	if err != nil {
		return err
	}

	google, err := auth.NewGoogle(ctx, cfg.Google)
	if err != nil {
		return err
	}

	var photos handlers.PhotoUploader
	if cfg.S3.Bucket != "" {
		s3, err := storage.New(ctx, cfg.S3)
		if err != nil {
			return err
		}
		photos = s3
	} else {
		log.Warn("object storage not configured; photo uploads disabled")
	}

	router := app.Router(app.Deps{
		Config:   cfg,
		Log:      log,
		Pool:     pool,
		Sessions: sessions,
		Cookies:  cookies,
		Provider: google,
		Users:    store.NewUserStore(pool),
		Rooms:    store.NewRoomStore(pool),
		Items:    store.NewItemStore(pool),
		Photos:   photos,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sessions.StartCleanup(ctx, cfg.Session.CleanupInterval)
		return nil
	})
	g.Go(server.New(cfg.Server, log).Run(ctx, router))

	return g.Wait()
}
