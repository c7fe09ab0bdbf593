package session

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SelectStore makes the one-shot boot decision between a persistent and an
// ephemeral session store.
//
// In production with a configured backend it attempts to construct the
// persistent store; a construction failure is logged and degrades durability
// only, never availability: the process continues on the in-memory store for
// its remaining lifetime, with no retry loop. Outside production the
// in-memory store is always used.
func SelectStore(ctx context.Context, cfg Config, production bool, pool *pgxpool.Pool, log *slog.Logger) Store {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "session.store")

	if production {
		switch cfg.Backend {
		case "redis":
			if cfg.RedisURL != "" {
				store, err := NewRedisStore(ctx, cfg.RedisURL)
				if err == nil {
					log.InfoContext(ctx, "using redis session store")
					return store
				}
				log.ErrorContext(ctx, "failed to construct redis session store", "error", err)
			}
		default:
			if pool != nil {
				store, err := NewPostgresStore(ctx, pool)
				if err == nil {
					log.InfoContext(ctx, "using postgres session store", "table", sessionsTable)
					return store
				}
				log.ErrorContext(ctx, "failed to construct postgres session store", "error", err)
			}
		}
		log.WarnContext(ctx, "using in-memory session store in production; sessions will not survive a restart")
		return NewMemoryStore()
	}

	log.InfoContext(ctx, "using in-memory session store")
	return NewMemoryStore()
}
