package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unishare/backend/internal/auth"
	"github.com/unishare/backend/internal/config"
	"github.com/unishare/backend/internal/cookie"
	"github.com/unishare/backend/internal/db"
	"github.com/unishare/backend/internal/handlers"
	"github.com/unishare/backend/internal/middleware"
	"github.com/unishare/backend/internal/response"
	"github.com/unishare/backend/internal/session"
	"github.com/unishare/backend/internal/store"
)

// Deps carries the constructed dependencies the router wires together.
type Deps struct {
	Config   *config.Config
	Log      *slog.Logger
	Pool     *pgxpool.Pool
	Sessions *session.Manager
	Cookies  *cookie.Manager
	Provider auth.Provider
	Users    *store.UserStore
	Rooms    *store.RoomStore
	Items    *store.ItemStore
	// Photos is nil when object storage is not configured; photo upload
	// routes then answer with a server error instead of failing at boot.
	Photos handlers.PhotoUploader
}

// SessionCookieOptions derives the cookie delivery policy from the deployment
// shape. A cross-site HTTPS frontend needs SameSite=None, which browsers only
// accept together with Secure.
func SessionCookieOptions(cfg *config.Config) []cookie.Option {
	if cfg.FrontendIsCrossSite() {
		return []cookie.Option{
			cookie.WithSameSite(http.SameSiteNoneMode),
			cookie.WithSecure(true),
		}
	}
	if cfg.IsProduction() {
		return []cookie.Option{cookie.WithSecure(true)}
	}
	return nil
}

// Router assembles the full HTTP surface: middleware pipeline, auth routes,
// listing CRUD behind the authentication and ownership gates, and health
// probes.
func Router(deps Deps) http.Handler {
	cfg := deps.Config
	log := deps.Log
	respond := response.Writer{Debug: !cfg.IsProduction()}

	cookieOpts := SessionCookieOptions(cfg)

	authHandler := auth.NewHandler(
		deps.Provider,
		deps.Users,
		deps.Sessions,
		deps.Cookies,
		auth.HandlerConfig{
			SessionCookieName: cfg.Session.CookieName,
			SessionCookieOpts: cookieOpts,
			FrontendURL:       cfg.FrontendURL,
			FailureURL:        cfg.AuthFailureURL,
		},
		respond,
		log,
	)
	rooms := handlers.NewRooms(deps.Rooms, deps.Photos, respond, log)
	items := handlers.NewItems(deps.Items, deps.Photos, respond, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.AllowedOrigins(),
		Production:     cfg.IsProduction(),
	}))
	r.Use(middleware.Sessions(middleware.SessionConfig{
		Manager:    deps.Sessions,
		Cookies:    deps.Cookies,
		CookieName: cfg.Session.CookieName,
		Users:      deps.Users,
		Logger:     log,
		CookieOpts: cookieOpts,
	}))

	r.Get("/healthz", handlers.Healthz)
	r.Get("/readyz", handlers.Readyz(db.Healthcheck(deps.Pool)))

	r.Route("/auth", authHandler.Mount)

	r.Route("/api/rooms", func(r chi.Router) {
		r.Get("/", rooms.List)
		r.Get("/{id}", rooms.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", rooms.Create)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireOwner(middleware.OwnershipConfig{Owner: deps.Rooms.OwnerOf}))
				r.Put("/{id}", rooms.Update)
				r.Delete("/{id}", rooms.Delete)
				r.Post("/{id}/photos", rooms.UploadPhoto)
			})
		})
	})

	r.Route("/api/items", func(r chi.Router) {
		r.Get("/", items.List)
		r.Get("/{id}", items.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", items.Create)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireOwner(middleware.OwnershipConfig{Owner: deps.Items.OwnerOf}))
				r.Put("/{id}", items.Update)
				r.Delete("/{id}", items.Delete)
				r.Post("/{id}/photos", items.UploadPhoto)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respErr := response.ErrNotFound
		response.JSON(w, respErr.Status, respErr)
	})

	return r
}
