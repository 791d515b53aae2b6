package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/reelgrid/reelgrid/internal/auth"
	"github.com/reelgrid/reelgrid/internal/catalog"
	"github.com/reelgrid/reelgrid/internal/database"
	"github.com/reelgrid/reelgrid/internal/httputil"
	"github.com/reelgrid/reelgrid/internal/playback"
	"github.com/reelgrid/reelgrid/internal/ratelimit"
	"github.com/reelgrid/reelgrid/internal/validate"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	DB               database.DBTX
	Pinger           Pinger
	Storage          catalog.ObjectStorage
	Geo              catalog.GeoResolver
	Sessions         *playback.Manager
	JWTSecret        string
	BaseURL          string
	S3PublicEndpoint string
}

type Server struct {
	router          chi.Router
	pinger          Pinger
	authHandler     *auth.Handler
	catalogHandler  *catalog.Handler
	playbackHandler *playback.Handler
}

func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(slogMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(SecurityConfig{
		BaseURL:         cfg.BaseURL,
		StorageEndpoint: cfg.S3PublicEndpoint,
	}))

	s := &Server{router: r, pinger: cfg.Pinger}

	if cfg.DB != nil {
		jwtSecret := cfg.JWTSecret
		if jwtSecret == "" {
			log.Fatal("JWT_SECRET is required; set the environment variable")
		}

		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:8080"
		}

		secureCookies := strings.HasPrefix(baseURL, "https://")
		s.authHandler = auth.NewHandler(cfg.DB, jwtSecret, secureCookies)
		s.catalogHandler = catalog.NewHandler(cfg.DB, cfg.Storage, baseURL)
		if cfg.Geo != nil {
			s.catalogHandler.SetGeoResolver(cfg.Geo)
		}
	}

	if cfg.Sessions != nil {
		var resolver playback.ContentResolver = playback.NoContentResolver{}
		if s.catalogHandler != nil {
			resolver = s.catalogHandler
		}
		s.playbackHandler = playback.NewHandler(cfg.Sessions, resolver, slog.Default())
	}

	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/limits", handleLimits)

	if s.authHandler != nil {
		authLimiter := ratelimit.NewLimiter(0.5, 5)
		s.router.Route("/api/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/login", s.authHandler.Login)
			r.Post("/refresh", s.authHandler.Refresh)
			r.Post("/logout", s.authHandler.Logout)
		})
	}

	if s.catalogHandler != nil {
		s.router.Get("/api/contents", s.catalogHandler.List)
		s.router.Get("/api/contents/{id}", s.catalogHandler.Get)
		s.router.Get("/api/contents/{id}/comments", s.catalogHandler.ListComments)
		s.router.Get("/api/oembed/{id}", s.catalogHandler.OEmbed)

		commentLimiter := ratelimit.NewLimiter(1, 5)
		s.router.Group(func(r chi.Router) {
			r.Use(commentLimiter.Middleware)
			r.Post("/api/contents/{id}/comments", s.catalogHandler.PostComment)
			r.Post("/api/comments/{commentID}/like", s.catalogHandler.LikeComment)
		})

		s.router.Get("/watch/{id}", s.catalogHandler.WatchPage)
		s.router.Get("/embed/{id}", s.catalogHandler.EmbedPage)

		s.router.Route("/api/admin", func(r chi.Router) {
			r.Use(s.authHandler.Middleware)
			r.Post("/contents", s.catalogHandler.Create)
			r.Get("/contents", s.catalogHandler.AdminList)
			r.Patch("/contents/{id}", s.catalogHandler.Update)
			r.Delete("/contents/{id}", s.catalogHandler.Delete)
			r.Get("/contents/{id}/stats", s.catalogHandler.ViewStats)
			r.Delete("/comments/{commentID}", s.catalogHandler.DeleteComment)
		})
	}

	if s.playbackHandler != nil {
		sessionLimiter := ratelimit.NewLimiter(10, 40)
		s.router.Group(func(r chi.Router) {
			r.Use(sessionLimiter.Middleware)
			s.playbackHandler.Routes(r)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","error":"database unreachable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleLimits exposes the field length limits so forms can mirror
// server-side validation.
func handleLimits(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, validate.FieldLimits())
}
