package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/swaggo/http-swagger"

	"github.com/vntrieu/werewolf/internal/auth"
	"github.com/vntrieu/werewolf/internal/httpapi/handler"
	"github.com/vntrieu/werewolf/internal/ratelimit"
	"github.com/vntrieu/werewolf/internal/session"
	"github.com/vntrieu/werewolf/internal/websocket"

	_ "github.com/vntrieu/werewolf/docs" // swag-generated docs
)

// Options wires the router.
type Options struct {
	Games *session.Manager
	Hub   *websocket.Hub
	// Signer verifies seat tokens. Without it only anonymous endpoints work.
	Signer *auth.Signer
	// RateLimiter guards game creation and seat decisions; nil disables limiting.
	RateLimiter ratelimit.Limiter
	// CORSOrigins defaults to any origin.
	CORSOrigins []string
	Logger      zerolog.Logger
}

// NewRouter builds the root HTTP router. It installs the WebSocket event handler on the hub;
// the caller runs the hub.
//
// @title            Werewolf API
// @version          1.0
// @description      Run 12-player Werewolf games with bot and human seats.
// @BasePath         /
// @SecurityDefinitions.apikey  BearerAuth
// @in               header
// @name             Authorization
func NewRouter(opts Options) http.Handler {
	rateLimiter := opts.RateLimiter
	if rateLimiter == nil {
		rateLimiter = &ratelimit.Noop{}
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", handler.HostKeyHeader},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	gameHandler := handler.NewGameHandler(opts.Games, opts.Logger)
	r.Get("/healthz", gameHandler.Healthz)

	// Swagger UI over the swag-generated docs
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/", http.StatusMovedPermanently)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	opts.Hub.SetEventHandler(websocket.NewEventHandler(opts.Hub, opts.Games, rateLimiter, opts.Logger))
	wsHandler := websocket.NewWSHandler(opts.Hub, opts.Signer, opts.Games, opts.Logger)

	rateLimitByIP := RateLimitMiddleware(rateLimiter, RateLimitKeyByIP)

	r.Route("/api/games", func(r chi.Router) {
		r.Use(LimitRequestBody(DefaultMaxBodyBytes))
		r.With(rateLimitByIP).Post("/", gameHandler.CreateGame)
		r.Get("/", gameHandler.ListGames)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", gameHandler.GetGame)
			r.With(SeatAuth(opts.Signer)).Get("/view", gameHandler.GetView)
			r.With(SeatAuth(opts.Signer)).Get("/events", gameHandler.ListEvents)
			r.Get("/log", gameHandler.GetLog)
			r.Get("/stats", gameHandler.GetStats)
			r.Post("/stop", gameHandler.StopGame)

			// Seat WebSocket (token auth, prompts, decisions, sync_state)
			r.Get("/ws", wsHandler.HandleGameWebSocket)
		})
	})

	return r
}

// NewRateLimiter returns an in-memory per-IP limiter allowing perMinute requests, or nil
// when perMinute is zero. For multi-instance, replace with a shared limiter.
func NewRateLimiter(perMinute int) *ratelimit.InMemory {
	if perMinute <= 0 {
		return nil
	}
	return ratelimit.NewInMemory(perMinute, time.Minute)
}
