package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yegors/skyglyde/internal/config"
	"github.com/yegors/skyglyde/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *config.Config
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(deps Dependencies, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(deps, cfg, log),
		middleware: NewMiddleware(log),
		config:     cfg,
		logger:     log.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.Server.CORSAllowedOrigins))

	router.Route("/api/v1", func(router chi.Router) {
		router.Get("/health", r.handler.GetHealth)

		// Reference data
		router.Get("/catalog/skyports", r.handler.GetSkyports)
		router.Get("/catalog/transport", r.handler.GetTransportOptions)
		router.Get("/catalog/destinations", r.handler.GetDestinations)
		router.Get("/match", r.handler.MatchSkyport)

		// Booking flow sessions
		router.Post("/sessions", r.handler.CreateSession)
		router.Route("/sessions/{id}", func(router chi.Router) {
			router.Get("/", r.handler.GetSession)
			router.Delete("/", r.handler.CloseSession)
			router.Post("/events", r.handler.DispatchEvent)
			router.Post("/reset", r.handler.ResetSession)
			router.Get("/telemetry", r.handler.GetTelemetry)
			router.Get("/telemetry/ws", r.handler.StreamTelemetry)
			router.Put("/cabin", r.handler.UpdateCabin)
			router.Post("/ground-control", r.handler.AskGroundControl)
		})

		router.Get("/ground-control/emergency", r.handler.GetEmergencyContact)

		// Confirmed bookings
		router.Get("/bookings", r.handler.GetBookings)
		router.Get("/bookings/{id}", r.handler.GetBooking)
		router.Get("/bookings/{id}/receipt", r.handler.GetReceipt)
	})

	return router
}
