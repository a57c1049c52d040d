package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// routes builds the route table. Public routes never pass the auth gate;
// everything else requires a verified token.
func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Credentials are always allowed, so the origin list is explicit; a
	// wildcard is never emitted.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORS.Origins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public.
		r.Get("/health", s.handleHealth)
		r.Post("/signup", s.handleSignup)
		r.Get("/messages/random", s.handleRandomMessage)
		r.Post("/stripe/webhook", s.handleStripeWebhook)

		if !s.cfg.IsProduction() {
			r.Post("/test/create-user", s.handleTestCreateUser)
			r.Post("/test/send-message", s.handleTestSendMessage)
		}

		// Protected.
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/subscriber", s.handleGetSubscriber)
			r.Get("/messages/next", s.handleNextMessage)
			r.Get("/profile", s.handleGetProfile)
			r.Post("/profile", s.handleSaveProfile)

			r.Get("/prompt/today", s.handleTodayPrompt)
			r.Get("/prompt/alternative", s.handleAlternativePrompt)
			r.Post("/compose", s.handleCompose)
			r.Post("/polish", s.handlePolish)

			r.Get("/log", s.handleListJournal)
			r.Post("/log", s.handleCreateJournal)

			r.Get("/history", s.handleHistory)
			r.Get("/favorites", s.handleListFavorites)
			r.Post("/favorites/{id}", s.handleToggleFavorite)

			r.Post("/create-checkout-session", s.handleCreateCheckoutSession)
		})
	})

	return r
}
