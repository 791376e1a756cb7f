package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization: the two-step login protocol itself
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/totp", h.totpVerify)
		r.Get("/api/auth/totp/qr", h.totpQR)
	})

	// routes behind a verified bearer token
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/api/auth/totp/rotate", h.totpRotate)
		r.Post("/api/auth/logout", h.logout)
		r.Get("/api/vault/entries", h.listEntries)
		r.Put("/api/vault/entries/{label}", h.upsertEntry)
		r.Delete("/api/vault/entries/{label}", h.deleteEntry)
	})

	return router
}
