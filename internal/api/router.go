package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/quizmith/adapt-api/internal/api/middleware"
	"github.com/quizmith/adapt-api/internal/api/shared"
)

// NewRouter builds the HTTP router for the assessment API.
func NewRouter(handler *AssessmentHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.TraceMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		shared.RespondWithJSON(w, req, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/assessments", func(r chi.Router) {
		r.Post("/", handler.Start)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/question", handler.CurrentQuestion)
			r.Post("/answers", handler.SubmitAnswer)
			r.Post("/abandon", handler.Abandon)
			r.Get("/profile", handler.GetProfile)
		})
	})

	return r
}
