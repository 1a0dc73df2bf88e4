package subscriberlist

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/creatorhub/creatorhub-api/internal/middleware"
)

// Routes returns subscriber list router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Use(middleware.RequireCreator())

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/preview-smart", h.Preview)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Patch("/toggle", h.Toggle)
		r.Get("/export", h.Export)

		r.Get("/members", h.Members)
		r.Post("/members", h.AddMember)
		r.Post("/members/bulk", h.AddMembersBulk)
		r.Delete("/members/{userId}", h.RemoveMember)

		r.Post("/send-message", h.SendMessage)
	})

	return r
}
