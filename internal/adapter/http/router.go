package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/localloop/classifieds-service/internal/platform/logger"
)

// NewRouter wires the HTTP surface. The bearer token rides along on every
// request; the usecases decide which operations require it.
func NewRouter(h *Handler, log *logger.Logger) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(RequestLogger(log))

	mux.Get("/healthz", h.HandleHealthz)

	mux.Route("/api", func(r chi.Router) {
		r.Get("/listings", h.HandleListListings)
		r.Get("/listings/mine", h.HandleMyListings)
		r.Get("/listings/{id}", h.HandleGetListing)
		r.Get("/listings/{id}/edit", h.HandleGetOwnedListing)
		r.Post("/listings", h.HandleCreateListing)
		r.Put("/listings/{id}", h.HandleUpdateListing)
		r.Delete("/listings/{id}", h.HandleDeleteListing)

		r.Get("/profile", h.HandleGetProfile)
		r.Put("/profile", h.HandleUpdateProfile)

		r.Post("/suggest-tags", h.HandleSuggestTags)
		r.Post("/generate-image", h.HandleGenerateImage)
	})

	return mux
}
