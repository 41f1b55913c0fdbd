package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/supavacation/supavacation/internal/render"
)

// PageHandler serves server-rendered HTML pages.
type PageHandler struct {
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(renderer *render.Renderer, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		renderer: renderer,
		logger:   logger,
	}
}

// Index handles GET / and GET /homes.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	page, err := h.renderer.IndexPage(r.Context())
	if err != nil {
		h.logger.Error("render index page failed", "error", err)
		http.Error(w, "Something went wrong.", http.StatusInternalServerError)
		return
	}

	writeHTML(w, page)
}

// Home handles GET /homes/{id}. Pages are served from the render cache when
// warm. A missing home redirects to the index page instead of a 404.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	page, err := h.renderer.HomePage(r.Context(), id)
	if err != nil {
		if errors.Is(err, render.ErrHomeNotFound) {
			http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
			return
		}
		h.logger.Error("render home page failed", "error", err, "home_id", id)
		http.Error(w, "Something went wrong.", http.StatusInternalServerError)
		return
	}

	writeHTML(w, page)
}

// Edit handles GET /homes/{id}/edit. The page itself is public markup; the
// embedded script bounces non-owners back to the listing, and the API rejects
// non-owner saves regardless.
func (h *PageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	page, err := h.renderer.EditPage(r.Context(), id)
	if err != nil {
		if errors.Is(err, render.ErrHomeNotFound) {
			http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
			return
		}
		h.logger.Error("render edit page failed", "error", err, "home_id", id)
		http.Error(w, "Something went wrong.", http.StatusInternalServerError)
		return
	}

	writeHTML(w, page)
}

func writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
