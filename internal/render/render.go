// Package render produces the server-rendered listing pages.
//
// Pages follow a fallback pre-generation strategy: every known listing is
// rendered and cached at startup, and listings created afterwards are
// rendered on their first request and cached from then on. The render input
// carries no viewer identity; ownership of a listing is re-checked
// client-side after load.
package render

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/supavacation/supavacation/internal/cache"
	"github.com/supavacation/supavacation/internal/metrics"
	"github.com/supavacation/supavacation/internal/model"
	"github.com/supavacation/supavacation/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ErrHomeNotFound mirrors the service error for callers that only import render.
var ErrHomeNotFound = service.ErrHomeNotFound

// PageCache stores rendered pages keyed by home ID.
type PageCache interface {
	GetRenderedPage(ctx context.Context, homeID string) ([]byte, error)
	SetRenderedPage(ctx context.Context, homeID string, html []byte) error
}

// Renderer renders listing pages and maintains the page cache.
type Renderer struct {
	homes   *service.HomeService
	pages   PageCache
	logger  *slog.Logger
	metrics metrics.Recorder
}

// New creates a Renderer.
func New(homes *service.HomeService, pages PageCache, logger *slog.Logger, recorder metrics.Recorder) *Renderer {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Renderer{
		homes:   homes,
		pages:   pages,
		logger:  logger.With("component", "render"),
		metrics: recorder,
	}
}

// homePageData is the render input for a single listing page. Only plain
// values from the Home record, no viewer identity.
type homePageData struct {
	Home *model.Home
}

// indexPageData is the render input for the listing index.
type indexPageData struct {
	Homes []*model.Home
}

// HomePage returns the rendered page for a home, serving from the cache when
// possible and falling back to render-on-first-request. Returns
// ErrHomeNotFound when the listing does not exist (callers redirect, they do
// not render an error page).
func (r *Renderer) HomePage(ctx context.Context, id string) ([]byte, error) {
	if r.pages != nil {
		html, err := r.pages.GetRenderedPage(ctx, id)
		if err == nil {
			r.metrics.IncPageCacheHit()
			return html, nil
		}
		if !errors.Is(err, cache.ErrPageMiss) {
			// Degraded cache: fall through and render from the database.
			r.logger.Warn("page cache read failed", "home_id", id, "error", err)
		}
	}
	r.metrics.IncPageCacheMiss()

	home, err := r.homes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	html, err := r.renderHome(home)
	if err != nil {
		return nil, err
	}

	if r.pages != nil {
		if err := r.pages.SetRenderedPage(ctx, id, html); err != nil {
			r.logger.Warn("page cache write failed", "home_id", id, "error", err)
		}
	}

	return html, nil
}

// EditPage renders the edit form for a home. Always rendered fresh and never
// cached: the form prefills current values, and the page is owner-only UI.
func (r *Renderer) EditPage(ctx context.Context, id string) ([]byte, error) {
	home, err := r.homes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "edit.html", homePageData{Home: home}); err != nil {
		return nil, fmt.Errorf("render edit page: %w", err)
	}

	return buf.Bytes(), nil
}

// IndexPage renders the listing index. Always rendered fresh: it changes with
// every create and carries no per-listing cache key.
func (r *Renderer) IndexPage(ctx context.Context) ([]byte, error) {
	homes, err := r.homes.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list homes: %w", err)
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "index.html", indexPageData{Homes: homes}); err != nil {
		return nil, fmt.Errorf("render index page: %w", err)
	}

	return buf.Bytes(), nil
}

// PrerenderAll warms the page cache for every known listing. Best effort:
// a listing that fails to render is logged and skipped, the rest still warm.
func (r *Renderer) PrerenderAll(ctx context.Context) error {
	if r.pages == nil {
		return nil
	}

	ids, err := r.homes.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list home IDs: %w", err)
	}

	for _, id := range ids {
		home, err := r.homes.GetByID(ctx, id)
		if err != nil {
			r.logger.Warn("prerender skipped", "home_id", id, "error", err)
			continue
		}
		html, err := r.renderHome(home)
		if err != nil {
			r.logger.Warn("prerender failed", "home_id", id, "error", err)
			continue
		}
		if err := r.pages.SetRenderedPage(ctx, id, html); err != nil {
			r.logger.Warn("prerender cache write failed", "home_id", id, "error", err)
		}
	}

	r.logger.Info("pages pre-generated", "count", len(ids))

	return nil
}

// renderHome renders a single listing page.
func (r *Renderer) renderHome(home *model.Home) ([]byte, error) {
	start := time.Now()

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "home.html", homePageData{Home: home}); err != nil {
		return nil, fmt.Errorf("render home page: %w", err)
	}

	r.metrics.ObserveRenderDuration(time.Since(start))

	return buf.Bytes(), nil
}
