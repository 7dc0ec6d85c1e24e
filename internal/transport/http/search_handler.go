package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "zvgcli/internal/errors"
	custommw "zvgcli/internal/middleware"
	"zvgcli/pkg/contracts/domain"
)

// SearchHandler serves the search endpoint and the search form data.
type SearchHandler struct {
	service      SearchServiceInterface
	validation   *custommw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSearchHandler creates a search handler.
func NewSearchHandler(service SearchServiceInterface, validation *custommw.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SearchHandler {
	return &SearchHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("handler", "search")),
		errorHandler: errorHandler,
	}
}

// Routes returns the search routes.
func (h *SearchHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/search", h.Search)
	r.Get("/states", h.States)

	return r
}

// Search handles POST /api/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var query domain.SearchQuery
	if err := render.DecodeJSON(r.Body, &query); err != nil {
		h.logger.WarnContext(r.Context(), "undecodable search request",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validation.ValidateStruct(&query); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "search request",
		slog.String("state", query.State),
		slog.Int("min_days", query.MinDays),
		slog.Bool("include_contacted", query.IncludeContacted),
		slog.String("request_id", reqID))

	result, err := h.service.Search(r.Context(), query)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "search failed",
			slog.String("state", query.State),
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		render.Render(w, r, apierrors.MapSearchError(err, r.URL.Path, reqID))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":     "success",
		"data":       result.Listings,
		"count":      result.Total,
		"suppressed": result.Suppressed,
	})
}

// States handles GET /api/states.
func (h *SearchHandler) States(w http.ResponseWriter, r *http.Request) {
	states := h.service.States()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   states,
		"count":  len(states),
	})
}
