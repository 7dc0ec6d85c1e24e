package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "zvgcli/internal/errors"
)

// ContactsHandler serves the contact history endpoints.
type ContactsHandler struct {
	service      ContactServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewContactsHandler creates a contacts handler.
func NewContactsHandler(service ContactServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ContactsHandler {
	return &ContactsHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "contacts")),
		errorHandler: errorHandler,
	}
}

// Routes returns the contact history routes.
func (h *ContactsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.List)
	r.Delete("/", h.Clear)
	r.Delete("/{id}", h.Delete)

	return r
}

// List handles GET /api/contacts.
func (h *ContactsHandler) List(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	entries, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list contacts failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		render.Render(w, r, apierrors.MapContactError(err, r.URL.Path, reqID))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   entries,
		"count":  len(entries),
	})
}

// Delete handles DELETE /api/contacts/{id}.
func (h *ContactsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.WarnContext(r.Context(), "delete contact failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		render.Render(w, r, apierrors.MapContactError(err, r.URL.Path, reqID))
		return
	}

	h.logger.InfoContext(r.Context(), "contact entry deleted",
		slog.String("id", id),
		slog.String("request_id", reqID))
	render.NoContent(w, r)
}

// Clear handles DELETE /api/contacts.
func (h *ContactsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	if err := h.service.Clear(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "clear contacts failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		render.Render(w, r, apierrors.MapContactError(err, r.URL.Path, reqID))
		return
	}

	h.logger.InfoContext(r.Context(), "contact history cleared",
		slog.String("request_id", reqID))
	render.NoContent(w, r)
}
