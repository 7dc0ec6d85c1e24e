package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "zvgcli/internal/errors"
	custommw "zvgcli/internal/middleware"
	"zvgcli/internal/services"
)

// ExportHandler serves the address export endpoint.
type ExportHandler struct {
	service      ExportServiceInterface
	validation   *custommw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates an export handler.
func NewExportHandler(service ExportServiceInterface, validation *custommw.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("handler", "export")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes.
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/export", h.Export)
	return r
}

// Export handles POST /api/export. The response is the generated file, not a
// JSON envelope; an empty selection is a no-op answered with 204.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var req services.ExportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.logger.WarnContext(r.Context(), "undecodable export request",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	output, err := h.service.Export(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptySelection):
			render.NoContent(w, r)
		case errors.Is(err, services.ErrUnknownFormat):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "Format must be csv or xlsx"))
		default:
			h.logger.ErrorContext(r.Context(), "export failed",
				slog.String("error", err.Error()),
				slog.String("request_id", reqID))
			render.Render(w, r, apierrors.MapContactError(err, r.URL.Path, reqID))
		}
		return
	}

	h.logger.InfoContext(r.Context(), "export download",
		slog.String("filename", output.Filename),
		slog.Int("addresses", output.Addresses),
		slog.Int("contacted", len(output.Contacted)),
		slog.String("request_id", reqID))

	w.Header().Set("Content-Type", output.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", output.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(output.Blob)))
	w.WriteHeader(http.StatusOK)
	w.Write(output.Blob)
}
