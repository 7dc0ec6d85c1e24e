package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/render"
)

// Domain errors raised by the search and contact services
var (
	ErrUnknownState      = errors.New("unknown state")
	ErrPortalUnavailable = errors.New("portal unavailable")
	ErrContactNotFound   = errors.New("contact entry not found")
	ErrStoreUnavailable  = errors.New("contact store unavailable")
)

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	for k, v := range pd.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// MapSearchError maps search service errors to HTTP problem details
func MapSearchError(err error, instance, traceID string) render.Renderer {
	switch {
	case errors.Is(err, ErrUnknownState):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeUnknownState,
			"Unknown Federal State",
			"The requested federal state is not a known code or name.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "UNKNOWN_STATE")

	case errors.Is(err, ErrPortalUnavailable):
		return NewProblemDetails(
			http.StatusServiceUnavailable,
			TypePortalUnavailable,
			"Portal Unavailable",
			"The auction portal could not be reached. Please try again later.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "PORTAL_UNAVAILABLE").
			WithExtension("retry_after", 60)

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Search Timeout",
			"The portal search took too long and was cancelled.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "SEARCH_TIMEOUT")
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Type == ErrTypeParsing {
		return NewProblemDetails(
			http.StatusBadGateway,
			TypePortalParse,
			"Portal Response Unreadable",
			"The portal returned a page that could not be parsed.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "PORTAL_PARSE_FAILED")
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while searching.",
		instance,
	).WithExtension("trace_id", traceID).
		WithExtension("error_code", "INTERNAL_ERROR")
}

// MapContactError maps contact store errors to HTTP problem details
func MapContactError(err error, instance, traceID string) render.Renderer {
	switch {
	case errors.Is(err, ErrContactNotFound):
		return NewProblemDetails(
			http.StatusNotFound,
			TypeContactNotFound,
			"Contact Entry Not Found",
			"No contact entry exists for the given listing.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "CONTACT_NOT_FOUND")

	case errors.Is(err, ErrStoreUnavailable):
		return NewProblemDetails(
			http.StatusServiceUnavailable,
			TypeStoreUnavailable,
			"Contact Store Unavailable",
			"The contact history store could not be reached.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "STORE_UNAVAILABLE")
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Type == ErrTypeStorage {
		return NewProblemDetails(
			http.StatusServiceUnavailable,
			TypeStoreUnavailable,
			"Contact Store Unavailable",
			"The contact history store reported an error.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "STORE_UNAVAILABLE")
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while accessing contact history.",
		instance,
	).WithExtension("trace_id", traceID).
		WithExtension("error_code", "INTERNAL_ERROR")
}
