package services

import "errors"

// Service-level errors. Portal and contact store sentinels live in
// internal/errors; these cover conditions that only exist at this layer.
var (
	// ErrEmptySelection means an export was requested with nothing selected.
	// Handlers treat it as a no-op, not a failure.
	ErrEmptySelection = errors.New("no listings selected")

	// ErrUnknownFormat means an export format other than csv or xlsx.
	ErrUnknownFormat = errors.New("unknown export format")
)
