package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"zvgcli/internal/contacts"
	apierrors "zvgcli/internal/errors"
	"zvgcli/internal/exporter"
	"zvgcli/internal/infrastructure"
	"zvgcli/pkg/contracts/domain"
	"zvgcli/pkg/contracts/events"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ExportRequest carries one export run: the listings of the current result
// set, the ids selected for export and the requested file format. An empty
// selection is legal and makes the export a no-op.
type ExportRequest struct {
	Listings  []domain.Listing    `json:"listings" validate:"omitempty,dive"`
	Selection domain.SelectionSet `json:"selection"`
	Format    string              `json:"format" validate:"omitempty,oneof=csv xlsx"`
}

// ExportOutput is the finished file plus the commit bookkeeping.
type ExportOutput struct {
	Blob        []byte
	Filename    string
	ContentType string
	Addresses   int
	Contacted   []string
}

// ExportService runs the export pipeline and commits the updated contact
// history to the store.
type ExportService struct {
	store   contacts.Store
	hub     Broadcaster
	metrics *infrastructure.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewExportService creates an export service. hub and metrics may be nil.
func NewExportService(store contacts.Store, hub Broadcaster, metrics *infrastructure.Metrics, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		store:   store,
		hub:     hub,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Export expands the selected listings into address records, serializes them
// and persists the stamped history. Nothing selected returns
// ErrEmptySelection and leaves the history untouched. The history commit is
// part of the export: when the store rejects the save, the export fails and
// no file is handed out.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (*ExportOutput, error) {
	format := req.Format
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, req.Format)
	}

	jobID := uuid.New().String()
	s.broadcast(events.Progress{Stage: "started", JobID: jobID})

	history, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load: %v", apierrors.ErrStoreUnavailable, err)
	}

	result, ok := exporter.Export(req.Listings, req.Selection, history, s.now())
	if !ok {
		return nil, ErrEmptySelection
	}

	out := &ExportOutput{
		Blob:        result.Blob,
		Filename:    result.Filename,
		ContentType: "text/csv; charset=utf-8",
		Addresses:   len(result.Addresses),
		Contacted:   result.Contacted,
	}
	if format == FormatXLSX {
		blob, err := exporter.MarshalAddressXLSX(result.Addresses)
		if err != nil {
			return nil, apierrors.ExportError(fmt.Errorf("render xlsx workbook: %w", err))
		}
		out.Blob = blob
		out.Filename = exporter.AddressXLSXFilename
		out.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	if err := s.store.Save(ctx, result.History); err != nil {
		return nil, fmt.Errorf("%w: save: %v", apierrors.ErrStoreUnavailable, err)
	}

	infrastructure.RecordExportMetrics(ctx, s.metrics, format, out.Addresses)
	s.broadcast(events.Progress{Stage: "completed", JobID: jobID, Count: out.Addresses})

	s.logger.InfoContext(ctx, "export committed",
		slog.String("job_id", jobID),
		slog.String("format", format),
		slog.Int("selected", len(out.Contacted)),
		slog.Int("addresses", out.Addresses))
	return out, nil
}

func (s *ExportService) broadcast(event events.Progress) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(events.TypeExportProgress, event)
}
