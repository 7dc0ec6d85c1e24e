package http

import (
	"context"

	"zvgcli/internal/portal"
	"zvgcli/internal/services"
	"zvgcli/pkg/contracts/domain"
)

// SearchServiceInterface is what the search handler needs from the search
// service. Declared here so handler tests can substitute a mock.
type SearchServiceInterface interface {
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error)
	States() []portal.Land
}

// ExportServiceInterface is what the export handler needs.
type ExportServiceInterface interface {
	Export(ctx context.Context, req services.ExportRequest) (*services.ExportOutput, error)
}

// ContactServiceInterface is what the contacts handler needs.
type ContactServiceInterface interface {
	List(ctx context.Context) ([]services.ContactEntry, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// HealthServiceInterface is what the health handler needs.
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

// StatsServiceInterface is what the stats page needs.
type StatsServiceInterface interface {
	Snapshot(ctx context.Context) services.Stats
}
