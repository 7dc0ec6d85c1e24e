package contacts

import (
	"context"

	"zvgcli/pkg/contracts/domain"
)

// Store persists the contact history across sessions. Load must return a
// mapping the caller owns outright, so mutating it never leaks back into the
// store before the next Save.
type Store interface {
	Load(ctx context.Context) (domain.ContactHistory, error)
	Save(ctx context.Context, history domain.ContactHistory) error
	Close() error
}
