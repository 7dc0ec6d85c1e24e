package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"zvgcli/internal/contacts"
	apierrors "zvgcli/internal/errors"
	"zvgcli/pkg/contracts/domain"
)

// ContactEntry is one contact history record for display.
type ContactEntry struct {
	ID          string `json:"id"`
	ContactedAt string `json:"contactedAt"`
}

// ContactService exposes the contact history for inspection and manual
// correction. Exports write the history; this service only reads and prunes.
type ContactService struct {
	store  contacts.Store
	logger *slog.Logger
}

// NewContactService creates a contact service.
func NewContactService(store contacts.Store, logger *slog.Logger) *ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactService{store: store, logger: logger}
}

// List returns all history entries, newest first. Entries whose timestamp
// does not parse sort last in id order rather than being dropped.
func (s *ContactService) List(ctx context.Context) ([]ContactEntry, error) {
	history, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load: %v", apierrors.ErrStoreUnavailable, err)
	}

	entries := make([]ContactEntry, 0, len(history))
	for id, ts := range history {
		entries = append(entries, ContactEntry{ID: id, ContactedAt: ts})
	}
	sort.Slice(entries, func(i, j int) bool {
		ti, erri := contacts.ParseTimestamp(entries[i].ContactedAt, time.Local)
		tj, errj := contacts.ParseTimestamp(entries[j].ContactedAt, time.Local)
		switch {
		case erri == nil && errj == nil && !ti.Equal(tj):
			return ti.After(tj)
		case erri == nil && errj != nil:
			return true
		case erri != nil && errj == nil:
			return false
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

// Delete removes one entry so the listing becomes contactable again.
func (s *ContactService) Delete(ctx context.Context, id string) error {
	history, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: load: %v", apierrors.ErrStoreUnavailable, err)
	}
	if _, ok := history[id]; !ok {
		return fmt.Errorf("%w: %q", apierrors.ErrContactNotFound, id)
	}
	delete(history, id)
	if err := s.store.Save(ctx, history); err != nil {
		return fmt.Errorf("%w: save: %v", apierrors.ErrStoreUnavailable, err)
	}

	s.logger.InfoContext(ctx, "contact entry removed", slog.String("listing_id", id))
	return nil
}

// Clear drops the whole history.
func (s *ContactService) Clear(ctx context.Context) error {
	history, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: load: %v", apierrors.ErrStoreUnavailable, err)
	}
	if len(history) == 0 {
		return nil
	}
	if err := s.store.Save(ctx, domain.ContactHistory{}); err != nil {
		return fmt.Errorf("%w: save: %v", apierrors.ErrStoreUnavailable, err)
	}

	s.logger.InfoContext(ctx, "contact history cleared", slog.Int("removed", len(history)))
	return nil
}
