package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zvgcli/internal/contacts"
	apierrors "zvgcli/internal/errors"
	"zvgcli/pkg/contracts/domain"
)

func newContactService(t *testing.T, store contacts.Store) *ContactService {
	t.Helper()
	if store == nil {
		store = contacts.NewMemoryStore()
	}
	return NewContactService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestContactService_ListSortedNewestFirst(t *testing.T) {
	store := contacts.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), domain.ContactHistory{
		"old":    "2026-06-01T08:00:00Z",
		"new":    "2026-08-01T08:00:00Z",
		"middle": "2026-07-01T08:00:00Z",
		"broken": "not a timestamp",
	}))
	svc := newContactService(t, store)

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 4)

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"new", "middle", "old", "broken"}, ids)
}

func TestContactService_ListEmpty(t *testing.T) {
	svc := newContactService(t, nil)

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestContactService_Delete(t *testing.T) {
	store := contacts.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), domain.ContactHistory{
		"keep":   "2026-08-01T08:00:00Z",
		"remove": "2026-08-02T08:00:00Z",
	}))
	svc := newContactService(t, store)

	require.NoError(t, svc.Delete(context.Background(), "remove"))

	history, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, history, "keep")
	assert.NotContains(t, history, "remove")
}

func TestContactService_DeleteMissing(t *testing.T) {
	svc := newContactService(t, nil)

	err := svc.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, apierrors.ErrContactNotFound)
}

func TestContactService_Clear(t *testing.T) {
	store := contacts.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), domain.ContactHistory{
		"a": "2026-08-01T08:00:00Z",
		"b": "2026-08-02T08:00:00Z",
	}))
	svc := newContactService(t, store)

	require.NoError(t, svc.Clear(context.Background()))

	history, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestContactService_ClearEmptySkipsSave(t *testing.T) {
	// Save would fail; Clear must not reach it for an already empty history.
	store := &failingStore{saveErr: errors.New("read-only")}
	svc := newContactService(t, store)

	assert.NoError(t, svc.Clear(context.Background()))
}

func TestContactService_StoreUnavailable(t *testing.T) {
	store := &failingStore{loadErr: errors.New("locked")}
	svc := newContactService(t, store)

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, apierrors.ErrStoreUnavailable)

	err = svc.Delete(context.Background(), "any")
	assert.ErrorIs(t, err, apierrors.ErrStoreUnavailable)
}
