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
)

func newHealthService(store contacts.Store) *HealthService {
	return NewHealthService("1.2.3", store, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHealthService_HealthCheck(t *testing.T) {
	svc := newHealthService(contacts.NewMemoryStore())

	status := svc.HealthCheck(context.Background())

	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.False(t, status.Timestamp.IsZero())
	assert.NotEmpty(t, status.Runtime)

	contactsHealth, ok := status.Services["contacts"].(ServiceHealth)
	require.True(t, ok)
	assert.Equal(t, "ok", contactsHealth.Status)
	assert.Equal(t, "0 history entries", contactsHealth.Message)
}

func TestHealthService_DegradedOnStoreError(t *testing.T) {
	svc := newHealthService(&failingStore{loadErr: errors.New("locked")})

	status := svc.HealthCheck(context.Background())

	assert.Equal(t, "degraded", status.Status)
	contactsHealth, ok := status.Services["contacts"].(ServiceHealth)
	require.True(t, ok)
	assert.Equal(t, "error", contactsHealth.Status)
	assert.Contains(t, contactsHealth.Message, "locked")
}

func TestHealthService_LivenessCheck(t *testing.T) {
	svc := newHealthService(nil)

	status := svc.LivenessCheck(context.Background())

	assert.Equal(t, "alive", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Nil(t, status.Services)
}

func TestHealthService_Version(t *testing.T) {
	svc := newHealthService(nil)

	info := svc.Version()

	assert.Equal(t, "1.2.3", info["version"])
	assert.NotEmpty(t, info["go_version"])
	assert.NotEmpty(t, info["os"])
	assert.Contains(t, info, "uptime")
	assert.Contains(t, info, "start_time")
}
