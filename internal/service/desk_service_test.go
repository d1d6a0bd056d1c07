package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"deskbook/internal/domain"
	"deskbook/internal/models"
	"deskbook/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeskService(t *testing.T) (*DeskService, *repository.MemoryDeskStore) {
	t.Helper()
	store := repository.NewMemoryDeskStore()
	logger := zerolog.New(io.Discard)
	return NewDeskService(store, &logger), store
}

// flakyStore fails every Update after the first allowed successes, which is
// how a backend dying midway through a bulk pass looks to the facade.
type flakyStore struct {
	domain.DeskStore
	allowed int
	updates int
}

func (f *flakyStore) Update(ctx context.Context, id string, desk models.Desk) (*models.Desk, error) {
	if f.updates >= f.allowed {
		return nil, domain.ErrBackendUnavailable
	}
	f.updates++
	return f.DeskStore.Update(ctx, id, desk)
}

func TestDeskServiceCreateValidation(t *testing.T) {
	svc, _ := newDeskService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		desk  models.Desk
		field string
	}{
		{"EmptyName", models.Desk{Name: "   "}, "name"},
		{"BookedWithoutEmail", models.Desk{Name: "d1", Booked: true}, "user_email"},
		{"BookedBadEmail", models.Desk{Name: "d1", Booked: true, UserEmail: "nope"}, "user_email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desk := tt.desk
			err := svc.Create(ctx, &desk)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestDeskServiceNormalization(t *testing.T) {
	svc, _ := newDeskService(t)
	ctx := context.Background()

	desk := &models.Desk{Name: "  desk-1  ", Booked: false, UserEmail: "stale@example.com"}
	require.NoError(t, svc.Create(ctx, desk))

	got, err := svc.Read(ctx, desk.ID)
	require.NoError(t, err)
	assert.Equal(t, "desk-1", got.Name)
	assert.Empty(t, got.UserEmail, "a free desk must not carry an occupant email")
}

func TestDeskServiceUpdateIgnoresPayloadID(t *testing.T) {
	svc, _ := newDeskService(t)
	ctx := context.Background()

	desk := &models.Desk{Name: "desk-1"}
	require.NoError(t, svc.Create(ctx, desk))

	updated, err := svc.Update(ctx, desk.ID, models.Desk{ID: "attacker-chosen", Name: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, desk.ID, updated.ID)
	assert.Equal(t, "renamed", updated.Name)

	_, err = svc.Read(ctx, "attacker-chosen")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeskServiceListClampsPageSize(t *testing.T) {
	svc, _ := newDeskService(t)
	ctx := context.Background()

	for i := 0; i < models.MaxPageSize+10; i++ {
		require.NoError(t, svc.Create(ctx, &models.Desk{ID: fmt.Sprintf("desk-%03d", i), Name: "x"}))
	}

	desks, next, err := svc.List(ctx, 100000, "")
	require.NoError(t, err)
	assert.Len(t, desks, models.MaxPageSize)
	assert.NotEmpty(t, next)
}

func TestDeskServiceBulkUpdate(t *testing.T) {
	svc, _ := newDeskService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		desk := &models.Desk{ID: fmt.Sprintf("desk-%d", i), Name: fmt.Sprintf("desk-%d", i), HotDesk: i%2 == 0}
		require.NoError(t, svc.Create(ctx, desk))
	}

	updated, err := svc.BulkUpdate(ctx,
		func(d models.Desk) bool { return d.HotDesk },
		func(d *models.Desk) { d.Name = strings.ToUpper(d.Name) },
	)
	require.NoError(t, err)
	require.Len(t, updated, 3)

	for _, d := range updated {
		assert.Equal(t, strings.ToUpper(d.ID), d.Name)
	}

	// Non-matching records are untouched.
	got, err := svc.Read(ctx, "desk-1")
	require.NoError(t, err)
	assert.Equal(t, "desk-1", got.Name)
}

func TestDeskServiceBulkUpdatePartialFailure(t *testing.T) {
	store := repository.NewMemoryDeskStore()
	logger := zerolog.New(io.Discard)
	flaky := &flakyStore{DeskStore: store, allowed: 2}
	svc := NewDeskService(flaky, &logger)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Create(ctx, &models.Desk{ID: fmt.Sprintf("desk-%d", i), Name: "x"}))
	}

	updated, err := svc.BulkUpdate(ctx,
		func(models.Desk) bool { return true },
		func(d *models.Desk) { d.Name = "swept" },
	)

	var partial *domain.PartialBulkError
	require.ErrorAs(t, err, &partial)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Len(t, updated, 2)
	assert.Len(t, partial.Updated, 2)

	// The two records persisted before the failure stay persisted.
	got, err := store.Read(ctx, "desk-0")
	require.NoError(t, err)
	assert.Equal(t, "swept", got.Name)
}

func TestDeskServiceBulkUpdateFailsBeforeAnyWrite(t *testing.T) {
	store := repository.NewMemoryDeskStore()
	logger := zerolog.New(io.Discard)
	flaky := &flakyStore{DeskStore: store, allowed: 0}
	svc := NewDeskService(flaky, &logger)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.Desk{ID: "desk-0", Name: "x"}))

	updated, err := svc.BulkUpdate(ctx,
		func(models.Desk) bool { return true },
		func(d *models.Desk) { d.Name = "swept" },
	)

	// Nothing was written, so the raw error surfaces without the partial wrapper.
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	var partial *domain.PartialBulkError
	assert.False(t, errors.As(err, &partial))
	assert.Empty(t, updated)
}
