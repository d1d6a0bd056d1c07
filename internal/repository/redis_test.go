package repository

import (
	"context"
	"fmt"
	"io"
	"testing"

	"deskbook/internal/domain"
	"deskbook/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*RedisDeskStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := zerolog.New(io.Discard)
	return NewRedisDeskStore(client, &logger), mr
}

func TestRedisDeskStoreCRUD(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	desk := &models.Desk{Name: "window seat", HotDesk: true}
	require.NoError(t, store.Create(ctx, desk))
	require.NotEmpty(t, desk.ID)

	got, err := store.Read(ctx, desk.ID)
	require.NoError(t, err)
	assert.Equal(t, "window seat", got.Name)
	assert.True(t, got.HotDesk)

	got.Booked = true
	got.UserEmail = "pat@example.com"
	updated, err := store.Update(ctx, desk.ID, *got)
	require.NoError(t, err)
	assert.True(t, updated.Booked)

	reread, err := store.Read(ctx, desk.ID)
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", reread.UserEmail)

	require.NoError(t, store.Delete(ctx, desk.ID))
	_, err = store.Read(ctx, desk.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisDeskStoreNotFound(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	_, err := store.Read(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.Update(ctx, "missing", models.Desk{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "missing"), domain.ErrNotFound)
}

func TestRedisDeskStoreDuplicateID(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.Desk{ID: "dup", Name: "a"}))

	err := store.Create(ctx, &models.Desk{ID: "dup", Name: "b"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "id")
}

func TestRedisDeskStorePagination(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		desk := &models.Desk{ID: fmt.Sprintf("desk-%02d", i)}
		require.NoError(t, store.Create(ctx, desk))
	}

	first, next, err := store.List(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotEmpty(t, next)
	assert.Equal(t, "desk-00", first[0].ID)
	assert.Equal(t, "desk-01", first[1].ID)

	second, next, err := store.List(ctx, 2, next)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "desk-02", second[0].ID)

	last, next, err := store.List(ctx, 2, next)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "desk-04", last[0].ID)
	assert.Empty(t, next)
}

func TestRedisDeskStoreIndexCleanup(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.Desk{ID: "a"}))
	require.NoError(t, store.Create(ctx, &models.Desk{ID: "b"}))
	require.NoError(t, store.Delete(ctx, "a"))

	members, err := mr.ZMembers(deskIndexKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, members)
}

func TestRedisDeskStoreUnavailable(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.Desk{ID: "a"}))
	mr.Close()

	_, err := store.Read(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)

	_, _, err = store.List(ctx, 10, "")
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}
