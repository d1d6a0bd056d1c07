package repository

import (
	"context"
	"io"
	"os"
	"strconv"
	"testing"

	"deskbook/internal/config"
	"deskbook/internal/domain"
	"deskbook/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupPostgresStore connects to the database pointed at by TEST_POSTGRES_*
// env vars and skips otherwise, so the suite stays runnable without a
// server around.
func setupPostgresStore(t *testing.T) *PostgresDeskStore {
	t.Helper()

	host := os.Getenv("TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("TEST_POSTGRES_HOST is not set")
	}

	port := 5432
	if raw := os.Getenv("TEST_POSTGRES_PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		require.NoError(t, err)
		port = parsed
	}

	cfg := config.PostgresConfig{
		Host:     host,
		Port:     port,
		User:     os.Getenv("TEST_POSTGRES_USER"),
		Password: os.Getenv("TEST_POSTGRES_PASSWORD"),
		DBName:   os.Getenv("TEST_POSTGRES_DB"),
		SSLMode:  "disable",
	}

	logger := zerolog.New(io.Discard)
	store, err := NewPostgresDeskStore(cfg, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresDeskStoreCRUD(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()

	desk := &models.Desk{ID: "it-" + uuid.NewString(), Name: "integration desk", HotDesk: true}
	require.NoError(t, store.Create(ctx, desk))
	defer store.Delete(ctx, desk.ID)

	got, err := store.Read(ctx, desk.ID)
	require.NoError(t, err)
	assert.Equal(t, desk.Name, got.Name)
	assert.True(t, got.HotDesk)
	assert.Nil(t, got.SignInTime)

	got.Booked = true
	got.UserEmail = "it@example.com"
	updated, err := store.Update(ctx, desk.ID, *got)
	require.NoError(t, err)
	assert.True(t, updated.Booked)

	require.NoError(t, store.Delete(ctx, desk.ID))
	_, err = store.Read(ctx, desk.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgresDeskStoreDuplicateID(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()

	desk := &models.Desk{ID: "it-" + uuid.NewString(), Name: "a"}
	require.NoError(t, store.Create(ctx, desk))
	defer store.Delete(ctx, desk.ID)

	err := store.Create(ctx, &models.Desk{ID: desk.ID, Name: "b"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "id")
}
