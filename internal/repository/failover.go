package repository

import (
	"context"
	"sync/atomic"
	"time"

	"deskbook/internal/domain"
	"deskbook/internal/models"

	"github.com/rs/zerolog"
)

const failoverRecoveryWindow = time.Minute

// FailoverDeskStore serves from the primary driver and falls back to a
// secondary one when the primary errors out, probing the primary again
// after a recovery window. Records written while failed over live only in
// the fallback store; this wrapper trades consistency for availability and
// is opt-in via storage.fallback_backend.
type FailoverDeskStore struct {
	primary   domain.DeskStore
	fallback  domain.DeskStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nano of the last failed primary attempt
}

func NewFailoverDeskStore(primary, fallback domain.DeskStore, logger *zerolog.Logger) *FailoverDeskStore {
	return &FailoverDeskStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// usePrimary reports whether the call should go to the primary driver,
// flipping back after the recovery window has passed.
func (r *FailoverDeskStore) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return time.Since(time.Unix(0, r.lastCheck.Load())) > failoverRecoveryWindow
}

func (r *FailoverDeskStore) markResult(err error) {
	if err == nil || err == domain.ErrNotFound {
		r.isDown.Store(false)
		return
	}
	if err == domain.ErrBackendUnavailable {
		r.logger.Error().Err(err).Msg("primary desk store failed, falling back")
		r.isDown.Store(true)
		r.lastCheck.Store(time.Now().UnixNano())
	}
}

func (r *FailoverDeskStore) List(ctx context.Context, pageSize int, pageToken string) ([]models.Desk, string, error) {
	if r.usePrimary() {
		desks, next, err := r.primary.List(ctx, pageSize, pageToken)
		r.markResult(err)
		if err != domain.ErrBackendUnavailable {
			return desks, next, err
		}
	}
	return r.fallback.List(ctx, pageSize, pageToken)
}

func (r *FailoverDeskStore) Create(ctx context.Context, desk *models.Desk) error {
	if r.usePrimary() {
		err := r.primary.Create(ctx, desk)
		r.markResult(err)
		if err != domain.ErrBackendUnavailable {
			return err
		}
	}
	return r.fallback.Create(ctx, desk)
}

func (r *FailoverDeskStore) Read(ctx context.Context, id string) (*models.Desk, error) {
	if r.usePrimary() {
		desk, err := r.primary.Read(ctx, id)
		r.markResult(err)
		if err != domain.ErrBackendUnavailable {
			return desk, err
		}
	}
	return r.fallback.Read(ctx, id)
}

func (r *FailoverDeskStore) Update(ctx context.Context, id string, desk models.Desk) (*models.Desk, error) {
	if r.usePrimary() {
		updated, err := r.primary.Update(ctx, id, desk)
		r.markResult(err)
		if err != domain.ErrBackendUnavailable {
			return updated, err
		}
	}
	return r.fallback.Update(ctx, id, desk)
}

func (r *FailoverDeskStore) Delete(ctx context.Context, id string) error {
	if r.usePrimary() {
		err := r.primary.Delete(ctx, id)
		r.markResult(err)
		if err != domain.ErrBackendUnavailable {
			return err
		}
	}
	return r.fallback.Delete(ctx, id)
}
