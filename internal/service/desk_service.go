package service

import (
	"context"
	"errors"
	"strings"

	"deskbook/internal/domain"
	"deskbook/internal/metrics"
	"deskbook/internal/models"

	"github.com/rs/zerolog"
)

// DeskService is the storage-agnostic model facade. It holds the one
// active backend driver for the process, normalizes input before it
// reaches the driver and implements the bulk mutation on top of the paged
// listing. It adds no locking around read-then-update sequences; races
// between concurrent callers on the same desk are a documented gap.
type DeskService struct {
	store  domain.DeskStore
	logger *zerolog.Logger
}

func NewDeskService(store domain.DeskStore, logger *zerolog.Logger) *DeskService {
	return &DeskService{store: store, logger: logger}
}

func (s *DeskService) List(ctx context.Context, pageSize int, pageToken string) ([]models.Desk, string, error) {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	if pageSize > models.MaxPageSize {
		pageSize = models.MaxPageSize
	}

	desks, next, err := s.store.List(ctx, pageSize, pageToken)
	metrics.IncStoreOp("list", outcome(err))
	return desks, next, err
}

func (s *DeskService) Create(ctx context.Context, desk *models.Desk) error {
	normalize(desk)
	if err := validateDesk(*desk); err != nil {
		return err
	}

	err := s.store.Create(ctx, desk)
	metrics.IncStoreOp("create", outcome(err))
	return err
}

func (s *DeskService) Read(ctx context.Context, id string) (*models.Desk, error) {
	desk, err := s.store.Read(ctx, id)
	metrics.IncStoreOp("read", outcome(err))
	return desk, err
}

// Update replaces the named fields of the record identified by the path
// id. Any identifier inside the payload is discarded so the stored key is
// never rewritten.
func (s *DeskService) Update(ctx context.Context, id string, desk models.Desk) (*models.Desk, error) {
	desk.ID = ""
	normalize(&desk)
	if err := validateDesk(desk); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, id, desk)
	metrics.IncStoreOp("update", outcome(err))
	return updated, err
}

func (s *DeskService) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	metrics.IncStoreOp("delete", outcome(err))
	return err
}

// BulkUpdate pages through the whole record set and persists the
// transformed copy of every match, in listing order. The operation is not
// atomic: on a mid-flight failure the already-persisted records are
// reported through PartialBulkError so the caller can retry the rest.
func (s *DeskService) BulkUpdate(ctx context.Context, match domain.DeskPredicate, transform domain.DeskTransform) ([]models.Desk, error) {
	var updated []models.Desk

	pageToken := ""
	for {
		desks, next, err := s.store.List(ctx, models.DefaultListBatchSize, pageToken)
		if err != nil {
			return updated, s.bulkErr(updated, err)
		}

		for _, desk := range desks {
			if !match(desk) {
				continue
			}

			mutated := desk
			transform(&mutated)

			saved, err := s.store.Update(ctx, desk.ID, mutated)
			if err != nil {
				return updated, s.bulkErr(updated, err)
			}
			updated = append(updated, *saved)
		}

		if next == "" {
			break
		}
		pageToken = next
	}

	metrics.IncStoreOp("bulk_update", "ok")
	return updated, nil
}

func (s *DeskService) bulkErr(updated []models.Desk, err error) error {
	metrics.IncStoreOp("bulk_update", "error")
	if len(updated) == 0 {
		return err
	}
	s.logger.Error().Err(err).Int("updated", len(updated)).Msg("bulk update failed midway")
	return &domain.PartialBulkError{Updated: updated, Err: err}
}

// normalize enforces the field invariants that do not depend on storage:
// a free desk carries no occupant email and a booked desk has no sign-out
// yet.
func normalize(desk *models.Desk) {
	desk.Name = strings.TrimSpace(desk.Name)
	desk.UserEmail = strings.TrimSpace(desk.UserEmail)
	if !desk.Booked {
		desk.UserEmail = ""
	} else {
		desk.SignOutTime = nil
	}
}

func validateDesk(desk models.Desk) error {
	fields := make(map[string]string)

	if desk.Name == "" {
		fields["name"] = "required"
	}
	if desk.Booked {
		switch {
		case desk.UserEmail == "":
			fields["user_email"] = "required when booked"
		case !strings.Contains(desk.UserEmail, "@"):
			fields["user_email"] = "malformed"
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
