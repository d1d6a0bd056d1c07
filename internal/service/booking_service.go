package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"deskbook/internal/domain"
	"deskbook/internal/events"
	"deskbook/internal/metrics"
	"deskbook/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns the desk occupancy state machine. A desk is either
// Free (booked=false) or Occupied (booked=true); no transition leaves it
// in a third state.
type BookingService struct {
	desks    domain.DeskModel
	eventBus domain.EventPublisher
	notifier domain.Notifier
	logger   *zerolog.Logger
}

func NewBookingService(desks domain.DeskModel, eventBus domain.EventPublisher, notifier domain.Notifier, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		desks:    desks,
		eventBus: eventBus,
		notifier: notifier,
		logger:   logger,
	}
}

// Book moves a desk to Occupied for the given user. There is no guard
// against booking an already-occupied desk: the store has no concurrency
// token, so a second booking silently overwrites the first occupant.
// Callers that need exclusivity must read and compare booked themselves.
//
// The notification is a post-commit step: its failure is logged and
// counted but never fails the booking that triggered it.
func (s *BookingService) Book(ctx context.Context, id, email string) (*models.Desk, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("user_email", "required")
	}

	desk, err := s.desks.Read(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	booked := *desk
	booked.Booked = true
	booked.UserEmail = email
	booked.SignInTime = &now
	booked.SignOutTime = nil

	saved, err := s.desks.Update(ctx, id, booked)
	if err != nil {
		return nil, err
	}

	metrics.IncBooking("book")
	s.publishDeskEvent(events.EventDeskBooked, *saved)

	if s.notifier != nil {
		notice := models.BookingNotice{
			DeskID:    saved.ID,
			DeskName:  saved.Name,
			UserEmail: saved.UserEmail,
		}
		if err := s.notifier.NotifyBooked(ctx, notice); err != nil {
			metrics.IncNotifyFailure()
			s.logger.Error().Err(err).Str("desk_id", saved.ID).Msg("booking notification failed")
		}
	}

	return saved, nil
}

// UnbookOne moves a desk to Free. Releasing an already-free desk is a
// no-op and succeeds.
func (s *BookingService) UnbookOne(ctx context.Context, id string) (*models.Desk, error) {
	desk, err := s.desks.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	if !desk.Booked {
		return desk, nil
	}

	released := *desk
	release(time.Now())(&released)

	saved, err := s.desks.Update(ctx, id, released)
	if err != nil {
		return nil, err
	}

	metrics.IncBooking("unbook")
	s.publishDeskEvent(events.EventDeskReleased, *saved)
	return saved, nil
}

// UnbookMany releases every desk matching the predicate via the facade's
// bulk update and inherits its non-atomicity: a PartialBulkError lists the
// desks already released when the backend failed.
func (s *BookingService) UnbookMany(ctx context.Context, match domain.DeskPredicate) ([]models.Desk, error) {
	released, err := s.desks.BulkUpdate(ctx, match, release(time.Now()))

	var partial *domain.PartialBulkError
	partialFailure := errors.As(err, &partial)
	if err == nil || partialFailure {
		metrics.IncBooking("bulk_release")
		s.publishJSON(events.EventDesksBulkReleased, events.BulkReleasePayload{
			Released:  len(released),
			Partial:   partialFailure,
			ChangedAt: time.Now(),
		})
	}

	return released, err
}

// UnbookByNames releases the desks whose names are in the given set.
func (s *BookingService) UnbookByNames(ctx context.Context, names ...string) ([]models.Desk, error) {
	return s.UnbookMany(ctx, MatchNames(names...))
}

// ReleaseHotDesks is the end-of-day sweep over every hotdesk-flagged desk.
func (s *BookingService) ReleaseHotDesks(ctx context.Context) ([]models.Desk, error) {
	return s.UnbookMany(ctx, MatchHotDesks())
}

// MatchNames selects desks by display name.
func MatchNames(names ...string) domain.DeskPredicate {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return func(d models.Desk) bool {
		_, ok := set[d.Name]
		return ok
	}
}

// MatchHotDesks selects desks eligible for bulk end-of-day release.
func MatchHotDesks() domain.DeskPredicate {
	return func(d models.Desk) bool {
		return d.HotDesk
	}
}

// release builds the Occupied -> Free field changes. Applying it to a
// free desk leaves the desk free.
func release(at time.Time) domain.DeskTransform {
	return func(d *models.Desk) {
		if !d.Booked {
			return
		}
		d.Booked = false
		d.UserEmail = ""
		d.SignOutTime = &at
	}
}

func (s *BookingService) publishDeskEvent(eventType string, desk models.Desk) {
	s.publishJSON(eventType, events.DeskEventPayload{
		DeskID:    desk.ID,
		DeskName:  desk.Name,
		Booked:    desk.Booked,
		UserEmail: desk.UserEmail,
		ChangedAt: time.Now(),
	})
}

func (s *BookingService) publishJSON(eventType string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}
