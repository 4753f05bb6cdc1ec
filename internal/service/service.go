// Package service implements the order admission, check-in and cancellation
// controllers on top of the store, the pure policy functions and the event
// notifier.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"canteen-order-backend/internal/event"
	"canteen-order-backend/internal/model"
	"canteen-order-backend/internal/photo"
	"canteen-order-backend/internal/store"
)

// Identity is the caller as supplied by the identity provider. It is
// trusted verbatim.
type Identity struct {
	UserID int64
	Role   string
}

// Ref is the audit form of the identity, e.g. "staff:12".
func (i Identity) Ref() string {
	return fmt.Sprintf("%s:%d", i.Role, i.UserID)
}

// Staff reports whether the identity may act on other users' reservations.
func (i Identity) Staff() bool {
	return i.Role == "staff" || i.Role == "admin"
}

// TokenRenderer turns the opaque qr token into a displayable encoding. The
// core never embeds rendering logic.
type TokenRenderer interface {
	Render(token string) string
}

// URLRenderer renders the token as a claim URL.
type URLRenderer struct {
	BaseURL string
}

func (r URLRenderer) Render(token string) string {
	return r.BaseURL + token
}

// Service wires the controllers' dependencies. The now func exists so tests
// can pin the clock; each operation captures it exactly once.
type Service struct {
	store    store.Store
	notifier event.Notifier
	photos   photo.Store
	renderer TokenRenderer
	logger   *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

// New creates a Service. loc is the canteen's civil time zone; every
// calendar decision (today, yesterday, cutoffs) is made in it.
func New(st store.Store, notifier event.Notifier, photos photo.Store, renderer TokenRenderer, logger *zap.Logger, loc *time.Location) *Service {
	return &Service{
		store:    st,
		notifier: notifier,
		photos:   photos,
		renderer: renderer,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
	}
}

// GetReservation fetches one reservation. Non-staff callers only see their
// own; anything else reads as not found rather than leaking existence.
func (s *Service) GetReservation(ctx context.Context, actor Identity, id int64) (*model.Reservation, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReservationNotFound
	}
	if !actor.Staff() && r.UserID != actor.UserID {
		return nil, ErrReservationNotFound
	}
	return r, nil
}
