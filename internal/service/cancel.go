package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"canteen-order-backend/internal/event"
	"canteen-order-backend/internal/model"
	"canteen-order-backend/internal/policy"
)

// CancelReservation withdraws an ORDERED reservation. The cancellation
// deadline is the ordering cutoff of the reservation's own shift and date:
// too late to cancel means too late to have ordered.
func (s *Service) CancelReservation(ctx context.Context, actor Identity, id int64, reason string) (*model.Reservation, error) {
	now := s.now().In(s.loc)

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
	if r.Status != model.StatusOrdered {
		return nil, &AlreadyFinalError{Reservation: r}
	}

	cfg, err := s.store.GetCutoffConfig(ctx)
	if err != nil {
		return nil, err
	}
	dec, err := policy.EvaluateCutoff(cfg, r.Shift, r.OrderDate, now)
	if err != nil {
		return nil, err
	}
	if !dec.Allowed {
		return nil, &CutoffError{Reason: dec.Reason, CutoffAt: dec.CutoffAt}
	}

	if reason == "" {
		reason = defaultCancelReason(actor)
	}
	actorRef := actor.Ref()
	audit := fmt.Sprintf("cancelled by %s at %s", actorRef, now.Format(time.RFC3339))

	updated, err := s.store.MarkCancelled(ctx, r.ID, now, actorRef, reason, audit)
	if err != nil {
		return nil, err
	}
	if !updated {
		current, err := s.store.GetReservation(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrReservationNotFound
		}
		return nil, &AlreadyFinalError{Reservation: current}
	}

	r.Status = model.StatusCancelled
	r.CancelledBy = &actorRef
	r.CancelReason = &reason
	r.AuditNote = &audit

	s.emit(ctx, event.OrderCancelled, now, map[string]any{
		"reservation_id": r.ID,
		"user_id":        r.UserID,
		"shift_id":       r.ShiftID,
		"cancelled_by":   actorRef,
		"reason":         reason,
	})
	s.logger.Info("reservation cancelled",
		zap.Int64("reservation_id", r.ID),
		zap.Int64("user_id", r.UserID),
		zap.String("actor", actorRef),
		zap.String("reason", reason))

	return r, nil
}

func defaultCancelReason(actor Identity) string {
	if actor.Staff() {
		return "cancelled by canteen staff"
	}
	return "cancelled by owner"
}
