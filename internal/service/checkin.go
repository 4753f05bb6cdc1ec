package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"canteen-order-backend/internal/event"
	"canteen-order-backend/internal/model"
	"canteen-order-backend/internal/policy"
)

// CheckInInput carries the operator-declared context of a check-in.
type CheckInInput struct {
	CanteenID *int64
	Photo     []byte
}

// CheckInResult reports a check-in outcome. AlreadyCheckedIn marks the
// benign case where the reservation had been picked up before this call; the
// embedded reservation then carries the original check-in time and operator.
type CheckInResult struct {
	Reservation      *model.Reservation
	AlreadyCheckedIn bool
}

// CheckInByToken redeems a reservation by its exact qr token.
func (s *Service) CheckInByToken(ctx context.Context, operator Identity, token string, in CheckInInput) (*CheckInResult, error) {
	now := s.now().In(s.loc)

	r, err := s.store.GetReservationByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReservationNotFound
	}

	switch r.Status {
	case model.StatusPickedUp:
		return &CheckInResult{Reservation: r, AlreadyCheckedIn: true}, nil
	case model.StatusCancelled:
		return nil, ErrAlreadyCancelled
	case model.StatusNoShow:
		return nil, &AlreadyFinalError{Reservation: r}
	}

	cfg, err := s.store.GetCutoffConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s.finalizeCheckIn(ctx, operator, r, in, cfg, now)
}

// CheckInManual redeems a reservation found through a fuzzy identifier
// (external id, national id or name substring). Candidate selection:
//
//  1. yesterday's order, if its shift is overnight and its window still
//     reaches into today;
//  2. today's order, if inside its window;
//  3. today's order even outside its window, so the rejection names it
//     instead of reporting nothing to redeem;
//  4. yesterday's overnight order even after its window closed, for the
//     same reason.
func (s *Service) CheckInManual(ctx context.Context, operator Identity, identifier string, in CheckInInput) (*CheckInResult, error) {
	now := s.now().In(s.loc)

	user, err := s.store.FindUserByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	cfg, err := s.store.GetCutoffConfig(ctx)
	if err != nil {
		return nil, err
	}
	grace := time.Duration(cfg.CheckinGraceMinutes) * time.Minute

	today := policy.DateOf(now)
	yesterday := today.AddDate(0, 0, -1)

	todayOrder, err := s.store.FindOrderedReservation(ctx, user.ID, today)
	if err != nil {
		return nil, err
	}
	yesterdayOrder, err := s.store.FindOrderedReservation(ctx, user.ID, yesterday)
	if err != nil {
		return nil, err
	}

	var selected *model.Reservation
	switch {
	case yesterdayOrder != nil && yesterdayOrder.Shift.Overnight() && windowOpen(yesterdayOrder, now, grace):
		selected = yesterdayOrder
	case todayOrder != nil && windowOpen(todayOrder, now, grace):
		selected = todayOrder
	case todayOrder != nil:
		selected = todayOrder
	case yesterdayOrder != nil && yesterdayOrder.Shift.Overnight():
		selected = yesterdayOrder
	default:
		return nil, ErrNoActiveReservation
	}

	return s.finalizeCheckIn(ctx, operator, selected, in, cfg, now)
}

func windowOpen(r *model.Reservation, now time.Time, grace time.Duration) bool {
	dec, err := policy.EvaluateWindow(r.Shift, r.OrderDate, now, grace)
	return err == nil && dec.Allowed
}

// finalizeCheckIn runs the canteen guard and window validation, then drives
// the atomic ORDERED -> PICKED_UP transition. Losing the transition race
// resolves to the winner's state, never to a failure.
func (s *Service) finalizeCheckIn(ctx context.Context, operator Identity, r *model.Reservation, in CheckInInput, cfg model.CutoffConfig, now time.Time) (*CheckInResult, error) {
	if err := s.canteenGuard(ctx, r, in.CanteenID, cfg); err != nil {
		return nil, err
	}

	grace := time.Duration(cfg.CheckinGraceMinutes) * time.Minute
	dec, err := policy.EvaluateWindow(r.Shift, r.OrderDate, now, grace)
	if err != nil {
		return nil, err
	}
	if !dec.Allowed {
		return nil, &TimeWindowError{Reservation: r, Reason: dec.Reason, ClosesAt: dec.ClosesAt}
	}

	var photoRef *string
	if len(in.Photo) > 0 {
		ref, err := s.photos.Save(ctx, in.Photo)
		if err != nil {
			return nil, err
		}
		photoRef = &ref
	}

	operatorRef := operator.Ref()
	updated, err := s.store.MarkPickedUp(ctx, r.ID, now, operatorRef, photoRef)
	if err != nil {
		return nil, err
	}
	if !updated {
		// The saved photo references nothing once the transition is lost.
		if photoRef != nil {
			if err := s.photos.Remove(ctx, *photoRef); err != nil {
				s.logger.Warn("remove unreferenced check-in photo",
					zap.String("ref", *photoRef), zap.Error(err))
			}
		}
		return s.resolveLostRace(ctx, r.ID)
	}

	r.Status = model.StatusPickedUp
	r.CheckInTime = &now
	r.CheckedInBy = &operatorRef
	r.PhotoRef = photoRef

	s.emit(ctx, event.OrderCheckin, now, map[string]any{
		"reservation_id": r.ID,
		"user_id":        r.UserID,
		"shift_id":       r.ShiftID,
		"checked_in_by":  operatorRef,
	})
	s.logger.Info("reservation checked in",
		zap.Int64("reservation_id", r.ID),
		zap.Int64("user_id", r.UserID),
		zap.String("operator", operatorRef))

	return &CheckInResult{Reservation: r}, nil
}

// resolveLostRace reloads a reservation after a zero-rows conditional update
// and maps the observed terminal state to its benign outcome.
func (s *Service) resolveLostRace(ctx context.Context, id int64) (*CheckInResult, error) {
	current, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrReservationNotFound
	}
	switch current.Status {
	case model.StatusPickedUp:
		return &CheckInResult{Reservation: current, AlreadyCheckedIn: true}, nil
	case model.StatusCancelled:
		return nil, ErrAlreadyCancelled
	default:
		return nil, &AlreadyFinalError{Reservation: current}
	}
}

// canteenGuard rejects a check-in at the wrong location. Active only when
// enforcement is on and the request declares a canteen; reservations without
// a bound canteen are exempt.
func (s *Service) canteenGuard(ctx context.Context, r *model.Reservation, declared *int64, cfg model.CutoffConfig) error {
	if !cfg.EnforceCanteenCheckin || declared == nil || r.CanteenID == nil {
		return nil
	}
	if *r.CanteenID == *declared {
		return nil
	}

	name := ""
	if r.Canteen != nil {
		name = r.Canteen.Name
	} else if canteen, err := s.store.GetCanteen(ctx, *r.CanteenID); err == nil && canteen != nil {
		name = canteen.Name
	}
	return &LocationMismatchError{Canteen: name}
}
