package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"canteen-order-backend/internal/event"
	"canteen-order-backend/internal/model"
	"canteen-order-backend/internal/policy"
)

// CreateInput is a request to reserve one meal.
type CreateInput struct {
	ShiftID   int64
	OrderDate time.Time
	CanteenID *int64
}

// CreateResult is the persisted reservation plus the rendered token for
// immediate display.
type CreateResult struct {
	Reservation *model.Reservation
	TokenView   string
}

// CreateReservation admits a new order for the given user. Checks run in a
// fixed order: past date, duplicate, holiday, shift active, cutoff,
// capacity. All rejections are business outcomes; only storage failures
// propagate as plain errors.
func (s *Service) CreateReservation(ctx context.Context, user Identity, in CreateInput) (*CreateResult, error) {
	now := s.now().In(s.loc)
	day := policy.DateOf(in.OrderDate.In(s.loc))

	if day.Before(policy.DateOf(now)) {
		return nil, &ValidationError{Msg: "order date is in the past"}
	}

	if existing, err := s.store.FindActiveReservation(ctx, user.UserID, day); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &ConflictError{Existing: existing}
	}

	if holiday, err := s.store.FindActiveHoliday(ctx, day, in.ShiftID); err != nil {
		return nil, err
	} else if holiday != nil {
		return nil, &HolidayError{Holiday: *holiday}
	}

	shift, err := s.store.GetShift(ctx, in.ShiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, ErrShiftNotFound
	}
	if !shift.IsActive {
		return nil, ErrShiftInactive
	}

	cfg, err := s.store.GetCutoffConfig(ctx)
	if err != nil {
		return nil, err
	}
	dec, err := policy.EvaluateCutoff(cfg, *shift, day, now)
	if err != nil {
		return nil, err
	}
	if !dec.Allowed {
		return nil, &CutoffError{Reason: dec.Reason, CutoffAt: dec.CutoffAt}
	}

	if in.CanteenID != nil {
		if err := s.checkCapacity(ctx, *in.CanteenID, in.ShiftID, day); err != nil {
			return nil, err
		}
	}

	r := &model.Reservation{
		UserID:    user.UserID,
		ShiftID:   in.ShiftID,
		CanteenID: in.CanteenID,
		OrderDate: day,
		Status:    model.StatusOrdered,
		QRToken:   uuid.NewString(),
		MealPrice: shift.MealPrice,
	}
	if err := s.store.CreateReservation(ctx, r); err != nil {
		// The partial unique index on (user_id, order_date) is the backstop
		// for concurrent duplicate creates.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, lookupErr := s.store.FindActiveReservation(ctx, user.UserID, day)
			if lookupErr == nil && existing != nil {
				return nil, &ConflictError{Existing: existing}
			}
			return nil, &ConflictError{}
		}
		return nil, err
	}
	r.Shift = *shift

	s.emit(ctx, event.OrderCreated, now, map[string]any{
		"reservation_id": r.ID,
		"user_id":        r.UserID,
		"shift_id":       r.ShiftID,
		"canteen_id":     r.CanteenID,
		"order_date":     day.Format("2006-01-02"),
	})
	s.logger.Info("reservation created",
		zap.Int64("reservation_id", r.ID),
		zap.Int64("user_id", r.UserID),
		zap.Int64("shift_id", r.ShiftID),
		zap.String("order_date", day.Format("2006-01-02")))

	return &CreateResult{Reservation: r, TokenView: s.renderer.Render(r.QRToken)}, nil
}

func (s *Service) checkCapacity(ctx context.Context, canteenID, shiftID int64, day time.Time) error {
	canteen, err := s.store.GetCanteen(ctx, canteenID)
	if err != nil {
		return err
	}
	if canteen == nil {
		return ErrCanteenNotFound
	}
	if canteen.DailyCapacity == nil {
		return nil
	}

	count, err := s.store.CountActiveReservations(ctx, canteenID, shiftID, day)
	if err != nil {
		return err
	}
	if count >= int64(*canteen.DailyCapacity) {
		return &CapacityError{Canteen: canteen.Name, Limit: *canteen.DailyCapacity}
	}
	return nil
}

// emit hands a domain event to the notifier. Best effort only.
func (s *Service) emit(ctx context.Context, name string, at time.Time, payload map[string]any) {
	s.notifier.Notify(ctx, event.Event{Name: name, Payload: payload, Timestamp: at})
}
