package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"canteen-order-backend/internal/model"
)

// Store defines the interface for all database operations.
//
// The Mark* methods are conditional updates guarded on the current status:
// they report false when zero rows were affected because a concurrent caller
// already moved the reservation into a terminal state. That zero-rows branch
// is the correctness backstop for every state transition.
type Store interface {
	DB() *gorm.DB

	GetCutoffConfig(ctx context.Context) (model.CutoffConfig, error)
	GetShift(ctx context.Context, id int64) (*model.Shift, error)
	ListShifts(ctx context.Context) ([]model.Shift, error)
	GetCanteen(ctx context.Context, id int64) (*model.Canteen, error)
	ListCanteens(ctx context.Context) ([]model.Canteen, error)
	FindActiveHoliday(ctx context.Context, date time.Time, shiftID int64) (*model.Holiday, error)

	GetUser(ctx context.Context, id int64) (*model.User, error)
	FindUserByIdentifier(ctx context.Context, identifier string) (*model.User, error)

	CreateReservation(ctx context.Context, r *model.Reservation) error
	GetReservation(ctx context.Context, id int64) (*model.Reservation, error)
	GetReservationByToken(ctx context.Context, token string) (*model.Reservation, error)
	FindActiveReservation(ctx context.Context, userID int64, date time.Time) (*model.Reservation, error)
	FindOrderedReservation(ctx context.Context, userID int64, date time.Time) (*model.Reservation, error)
	CountActiveReservations(ctx context.Context, canteenID, shiftID int64, date time.Time) (int64, error)

	MarkPickedUp(ctx context.Context, id int64, at time.Time, operator string, photoRef *string) (bool, error)
	MarkCancelled(ctx context.Context, id int64, at time.Time, actor, reason, audit string) (bool, error)
	MarkNoShow(ctx context.Context, id int64) (bool, error)

	SaveSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForUser(ctx context.Context, userID int64) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// GetCutoffConfig reads the single policy row. It is intentionally not
// cached: controllers must see configuration changes on the next request.
func (s *gormStore) GetCutoffConfig(ctx context.Context) (model.CutoffConfig, error) {
	var cfg model.CutoffConfig
	if err := s.db.WithContext(ctx).Order("id").First(&cfg).Error; err != nil {
		return model.CutoffConfig{}, fmt.Errorf("load cutoff config: %w", err)
	}
	return cfg, nil
}

func (s *gormStore) GetShift(ctx context.Context, id int64) (*model.Shift, error) {
	var shift model.Shift
	if err := s.db.WithContext(ctx).First(&shift, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shift, nil
}

func (s *gormStore) ListShifts(ctx context.Context) ([]model.Shift, error) {
	var shifts []model.Shift
	err := s.db.WithContext(ctx).Order("start_time").Find(&shifts).Error
	return shifts, err
}

func (s *gormStore) GetCanteen(ctx context.Context, id int64) (*model.Canteen, error) {
	var canteen model.Canteen
	if err := s.db.WithContext(ctx).First(&canteen, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &canteen, nil
}

func (s *gormStore) ListCanteens(ctx context.Context) ([]model.Canteen, error) {
	var canteens []model.Canteen
	err := s.db.WithContext(ctx).Order("name").Find(&canteens).Error
	return canteens, err
}

// FindActiveHoliday returns the first active holiday matching the date that
// is either blanket (no shift scope) or scoped to the given shift. Blanket
// holidays win so the caller's message names the whole day.
func (s *gormStore) FindActiveHoliday(ctx context.Context, date time.Time, shiftID int64) (*model.Holiday, error) {
	var holiday model.Holiday
	err := s.db.WithContext(ctx).
		Where("date = ? AND is_active = ? AND (shift_id IS NULL OR shift_id = ?)", date, true, shiftID).
		Order("shift_id NULLS FIRST").
		First(&holiday).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &holiday, nil
}

func (s *gormStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByIdentifier tries the manual-lookup strategies in fixed priority
// order: exact external id, exact national id, then case-insensitive name
// substring. The first strategy with a hit wins.
func (s *gormStore) FindUserByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}

	lookups := []func(*gorm.DB) *gorm.DB{
		func(q *gorm.DB) *gorm.DB { return q.Where("external_id = ?", identifier) },
		func(q *gorm.DB) *gorm.DB { return q.Where("national_id = ?", identifier) },
		func(q *gorm.DB) *gorm.DB {
			return q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(identifier)+"%")
		},
	}

	for _, lookup := range lookups {
		var user model.User
		err := lookup(s.db.WithContext(ctx).Model(&model.User{})).Order("id").First(&user).Error
		if err == nil {
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

func (s *gormStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *gormStore) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	var r model.Reservation
	err := s.db.WithContext(ctx).Preload("Shift").Preload("Canteen").First(&r, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (s *gormStore) GetReservationByToken(ctx context.Context, token string) (*model.Reservation, error) {
	var r model.Reservation
	err := s.db.WithContext(ctx).Preload("Shift").Preload("Canteen").
		Where("qr_token = ?", token).First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// FindActiveReservation returns the user's non-cancelled reservation for the
// date, if any. Feeds the duplicate check of order admission.
func (s *gormStore) FindActiveReservation(ctx context.Context, userID int64, date time.Time) (*model.Reservation, error) {
	var r model.Reservation
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND order_date = ? AND status <> ?", userID, date, model.StatusCancelled).
		First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// FindOrderedReservation returns the user's still-ORDERED reservation for
// the date, with shift and canteen loaded for window and location checks.
func (s *gormStore) FindOrderedReservation(ctx context.Context, userID int64, date time.Time) (*model.Reservation, error) {
	var r model.Reservation
	err := s.db.WithContext(ctx).Preload("Shift").Preload("Canteen").
		Where("user_id = ? AND order_date = ? AND status = ?", userID, date, model.StatusOrdered).
		First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (s *gormStore) CountActiveReservations(ctx context.Context, canteenID, shiftID int64, date time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("canteen_id = ? AND shift_id = ? AND order_date = ? AND status <> ?",
			canteenID, shiftID, date, model.StatusCancelled).
		Count(&count).Error
	return count, err
}

// MarkPickedUp atomically moves a reservation from ORDERED to PICKED_UP.
func (s *gormStore) MarkPickedUp(ctx context.Context, id int64, at time.Time, operator string, photoRef *string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("id = ? AND status = ?", id, model.StatusOrdered).
		Updates(map[string]any{
			"status":        model.StatusPickedUp,
			"check_in_time": at,
			"checked_in_by": operator,
			"photo_ref":     photoRef,
		})
	return res.RowsAffected > 0, res.Error
}

// MarkCancelled atomically moves a reservation from ORDERED to CANCELLED.
func (s *gormStore) MarkCancelled(ctx context.Context, id int64, at time.Time, actor, reason, audit string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("id = ? AND status = ?", id, model.StatusOrdered).
		Updates(map[string]any{
			"status":        model.StatusCancelled,
			"cancelled_by":  actor,
			"cancel_reason": reason,
			"audit_note":    audit,
			"updated_at":    at,
		})
	return res.RowsAffected > 0, res.Error
}

// MarkNoShow is the conditional primitive the external stale-order sweep
// uses; it obeys the same ORDERED guard as the other transitions.
func (s *gormStore) MarkNoShow(ctx context.Context, id int64) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("id = ? AND status = ?", id, model.StatusOrdered).
		Update("status", model.StatusNoShow)
	return res.RowsAffected > 0, res.Error
}

func (s *gormStore) SaveSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

func (s *gormStore) SubscriptionsForUser(ctx context.Context, userID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}
