package model

import "time"

// ReservationStatus enumerates the lifecycle states of a meal reservation.
type ReservationStatus string

const (
	StatusOrdered   ReservationStatus = "ORDERED"
	StatusPickedUp  ReservationStatus = "PICKED_UP"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusNoShow    ReservationStatus = "NO_SHOW"
)

// Terminal reports whether no further status transition is permitted.
func (s ReservationStatus) Terminal() bool {
	return s == StatusPickedUp || s == StatusCancelled || s == StatusNoShow
}

// Reservation is a user's claim on one meal for one shift on one date.
// At most one non-cancelled reservation may exist per (user, order_date).
type Reservation struct {
	ID        int64             `gorm:"primaryKey" json:"id"`
	UserID    int64             `gorm:"index:idx_reservation_user_date;not null" json:"user_id"`
	ShiftID   int64             `gorm:"not null" json:"shift_id"`
	CanteenID *int64            `gorm:"index" json:"canteen_id,omitempty"`
	OrderDate time.Time         `gorm:"index:idx_reservation_user_date;not null" json:"order_date"`
	Status    ReservationStatus `gorm:"size:16;not null;index" json:"status"`

	// QRToken is generated once at creation and never changes.
	QRToken string `gorm:"uniqueIndex;size:64;not null" json:"-"`

	// MealPrice is snapshotted from the shift at creation time.
	MealPrice float64 `gorm:"not null" json:"meal_price"`

	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckedInBy  *string    `gorm:"size:128" json:"checked_in_by,omitempty"`
	PhotoRef     *string    `gorm:"size:256" json:"photo_ref,omitempty"`
	CancelledBy  *string    `gorm:"size:128" json:"cancelled_by,omitempty"`
	CancelReason *string    `gorm:"size:512" json:"cancel_reason,omitempty"`
	AuditNote    *string    `gorm:"size:512" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	User    User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Shift   Shift    `json:"shift"`
	Canteen *Canteen `json:"canteen,omitempty"`
}
