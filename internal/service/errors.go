package service

import (
	"errors"
	"fmt"
	"time"

	"canteen-order-backend/internal/model"
)

// Flag-like business failures with no extra detail to carry.
var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrUserNotFound        = errors.New("no matching user found")
	ErrNoActiveReservation = errors.New("no active reservation to check in")
	ErrAlreadyCancelled    = errors.New("reservation has been cancelled")
	ErrShiftNotFound       = errors.New("shift not found")
	ErrShiftInactive       = errors.New("shift is not active")
	ErrCanteenNotFound     = errors.New("canteen not found")
)

// ValidationError reports malformed or out-of-range input. Always local,
// never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConflictError reports that a non-cancelled reservation already exists for
// the (user, date) pair.
type ConflictError struct {
	Existing *model.Reservation
}

func (e *ConflictError) Error() string {
	return "a reservation already exists for this date"
}

// CutoffError reports that the ordering (or cancellation) deadline has
// passed. CutoffAt is the computed boundary for client display; it is zero
// when the rejection has no single boundary instant (past date, excluded
// weekday).
type CutoffError struct {
	Reason   string
	CutoffAt time.Time
}

func (e *CutoffError) Error() string { return e.Reason }

// HolidayError reports that an active holiday blocks the date.
type HolidayError struct {
	Holiday model.Holiday
}

// Blanket reports whether the holiday applies to every shift on its date.
func (e *HolidayError) Blanket() bool { return e.Holiday.ShiftID == nil }

func (e *HolidayError) Error() string {
	if e.Blanket() {
		return fmt.Sprintf("no orders on %s (%s)", e.Holiday.Date.Format("2006-01-02"), e.Holiday.Name)
	}
	return fmt.Sprintf("this shift is not served on %s (%s)", e.Holiday.Date.Format("2006-01-02"), e.Holiday.Name)
}

// CapacityError reports that the canteen's daily capacity for the shift is
// exhausted.
type CapacityError struct {
	Canteen string
	Limit   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("canteen %s is fully booked (capacity %d)", e.Canteen, e.Limit)
}

// TimeWindowError reports a check-in outside the shift's service window.
// Reservation names the reservation the rejection is about, so operators see
// which order was refused.
type TimeWindowError struct {
	Reservation *model.Reservation
	Reason      string
	ClosesAt    time.Time
}

func (e *TimeWindowError) Error() string { return e.Reason }

// LocationMismatchError reports a check-in at the wrong canteen. Canteen is
// the name of the reservation's bound location, for operator redirection.
type LocationMismatchError struct {
	Canteen string
}

func (e *LocationMismatchError) Error() string {
	return fmt.Sprintf("reservation must be collected at %s", e.Canteen)
}

// AlreadyFinalError is the benign outcome of racing against a transition
// that already completed: the observed terminal state is returned instead of
// failing.
type AlreadyFinalError struct {
	Reservation *model.Reservation
}

func (e *AlreadyFinalError) Error() string {
	return fmt.Sprintf("reservation is already %s", e.Reservation.Status)
}
