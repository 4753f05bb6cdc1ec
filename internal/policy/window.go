package policy

import (
	"time"

	"canteen-order-backend/internal/model"
)

// WindowDecision is the outcome of a check-in window evaluation. ClosesAt is
// set when the window has a concrete closing instant.
type WindowDecision struct {
	Allowed  bool
	Reason   string
	ClosesAt time.Time
}

// EvaluateWindow decides whether a reservation for orderDate on the given
// shift may be checked in at instant now. A regular shift is redeemable on
// its own calendar date only. An overnight shift additionally remains
// redeemable on the following day until its end time of day (plus grace)
// rolled into that day.
func EvaluateWindow(shift model.Shift, orderDate, now time.Time, grace time.Duration) (WindowDecision, error) {
	day := DateOf(orderDate.In(now.Location()))
	today := DateOf(now)

	if SameDate(day, today) {
		return WindowDecision{Allowed: true}, nil
	}

	if shift.Overnight() && SameDate(day, today.AddDate(0, 0, -1)) {
		endMin, err := shift.EndMinutes()
		if err != nil {
			return WindowDecision{}, err
		}
		closesAt := today.Add(time.Duration(endMin)*time.Minute + grace)
		if now.Before(closesAt) {
			return WindowDecision{Allowed: true, ClosesAt: closesAt}, nil
		}
		return WindowDecision{Reason: "shift service window has ended", ClosesAt: closesAt}, nil
	}

	return WindowDecision{Reason: "reservation is not redeemable today"}, nil
}
