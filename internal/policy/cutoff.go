// Package policy holds the pure ordering-deadline and service-window rules.
// Every function takes its configuration and the request's captured "now"
// explicitly and performs no I/O.
package policy

import (
	"fmt"
	"math"
	"time"

	"canteen-order-backend/internal/model"
)

// Decision is the outcome of a cutoff evaluation. CutoffAt carries the
// computed boundary instant when one applies, so callers can display it.
type Decision struct {
	Allowed  bool
	Reason   string
	CutoffAt time.Time
}

// DateOf truncates t to midnight in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// weekStart returns the Monday 00:00 of the week containing day.
func weekStart(day time.Time) time.Time {
	d := DateOf(day)
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -back)
}

// EvaluateCutoff decides whether orderDate/shift is still open for ordering
// (and, by the same rule, for cancelling) at instant now. The active mode of
// cfg selects the regime. An error means the configuration or shift times are
// corrupted; that is a fatal condition, not a policy rejection.
func EvaluateCutoff(cfg model.CutoffConfig, shift model.Shift, orderDate, now time.Time) (Decision, error) {
	day := DateOf(orderDate.In(now.Location()))
	today := DateOf(now)

	if day.Before(today) {
		return Decision{Reason: "order date is in the past"}, nil
	}

	switch cfg.Mode {
	case model.CutoffPerShift:
		return perShiftCutoff(cfg, shift, day, today, now)
	case model.CutoffWeekly:
		return weeklyCutoff(cfg, day, today, now)
	default:
		return Decision{}, fmt.Errorf("unknown cutoff mode %q", cfg.Mode)
	}
}

func perShiftCutoff(cfg model.CutoffConfig, shift model.Shift, day, today, now time.Time) (Decision, error) {
	if cfg.MaxOrderDaysAhead >= 0 && day.After(today.AddDate(0, 0, cfg.MaxOrderDaysAhead)) {
		return Decision{Reason: fmt.Sprintf("orders may be placed at most %d days ahead", cfg.MaxOrderDaysAhead)}, nil
	}

	startMin, err := shift.StartMinutes()
	if err != nil {
		return Decision{}, err
	}
	shiftStart := day.Add(time.Duration(startMin) * time.Minute)
	cutoff := shiftStart.
		Add(-time.Duration(cfg.CutoffDays) * 24 * time.Hour).
		Add(-time.Duration(cfg.CutoffHours) * time.Hour)

	if !now.Before(cutoff) {
		return Decision{Reason: "ordering deadline has passed", CutoffAt: cutoff}, nil
	}
	return Decision{Allowed: true, CutoffAt: cutoff}, nil
}

// weeklyCutoff anchors the deadline at the configured weekday/time in the
// week preceding the order's week: orders for week W close at that anchor.
func weeklyCutoff(cfg model.CutoffConfig, day, today, now time.Time) (Decision, error) {
	if !cfg.OrderableOn(day.Weekday()) {
		return Decision{Reason: fmt.Sprintf("ordering is not available on %s", day.Weekday())}, nil
	}

	orderWeek := weekStart(day)
	currentWeek := weekStart(today)
	// A week spanning a DST change is not exactly 168h; round to the
	// nearest whole week instead of truncating.
	weeksAhead := int(math.Round(orderWeek.Sub(currentWeek).Hours() / (24 * 7)))
	if cfg.MaxWeeksAhead >= 0 && weeksAhead > cfg.MaxWeeksAhead {
		return Decision{Reason: fmt.Sprintf("orders may be placed at most %d weeks ahead", cfg.MaxWeeksAhead)}, nil
	}

	fromMonday := (cfg.WeeklyCutoffDay + 6) % 7
	anchor := orderWeek.AddDate(0, 0, -7+fromMonday).
		Add(time.Duration(cfg.WeeklyCutoffHour) * time.Hour).
		Add(time.Duration(cfg.WeeklyCutoffMinute) * time.Minute)

	if !now.Before(anchor) {
		return Decision{Reason: "weekly ordering deadline has passed", CutoffAt: anchor}, nil
	}
	return Decision{Allowed: true, CutoffAt: anchor}, nil
}
