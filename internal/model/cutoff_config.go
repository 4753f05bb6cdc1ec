package model

import (
	"strconv"
	"strings"
	"time"
)

// CutoffMode selects which ordering-deadline regime is active.
type CutoffMode string

const (
	CutoffPerShift CutoffMode = "PER_SHIFT"
	CutoffWeekly   CutoffMode = "WEEKLY"
)

// CutoffConfig is the single-row ordering policy. It is read fresh from the
// store on every request and passed explicitly into the policy functions.
type CutoffConfig struct {
	ID   int64      `gorm:"primaryKey" json:"id"`
	Mode CutoffMode `gorm:"size:16;not null" json:"mode"`

	// PER_SHIFT: the cutoff sits CutoffDays days + CutoffHours hours before
	// the shift start, and orders may reach at most MaxOrderDaysAhead days
	// into the future.
	CutoffDays        int `gorm:"not null;default:0" json:"cutoff_days"`
	CutoffHours       int `gorm:"not null;default:0" json:"cutoff_hours"`
	MaxOrderDaysAhead int `gorm:"not null;default:7" json:"max_order_days_ahead"`

	// WEEKLY: a weekly anchor (weekday 0=Sunday..6=Saturday, as time.Weekday)
	// in the week before the order's week, plus the set of orderable weekdays
	// as a comma-separated list of weekday numbers.
	WeeklyCutoffDay    int    `gorm:"not null;default:4" json:"weekly_cutoff_day"`
	WeeklyCutoffHour   int    `gorm:"not null;default:12" json:"weekly_cutoff_hour"`
	WeeklyCutoffMinute int    `gorm:"not null;default:0" json:"weekly_cutoff_minute"`
	OrderableDays      string `gorm:"size:32;not null;default:'1,2,3,4,5'" json:"orderable_days"`
	MaxWeeksAhead      int    `gorm:"not null;default:2" json:"max_weeks_ahead"`

	// EnforceCanteenCheckin gates whether a check-in must happen at the
	// reservation's bound canteen.
	EnforceCanteenCheckin bool `gorm:"not null;default:false" json:"enforce_canteen_checkin"`

	// CheckinGraceMinutes extends the overnight service window past the
	// shift end when resolving yesterday's reservations.
	CheckinGraceMinutes int `gorm:"not null;default:0" json:"checkin_grace_minutes"`

	UpdatedAt time.Time `json:"updated_at"`
}

// OrderableOn reports whether the weekly regime accepts orders for the given
// weekday. An empty OrderableDays list accepts none.
func (c CutoffConfig) OrderableOn(d time.Weekday) bool {
	for _, part := range strings.Split(c.OrderableDays, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if time.Weekday(n) == d {
			return true
		}
	}
	return false
}
