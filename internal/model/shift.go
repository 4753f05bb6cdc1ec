package model

import (
	"fmt"
	"time"
)

// Shift is a time-boxed meal service (e.g. lunch 11:30-14:00). Start and end
// are times of day in "15:04" form; an end earlier than the start means the
// shift crosses midnight.
type Shift struct {
	ID        int64   `gorm:"primaryKey" json:"id"`
	Name      string  `gorm:"size:128;not null" json:"name"`
	StartTime string  `gorm:"size:5;not null" json:"start_time"`
	EndTime   string  `gorm:"size:5;not null" json:"end_time"`
	MealPrice float64 `gorm:"not null" json:"meal_price"`
	IsActive  bool    `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParseClock parses a "15:04" time-of-day into minutes since midnight.
func ParseClock(v string) (int, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", v, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// StartMinutes returns the shift start as minutes since midnight.
func (s Shift) StartMinutes() (int, error) { return ParseClock(s.StartTime) }

// EndMinutes returns the shift end as minutes since midnight.
func (s Shift) EndMinutes() (int, error) { return ParseClock(s.EndTime) }

// Overnight reports whether the shift's service window crosses midnight,
// i.e. its end time of day is numerically earlier than its start.
func (s Shift) Overnight() bool {
	start, err1 := s.StartMinutes()
	end, err2 := s.EndMinutes()
	if err1 != nil || err2 != nil {
		return false
	}
	return end < start
}
