package model

import "time"

// Canteen is a physical pickup location. DailyCapacity, when set, caps the
// number of non-cancelled reservations per (canteen, shift, date).
type Canteen struct {
	ID            int64  `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	DailyCapacity *int   `json:"daily_capacity,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Holiday blocks ordering for a date. A nil ShiftID blocks every shift on
// that date; otherwise only the referenced shift.
type Holiday struct {
	ID       int64     `gorm:"primaryKey" json:"id"`
	Name     string    `gorm:"size:128;not null" json:"name"`
	Date     time.Time `gorm:"index;not null" json:"date"`
	ShiftID  *int64    `json:"shift_id,omitempty"`
	IsActive bool      `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is a canteen patron. ExternalID and NationalID are the identifiers
// accepted for manual check-in lookup, in that priority order, before a
// case-insensitive name match.
type User struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"size:256;not null" json:"name"`
	ExternalID string `gorm:"uniqueIndex;size:64" json:"external_id"`
	NationalID string `gorm:"index;size:64" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
