package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen-order-backend/internal/model"
)

func mustTime(t *testing.T, v string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", v)
	require.NoError(t, err)
	return parsed
}

func TestEvaluateCutoff_PerShift(t *testing.T) {
	cfg := model.CutoffConfig{
		Mode:              model.CutoffPerShift,
		CutoffDays:        0,
		CutoffHours:       6,
		MaxOrderDaysAhead: 7,
	}
	breakfast := model.Shift{StartTime: "08:00", EndTime: "10:00"}

	testCases := []struct {
		name         string
		orderDate    string
		now          string
		allowed      bool
		wantCutoffAt string
	}{
		{
			name:         "two minutes before cutoff",
			orderDate:    "2025-03-10 00:00",
			now:          "2025-03-10 01:59",
			allowed:      true,
			wantCutoffAt: "2025-03-10 02:00",
		},
		{
			name:         "one minute after cutoff",
			orderDate:    "2025-03-10 00:00",
			now:          "2025-03-10 02:01",
			allowed:      false,
			wantCutoffAt: "2025-03-10 02:00",
		},
		{
			name:         "exactly at cutoff is closed",
			orderDate:    "2025-03-10 00:00",
			now:          "2025-03-10 02:00",
			allowed:      false,
			wantCutoffAt: "2025-03-10 02:00",
		},
		{
			name:      "order date in the past",
			orderDate: "2025-03-09 00:00",
			now:       "2025-03-10 01:00",
			allowed:   false,
		},
		{
			name:      "order date beyond max days ahead",
			orderDate: "2025-03-18 00:00",
			now:       "2025-03-10 01:00",
			allowed:   false,
		},
		{
			name:         "last allowed day ahead",
			orderDate:    "2025-03-17 00:00",
			now:          "2025-03-10 01:00",
			allowed:      true,
			wantCutoffAt: "2025-03-17 02:00",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dec, err := EvaluateCutoff(cfg, breakfast, mustTime(t, tc.orderDate), mustTime(t, tc.now))
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, dec.Allowed)
			if tc.wantCutoffAt != "" {
				assert.Equal(t, mustTime(t, tc.wantCutoffAt), dec.CutoffAt)
			}
			if !tc.allowed {
				assert.NotEmpty(t, dec.Reason)
			}
		})
	}
}

func TestEvaluateCutoff_PerShiftDayOffset(t *testing.T) {
	cfg := model.CutoffConfig{
		Mode:              model.CutoffPerShift,
		CutoffDays:        1,
		CutoffHours:       2,
		MaxOrderDaysAhead: 7,
	}
	lunch := model.Shift{StartTime: "12:00", EndTime: "14:00"}

	// Cutoff for Wednesday lunch is Tuesday 10:00.
	dec, err := EvaluateCutoff(cfg, lunch, mustTime(t, "2025-03-12 00:00"), mustTime(t, "2025-03-11 09:59"))
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Equal(t, mustTime(t, "2025-03-11 10:00"), dec.CutoffAt)

	dec, err = EvaluateCutoff(cfg, lunch, mustTime(t, "2025-03-12 00:00"), mustTime(t, "2025-03-11 10:01"))
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
}

func TestEvaluateCutoff_Weekly(t *testing.T) {
	// Anchor: Thursday 12:00 in the week before the order's week.
	// Orderable Monday through Friday.
	cfg := model.CutoffConfig{
		Mode:               model.CutoffWeekly,
		WeeklyCutoffDay:    int(time.Thursday),
		WeeklyCutoffHour:   12,
		WeeklyCutoffMinute: 0,
		OrderableDays:      "1,2,3,4,5",
		MaxWeeksAhead:      2,
	}
	shift := model.Shift{StartTime: "12:00", EndTime: "14:00"}

	testCases := []struct {
		name      string
		orderDate string // 2025-03-17 is a Monday
		now       string
		allowed   bool
	}{
		{
			name:      "before anchor of order week",
			orderDate: "2025-03-17 00:00",
			now:       "2025-03-13 11:59", // Thursday before noon
			allowed:   true,
		},
		{
			name:      "after anchor of order week",
			orderDate: "2025-03-17 00:00",
			now:       "2025-03-13 12:01",
			allowed:   false,
		},
		{
			name:      "excluded weekday rejected regardless of time",
			orderDate: "2025-03-16 00:00", // a Sunday
			now:       "2025-03-03 08:00",
			allowed:   false,
		},
		{
			name:      "beyond max weeks ahead",
			orderDate: "2025-03-31 00:00",
			now:       "2025-03-05 08:00",
			allowed:   false,
		},
		{
			name:      "within max weeks ahead",
			orderDate: "2025-03-24 00:00",
			now:       "2025-03-10 08:00",
			allowed:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dec, err := EvaluateCutoff(cfg, shift, mustTime(t, tc.orderDate), mustTime(t, tc.now))
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, dec.Allowed)
		})
	}
}

func TestEvaluateCutoff_WeeklyAcrossDSTChange(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	cfg := model.CutoffConfig{
		Mode:             model.CutoffWeekly,
		WeeklyCutoffDay:  int(time.Thursday),
		WeeklyCutoffHour: 12,
		OrderableDays:    "1,2,3,4,5",
		MaxWeeksAhead:    1,
	}
	shift := model.Shift{StartTime: "12:00", EndTime: "14:00"}

	// Clocks jump forward on 2025-03-30, so the span between these two
	// Mondays is an hour short of two full weeks.
	now := time.Date(2025, 3, 24, 8, 0, 0, 0, berlin)

	dec, err := EvaluateCutoff(cfg, shift, time.Date(2025, 4, 7, 0, 0, 0, 0, berlin), now)
	require.NoError(t, err)
	assert.False(t, dec.Allowed, "two weeks ahead must stay beyond max_weeks_ahead=1 across the DST change")

	dec, err = EvaluateCutoff(cfg, shift, time.Date(2025, 3, 31, 0, 0, 0, 0, berlin), now)
	require.NoError(t, err)
	assert.True(t, dec.Allowed, "one week ahead stays within the limit")
}

func TestEvaluateCutoff_UnknownMode(t *testing.T) {
	_, err := EvaluateCutoff(model.CutoffConfig{Mode: "MONTHLY"}, model.Shift{StartTime: "08:00"}, mustTime(t, "2025-03-12 00:00"), mustTime(t, "2025-03-10 00:00"))
	assert.Error(t, err)
}
