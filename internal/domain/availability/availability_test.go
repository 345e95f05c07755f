package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnjpremium/internal/domain/shared/timeofday"
)

func mustParse(t *testing.T, s string) timeofday.Minutes {
	t.Helper()
	m, err := timeofday.Parse(s)
	require.NoError(t, err)
	return m
}

func window(t *testing.T, start, end string) Window {
	t.Helper()
	return Window{Start: mustParse(t, start), End: mustParse(t, end)}
}

func weekdayProfile(t *testing.T, day time.Weekday, windows ...Window) Profile {
	t.Helper()
	return Profile{Weekly: map[time.Weekday][]Window{day: windows}}
}

func TestIsAvailableWeeklyWindow(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, date.Weekday())
	profile := weekdayProfile(t, time.Monday, window(t, "09:00", "18:00"))

	assert.True(t, IsAvailable(profile, date, mustParse(t, "09:00"), 60))
	assert.True(t, IsAvailable(profile, date, mustParse(t, "17:00"), 60))
	assert.True(t, IsAvailable(profile, date, mustParse(t, "09:00"), 9*60))

	// starts before the window opens
	assert.False(t, IsAvailable(profile, date, mustParse(t, "08:30"), 60))
	// runs past the window close
	assert.False(t, IsAvailable(profile, date, mustParse(t, "17:30"), 60))
	// different weekday has no windows
	assert.False(t, IsAvailable(profile, date.AddDate(0, 0, 1), mustParse(t, "10:00"), 60))
}

func TestIsAvailableMultipleWindows(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	profile := weekdayProfile(t, time.Monday,
		window(t, "09:00", "12:00"),
		window(t, "14:00", "20:00"),
	)

	assert.True(t, IsAvailable(profile, date, mustParse(t, "10:00"), 120))
	assert.True(t, IsAvailable(profile, date, mustParse(t, "14:00"), 360))
	// straddles the midday gap, fits neither window
	assert.False(t, IsAvailable(profile, date, mustParse(t, "11:00"), 240))
}

func TestIsAvailableUnavailableExceptionDisablesDate(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	profile := weekdayProfile(t, time.Monday, window(t, "09:00", "18:00"))
	profile.Exceptions = []Exception{{Date: date, Available: false}}

	assert.False(t, IsAvailable(profile, date, mustParse(t, "10:00"), 60))
	// the following Monday is untouched
	assert.True(t, IsAvailable(profile, date.AddDate(0, 0, 7), mustParse(t, "10:00"), 60))
}

func TestIsAvailableExceptionWindowsReplaceWeekly(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	profile := weekdayProfile(t, time.Monday, window(t, "09:00", "18:00"))
	profile.Exceptions = []Exception{{
		Date:      date,
		Available: true,
		Windows:   []Window{window(t, "16:00", "23:00")},
	}}

	// fits the weekly window but not the override
	assert.False(t, IsAvailable(profile, date, mustParse(t, "10:00"), 60))
	// fits the override even though the weekly window ends at 18:00
	assert.True(t, IsAvailable(profile, date, mustParse(t, "20:00"), 120))
}

func TestIsAvailableOpenExceptionFallsBackToWeekly(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	profile := weekdayProfile(t, time.Monday, window(t, "09:00", "18:00"))
	profile.Exceptions = []Exception{{Date: date, Available: true}}

	assert.True(t, IsAvailable(profile, date, mustParse(t, "10:00"), 60))
	assert.False(t, IsAvailable(profile, date, mustParse(t, "19:00"), 60))
}

func TestIsAvailableRejectsOverflowPastMidnight(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	profile := weekdayProfile(t, time.Monday, window(t, "09:00", "18:00"))

	assert.False(t, IsAvailable(profile, date, mustParse(t, "23:00"), 120))
}

func TestWindowValidate(t *testing.T) {
	assert.NoError(t, window(t, "09:00", "18:00").Validate())
	assert.ErrorIs(t, Window{Start: mustParse(t, "18:00"), End: mustParse(t, "09:00")}.Validate(), ErrInvalidWindow)
	assert.ErrorIs(t, Window{Start: mustParse(t, "09:00"), End: mustParse(t, "09:00")}.Validate(), ErrInvalidWindow)
}
