package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	d, err := ParseClock("07:30")
	require.NoError(t, err)
	assert.Equal(t, 7*time.Hour+30*time.Minute, d)

	_, err = ParseClock("25:00")
	assert.Error(t, err)

	_, err = ParseClock("7am")
	assert.Error(t, err)
}

func TestShiftWindow(t *testing.T) {
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	shift := Shift{StartTime: "07:00", EndTime: "12:00"}
	start, end, err := shift.Window(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 7, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC), end)
}

func TestShiftWindowOvernight(t *testing.T) {
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	shift := Shift{StartTime: "22:00", EndTime: "06:00", Overnight: true}
	start, end, err := shift.Window(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 22, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 15, 6, 0, 0, 0, time.UTC), end)
}

func TestBookingOverlapsHalfOpen(t *testing.T) {
	start := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	b := Booking{StartTime: start, EndTime: end}

	assert.True(t, b.Overlaps(start.Add(-time.Hour), start.Add(time.Minute)))
	assert.True(t, b.Overlaps(end.Add(-time.Minute), end.Add(time.Hour)))
	// Touching intervals do not overlap.
	assert.False(t, b.Overlaps(end, end.Add(time.Hour)))
	assert.False(t, b.Overlaps(start.Add(-time.Hour), start))
}

func TestBookingContains(t *testing.T) {
	start := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	b := Booking{StartTime: start, EndTime: end}

	assert.True(t, b.Contains(start))
	assert.True(t, b.Contains(start.Add(time.Hour)))
	assert.False(t, b.Contains(end))
	assert.False(t, b.Contains(start.Add(-time.Second)))
}
