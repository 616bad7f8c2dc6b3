package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		raw  string
		want TimeOfDay
	}{
		{"08:00", NewTimeOfDay(8, 0)},
		{"08:00:00", NewTimeOfDay(8, 0)},
		{"23:59", NewTimeOfDay(23, 59)},
		{"9:30", NewTimeOfDay(9, 30)},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestParseTimeOfDayInvalid(t *testing.T) {
	for _, raw := range []string{"", "25:00", "10:61", "noon"} {
		_, err := ParseTimeOfDay(raw)
		assert.Error(t, err, raw)
	}
}

func TestTimeOfDayScan(t *testing.T) {
	var fromTime TimeOfDay
	require.NoError(t, fromTime.Scan(time.Date(0, 1, 1, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, NewTimeOfDay(9, 30), fromTime)

	var fromBytes TimeOfDay
	require.NoError(t, fromBytes.Scan([]byte("14:15:00")))
	assert.Equal(t, NewTimeOfDay(14, 15), fromBytes)

	var fromString TimeOfDay
	require.NoError(t, fromString.Scan("08:00"))
	assert.Equal(t, NewTimeOfDay(8, 0), fromString)

	var invalid TimeOfDay
	assert.Error(t, invalid.Scan(42))
}

func TestTimeOfDayValue(t *testing.T) {
	v, err := NewTimeOfDay(8, 5).Value()
	require.NoError(t, err)
	assert.Equal(t, "08:05:00", v)
}

func TestTimeOfDayJSON(t *testing.T) {
	raw, err := json.Marshal(NewTimeOfDay(8, 0))
	require.NoError(t, err)
	assert.Equal(t, `"08:00"`, string(raw))

	var parsed TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"10:45"`), &parsed))
	assert.Equal(t, NewTimeOfDay(10, 45), parsed)
}

func TestOverlaps(t *testing.T) {
	morning := []TimeOfDay{NewTimeOfDay(8, 0), NewTimeOfDay(10, 0)}

	assert.True(t, Overlaps(morning[0], morning[1], NewTimeOfDay(9, 0), NewTimeOfDay(11, 0)))
	assert.True(t, Overlaps(morning[0], morning[1], NewTimeOfDay(7, 0), NewTimeOfDay(8, 30)))
	assert.True(t, Overlaps(morning[0], morning[1], NewTimeOfDay(8, 0), NewTimeOfDay(10, 0)))

	// Back-to-back intervals share only a boundary instant and do not conflict.
	assert.False(t, Overlaps(morning[0], morning[1], NewTimeOfDay(10, 0), NewTimeOfDay(12, 0)))
	assert.False(t, Overlaps(morning[0], morning[1], NewTimeOfDay(6, 0), NewTimeOfDay(8, 0)))
	assert.False(t, Overlaps(morning[0], morning[1], NewTimeOfDay(11, 0), NewTimeOfDay(12, 0)))
}

func TestOccupiedSeats(t *testing.T) {
	enrollments := []Enrollment{
		{Status: EnrollmentStatusConfirmed},
		{Status: EnrollmentStatusPending},
		{Status: EnrollmentStatusCancelled},
	}
	assert.Equal(t, 2, OccupiedSeats(enrollments))

	course := CourseWithEnrollments{Course: Course{Capacity: 3}, Enrollments: enrollments}
	assert.Equal(t, 1, course.AvailableSeats())
}
