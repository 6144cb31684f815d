package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInStatusDecodesMillisAndISO(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    time.Time
	}{
		{
			name:    "epoch millis",
			payload: `{"currentStreak": 3, "bestStreak": 5, "lastCheckInTime": 1704268800000}`,
			want:    time.UnixMilli(1704268800000),
		},
		{
			name:    "rfc3339",
			payload: `{"currentStreak": 3, "lastCheckInTime": "2024-01-03T08:00:00Z"}`,
			want:    time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC),
		},
		{
			name:    "naive iso is local",
			payload: `{"currentStreak": 3, "lastCheckInTime": "2024-01-03T08:00:00.123456"}`,
			want:    time.Date(2024, 1, 3, 8, 0, 0, 123456000, time.Local),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s CheckInStatus
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &s))
			require.NotNil(t, s.LastCheckInTime)
			assert.True(t, tt.want.Equal(s.LastCheckInTime.Time), "got %v", s.LastCheckInTime.Time)
			assert.True(t, s.ShowsStreak())
		})
	}
}

func TestCheckInStatusHidesStreak(t *testing.T) {
	payloads := []string{
		`{"currentStreak": 0, "lastCheckInTime": 1704268800000}`,
		`{"currentStreak": -1, "lastCheckInTime": 1704268800000}`,
		`{"currentStreak": 4}`,
		`{"currentStreak": 4, "lastCheckInTime": null}`,
	}

	for _, p := range payloads {
		var s CheckInStatus
		require.NoError(t, json.Unmarshal([]byte(p), &s), p)
		assert.False(t, s.ShowsStreak(), p)
	}

	var nilStatus *CheckInStatus
	assert.False(t, nilStatus.ShowsStreak())
	assert.Equal(t, 0, nilStatus.Best())
	assert.Equal(t, 0, nilStatus.Current())
}

func TestCheckInStatusRejectsGarbageTimestamp(t *testing.T) {
	var s CheckInStatus
	assert.Error(t, json.Unmarshal([]byte(`{"currentStreak": 1, "lastCheckInTime": "yesterday"}`), &s))
}

func TestCheckedInOn(t *testing.T) {
	last := time.Date(2024, 1, 3, 9, 0, 0, 0, time.Local)
	s := &CheckInStatus{CurrentStreak: 1, LastCheckInTime: &Timestamp{Time: last}}

	assert.True(t, s.CheckedInOn(time.Date(2024, 1, 3, 23, 0, 0, 0, time.Local)))
	assert.False(t, s.CheckedInOn(time.Date(2024, 1, 4, 0, 1, 0, 0, time.Local)))
	assert.False(t, (&CheckInStatus{}).CheckedInOn(last))
}

func TestCheckInResultOutcomes(t *testing.T) {
	assert.True(t, CheckInResult{Status: OutcomeSuccess}.IsSuccess())
	assert.True(t, CheckInResult{Status: OutcomeInfo}.IsInfo())
	assert.True(t, CheckInResult{Status: OutcomeError}.IsFailure())
	assert.True(t, CheckInResult{Status: "weird"}.IsFailure())
	assert.False(t, CheckInResult{Status: OutcomeInfo}.IsFailure())
}
