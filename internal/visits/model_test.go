package visits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"", "Arrived", "In Session", "Finished"} {
		_, err := ParseStatus(raw)
		assert.NoError(t, err, "ParseStatus(%q)", raw)
	}

	// The status enum is closed and case-sensitive.
	for _, raw := range []string{"arrived", "Checked In", "IN SESSION", "done"} {
		_, err := ParseStatus(raw)
		assert.Error(t, err, "ParseStatus(%q)", raw)
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		current Status
		want    Status
		wantErr bool
	}{
		{StatusArrived, StatusInSession, false},
		{StatusInSession, StatusFinished, false},
		{StatusFinished, StatusNone, true},
		{StatusNone, StatusNone, true},
		{Status("garbage"), StatusNone, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.current), func(t *testing.T) {
			next, err := Next(tt.current)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestWaitDuration_NotArrived(t *testing.T) {
	v := &Visit{}
	_, ok := v.WaitDuration(time.Now())
	assert.False(t, ok, "WaitDuration on a visit with no arrival time should report not arrived")
}

func TestWaitDuration_Completed(t *testing.T) {
	arrived := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	started := arrived.Add(12 * time.Minute)
	v := &Visit{ArrivalTime: &arrived, StartTime: &started}

	d, ok := v.WaitDuration(started.Add(time.Hour))
	require.True(t, ok, "expected a completed wait duration")
	assert.Equal(t, 12*time.Minute, d)
}

func TestWaitDuration_Live(t *testing.T) {
	arrived := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	v := &Visit{ArrivalTime: &arrived}

	first, ok := v.WaitDuration(arrived.Add(30 * time.Second))
	require.True(t, ok, "expected a live wait duration")
	second, _ := v.WaitDuration(arrived.Add(90 * time.Second))
	assert.Greater(t, second, first, "live wait should grow with the clock")
}

func TestVisitDuration_NotStarted(t *testing.T) {
	arrived := time.Now().UTC()
	v := &Visit{ArrivalTime: &arrived}
	_, ok := v.VisitDuration(time.Now())
	assert.False(t, ok, "VisitDuration before start should report not started")
}

func TestVisitDuration_Completed(t *testing.T) {
	started := time.Date(2026, 3, 9, 9, 15, 0, 0, time.UTC)
	ended := started.Add(25 * time.Minute)
	v := &Visit{StartTime: &started, EndTime: &ended}

	d, ok := v.VisitDuration(ended.Add(time.Hour))
	require.True(t, ok, "expected a completed visit duration")
	assert.Equal(t, 25*time.Minute, d)
}

// Guards against transposing the two timers: with distinct wait and session
// windows, each duration must come from its own pair of timestamps.
func TestDurations_NotTransposed(t *testing.T) {
	arrived := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	started := arrived.Add(10 * time.Minute)
	ended := started.Add(45 * time.Minute)
	v := &Visit{ArrivalTime: &arrived, StartTime: &started, EndTime: &ended}

	now := ended.Add(time.Minute)
	wait, ok := v.WaitDuration(now)
	require.True(t, ok)
	visit, ok := v.VisitDuration(now)
	require.True(t, ok)

	assert.Equal(t, 10*time.Minute, wait)
	assert.Equal(t, 45*time.Minute, visit)
	assert.NotEqual(t, wait, visit, "wait and visit durations should differ for distinct windows")
}
