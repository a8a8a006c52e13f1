package shift_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tf416/rosterbot/internal/activity"
	"github.com/tf416/rosterbot/internal/shift"
)

func TestFormatProofLog(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 5, 3, 14, 0, 0, 0, time.UTC)
	proof := shift.Proof{
		Session: shift.Session{
			Username: "Alpha",
			Zone:     shift.Zone{Name: "EST", Offset: -5 * time.Hour},
			Start:    start,
		},
		End:     start.Add(95 * time.Minute),
		Elapsed: 95 * time.Minute,
		Note:    "gate patrol",
	}

	got := shift.FormatProofLog(proof)

	assert.Equal(t, "Start time: 09:00 (EST)\n"+
		"End time: 10:35 (EST)\n"+
		"Total time: 1 hours 35 mins\n"+
		"Note: gate patrol\n"+
		"Proof:", got)

	total, ok := activity.ParseTotalTime(got)
	assert.True(t, ok)
	assert.Equal(t, activity.TotalTime{Hours: 1, Minutes: 35}, total)
}

func TestFormatElapsed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0h 00m", shift.FormatElapsed(-time.Minute))
	assert.Equal(t, "2h 05m", shift.FormatElapsed(2*time.Hour+5*time.Minute+59*time.Second))
}
