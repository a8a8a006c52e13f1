package activity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tf416/rosterbot/internal/activity"
)

func TestParseTotalTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   activity.TotalTime
		wantOK bool
	}{
		{name: "hours and mins", text: "Total time: 2 hours 30 mins", want: activity.TotalTime{Hours: 2, Minutes: 30}, wantOK: true},
		{name: "singular units", text: "Total time: 1 hour 5 min", want: activity.TotalTime{Hours: 1, Minutes: 5}, wantOK: true},
		{name: "hours only", text: "Total time: 3 hours", want: activity.TotalTime{Hours: 3}, wantOK: true},
		{name: "hour singular", text: "Total time: 1 hour", want: activity.TotalTime{Hours: 1}, wantOK: true},
		{name: "mins only", text: "Total time: 45 mins", want: activity.TotalTime{Minutes: 45}, wantOK: true},
		{name: "case insensitive", text: "TOTAL TIME: 2 HOURS 10 MINS", want: activity.TotalTime{Hours: 2, Minutes: 10}, wantOK: true},
		{name: "no spaces", text: "Total time:2hours15mins", want: activity.TotalTime{Hours: 2, Minutes: 15}, wantOK: true},
		{name: "bold label", text: "**Total time:** 4 hours 0 mins", want: activity.TotalTime{Hours: 4}, wantOK: true},
		{name: "bold label colon outside", text: "**Total time**: 1 hour 20 mins", want: activity.TotalTime{Hours: 1, Minutes: 20}, wantOK: true},
		{name: "minutes not range checked", text: "Total time: 2 hours 75 mins", want: activity.TotalTime{Hours: 2, Minutes: 75}, wantOK: true},
		{name: "large hours", text: "Total time: 120 hours", want: activity.TotalTime{Hours: 120}, wantOK: true},
		{
			name:   "embedded in a full log",
			text:   "Start time: 10:00 (EST)\nEnd time: 12:30 (EST)\nTotal time: 2 hours 30 mins\nProof:",
			want:   activity.TotalTime{Hours: 2, Minutes: 30},
			wantOK: true,
		},
		{name: "three digit minutes fall back to hours", text: "Total time: 2 hours 123 mins", want: activity.TotalTime{Hours: 2}, wantOK: true},
		{name: "missing label", text: "Time: 2 hours", wantOK: false},
		{name: "no number", text: "Total time: two hours", wantOK: false},
		{name: "empty", text: "", wantOK: false},
		{name: "hours overflow", text: "Total time: 99999999999999999999999 hours", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := activity.ParseTotalTime(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestHasTotalTime(t *testing.T) {
	t.Parallel()

	assert.True(t, activity.HasTotalTime("Total time: whatever"))
	assert.True(t, activity.HasTotalTime("**total time**: 1 hour"))
	assert.False(t, activity.HasTotalTime("Totally timed"))
}

func TestTotalTimeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2 hours 5 mins", activity.TotalTime{Hours: 2, Minutes: 5}.String())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		images  int
		wantErr error
	}{
		{name: "valid", content: "Total time: 1 hour 30 mins", images: 1},
		{name: "missing proof wins over bad format", content: "no time here", images: 0, wantErr: activity.ErrMissingProof},
		{name: "missing proof", content: "Total time: 1 hour", images: 0, wantErr: activity.ErrMissingProof},
		{name: "bad total time line", content: "Total time: soon", images: 2, wantErr: activity.ErrTotalTimeNotFound},
		{name: "minutes out of range", content: "Total time: 1 hour 60 mins", images: 1, wantErr: activity.ErrMinutesOutOfRange},
		{name: "59 minutes ok", content: "Total time: 0 hours 59 mins", images: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := activity.Validate(tt.content, tt.images)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
