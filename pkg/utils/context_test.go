package utils_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tf416/rosterbot/pkg/utils"
	"go.uber.org/zap"
)

func TestContextSleep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		duration    time.Duration
		cancelAfter time.Duration
		want        utils.SleepResult
	}{
		{name: "sleep completes normally", duration: 10 * time.Millisecond, want: utils.SleepCompleted},
		{name: "context cancelled before sleep completes", duration: time.Second, cancelAfter: 10 * time.Millisecond, want: utils.SleepCancelled},
		{name: "zero duration sleep", duration: 0, want: utils.SleepCompleted},
		{name: "negative duration sleep", duration: -time.Second, want: utils.SleepCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			if tt.cancelAfter > 0 {
				time.AfterFunc(tt.cancelAfter, cancel)
			}

			assert.Equal(t, tt.want, utils.ContextSleep(ctx, tt.duration))
		})
	}
}

func TestContextSleepUntil(t *testing.T) {
	t.Parallel()

	assert.Equal(t, utils.SleepCompleted, utils.ContextSleepUntil(t.Context(), time.Now().Add(-time.Minute)))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.Equal(t, utils.SleepCancelled, utils.ContextSleepUntil(ctx, time.Now().Add(time.Hour)))
}

func TestErrorSleep(t *testing.T) {
	t.Parallel()

	assert.True(t, utils.ErrorSleep(t.Context(), time.Millisecond, zap.NewNop(), "test"))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.False(t, utils.ErrorSleep(ctx, time.Hour, zap.NewNop(), "test"))
}
