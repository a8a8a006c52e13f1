package reset_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tf416/rosterbot/internal/worker/reset"
	"go.uber.org/zap"
)

type fakeRoster struct {
	calls int
	err   error
}

func (f *fakeRoster) ResetActivity(context.Context) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}

	return 12, nil
}

func setupClient(t *testing.T) rueidis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func TestNextReset(t *testing.T) {
	t.Parallel()

	sunday := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Sunday, sunday.Weekday())

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{name: "midweek", now: time.Date(2026, 4, 29, 15, 30, 0, 0, time.UTC), want: sunday},
		{name: "saturday night", now: time.Date(2026, 5, 2, 23, 59, 59, 0, time.UTC), want: sunday},
		{name: "exactly midnight", now: sunday, want: sunday.AddDate(0, 0, 7)},
		{name: "sunday afternoon", now: sunday.Add(14 * time.Hour), want: sunday.AddDate(0, 0, 7)},
		{
			name: "other timezone",
			now:  time.Date(2026, 5, 2, 20, 0, 0, 0, time.FixedZone("EDT", -4*3600)),
			want: sunday.AddDate(0, 0, 7),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := reset.NextReset(tt.now)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.Sunday, got.Weekday())
		})
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	roster := &fakeRoster{}
	w := reset.New(roster, setupClient(t), zap.NewNop(), "test")

	count, err := w.Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.Equal(t, 1, roster.calls)

	roster.err = errors.New("quota exceeded")
	_, err = w.Run(t.Context())
	require.Error(t, err)
}

func TestStartStopsOnCancel(t *testing.T) {
	t.Parallel()

	roster := &fakeRoster{}
	w := reset.New(roster, setupClient(t), zap.NewNop(), "test")

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})

	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	assert.Zero(t, roster.calls)
}
