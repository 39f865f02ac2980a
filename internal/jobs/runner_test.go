package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shutdowns-bot/internal/logger"
)

func TestRunNowSkipsOverlappingRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var runs atomic.Int32
	rec := newRecorder()
	r := NewRunner(rec, Job{
		Name: "slow",
		Run: func(context.Context) error {
			runs.Add(1)
			close(started)
			<-release
			return nil
		},
		Next: func(now time.Time) time.Time { return now.Add(time.Hour) },
	})
	r.log = logger.Nop{}

	done := make(chan bool)
	go func() {
		ran, err := r.RunNow(context.Background(), "slow")
		assert.NoError(t, err)
		done <- ran
	}()
	<-started

	ran, err := r.RunNow(context.Background(), "slow")
	require.NoError(t, err)
	assert.False(t, ran, "second run is skipped while the first is in flight")

	close(release)
	assert.True(t, <-done)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, 1, rec.runs["slow"])
}

func TestWaitCoversTriggeredRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	r := NewRunner(nil, Job{
		Name: "check",
		Run: func(context.Context) error {
			close(started)
			<-release
			finished.Store(true)
			return nil
		},
		Next: func(now time.Time) time.Time { return now.Add(time.Hour) },
	})
	r.log = logger.Nop{}

	r.Trigger(context.Background(), "check")
	<-started

	waited := make(chan struct{})
	go func() {
		r.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		t.Fatal("Wait returned while the triggered run was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-waited
	assert.True(t, finished.Load())
}

func TestRunNowUnknownJob(t *testing.T) {
	r := NewRunner(nil)
	_, err := r.RunNow(context.Background(), "nope")
	assert.Error(t, err)
}

func TestRunnerFiresUntilCancelled(t *testing.T) {
	var runs atomic.Int32
	r := NewRunner(nil, Job{
		Name: "tick",
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
		Next: func(now time.Time) time.Time { return now.Add(5 * time.Millisecond) },
	})
	r.log = logger.Nop{}

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	r.Wait()

	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Wait returns")
}

func TestNextDailyRun(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"later today", time.Date(2026, 3, 10, 9, 0, 0, 0, kyiv), time.Date(2026, 3, 10, 23, 0, 0, 0, kyiv)},
		{"exactly at", time.Date(2026, 3, 10, 23, 0, 0, 0, kyiv), time.Date(2026, 3, 11, 23, 0, 0, 0, kyiv)},
		{"after", time.Date(2026, 3, 10, 23, 30, 0, 0, kyiv), time.Date(2026, 3, 11, 23, 0, 0, 0, kyiv)},
		{"month end", time.Date(2026, 3, 31, 23, 59, 0, 0, kyiv), time.Date(2026, 4, 1, 23, 0, 0, 0, kyiv)},
		{"utc input", time.Date(2026, 3, 10, 21, 30, 0, 0, time.UTC), time.Date(2026, 3, 11, 23, 0, 0, 0, kyiv)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDailyRun(tt.now, kyiv, 23)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestNextHourlyRun(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"this hour", time.Date(2026, 3, 10, 9, 10, 0, 0, kyiv), time.Date(2026, 3, 10, 9, 35, 0, 0, kyiv)},
		{"exactly at", time.Date(2026, 3, 10, 9, 35, 0, 0, kyiv), time.Date(2026, 3, 10, 10, 35, 0, 0, kyiv)},
		{"next day", time.Date(2026, 3, 10, 23, 50, 0, 0, kyiv), time.Date(2026, 3, 11, 0, 35, 0, 0, kyiv)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextHourlyRun(tt.now, kyiv, 35)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestServiceJobs(t *testing.T) {
	svc := newTestService(&fakeTables{}, nil, &fakeSender{}, nil, at(0, 0))
	jobs := svc.Jobs()
	require.Len(t, jobs, 3)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, kyiv)
	assert.Equal(t, KindDaily, jobs[0].Name)
	assert.True(t, jobs[0].Next(now).Equal(time.Date(2026, 3, 10, 23, 0, 0, 0, kyiv)))
	assert.Equal(t, KindWarning, jobs[1].Name)
	assert.True(t, jobs[1].Next(now).Equal(time.Date(2026, 3, 10, 12, 35, 0, 0, kyiv)))
	assert.Equal(t, KindChange, jobs[2].Name)
	assert.Equal(t, time.Minute, jobs[2].Next(now).Sub(now))
}
