package jobs

import (
	"context"
	"sync"
	"time"

	"shutdowns-bot/internal/logger"
	"shutdowns-bot/internal/models"
	"shutdowns-bot/internal/schedule"
)

var kyiv = time.FixedZone("EET", 2*60*60)

// groupOf builds a group whose outage hours are the listed ones.
func groupOf(outage ...int) schedule.Group {
	g := make(schedule.Group, schedule.HoursPerDay)
	for _, h := range outage {
		g[h] = schedule.StateOn
	}
	return g
}

func hours(from, to int) []int {
	var hs []int
	for h := from; h < to; h++ {
		hs = append(hs, h)
	}
	return hs
}

type fakeTables struct {
	mu       sync.Mutex
	today    schedule.Table
	tomorrow schedule.Table
	// errs are returned, in order, before the tables are served
	errs     []error
	calls    []schedule.Options
	nextErr  error
}

func (f *fakeTables) GetTable(_ context.Context, opts schedule.Options) (schedule.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, opts)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	if opts.Next {
		if f.nextErr != nil {
			return nil, f.nextErr
		}
		return f.tomorrow.Clone(), nil
	}
	return f.today.Clone(), nil
}

func (f *fakeTables) nextCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Next {
			n++
		}
	}
	return n
}

type fakeSubs []models.Subscriber

func (f fakeSubs) All(context.Context) ([]models.Subscriber, error) {
	return f, nil
}

type sentMsg struct {
	chatID int64
	text   string
	silent bool
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMsg
	fail map[int64]error
}

func (f *fakeSender) Send(_ context.Context, chatID int64, text string, silent bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[chatID]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMsg{chatID: chatID, text: text, silent: silent})
	return nil
}

func (f *fakeSender) to(chatID int64) []sentMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMsg
	for _, m := range f.sent {
		if m.chatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

type fakePublisher struct {
	changes []models.ScheduleChange
}

func (f *fakePublisher) PublishScheduleChanged(_ context.Context, c models.ScheduleChange) error {
	f.changes = append(f.changes, c)
	return nil
}

type countingRecorder struct {
	mu            sync.Mutex
	notifications map[string]int
	failures      map[string]int
	groupsChanged int
	runs          map[string]int
}

func newRecorder() *countingRecorder {
	return &countingRecorder{
		notifications: map[string]int{},
		failures:      map[string]int{},
		runs:          map[string]int{},
	}
}

func (r *countingRecorder) NotificationSent(kind string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failures[kind]++
		return
	}
	r.notifications[kind]++
}

func (r *countingRecorder) GroupsChanged(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groupsChanged += n
}

func (r *countingRecorder) JobRun(job string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[job]++
}

func testConfig() Config {
	return Config{
		Location:      kyiv,
		DailyHour:     23,
		WarningMinute: 35,
		CheckInterval: time.Minute,
		QuietFrom:     23,
		QuietTo:       7,
		RetryAttempts: 3,
		RetryInitial:  time.Millisecond,
	}
}

func at(hour, minute int) func() time.Time {
	return func() time.Time { return time.Date(2026, 3, 10, hour, minute, 0, 0, kyiv) }
}

func newTestService(tables *fakeTables, subs fakeSubs, sender *fakeSender, snaps SnapshotStore, now func() time.Time, opts ...Option) *Service {
	opts = append([]Option{WithClock(now), WithLogger(logger.Nop{})}, opts...)
	return NewService(tables, subs, sender, snaps, testConfig(), opts...)
}
