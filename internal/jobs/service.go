// Package jobs sends the scheduled notifications: the evening digest for
// tomorrow, the one-hour outage warning and schedule change alerts.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"shutdowns-bot/internal/logger"
	"shutdowns-bot/internal/models"
	"shutdowns-bot/internal/schedule"
)

// Notification kinds, used as the metrics label.
const (
	KindDaily   = "daily"
	KindWarning = "warning"
	KindChange  = "change"
)

type TableSource interface {
	GetTable(ctx context.Context, opts schedule.Options) (schedule.Table, error)
}

type Subscribers interface {
	All(ctx context.Context) ([]models.Subscriber, error)
}

type Sender interface {
	Send(ctx context.Context, chatID int64, text string, silent bool) error
}

// SnapshotStore keeps the table subscribers were last notified about.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context) (*schedule.Snapshot, error)
	SaveSnapshot(ctx context.Context, snap schedule.Snapshot) error
}

type EventPublisher interface {
	PublishScheduleChanged(ctx context.Context, change models.ScheduleChange) error
}

type Recorder interface {
	NotificationSent(kind string, err error)
	GroupsChanged(n int)
	JobRun(job string, err error)
}

type Config struct {
	Location      *time.Location
	DailyHour     int
	WarningMinute int
	CheckInterval time.Duration
	// Notifications are silent from QuietFrom until QuietTo (local hours).
	QuietFrom int
	QuietTo   int
	// Fetch retries for the jobs; the cache itself never retries.
	RetryAttempts int
	RetryInitial  time.Duration
}

type Service struct {
	tables    TableSource
	subs      Subscribers
	sender    Sender
	snapshots SnapshotStore
	events    EventPublisher
	rec       Recorder
	cfg       Config
	now       func() time.Time
	log       logger.Logger
}

type Option func(*Service)

func WithPublisher(p EventPublisher) Option { return func(s *Service) { s.events = p } }
func WithRecorder(r Recorder) Option       { return func(s *Service) { s.rec = r } }
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}
func WithLogger(l logger.Logger) Option { return func(s *Service) { s.log = l } }

func NewService(tables TableSource, subs Subscribers, sender Sender, snapshots SnapshotStore, cfg Config, opts ...Option) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 15 * time.Minute
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryInitial <= 0 {
		cfg.RetryInitial = 2 * time.Second
	}
	s := &Service{
		tables:    tables,
		subs:      subs,
		sender:    sender,
		snapshots: snapshots,
		rec:       nopRecorder{},
		cfg:       cfg,
		now:       time.Now,
		log:       logger.New("jobs"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// localNow is the current time in the configured zone.
func (s *Service) localNow() time.Time {
	return s.now().In(s.cfg.Location)
}

// quiet reports whether notifications sent at hour should be silent.
func (s *Service) quiet(hour int) bool {
	from, to := s.cfg.QuietFrom, s.cfg.QuietTo
	switch {
	case from == to:
		return false
	case from < to:
		return hour >= from && hour < to
	default:
		return hour >= from || hour < to
	}
}

// fetch gets a table, retrying network failures with exponential backoff.
// Parse failures are not retried: the page won't fix itself in seconds.
func (s *Service) fetch(ctx context.Context, opts schedule.Options) (schedule.Table, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.cfg.RetryInitial
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(s.cfg.RetryAttempts-1)), ctx)

	return backoff.RetryNotifyWithData(func() (schedule.Table, error) {
		table, err := s.tables.GetTable(ctx, opts)
		if err != nil && !errors.Is(err, schedule.ErrNetwork) {
			return nil, backoff.Permanent(err)
		}
		return table, err
	}, policy, func(err error, wait time.Duration) {
		s.log.Warnf("fetch failed: %v, retrying in %s", err, wait)
	})
}

// send delivers one notification and records the outcome.
func (s *Service) send(ctx context.Context, kind string, sub models.Subscriber, text string, silent bool) {
	err := s.sender.Send(ctx, sub.TelegramID, text, silent)
	s.rec.NotificationSent(kind, err)
	if err != nil {
		s.log.Errorf("failed to send %s notification to %d: %v", kind, sub.TelegramID, err)
	}
}

type nopRecorder struct{}

func (nopRecorder) NotificationSent(string, error) {}
func (nopRecorder) GroupsChanged(int)              {}
func (nopRecorder) JobRun(string, error)           {}
