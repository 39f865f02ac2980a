package jobs

import (
	"context"
	"fmt"

	"shutdowns-bot/internal/locale"
	"shutdowns-bot/internal/schedule"
)

// RunWarnings warns subscribers whose outage starts at the next full hour.
//
// The message tells when power comes back. An outage running to midnight
// ends where tomorrow's first outage ends if that one starts at 00:00, and
// at 00:00 otherwise. During the 23rd hour the outages checked are
// tomorrow's ones starting at 00:00.
func (s *Service) RunWarnings(ctx context.Context) error {
	hour := s.localNow().Hour()

	today, err := s.fetch(ctx, schedule.Options{})
	if err != nil {
		return fmt.Errorf("fetch today's table: %w", err)
	}

	tomorrow := &lazyTable{load: func() (schedule.Table, error) {
		return s.fetch(ctx, schedule.Options{Next: true})
	}}
	if hour == 23 {
		if _, err := tomorrow.get(); err != nil {
			return fmt.Errorf("fetch tomorrow's table: %w", err)
		}
	}

	subs, err := s.subs.All(ctx)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}

	silent := s.quiet(hour)
	sent := 0
	for _, sub := range subs {
		if !sub.HasGroup() {
			continue
		}
		turnOn, ok := s.upcoming(sub.Group, hour, today, tomorrow)
		if !ok {
			continue
		}
		s.send(ctx, KindWarning, sub, locale.FormatWarning(sub.Language, turnOn), silent)
		sent++
	}
	if tomorrow.done && tomorrow.err != nil {
		s.log.Warnf("sent warnings without turn-on time: %v", tomorrow.err)
	}
	if sent > 0 {
		s.log.Infof("outage warning sent to %d subscribers", sent)
	}
	return nil
}

// upcoming reports whether group has an outage starting at hour+1 and,
// if known, the hour power returns.
func (s *Service) upcoming(group, hour int, today schedule.Table, tomorrow *lazyTable) (*int, bool) {
	todays, err := today.Intervals(group)
	if err != nil {
		return nil, false
	}

	if hour == 23 {
		// Already off at midnight: tomorrow's first outage is a continuation.
		if n := len(todays); n > 0 && todays[n-1].IsOpen() {
			return nil, false
		}
		first, ok := s.firstAtMidnight(group, tomorrow)
		if !ok {
			return nil, false
		}
		return first.End, true
	}

	for _, iv := range todays {
		if iv.Start-1 != hour {
			continue
		}
		if !iv.IsOpen() {
			end := *iv.End
			return &end, true
		}
		first, ok := s.firstAtMidnight(group, tomorrow)
		if ok {
			return first.End, true
		}
		if _, err := tomorrow.get(); err != nil {
			return nil, true
		}
		midnight := 0
		return &midnight, true
	}
	return nil, false
}

// firstAtMidnight returns tomorrow's first outage of group if it starts at 00:00.
func (s *Service) firstAtMidnight(group int, tomorrow *lazyTable) (schedule.Interval, bool) {
	table, err := tomorrow.get()
	if err != nil {
		return schedule.Interval{}, false
	}
	intervals, err := table.Intervals(group)
	if err != nil || len(intervals) == 0 || intervals[0].Start != 0 {
		return schedule.Interval{}, false
	}
	return intervals[0], true
}

// lazyTable fetches a table at most once.
type lazyTable struct {
	load  func() (schedule.Table, error)
	done  bool
	table schedule.Table
	err   error
}

func (l *lazyTable) get() (schedule.Table, error) {
	if !l.done {
		l.table, l.err = l.load()
		l.done = true
	}
	return l.table, l.err
}
