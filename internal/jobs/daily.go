package jobs

import (
	"context"
	"fmt"

	"shutdowns-bot/internal/locale"
	"shutdowns-bot/internal/schedule"
)

// RunDaily sends every subscriber tomorrow's outage intervals, silently.
func (s *Service) RunDaily(ctx context.Context) error {
	table, err := s.fetch(ctx, schedule.Options{Next: true})
	if err != nil {
		return fmt.Errorf("fetch tomorrow's table: %w", err)
	}
	subs, err := s.subs.All(ctx)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}

	sent := 0
	for _, sub := range subs {
		if !sub.HasGroup() {
			continue
		}
		intervals, err := table.Intervals(sub.Group)
		if err != nil {
			s.log.Warnf("skipping user %d: %v", sub.TelegramID, err)
			continue
		}
		s.send(ctx, KindDaily, sub, locale.FormatSchedule(sub.Language, sub.Group, intervals, true), true)
		sent++
	}
	s.log.Infof("daily schedule sent to %d subscribers", sent)
	return nil
}
