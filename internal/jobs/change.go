package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shutdowns-bot/internal/locale"
	"shutdowns-bot/internal/models"
	"shutdowns-bot/internal/schedule"
)

// RunChangeCheck refetches today's table and alerts subscribers of every
// group whose schedule differs from the last one they were told about.
// The first run of each day only records the table, since the site's
// current page has moved on to the new date.
func (s *Service) RunChangeCheck(ctx context.Context) error {
	table, err := s.fetch(ctx, schedule.Options{Force: true})
	if err != nil {
		return fmt.Errorf("fetch today's table: %w", err)
	}
	snap := schedule.Snapshot{Table: table, FetchedAt: s.now()}

	prev, err := s.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load notified snapshot: %w", err)
	}
	if prev == nil {
		s.log.Infof("no notified snapshot yet, storing %d groups", len(table))
		return s.save(ctx, snap)
	}
	if !s.sameDay(prev.FetchedAt, snap.FetchedAt) {
		s.log.Infof("new day, storing %d groups as the baseline", len(table))
		return s.save(ctx, snap)
	}

	change := models.ScheduleChange{FetchedAt: snap.FetchedAt, Table: table}
	diff, err := schedule.Diff(prev.Table, table)
	var shapeErr *schedule.ShapeError
	switch {
	case errors.As(err, &shapeErr):
		s.log.Warnf("schedule layout changed (%v), notifying all groups", err)
		change.ShapeChanged = true
		for g := 1; g <= len(table); g++ {
			change.ChangedGroups = append(change.ChangedGroups, g)
		}
	case err != nil:
		return err
	default:
		change.ChangedGroups = schedule.Changed(diff)
	}

	if len(change.ChangedGroups) == 0 {
		s.log.Debugf("schedule unchanged")
		return nil
	}
	s.rec.GroupsChanged(len(change.ChangedGroups))
	s.log.Infof("schedule changed for groups %v", change.ChangedGroups)

	if err := s.notifyChanged(ctx, table, change.ChangedGroups); err != nil {
		return err
	}

	if s.events != nil {
		if err := s.events.PublishScheduleChanged(ctx, change); err != nil {
			s.log.Errorf("failed to publish schedule change: %v", err)
		}
	}
	return s.save(ctx, snap)
}

func (s *Service) notifyChanged(ctx context.Context, table schedule.Table, groups []int) error {
	changed := make(map[int]bool, len(groups))
	for _, g := range groups {
		changed[g] = true
	}

	subs, err := s.subs.All(ctx)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}
	silent := s.quiet(s.localNow().Hour())
	for _, sub := range subs {
		if !changed[sub.Group] {
			continue
		}
		intervals, err := table.Intervals(sub.Group)
		if err != nil {
			continue
		}
		s.send(ctx, KindChange, sub, locale.FormatChanged(sub.Language, sub.Group, intervals), silent)
	}
	return nil
}

func (s *Service) sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(s.cfg.Location).Date()
	by, bm, bd := b.In(s.cfg.Location).Date()
	return ay == by && am == bm && ad == bd
}

func (s *Service) save(ctx context.Context, snap schedule.Snapshot) error {
	if err := s.snapshots.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("save notified snapshot: %w", err)
	}
	return nil
}
