package jobs

import "time"

// NextDailyRun returns the next hour:00 in loc strictly after now.
func NextDailyRun(now time.Time, loc *time.Location, hour int) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, 0, 0, 0, loc)
	}
	return next
}

// NextHourlyRun returns the next HH:minute in loc strictly after now.
func NextHourlyRun(now time.Time, loc *time.Location, minute int) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), minute, 0, 0, loc)
	if !next.After(now) {
		next = next.Add(time.Hour)
	}
	return next
}

// Jobs returns the three notification jobs scheduled per the service config.
func (s *Service) Jobs() []Job {
	loc := s.cfg.Location
	return []Job{
		{
			Name: KindDaily,
			Run:  s.RunDaily,
			Next: func(now time.Time) time.Time { return NextDailyRun(now, loc, s.cfg.DailyHour) },
		},
		{
			Name: KindWarning,
			Run:  s.RunWarnings,
			Next: func(now time.Time) time.Time { return NextHourlyRun(now, loc, s.cfg.WarningMinute) },
		},
		{
			Name: KindChange,
			Run:  s.RunChangeCheck,
			Next: func(now time.Time) time.Time { return now.Add(s.cfg.CheckInterval) },
		},
	}
}
