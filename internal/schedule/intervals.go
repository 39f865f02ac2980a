package schedule

// ExtractIntervals turns a group's hourly states into outage intervals.
//
// A run of StateOn hours is one outage; the first StateOff or StateMaybeOff
// after it closes the interval at that hour. MaybeOff never opens an
// interval. A run still going at the end of the day is emitted with a nil End.
func ExtractIntervals(g Group) []Interval {
	var intervals []Interval
	start := -1
	for i, st := range g {
		switch {
		case st == StateOn && start < 0:
			start = i
		case st != StateOn && start >= 0:
			end := i
			intervals = append(intervals, Interval{Start: start, End: &end})
			start = -1
		}
	}
	if start >= 0 {
		intervals = append(intervals, Interval{Start: start})
	}
	return intervals
}
