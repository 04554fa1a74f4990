package models

import "time"

// WeekStart returns midnight of the Sunday that opens the selected week, relative to now.
// The current week starts on the Sunday on or before now; the next week seven days later.
func WeekStart(now time.Time, week WeekSelector) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := day.AddDate(0, 0, -int(day.Weekday()))
	if week == WeekNext {
		start = start.AddDate(0, 0, 7)
	}
	return start
}

// WeekDates returns the calendar date of each day index of the selected week
func WeekDates(now time.Time, week WeekSelector) []time.Time {
	start := WeekStart(now, week)
	dates := make([]time.Time, DaysPerWeek)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}
