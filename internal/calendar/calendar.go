// Package calendar enumerates month grids: every date of a month plus the
// blank-cell padding needed to lay it out on a 7-column week grid.
package calendar

import "time"

// Month identifies a calendar month. MonthNum is 1-12.
type Month struct {
	Year     int
	MonthNum int
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), MonthNum: int(t.Month())}
}

// First returns the first day of the month at midnight UTC.
func (m Month) First() time.Time {
	return time.Date(m.Year, time.Month(m.MonthNum), 1, 0, 0, 0, 0, time.UTC)
}

// NumDays returns the number of days in the month. Day zero of the following
// month is the last day of this one, which keeps February correct in leap
// years.
func (m Month) NumDays() int {
	return time.Date(m.Year, time.Month(m.MonthNum)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Days returns every date of the month in order, day 1 through the last day.
func (m Month) Days() []time.Time {
	n := m.NumDays()
	out := make([]time.Time, 0, n)
	first := m.First()
	for d := 0; d < n; d++ {
		out = append(out, first.AddDate(0, 0, d))
	}
	return out
}

// FirstWeekday returns the weekday index (0=Sunday) of the month's first day.
func (m Month) FirstWeekday() int {
	return int(m.First().Weekday())
}

// LeadingBlanks returns the number of empty cells before day 1 on a
// Sunday-first week grid.
func (m Month) LeadingBlanks() int {
	return m.FirstWeekday()
}

// TrailingBlanks returns the number of empty cells after the last day needed
// to complete the final week row.
func (m Month) TrailingBlanks() int {
	rem := (m.LeadingBlanks() + m.NumDays()) % 7
	if rem == 0 {
		return 0
	}
	return 7 - rem
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	return MonthOf(m.First().AddDate(0, -1, 0))
}

// Next returns the following month.
func (m Month) Next() Month {
	return MonthOf(m.First().AddDate(0, 1, 0))
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && int(t.Month()) == m.MonthNum
}

// DateKey formats t as the zero-padded YYYY-MM-DD key used throughout the
// stored state and the holiday feed.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Today returns the current date at midnight in loc.
func Today(loc *time.Location) time.Time {
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}

// Tomorrow returns the day after Today in loc.
func Tomorrow(loc *time.Location) time.Time {
	return Today(loc).AddDate(0, 0, 1)
}
