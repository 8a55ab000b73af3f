// Package calendar derives a month grid of day cells from a flat task list.
package calendar

import (
	"time"

	"todo-planner/internal/model"
)

const (
	daysPerWeek = 7
	minWeeks    = 5
	dayKeyFmt   = "2006-01-02"
)

// Day is one cell of the month grid.
type Day struct {
	Date           time.Time
	IsCurrentMonth bool
	IsToday        bool
	Tasks          []model.Task
}

// Grid is a month laid out in whole weeks.
type Grid struct {
	Month     time.Time // first day of the reference month
	WeekStart time.Weekday
	Days      []Day
}

// Weeks returns the grid rows.
func (g Grid) Weeks() [][]Day {
	weeks := make([][]Day, 0, len(g.Days)/daysPerWeek)
	for i := 0; i+daysPerWeek <= len(g.Days); i += daysPerWeek {
		weeks = append(weeks, g.Days[i:i+daysPerWeek])
	}
	return weeks
}

// Range returns the first and last displayed day.
func (g Grid) Range() (time.Time, time.Time) {
	if len(g.Days) == 0 {
		return time.Time{}, time.Time{}
	}
	return g.Days[0].Date, g.Days[len(g.Days)-1].Date
}

// Weekdays returns the column headers in display order.
func (g Grid) Weekdays() []time.Weekday {
	out := make([]time.Weekday, daysPerWeek)
	for i := range out {
		out[i] = (g.WeekStart + time.Weekday(i)) % daysPerWeek
	}
	return out
}

type options struct {
	weekStart time.Weekday
	now       func() time.Time
	loc       *time.Location
}

// Option customizes grid construction.
type Option func(*options)

// WithWeekStart sets the first column of the grid. Sunday by default.
func WithWeekStart(d time.Weekday) Option {
	return func(o *options) { o.weekStart = d % daysPerWeek }
}

// WithClock sets the clock used to flag today.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the zone in which due dates are assigned to days.
// The reference date's location is used by default.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

func buildOptions(ref time.Time, opts []Option) options {
	o := options{weekStart: time.Sunday, now: time.Now, loc: ref.Location()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.loc == nil {
		o.loc = time.Local
	}
	return o
}

// BuildMonthGrid lays out the month containing referenceDate, extended to
// whole weeks, and buckets tasks by the calendar day of their due date.
// Tasks without a due date, or due outside the displayed range, are not
// placed. The grid always holds 35 or 42 cells: a month that fits in four
// rows gets a trailing week from the next month.
func BuildMonthGrid(tasks []model.Task, referenceDate time.Time, opts ...Option) Grid {
	o := buildOptions(referenceDate, opts)
	ref := referenceDate.In(o.loc)

	year, month, _ := ref.Date()
	first := startOfDay(year, month, 1, o.loc)
	last := startOfDay(year, month+1, 0, o.loc)

	lead := (int(first.Weekday()) - int(o.weekStart) + daysPerWeek) % daysPerWeek
	trail := (int(o.weekStart) + daysPerWeek - 1 - int(last.Weekday())) % daysPerWeek
	count := lead + last.Day() + trail
	if count < minWeeks*daysPerWeek {
		count += daysPerWeek
	}

	buckets := bucketByDay(tasks, o.loc)
	todayKey := o.now().In(o.loc).Format(dayKeyFmt)

	days := make([]Day, count)
	for i := range days {
		date := startOfDay(year, month, 1-lead+i, o.loc)
		key := date.Format(dayKeyFmt)
		bucket := buckets[key]
		if bucket == nil {
			bucket = []model.Task{}
		}
		days[i] = Day{
			Date:           date,
			IsCurrentMonth: date.Month() == month,
			IsToday:        key == todayKey,
			Tasks:          bucket,
		}
	}

	return Grid{Month: first, WeekStart: o.weekStart, Days: days}
}

// startOfDay returns the first instant of the calendar day y-m-d, with d
// normalized like time.Date. Where a DST change skips midnight the day
// starts after the gap, not at 23:00 of the day before.
func startOfDay(y int, m time.Month, d int, loc *time.Location) time.Time {
	y, m, d = time.Date(y, m, d, 12, 0, 0, 0, loc).Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	for t.Day() != d {
		t = t.Add(time.Hour)
	}
	return t
}

func bucketByDay(tasks []model.Task, loc *time.Location) map[string][]model.Task {
	buckets := make(map[string][]model.Task)
	for _, task := range tasks {
		if task.DueDate == nil {
			continue
		}
		key := task.DueDate.In(loc).Format(dayKeyFmt)
		buckets[key] = append(buckets[key], task)
	}
	return buckets
}
