package calendar

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"todo-planner/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func taskDue(title string, due *time.Time) model.Task {
	return model.Task{ID: uuid.New(), Title: title, DueDate: due}
}

func TestBuildMonthGridFebruary2026(t *testing.T) {
	grid := BuildMonthGrid(nil, date(2026, 2, 15), fixedClock(date(2026, 10, 14)))

	start, end := grid.Range()
	if !start.Equal(date(2026, 2, 1)) {
		t.Errorf("grid starts %s, want 2026-02-01", start.Format(dayKeyFmt))
	}
	if start.Weekday() != time.Sunday {
		t.Errorf("grid starts on %s, want Sunday", start.Weekday())
	}
	if len(grid.Days) != 35 {
		t.Fatalf("cells = %d, want 35", len(grid.Days))
	}
	if !end.Equal(date(2026, 3, 7)) {
		t.Errorf("grid ends %s, want 2026-03-07", end.Format(dayKeyFmt))
	}

	inMonth := 0
	for _, d := range grid.Days {
		if d.IsCurrentMonth {
			inMonth++
		}
		if d.Tasks == nil {
			t.Errorf("%s: bucket is nil, want empty", d.Date.Format(dayKeyFmt))
		}
	}
	if inMonth != 28 {
		t.Errorf("current-month days = %d, want 28", inMonth)
	}
}

func TestBuildMonthGridCellCount(t *testing.T) {
	for year := 2024; year <= 2028; year++ {
		for month := time.January; month <= time.December; month++ {
			for ws := time.Sunday; ws <= time.Saturday; ws++ {
				grid := BuildMonthGrid(nil, date(year, month, 10), WithWeekStart(ws))
				n := len(grid.Days)
				if n != 35 && n != 42 {
					t.Fatalf("%d-%02d week start %s: %d cells", year, month, ws, n)
				}
				if grid.Days[0].Date.Weekday() != ws {
					t.Fatalf("%d-%02d: first cell is %s, want %s", year, month, grid.Days[0].Date.Weekday(), ws)
				}
				if len(grid.Weeks()) != n/7 {
					t.Fatalf("%d-%02d: weeks = %d", year, month, len(grid.Weeks()))
				}

				// Every day of the month is present exactly once and flagged.
				seen := 0
				for i, d := range grid.Days {
					if i > 0 && !d.Date.Equal(grid.Days[i-1].Date.AddDate(0, 0, 1)) {
						t.Fatalf("%d-%02d: cells not consecutive at %d", year, month, i)
					}
					if d.IsCurrentMonth {
						seen++
					}
				}
				lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
				if seen != lastDay {
					t.Fatalf("%d-%02d: %d current-month days, want %d", year, month, seen, lastDay)
				}
			}
		}
	}
}

func TestBuildMonthGridLeapFebruary(t *testing.T) {
	grid := BuildMonthGrid(nil, date(2028, 2, 1), WithWeekStart(time.Monday))
	var last Day
	for _, d := range grid.Days {
		if d.IsCurrentMonth {
			last = d
		}
	}
	if last.Date.Day() != 29 {
		t.Errorf("last day of February 2028 = %d, want 29", last.Date.Day())
	}
}

func TestBuildMonthGridBucketsTasks(t *testing.T) {
	// 2026-03 with a Sunday start shows 2026-03-01 .. 2026-04-04.
	inMonth := time.Date(2026, 3, 10, 18, 45, 0, 0, time.UTC)
	sameDay := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	leading := date(2026, 2, 28) // not displayed, March 1st is a Sunday
	trailing := date(2026, 4, 2)
	outside := date(2026, 6, 1)

	tasks := []model.Task{
		taskDue("a", &inMonth),
		taskDue("no due date", nil),
		taskDue("b", &sameDay),
		taskDue("trailing", &trailing),
		taskDue("outside", &outside),
		taskDue("leading", &leading),
	}

	grid := BuildMonthGrid(tasks, date(2026, 3, 1), fixedClock(date(2026, 3, 10)))

	placed := map[string]int{}
	for _, d := range grid.Days {
		for _, task := range d.Tasks {
			placed[task.Title]++
		}
		switch d.Date.Format(dayKeyFmt) {
		case "2026-03-10":
			if len(d.Tasks) != 2 || d.Tasks[0].Title != "a" || d.Tasks[1].Title != "b" {
				t.Errorf("2026-03-10 bucket = %v", titles(d.Tasks))
			}
			if !d.IsToday {
				t.Error("2026-03-10 should be today")
			}
		case "2026-04-02":
			if len(d.Tasks) != 1 || d.IsCurrentMonth {
				t.Errorf("trailing day: tasks=%v currentMonth=%v", titles(d.Tasks), d.IsCurrentMonth)
			}
		default:
			if d.IsToday {
				t.Errorf("%s flagged as today", d.Date.Format(dayKeyFmt))
			}
		}
	}

	for title, want := range map[string]int{"a": 1, "b": 1, "trailing": 1, "no due date": 0, "outside": 0, "leading": 0} {
		if placed[title] != want {
			t.Errorf("task %q placed %d times, want %d", title, placed[title], want)
		}
	}
}

func TestBuildMonthGridLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 20:00 UTC on the 9th is the 10th in Tokyo.
	due := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)
	grid := BuildMonthGrid([]model.Task{taskDue("late", &due)}, date(2026, 3, 1), WithLocation(tokyo))
	for _, d := range grid.Days {
		if len(d.Tasks) > 0 && d.Date.Day() != 10 {
			t.Errorf("task bucketed on %s, want the 10th", d.Date.Format(dayKeyFmt))
		}
	}
}

func TestGridWeekdays(t *testing.T) {
	grid := BuildMonthGrid(nil, date(2026, 3, 1), WithWeekStart(time.Monday))
	got := grid.Weekdays()
	if got[0] != time.Monday || got[6] != time.Sunday {
		t.Errorf("weekdays = %v", got)
	}
}

func TestAggregatorMemoizes(t *testing.T) {
	due := date(2026, 3, 5)
	tasks := []model.Task{taskDue("a", &due)}
	agg := NewAggregator(fixedClock(date(2026, 3, 5)))

	first := agg.MonthGrid(1, tasks, date(2026, 3, 1))
	// Same version: the cached grid is returned even if the slice differs.
	cached := agg.MonthGrid(1, nil, date(2026, 3, 1))
	if countTasks(cached) != countTasks(first) {
		t.Error("expected memoized grid for unchanged version")
	}

	rebuilt := agg.MonthGrid(2, nil, date(2026, 3, 1))
	if countTasks(rebuilt) != 0 {
		t.Error("expected new grid for new version")
	}

	moved := agg.MonthGrid(2, tasks, date(2026, 4, 1))
	if !moved.Month.Equal(date(2026, 4, 1)) {
		t.Errorf("month = %s, want April", moved.Month.Format(dayKeyFmt))
	}

	agg.Invalidate()
	again := agg.MonthGrid(2, tasks, date(2026, 4, 1))
	if !again.Month.Equal(date(2026, 4, 1)) {
		t.Error("grid after invalidate should be rebuilt for April")
	}
}

func countTasks(g Grid) int {
	n := 0
	for _, d := range g.Days {
		n += len(d.Tasks)
	}
	return n
}

func titles(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestBuildMonthGridMidnightDST(t *testing.T) {
	// Chile moves clocks from 00:00 to 01:00 on 2026-09-06.
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	fifth := time.Date(2026, 9, 5, 10, 0, 0, 0, loc)
	sixth := time.Date(2026, 9, 6, 10, 0, 0, 0, loc)
	tasks := []model.Task{taskDue("fifth", &fifth), taskDue("sixth", &sixth)}

	grid := BuildMonthGrid(tasks, time.Date(2026, 9, 15, 12, 0, 0, 0, loc), WithLocation(loc))

	if len(grid.Days) != 35 {
		t.Fatalf("cells = %d, want 35", len(grid.Days))
	}
	seen := make(map[string]bool)
	for i, d := range grid.Days {
		key := d.Date.Format(dayKeyFmt)
		if seen[key] {
			t.Errorf("%s appears twice", key)
		}
		seen[key] = true
		if i > 0 && d.Date.Weekday() != (grid.Days[i-1].Date.Weekday()+1)%7 {
			t.Errorf("%s follows %s", key, grid.Days[i-1].Date.Format(dayKeyFmt))
		}
		switch key {
		case "2026-09-05":
			if got := titles(d.Tasks); len(got) != 1 || got[0] != "fifth" {
				t.Errorf("09-05 tasks = %v", got)
			}
		case "2026-09-06":
			if got := titles(d.Tasks); len(got) != 1 || got[0] != "sixth" {
				t.Errorf("09-06 tasks = %v", got)
			}
			if d.Date.Hour() != 1 {
				t.Errorf("09-06 starts at %s, want 01:00", d.Date.Format("15:04"))
			}
		}
	}
	if !seen["2026-09-06"] {
		t.Error("2026-09-06 is missing from the grid")
	}
	if countTasks(grid) != 2 {
		t.Errorf("placed %d tasks, want 2", countTasks(grid))
	}
}
