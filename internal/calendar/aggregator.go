package calendar

import (
	"sync"
	"time"

	"todo-planner/internal/model"
)

type memoKey struct {
	version   uint64
	day       string
	today     string
	weekStart time.Weekday
	loc       string
}

// Aggregator memoizes the last grid it built. The cache key is the caller's
// task-list version plus the reference day, the current day, week start and
// location, so a grid is rebuilt whenever the list changes, the visible month
// moves or the date rolls over.
type Aggregator struct {
	mu   sync.Mutex
	opts []Option
	key  memoKey
	grid Grid
	ok   bool
}

func NewAggregator(opts ...Option) *Aggregator {
	return &Aggregator{opts: opts}
}

// MonthGrid returns the grid for tasks at referenceDate. version must change
// whenever tasks changes.
func (a *Aggregator) MonthGrid(version uint64, tasks []model.Task, referenceDate time.Time) Grid {
	o := buildOptions(referenceDate, a.opts)
	key := memoKey{
		version:   version,
		day:       referenceDate.In(o.loc).Format(dayKeyFmt),
		today:     o.now().In(o.loc).Format(dayKeyFmt),
		weekStart: o.weekStart,
		loc:       o.loc.String(),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ok && a.key == key {
		return a.grid
	}
	a.grid = BuildMonthGrid(tasks, referenceDate, a.opts...)
	a.key = key
	a.ok = true
	return a.grid
}

// Invalidate drops the memoized grid.
func (a *Aggregator) Invalidate() {
	a.mu.Lock()
	a.ok = false
	a.mu.Unlock()
}
