package collection

import (
	"time"

	"untiscal/internal/model"
)

// Years is sorted ascending by start date at construction.
type Years struct {
	*Collection[model.Year]
}

func NewYears(items ...model.Year) *Years {
	c := New(items...)
	c.sortStable(byTime(func(y model.Year) time.Time { return y.StartDate }))
	return &Years{Collection: c}
}

// Contains returns the first year, in start-date order, whose bounds bracket t.
func (y *Years) Contains(t time.Time) (model.Year, bool) {
	return y.Find(func(year model.Year) bool { return year.Contains(t) })
}

// Holidays is sorted ascending by start date at construction.
type Holidays struct {
	*Collection[model.Holiday]
}

func NewHolidays(items ...model.Holiday) *Holidays {
	c := New(items...)
	c.sortStable(byTime(func(h model.Holiday) time.Time { return h.StartDate }))
	return &Holidays{Collection: c}
}

// On returns the first holiday covering t's day.
func (h *Holidays) On(t time.Time) (model.Holiday, bool) {
	return h.Find(func(hol model.Holiday) bool { return hol.Contains(t) })
}

// Timetable is sorted ascending by start time and has its mergeable
// neighbours merged at construction. Later Add calls neither sort nor merge.
type Timetable struct {
	*Collection[model.Period]
}

// NewTimetable sorts items by start time, then merges left to right: each
// period is compared with the last retained one and folded into it when
// model.Period.Mergeable holds. Chains merge progressively in one pass.
// Periods sharing an id collapse to the last one given before sorting.
func NewTimetable(items ...model.Period) *Timetable {
	c := New(items...)
	c.sortStable(byTime(func(p model.Period) time.Time { return p.StartTime }))

	merged := make([]model.Period, 0, c.Count())
	for p := range c.All() {
		if n := len(merged); n > 0 && merged[n-1].Mergeable(p) {
			// Mergeable was just checked, Merge cannot fail.
			m, _ := merged[n-1].Merge(p)
			merged[n-1] = m
			continue
		}
		merged = append(merged, p)
	}

	return &Timetable{Collection: New(merged...)}
}

// Merged reports whether no two adjacent periods are mergeable any more.
func (t *Timetable) Merged() bool {
	var prev *model.Period
	for p := range t.All() {
		if prev != nil && prev.Mergeable(p) {
			return false
		}
		cur := p
		prev = &cur
	}
	return true
}
