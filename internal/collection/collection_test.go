package collection_test

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"untiscal/internal/collection"
	"untiscal/internal/model"
)

func rooms() []model.Room {
	return []model.Room{
		{ID: 3, Name: "C3", Active: true, Building: "North"},
		{ID: 1, Name: "A1", Active: false, Building: "Main"},
		{ID: 2, Name: "B2", Active: true, Building: "Main"},
	}
}

func TestAddGet(t *testing.T) {
	c := collection.New[model.Room]()
	r := model.Room{ID: 42, Name: "Gym"}
	c.Add(r)

	got, ok := c.Get(42)
	require.True(t, ok)
	assert.Equal(t, r, got)

	_, ok = c.Get(7)
	assert.False(t, ok)
}

func TestAddOverwritesAndKeepsSlot(t *testing.T) {
	c := collection.New(rooms()...)
	c.Add(model.Room{ID: 1, Name: "A1-renamed"})

	assert.Equal(t, 3, c.Count())
	assert.Equal(t, []int{3, 1, 2}, c.IDs())
	got, _ := c.Get(1)
	assert.Equal(t, "A1-renamed", got.Name)
}

func TestAddIsChainable(t *testing.T) {
	c := collection.New[model.Subject]().
		Add(model.Subject{ID: 1}).
		Add(model.Subject{ID: 2})
	assert.Equal(t, 2, c.Count())
}

func TestRemove(t *testing.T) {
	c := collection.New(rooms()...)
	c.Remove(model.Room{ID: 3})
	c.RemoveID(99)
	c.RemoveID(1)

	assert.Equal(t, []int{2}, c.IDs())
	_, ok := c.Get(3)
	assert.False(t, ok)
}

func TestFindAll_EmptyPredicateReturnsSnapshot(t *testing.T) {
	c := collection.New(rooms()...)
	all := c.FindAll()
	require.Len(t, all, 3)

	// Mutating the snapshot or the collection afterwards must not affect the other.
	all[0].Name = "changed"
	c.RemoveID(2)
	first, _ := c.Get(3)
	assert.Equal(t, "C3", first.Name)
	assert.Len(t, all, 3)
}

func TestFindAll_IndependentOfInsertionOrder(t *testing.T) {
	a := collection.New(rooms()...)
	reversed := rooms()
	slices.Reverse(reversed)
	b := collection.New(reversed...)

	ids := func(rs []model.Room) []int {
		out := []int{}
		for _, r := range rs {
			out = append(out, r.ID)
		}
		slices.Sort(out)
		return out
	}
	assert.Equal(t, ids(a.FindAll()), ids(b.FindAll()))
}

func TestFind_EmptyPredicateReturnsFirst(t *testing.T) {
	c := collection.New(rooms()...)
	got, ok := c.Find()
	require.True(t, ok)
	assert.Equal(t, 3, got.ID)

	_, ok = collection.New[model.Room]().Find()
	assert.False(t, ok)
}

func TestWhere(t *testing.T) {
	c := collection.New(rooms()...)

	main := c.FindAll(collection.Where[model.Room](map[string]any{"building": "Main"}))
	require.Len(t, main, 2)
	assert.Equal(t, 1, main[0].ID)

	activeMain := c.FindAll(collection.Where[model.Room](map[string]any{
		"building": "Main",
		"active":   true,
	}))
	require.Len(t, activeMain, 1)
	assert.Equal(t, 2, activeMain[0].ID)

	// Every pair must match, not just the first one.
	none := c.FindAll(collection.Where[model.Room](map[string]any{
		"building": "Main",
		"name":     "C3",
	}))
	assert.Empty(t, none)

	unknown := c.FindAll(collection.Where[model.Room](map[string]any{"color": "red"}))
	assert.Empty(t, unknown)

	all := c.FindAll(collection.Where[model.Room](map[string]any{}))
	assert.Len(t, all, 3)
}

func TestWhere_StringExpectationsFromQuery(t *testing.T) {
	c := collection.New(rooms()...)
	got, ok := c.Find(collection.Where[model.Room](map[string]any{"active": "false"}))
	require.True(t, ok)
	assert.Equal(t, 1, got.ID)

	got, ok = c.Find(collection.Where[model.Room](map[string]any{"id": "2"}))
	require.True(t, ok)
	assert.Equal(t, "B2", got.Name)
}

func TestAllIsRestartable(t *testing.T) {
	c := collection.New(rooms()...)
	count := func() int {
		n := 0
		for range c.All() {
			n++
		}
		return n
	}
	assert.Equal(t, 3, count())
	assert.Equal(t, 3, count())

	for r := range c.All() {
		assert.Equal(t, 3, r.ID)
		break
	}
}

func TestNullsLast(t *testing.T) {
	cmp := func(a, b int) int { return a - b }
	one, two := 1, 2

	assert.Less(t, collection.NullsLast(&one, &two, cmp), 0)
	assert.Greater(t, collection.NullsLast(&two, &one, cmp), 0)
	assert.Equal(t, 1, collection.NullsLast(nil, &one, cmp))
	assert.Equal(t, -1, collection.NullsLast(&one, nil, cmp))
	assert.Equal(t, 0, collection.NullsLast[int](nil, nil, cmp))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYears_SortedAndContains(t *testing.T) {
	years := collection.NewYears(
		model.Year{ID: 3, Name: "2018/19", StartDate: day(2018, 9, 1), EndDate: day(2019, 7, 31)},
		model.Year{ID: 9, Name: "unknown"},
		model.Year{ID: 1, Name: "2016/17", StartDate: day(2016, 9, 1), EndDate: day(2017, 7, 31)},
		model.Year{ID: 2, Name: "2017/18", StartDate: day(2017, 9, 1), EndDate: day(2018, 7, 31)},
	)
	assert.Equal(t, []int{1, 2, 3, 9}, years.IDs())

	var prev time.Time
	for y := range years.All() {
		if y.StartDate.IsZero() {
			continue
		}
		assert.False(t, y.StartDate.Before(prev))
		prev = y.StartDate
	}

	got, ok := years.Contains(day(2017, 9, 4).Add(18 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, 2, got.ID)

	_, ok = years.Contains(day(2017, 8, 15))
	assert.False(t, ok)
}

func TestHolidays_Sorted(t *testing.T) {
	hs := collection.NewHolidays(
		model.Holiday{ID: 5, Name: "Easter", StartDate: day(2018, 3, 26), EndDate: day(2018, 4, 6)},
		model.Holiday{ID: 4, Name: "Xmas", StartDate: day(2017, 12, 23), EndDate: day(2018, 1, 6)},
	)
	assert.Equal(t, []int{4, 5}, hs.IDs())

	h, ok := hs.On(day(2018, 1, 6).Add(10 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, "Xmas", h.Name)

	_, ok = hs.On(day(2018, 2, 1))
	assert.False(t, ok)
}
