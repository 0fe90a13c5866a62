package collection_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"untiscal/internal/collection"
	"untiscal/internal/model"
)

func lesson(id int, sh, sm, eh, em int, subject int) model.Period {
	on := func(h, m int) time.Time { return time.Date(2017, 9, 4, h, m, 0, 0, time.UTC) }
	return model.Period{
		ID:        id,
		StartTime: on(sh, sm),
		EndTime:   on(eh, em),
		Classes:   []model.Class{{ID: 1, LongName: "1a"}},
		Subjects:  []model.Subject{{ID: subject, Name: "S"}},
		Rooms:     []model.Room{{ID: 7, Name: "R7"}},
	}
}

func TestTimetable_MergesAdjacentIdentical(t *testing.T) {
	tt := collection.NewTimetable(
		lesson(2, 10, 45, 11, 30, 3),
		lesson(1, 10, 0, 10, 45, 3),
	)
	require.Equal(t, 1, tt.Count())
	p, ok := tt.Get(1)
	require.True(t, ok)
	assert.Equal(t, 10, p.StartTime.Hour())
	assert.Equal(t, 11, p.EndTime.Hour())
	assert.Equal(t, 30, p.EndTime.Minute())
}

func TestTimetable_DoesNotMergeAcrossLargeGap(t *testing.T) {
	tt := collection.NewTimetable(
		lesson(1, 10, 0, 10, 45, 3),
		lesson(3, 11, 10, 11, 55, 3),
	)
	assert.Equal(t, []int{1, 3}, tt.IDs())
}

func TestTimetable_DoesNotMergeDifferentSubjects(t *testing.T) {
	tt := collection.NewTimetable(
		lesson(1, 10, 0, 10, 45, 3),
		lesson(4, 10, 50, 11, 35, 4),
	)
	assert.Equal(t, []int{1, 4}, tt.IDs())
}

func TestTimetable_ChainMergesInOnePass(t *testing.T) {
	tt := collection.NewTimetable(
		lesson(30, 9, 40, 10, 25, 3),
		lesson(10, 8, 0, 8, 45, 3),
		lesson(20, 8, 50, 9, 35, 3),
		lesson(40, 11, 0, 11, 45, 5),
	)
	require.Equal(t, []int{10, 40}, tt.IDs())
	first, _ := tt.Get(10)
	assert.Equal(t, 8, first.StartTime.Hour())
	assert.Equal(t, 10, first.EndTime.Hour())
	assert.Equal(t, 25, first.EndTime.Minute())
	assert.True(t, tt.Merged())
}

func TestTimetable_SortedAndIdempotent(t *testing.T) {
	tt := collection.NewTimetable(
		lesson(5, 13, 0, 13, 45, 6),
		lesson(1, 8, 0, 8, 45, 3),
		lesson(3, 10, 0, 10, 45, 4),
		lesson(2, 8, 45, 9, 30, 3),
		lesson(4, 11, 0, 11, 45, 4),
	)

	var prev time.Time
	for p := range tt.All() {
		assert.False(t, p.StartTime.Before(prev))
		prev = p.StartTime
	}
	assert.True(t, tt.Merged())

	again := collection.NewTimetable(tt.FindAll()...)
	assert.Equal(t, tt.FindAll(), again.FindAll())
}

func TestTimetable_DuplicateIDsCollapse(t *testing.T) {
	p := lesson(1, 10, 0, 10, 45, 3)
	other := lesson(2, 12, 0, 12, 45, 9)
	tt := collection.NewTimetable(p, other, p)
	assert.Equal(t, []int{1, 2}, tt.IDs())
}

func TestTimetable_AddDoesNotResortOrMerge(t *testing.T) {
	tt := collection.NewTimetable(lesson(2, 10, 45, 11, 30, 7))
	tt.Add(lesson(1, 10, 0, 10, 45, 7))
	assert.Equal(t, []int{2, 1}, tt.IDs())
	assert.False(t, tt.Merged())
}

func TestTimetable_Empty(t *testing.T) {
	tt := collection.NewTimetable()
	assert.Equal(t, 0, tt.Count())
	assert.True(t, tt.Merged())
}
