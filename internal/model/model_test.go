package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"untiscal/internal/apperrors"
	"untiscal/internal/model"
)

func at(h, m int) time.Time {
	return time.Date(2017, time.September, 4, h, m, 0, 0, time.UTC)
}

func period(id int, sh, sm, eh, em int, subjects ...int) model.Period {
	p := model.Period{
		ID:        id,
		StartTime: at(sh, sm),
		EndTime:   at(eh, em),
		Classes:   []model.Class{{ID: 1, Name: "1a", LongName: "Class 1a"}},
		Rooms:     []model.Room{{ID: 7, Name: "R7"}},
	}
	for _, s := range subjects {
		p.Subjects = append(p.Subjects, model.Subject{ID: s, Name: "S"})
	}
	return p
}

func TestPeriodMerge_Adjacent(t *testing.T) {
	p1 := period(10, 10, 0, 10, 45, 3)
	p2 := period(11, 10, 45, 11, 30, 3)

	require.True(t, p1.Mergeable(p2))
	merged, err := p1.Merge(p2)
	require.NoError(t, err)
	assert.Equal(t, 10, merged.ID)
	assert.Equal(t, at(10, 0), merged.StartTime)
	assert.Equal(t, at(11, 30), merged.EndTime)
}

func TestPeriodMerge_GapTooLarge(t *testing.T) {
	p1 := period(10, 10, 0, 10, 45, 3)
	p3 := period(12, 11, 10, 11, 55, 3)
	require.False(t, p1.Mergeable(p3))

	_, err := p1.Merge(p3)
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPeriodMerge_ExactTolerance(t *testing.T) {
	p1 := period(10, 10, 0, 10, 45, 3)
	p2 := period(11, 11, 0, 11, 45, 3)
	require.True(t, p1.Mergeable(p2))
}

func TestPeriodMerge_DifferentSubjects(t *testing.T) {
	p1 := period(10, 10, 0, 10, 45, 3)
	p4 := period(13, 10, 50, 11, 35, 4)
	require.False(t, p1.Mergeable(p4))
}

func TestPeriodMerge_SetEqualityIgnoresOrder(t *testing.T) {
	p1 := period(10, 10, 0, 10, 45, 3, 4)
	p2 := period(11, 10, 45, 11, 30, 4, 3)
	require.True(t, p1.Mergeable(p2))
}

func TestPeriodMerge_KeepsLaterEnd(t *testing.T) {
	outer := period(10, 10, 0, 12, 0, 3)
	inner := period(11, 10, 30, 11, 0, 3)
	merged, err := outer.Merge(inner)
	require.NoError(t, err)
	assert.Equal(t, at(12, 0), merged.EndTime)
}

func TestYearContains(t *testing.T) {
	y := model.Year{
		ID:        1,
		StartDate: time.Date(2017, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2018, 7, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, y.Contains(y.StartDate))
	assert.True(t, y.Contains(y.EndDate))
	assert.True(t, y.Contains(at(10, 0)))
	assert.False(t, y.Contains(y.EndDate.Add(time.Second)))
	assert.False(t, y.Contains(y.StartDate.Add(-time.Second)))

	// unlike holidays, a year ends at midnight of its last day
	assert.False(t, y.Contains(time.Date(2018, 7, 31, 12, 0, 0, 0, time.UTC)))
}

func TestHolidayContainsWholeLastDay(t *testing.T) {
	h := model.Holiday{
		StartDate: time.Date(2017, 12, 23, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2018, 1, 6, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, h.Contains(time.Date(2018, 1, 6, 15, 0, 0, 0, time.UTC)))
	assert.False(t, h.Contains(time.Date(2018, 1, 7, 0, 0, 0, 0, time.UTC)))
}

func TestAttrLookup(t *testing.T) {
	c := model.Class{ID: 3, Name: "2b", Active: true, Department: &model.Department{ID: 9}}
	v, ok := c.Attr("department")
	require.True(t, ok)
	assert.Equal(t, 9, v)

	_, ok = c.Attr("building")
	assert.False(t, ok)

	r := model.Room{ID: 1, Building: "Main"}
	v, ok = r.Attr("building")
	require.True(t, ok)
	assert.Equal(t, "Main", v)
}

func TestReferenceKind(t *testing.T) {
	assert.Equal(t, model.Reference{Kind: model.KindClass, ID: 5}, model.ClassRef(model.Class{ID: 5}))
	assert.Equal(t, model.KindSubject, model.SubjectRef(model.Subject{ID: 1}).Kind)
	assert.Equal(t, model.KindRoom, model.RoomRef(model.Room{ID: 1}).Kind)
	assert.Equal(t, 3, int(model.KindSubject))
	assert.True(t, model.KindStudent.Valid())
	assert.False(t, model.ReferenceKind(9).Valid())
	assert.Equal(t, "room:4", model.Reference{Kind: model.KindRoom, ID: 4}.String())
}

func TestJoinNames(t *testing.T) {
	rooms := []model.Room{{Name: "A1"}, {Name: "B2"}}
	assert.Equal(t, "A1, B2", model.JoinNames(rooms))
	assert.Equal(t, "", model.JoinNames([]model.Room{}))

	subjects := []model.Subject{{Name: "M", LongName: "Mathematik"}, {Name: "D", LongName: "Deutsch"}}
	assert.Equal(t, "Mathematik, Deutsch", model.JoinNames(subjects))
	assert.Equal(t, "Mathematik", subjects[0].String())
}
