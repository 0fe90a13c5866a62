package untisdate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"untiscal/internal/apperrors"
	"untiscal/internal/untisdate"
)

func TestParseDate(t *testing.T) {
	got := untisdate.ParseDate(20170904, time.UTC)
	require.Equal(t, time.Date(2017, time.September, 4, 0, 0, 0, 0, time.UTC), got)
	require.Equal(t, 20170904, untisdate.FormatDate(got))
}

func TestParseDate_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	got := untisdate.ParseDate(20180101, loc)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 0, got.Hour())
}

func TestParseTime(t *testing.T) {
	date := untisdate.ParseDate(20170904, time.UTC)
	got := untisdate.ParseTime(date, 1815)
	require.Equal(t, time.Date(2017, time.September, 4, 18, 15, 0, 0, time.UTC), got)
	require.Equal(t, 1815, untisdate.FormatTime(got))

	early := untisdate.ParseTime(date, 745)
	assert.Equal(t, 7, early.Hour())
	assert.Equal(t, 45, early.Minute())
	assert.Equal(t, 745, untisdate.FormatTime(early))

	midnight := untisdate.ParseTime(date, 0)
	assert.Equal(t, date, midnight)
}

func TestFormatRoundTrip(t *testing.T) {
	for _, v := range []int{20000101, 20171231, 20240229, 19991001} {
		assert.Equal(t, v, untisdate.FormatDate(untisdate.ParseDate(v, time.UTC)))
	}
	date := untisdate.ParseDate(20170904, time.UTC)
	for _, v := range []int{0, 5, 100, 930, 1200, 2359} {
		assert.Equal(t, v, untisdate.FormatTime(untisdate.ParseTime(date, v)))
	}
}

func TestParseISODate(t *testing.T) {
	got, err := untisdate.ParseISODate("2017-09-04", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 20170904, untisdate.FormatDate(got))

	_, err = untisdate.ParseISODate("04.09.2017", time.UTC)
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestEndOfDay(t *testing.T) {
	d := untisdate.ParseDate(20170904, time.UTC)
	eod := untisdate.EndOfDay(d)
	assert.Equal(t, 20170904, untisdate.FormatDate(eod))
	assert.True(t, eod.Add(time.Nanosecond).Equal(d.AddDate(0, 0, 1)))
}
