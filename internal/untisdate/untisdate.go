// Package untisdate converts the upstream compact numeric date and time
// encodings (YYYYMMDD and HHMM integers) to and from time.Time.
package untisdate

import (
	"strings"
	"time"

	"untiscal/internal/apperrors"
)

// ISODateLayout is the date layout accepted in HTTP query parameters.
const ISODateLayout = "2006-01-02"

// ParseDate returns midnight of the YYYYMMDD date in loc. A nil loc means time.Local.
func ParseDate(v int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	year := v / 10000
	month := time.Month(v / 100 % 100)
	day := v % 100
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// ParseTime returns date's calendar day at the HHMM wall-clock time v.
// v must be a valid encoding (hour 0-23, minute 0-59).
func ParseTime(date time.Time, v int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, v/100, v%100, 0, 0, date.Location())
}

// FormatDate is the inverse of ParseDate.
func FormatDate(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// FormatTime is the inverse of ParseTime.
func FormatTime(t time.Time) int {
	return t.Hour()*100 + t.Minute()
}

// ParseISODate parses a YYYY-MM-DD query value at midnight in loc.
func ParseISODate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(ISODateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, apperrors.Invalid("malformed date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
