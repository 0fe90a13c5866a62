// Package ics renders timetables and holidays as iCalendar documents.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"untiscal/internal/model"
)

// DefaultProductID is used when Options.ProductID is empty.
const DefaultProductID = "-//untiscal//timetable export//EN"

// ContentType is the media type served for rendered calendars.
const ContentType = "text/calendar; charset=utf-8"

// Options identify the school a calendar belongs to.
type Options struct {
	Server    string
	School    string
	ProductID string
	// Now is stamped on every event. Zero means time.Now().
	Now time.Time
}

func (o Options) normalize() Options {
	if o.ProductID == "" {
		o.ProductID = DefaultProductID
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

func newCalendar(o Options) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(o.ProductID)
	cal.SetMethod(ical.MethodPublish)
	return cal
}

// PeriodUID is the event uid of a period: {server}-{school}-{periodId}.
func PeriodUID(o Options, periodID int) string {
	return fmt.Sprintf("%s-%s-%d", o.Server, o.School, periodID)
}

// PeriodCalendar renders one event per period, in the order given.
func PeriodCalendar(periods []model.Period, opts Options) string {
	opts = opts.normalize()
	cal := newCalendar(opts)

	for _, p := range periods {
		ev := cal.AddEvent(PeriodUID(opts, p.ID))
		ev.SetDtStampTime(opts.Now)
		ev.SetStartAt(p.StartTime)
		ev.SetEndAt(p.EndTime)
		ev.SetSummary(model.JoinNames(p.Subjects))
		ev.SetDescription(model.JoinNames(p.Classes))
		ev.SetLocation(model.JoinNames(p.Rooms))
	}

	return cal.Serialize()
}
