package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "untiscal/internal/log"
	"untiscal/internal/model"
)

// HolidayUID is the event uid of a holiday: {server}-{school}-holiday-{id}.
func HolidayUID(o Options, holidayID int) string {
	return fmt.Sprintf("%s-%s-holiday-%d", o.Server, o.School, holidayID)
}

func holidayRule(h model.Holiday) rrule.ROption {
	return rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: h.StartDate,
		Until:   h.EndDate,
	}
}

// HolidayDays returns the midnight of every day h covers.
func HolidayDays(h model.Holiday) ([]time.Time, error) {
	if h.EndDate.Before(h.StartDate) {
		return nil, nil
	}
	r, err := rrule.NewRRule(holidayRule(h))
	if err != nil {
		return nil, fmt.Errorf("holiday %d: %w", h.ID, err)
	}
	return r.All(), nil
}

// HolidayCalendar renders one all-day event per holiday. Holidays longer than
// a day repeat daily through their last day; the rule carries a COUNT since
// DTSTART is a floating DATE.
func HolidayCalendar(holidays []model.Holiday, opts Options) string {
	opts = opts.normalize()
	cal := newCalendar(opts)

	for _, h := range holidays {
		if h.EndDate.Before(h.StartDate) {
			appLog.Warn("skipping holiday ending before it starts", "holiday_id", h.ID)
			continue
		}
		days, err := HolidayDays(h)
		if err != nil {
			appLog.Warn("skipping holiday", "holiday_id", h.ID, "error", err)
			continue
		}

		ev := cal.AddEvent(HolidayUID(opts, h.ID))
		ev.SetDtStampTime(opts.Now)
		ev.SetAllDayStartAt(h.StartDate)
		ev.SetAllDayEndAt(h.StartDate.AddDate(0, 0, 1))
		ev.SetSummary(h.LongName)
		ev.SetDescription(h.Name)

		if len(days) > 1 {
			opt := rrule.ROption{Freq: rrule.DAILY, Count: len(days)}
			ev.AddProperty(ical.ComponentPropertyRrule, opt.RRuleString())
		}
	}

	return cal.Serialize()
}
