package web

import (
	"net/http"
	"time"

	"untiscal/internal/collection"
	"untiscal/internal/ics"
	"untiscal/internal/model"
	"untiscal/internal/timetable"
	"untiscal/internal/untisdate"
)

// timetableWriter renders an aggregated timetable.
type timetableWriter func(s *Server, w http.ResponseWriter, r *http.Request, tt *collection.Timetable)

func asJSON(_ *Server, w http.ResponseWriter, _ *http.Request, tt *collection.Timetable) {
	writeJSON(w, http.StatusOK, tt.FindAll())
}

func asCalendar(s *Server, w http.ResponseWriter, r *http.Request, tt *collection.Timetable) {
	doc := ics.PeriodCalendar(tt.FindAll(), s.calendarOptions(r))
	w.Header().Set("Content-Type", ics.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

func (s *Server) calendarOptions(r *http.Request) ics.Options {
	return ics.Options{
		Server:    r.PathValue("server"),
		School:    r.PathValue("school"),
		ProductID: s.cfg.Calendar.ProductID,
		Now:       s.now(),
	}
}

// dateRange reads startDate/endDate (YYYY-MM-DD), defaulting to the year's
// bounds.
func (s *Server) dateRange(r *http.Request, year model.Year) (time.Time, time.Time, error) {
	start, end := year.StartDate, year.EndDate
	q := r.URL.Query()
	if v := q.Get("startDate"); v != "" {
		t, err := untisdate.ParseISODate(v, s.loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := untisdate.ParseISODate(v, s.loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}
	return start, end, nil
}

func (s *Server) respondTimetable(w http.ResponseWriter, r *http.Request, src *timetable.Source,
	year model.Year, refs []model.Reference, out timetableWriter) error {
	start, end, err := s.dateRange(r, year)
	if err != nil {
		return err
	}
	tt, err := src.Aggregate(r.Context(), refs, start, end)
	if err != nil {
		return err
	}
	out(s, w, r, tt)
	return nil
}

func (s *Server) classTimetable(out timetableWriter) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
		yearID, err := pathID(r, "yearId")
		if err != nil {
			return err
		}
		ids, err := timetable.ParseIDList(r.PathValue("ids"))
		if err != nil {
			return err
		}
		year, err := src.YearByID(r.Context(), yearID)
		if err != nil {
			return err
		}
		classes, err := src.ResolveClasses(r.Context(), year, ids)
		if err != nil {
			return err
		}
		refs := timetable.References(classes, model.ClassRef)
		return s.respondTimetable(w, r, src, year, refs, out)
	}
}

func (s *Server) subjectTimetable(out timetableWriter) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
		ids, err := timetable.ParseIDList(r.PathValue("ids"))
		if err != nil {
			return err
		}
		year, err := src.CurrentYear(r.Context(), s.now().In(s.loc))
		if err != nil {
			return err
		}
		subjects, err := src.ResolveSubjects(r.Context(), ids)
		if err != nil {
			return err
		}
		refs := timetable.References(subjects, model.SubjectRef)
		return s.respondTimetable(w, r, src, year, refs, out)
	}
}

func (s *Server) roomTimetable(out timetableWriter) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
		ids, err := timetable.ParseIDList(r.PathValue("ids"))
		if err != nil {
			return err
		}
		year, err := src.CurrentYear(r.Context(), s.now().In(s.loc))
		if err != nil {
			return err
		}
		rooms, err := src.ResolveRooms(r.Context(), ids)
		if err != nil {
			return err
		}
		refs := timetable.References(rooms, model.RoomRef)
		return s.respondTimetable(w, r, src, year, refs, out)
	}
}

func (s *Server) handleHolidayCalendar(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
	holidays, err := src.Holidays(r.Context())
	if err != nil {
		return err
	}
	doc := ics.HolidayCalendar(holidays.FindAll(), s.calendarOptions(r))
	w.Header().Set("Content-Type", ics.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
	return nil
}
