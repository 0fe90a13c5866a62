package web

import (
	"net/http"
	"net/url"
	"strconv"

	"untiscal/internal/apperrors"
	"untiscal/internal/collection"
	"untiscal/internal/model"
	"untiscal/internal/timetable"
)

// record is what list and detail endpoints serve.
type record interface {
	model.Entity
	model.Attributed
}

// filters turns the query string into attribute criteria (?active=true&name=1a).
func filters(q url.Values) map[string]any {
	out := make(map[string]any, len(q))
	for name, values := range q {
		if len(values) == 0 {
			continue
		}
		out[name] = values[0]
	}
	return out
}

func writeList[T record](w http.ResponseWriter, r *http.Request, c *collection.Collection[T]) error {
	items := c.FindAll(collection.Where[T](filters(r.URL.Query())))
	writeJSON(w, http.StatusOK, items)
	return nil
}

func writeOne[T record](w http.ResponseWriter, r *http.Request, c *collection.Collection[T], kind string) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	e, ok := c.Get(id)
	if !ok {
		return apperrors.NotFound("the specified %s does not exist", kind)
	}
	writeJSON(w, http.StatusOK, e)
	return nil
}

func pathID(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperrors.Invalid("malformed %s %q", name, raw)
	}
	return id, nil
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
	years, err := src.Years(r.Context())
	if err != nil {
		return err
	}
	return writeList(w, r, years.Collection)
}

func (s *Server) handleYear(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
	years, err := src.Years(r.Context())
	if err != nil {
		return err
	}
	return writeOne(w, r, years.Collection, "year")
}

func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
	holidays, err := src.Holidays(r.Context())
	if err != nil {
		return err
	}
	return writeList(w, r, holidays.Collection)
}

func (s *Server) handleHoliday(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
	holidays, err := src.Holidays(r.Context())
	if err != nil {
		return err
	}
	return writeOne(w, r, holidays.Collection, "holiday")
}

func (s *Server) handleDepartments(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
	departments, err := src.Departments(r.Context())
	if err != nil {
		return err
	}
	return writeList(w, r, departments)
}

func (s *Server) handleDepartment(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
	departments, err := src.Departments(r.Context())
	if err != nil {
		return err
	}
	return writeOne(w, r, departments, "department")
}

func (s *Server) classesOf(r *http.Request, src *timetable.Source) (*collection.Collection[model.Class], error) {
	yearID, err := pathID(r, "yearId")
	if err != nil {
		return nil, err
	}
	year, err := src.YearByID(r.Context(), yearID)
	if err != nil {
		return nil, err
	}
	return src.ClassesForYear(r.Context(), year)
}

func (s *Server) handleClasses(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
	classes, err := s.classesOf(r, src)
	if err != nil {
		return err
	}
	return writeList(w, r, classes)
}

func (s *Server) handleClass(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
	classes, err := s.classesOf(r, src)
	if err != nil {
		return err
	}
	return writeOne(w, r, classes, "class")
}

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
	subjects, err := src.Subjects(r.Context())
	if err != nil {
		return err
	}
	return writeList(w, r, subjects)
}

func (s *Server) handleSubject(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
	subjects, err := src.Subjects(r.Context())
	if err != nil {
		return err
	}
	return writeOne(w, r, subjects, "subject")
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
	rooms, err := src.Rooms(r.Context())
	if err != nil {
		return err
	}
	return writeList(w, r, rooms)
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request, src *timetable.Source) error {
	rooms, err := src.Rooms(r.Context())
	if err != nil {
		return err
	}
	return writeOne(w, r, rooms, "room")
}
