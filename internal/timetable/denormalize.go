package timetable

import (
	"context"
	"time"

	"untiscal/internal/collection"
	appLog "untiscal/internal/log"
	"untiscal/internal/model"
	"untiscal/internal/untisdate"
)

// Resolver is the read-through lookup nested references are resolved with
// while records are denormalized. *Source implements it.
type Resolver interface {
	Years(ctx context.Context) (*collection.Years, error)
	Departments(ctx context.Context) (*collection.Collection[model.Department], error)
	ClassesForYear(ctx context.Context, year model.Year) (*collection.Collection[model.Class], error)
	Subjects(ctx context.Context) (*collection.Collection[model.Subject], error)
	Rooms(ctx context.Context) (*collection.Collection[model.Room], error)
}

var _ Resolver = (*Source)(nil)

// Upstream record shapes.

type rawYear struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StartDate int    `json:"startDate"`
	EndDate   int    `json:"endDate"`
}

func (r rawYear) year(loc *time.Location) model.Year {
	return model.Year{
		ID:        r.ID,
		Name:      r.Name,
		StartDate: untisdate.ParseDate(r.StartDate, loc),
		EndDate:   untisdate.ParseDate(r.EndDate, loc),
	}
}

type rawHoliday struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	LongName  string `json:"longName"`
	StartDate int    `json:"startDate"`
	EndDate   int    `json:"endDate"`
}

func (r rawHoliday) holiday(loc *time.Location) model.Holiday {
	return model.Holiday{
		ID:        r.ID,
		Name:      r.Name,
		LongName:  r.LongName,
		StartDate: untisdate.ParseDate(r.StartDate, loc),
		EndDate:   untisdate.ParseDate(r.EndDate, loc),
	}
}

type rawDepartment struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LongName string `json:"longName"`
}

func (r rawDepartment) department() model.Department {
	return model.Department{ID: r.ID, Name: r.Name, LongName: r.LongName}
}

type rawClass struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	LongName     string `json:"longName"`
	Active       bool   `json:"active"`
	DepartmentID *int   `json:"did"`
}

type rawSubject struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LongName string `json:"longName"`
	Active   bool   `json:"active"`
}

func (r rawSubject) subject() model.Subject {
	return model.Subject{ID: r.ID, Name: r.Name, LongName: r.LongName, Active: r.Active}
}

type rawRoom struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LongName string `json:"longName"`
	Active   bool   `json:"active"`
	Building string `json:"building"`
}

func (r rawRoom) room() model.Room {
	return model.Room{ID: r.ID, Name: r.Name, LongName: r.LongName, Active: r.Active, Building: r.Building}
}

type rawRef struct {
	ID int `json:"id"`
}

type rawPeriod struct {
	ID        int      `json:"id"`
	Date      int      `json:"date"`
	StartTime int      `json:"startTime"`
	EndTime   int      `json:"endTime"`
	Classes   []rawRef `json:"kl"`
	Subjects  []rawRef `json:"su"`
	Rooms     []rawRef `json:"ro"`
}

// denormalizeClass resolves the class's department, if it has one.
func denormalizeClass(ctx context.Context, r Resolver, raw rawClass) (model.Class, error) {
	c := model.Class{
		ID:       raw.ID,
		Name:     raw.Name,
		LongName: raw.LongName,
		Active:   raw.Active,
	}
	if raw.DepartmentID == nil || *raw.DepartmentID == 0 {
		return c, nil
	}

	departments, err := r.Departments(ctx)
	if err != nil {
		return model.Class{}, err
	}
	if d, ok := departments.Get(*raw.DepartmentID); ok {
		c.Department = &d
	} else {
		appLog.Debug("class references unknown department", "class_id", raw.ID, "department_id", *raw.DepartmentID)
	}
	return c, nil
}

// denormalizePeriod builds a period from its upstream record. Classes are
// looked up in the school year containing the start time. References that
// cannot be resolved are left out.
func denormalizePeriod(ctx context.Context, r Resolver, raw rawPeriod, loc *time.Location) (model.Period, error) {
	date := untisdate.ParseDate(raw.Date, loc)
	p := model.Period{
		ID:        raw.ID,
		StartTime: untisdate.ParseTime(date, raw.StartTime),
		EndTime:   untisdate.ParseTime(date, raw.EndTime),
		Classes:   []model.Class{},
		Subjects:  []model.Subject{},
		Rooms:     []model.Room{},
	}

	if len(raw.Classes) > 0 {
		years, err := r.Years(ctx)
		if err != nil {
			return model.Period{}, err
		}
		if year, ok := years.Contains(p.StartTime); ok {
			classes, err := r.ClassesForYear(ctx, year)
			if err != nil {
				return model.Period{}, err
			}
			p.Classes = resolveRefs(classes, raw.Classes, "class", raw.ID)
		} else {
			appLog.Debug("period outside every school year", "period_id", raw.ID, "date", raw.Date)
		}
	}

	if len(raw.Subjects) > 0 {
		subjects, err := r.Subjects(ctx)
		if err != nil {
			return model.Period{}, err
		}
		p.Subjects = resolveRefs(subjects, raw.Subjects, "subject", raw.ID)
	}

	if len(raw.Rooms) > 0 {
		rooms, err := r.Rooms(ctx)
		if err != nil {
			return model.Period{}, err
		}
		p.Rooms = resolveRefs(rooms, raw.Rooms, "room", raw.ID)
	}

	return p, nil
}

func resolveRefs[T model.Entity](c *collection.Collection[T], refs []rawRef, kind string, periodID int) []T {
	out := make([]T, 0, len(refs))
	for _, ref := range refs {
		e, ok := c.Get(ref.ID)
		if !ok {
			appLog.Debug("period references unknown entity", "kind", kind, "id", ref.ID, "period_id", periodID)
			continue
		}
		out = append(out, e)
	}
	return out
}
