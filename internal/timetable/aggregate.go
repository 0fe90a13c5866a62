package timetable

import (
	"context"
	"strconv"
	"strings"
	"time"

	"untiscal/internal/apperrors"
	"untiscal/internal/collection"
	appLog "untiscal/internal/log"
	"untiscal/internal/model"
)

// Aggregate fetches the periods of every reference between start and end and
// returns them as one timetable, sorted and merged over the union. The same
// period reported for two references appears once.
func (s *Source) Aggregate(ctx context.Context, refs []model.Reference, start, end time.Time) (*collection.Timetable, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, apperrors.Invalid("start date is after end date")
	}

	var all []model.Period
	for _, ref := range refs {
		periods, err := s.PeriodsFor(ctx, ref, start, end)
		if err != nil {
			return nil, err
		}
		all = append(all, periods.FindAll()...)
	}

	tt := collection.NewTimetable(all...)
	appLog.Debug("timetable aggregated", "refs", len(refs), "fetched", len(all), "merged", tt.Count())
	return tt, nil
}

// YearByID returns the school year with the given id.
func (s *Source) YearByID(ctx context.Context, id int) (model.Year, error) {
	years, err := s.Years(ctx)
	if err != nil {
		return model.Year{}, err
	}
	y, ok := years.Get(id)
	if !ok {
		return model.Year{}, apperrors.NotFound("year %d does not exist", id)
	}
	return y, nil
}

// CurrentYear returns the school year containing now.
func (s *Source) CurrentYear(ctx context.Context, now time.Time) (model.Year, error) {
	years, err := s.Years(ctx)
	if err != nil {
		return model.Year{}, err
	}
	y, ok := years.Contains(now)
	if !ok {
		return model.Year{}, apperrors.NotFound("no school year contains %s", now.Format(time.DateOnly))
	}
	return y, nil
}

// ResolveClasses looks up every id among the classes of year. An unknown id
// fails the whole lookup.
func (s *Source) ResolveClasses(ctx context.Context, year model.Year, ids []int) ([]model.Class, error) {
	classes, err := s.ClassesForYear(ctx, year)
	if err != nil {
		return nil, err
	}
	return resolveAll(classes, ids, "class")
}

// ResolveSubjects looks up every id among the subjects. An unknown id fails
// the whole lookup.
func (s *Source) ResolveSubjects(ctx context.Context, ids []int) ([]model.Subject, error) {
	subjects, err := s.Subjects(ctx)
	if err != nil {
		return nil, err
	}
	return resolveAll(subjects, ids, "subject")
}

// ResolveRooms looks up every id among the rooms. An unknown id fails the
// whole lookup.
func (s *Source) ResolveRooms(ctx context.Context, ids []int) ([]model.Room, error) {
	rooms, err := s.Rooms(ctx)
	if err != nil {
		return nil, err
	}
	return resolveAll(rooms, ids, "room")
}

func resolveAll[T model.Entity](c *collection.Collection[T], ids []int, kind string) ([]T, error) {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		e, ok := c.Get(id)
		if !ok {
			return nil, apperrors.NotFound("%s %d does not exist", kind, id)
		}
		out = append(out, e)
	}
	return out, nil
}

// References maps entities onto period lookup references with ref.
func References[T any](items []T, ref func(T) model.Reference) []model.Reference {
	out := make([]model.Reference, 0, len(items))
	for _, it := range items {
		out = append(out, ref(it))
	}
	return out
}

// ParseIDList parses a comma separated list of positive ids ("1,2,3").
func ParseIDList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, apperrors.Invalid("empty id list")
	}
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			return nil, apperrors.Invalid("malformed id %q in list %q", part, s)
		}
		ids = append(ids, n)
	}
	return ids, nil
}
