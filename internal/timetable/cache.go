package timetable

import (
	"time"

	"untiscal/internal/model"
	"untiscal/internal/untisdate"
)

// cacheKey identifies one memoized accessor result within a session.
type cacheKey interface {
	isCacheKey()
}

// singletonKey covers accessors without arguments.
type singletonKey int

const (
	keyYears singletonKey = iota + 1
	keyHolidays
	keyDepartments
	keySubjects
	keyRooms
)

func (singletonKey) isCacheKey() {}

// classesKey scopes classes to a school year.
type classesKey struct {
	yearID int
}

func (classesKey) isCacheKey() {}

// periodsKey includes the requested date range, so a second request for the
// same entity with another range is fetched instead of served stale.
type periodsKey struct {
	kind  model.ReferenceKind
	id    int
	start int
	end   int
}

func (periodsKey) isCacheKey() {}

func newPeriodsKey(ref model.Reference, start, end time.Time) periodsKey {
	return periodsKey{
		kind:  ref.Kind,
		id:    ref.ID,
		start: untisdate.FormatDate(start),
		end:   untisdate.FormatDate(end),
	}
}

// cached returns the value stored under key, or runs load, stores and returns
// its result. Failed loads are not cached. The lock is not held while load
// runs because denormalization reads back through the same Source.
func cached[V any](s *Source, key cacheKey, load func() (V, error)) (V, error) {
	s.mu.Lock()
	if v, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return v.(V), nil
	}
	s.mu.Unlock()

	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.cache[key]; ok {
		return prev.(V), nil
	}
	s.cache[key] = v
	return v, nil
}
