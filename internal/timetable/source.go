// Package timetable holds one authenticated session against the remote
// timetable service, its per-session cache, and the period aggregation.
package timetable

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"untiscal/internal/apperrors"
	"untiscal/internal/collection"
	appLog "untiscal/internal/log"
	"untiscal/internal/model"
	"untiscal/internal/rpc"
	"untiscal/internal/untisdate"
)

// Upstream method names.
const (
	methodAuthenticate = "authenticate"
	methodLogout       = "logout"
	methodYears        = "getSchoolyears"
	methodHolidays     = "getHolidays"
	methodDepartments  = "getDepartments"
	methodClasses      = "getKlassen"
	methodSubjects     = "getSubjects"
	methodRooms        = "getRooms"
	methodTimetable    = "getTimetable"
)

// Caller is the RPC transport. *rpc.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, method string, params any, result any) error
}

// SessionSetter is implemented by transports that carry the upstream session
// id themselves (as a cookie, for instance).
type SessionSetter interface {
	SetSession(id string)
	ClearSession()
}

// State is the session lifecycle: unauthenticated, then authenticated, then closed.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Option configures a Source.
type Option func(*Source)

// WithLocation sets the timezone upstream dates and times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Source) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClientName sets the client identifier sent on authenticate.
func WithClientName(name string) Option {
	return func(s *Source) {
		if name != "" {
			s.clientName = name
		}
	}
}

// Source is one session against the timetable service. Accessor results are
// cached for the lifetime of the Source.
type Source struct {
	caller     Caller
	loc        *time.Location
	clientName string

	mu        sync.Mutex
	state     State
	sessionID string
	cache     map[cacheKey]any
	calls     int
}

// New creates an unauthenticated Source on top of caller.
func New(caller Caller, opts ...Option) *Source {
	s := &Source{
		caller:     caller,
		loc:        time.Local,
		clientName: "untiscal",
		cache:      make(map[cacheKey]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Location is the timezone dates are interpreted in.
func (s *Source) Location() *time.Location { return s.loc }

// Calls returns the number of upstream calls made so far.
func (s *Source) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Login authenticates against the upstream service. Rejected credentials
// yield an *apperrors.AuthError carrying the upstream code.
func (s *Source) Login(ctx context.Context, user, password string) error {
	if st := s.State(); st != StateUnauthenticated {
		return apperrors.Invalid("cannot log in: session is %s", st)
	}

	var res struct {
		SessionID string `json:"sessionId"`
	}
	params := map[string]any{
		"user":     user,
		"password": password,
		"client":   s.clientName,
	}
	if err := s.call(ctx, methodAuthenticate, params, &res); err != nil {
		return err
	}

	if ss, ok := s.caller.(SessionSetter); ok && res.SessionID != "" {
		ss.SetSession(res.SessionID)
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.sessionID = res.SessionID
	s.mu.Unlock()

	appLog.Debug("timetable session opened")
	return nil
}

// Logout ends the session. The Source is closed and its cache dropped even if
// the upstream call fails; that failure is still returned.
func (s *Source) Logout(ctx context.Context) error {
	if err := s.requireAuth(); err != nil {
		return err
	}

	err := s.call(ctx, methodLogout, nil, nil)

	if ss, ok := s.caller.(SessionSetter); ok {
		ss.ClearSession()
	}
	s.mu.Lock()
	s.state = StateClosed
	s.sessionID = ""
	s.cache = make(map[cacheKey]any)
	s.mu.Unlock()

	appLog.Debug("timetable session closed")
	return err
}

func (s *Source) requireAuth() error {
	if s.State() != StateAuthenticated {
		return apperrors.ErrNotLoggedIn
	}
	return nil
}

// call performs one upstream call and translates its fault.
func (s *Source) call(ctx context.Context, method string, params any, result any) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if err := s.caller.Call(ctx, method, params, result); err != nil {
		return translate(method, err)
	}
	return nil
}

// translate maps a transport error onto the fault taxonomy.
func translate(method string, err error) error {
	var rpcErr *rpc.Error
	if errors.As(err, &rpcErr) {
		if rpcErr.Code == 0 && rpcErr.HTTPStatus != 0 {
			return &apperrors.UpstreamError{Method: method, Code: 0, Message: rpcErr.Error()}
		}
		return apperrors.Translate(method, rpcErr.Code, rpcErr.Message)
	}
	return fmt.Errorf("%w: %s: %w", apperrors.ErrUpstream, method, err)
}

// Years returns the school years sorted by start date.
func (s *Source) Years(ctx context.Context) (*collection.Years, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	return cached(s, keyYears, func() (*collection.Years, error) {
		var raws []rawYear
		if err := s.call(ctx, methodYears, nil, &raws); err != nil {
			return nil, err
		}
		items := make([]model.Year, 0, len(raws))
		for _, raw := range raws {
			items = append(items, raw.year(s.loc))
		}
		return collection.NewYears(items...), nil
	})
}

// Holidays returns the holidays sorted by start date.
func (s *Source) Holidays(ctx context.Context) (*collection.Holidays, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	return cached(s, keyHolidays, func() (*collection.Holidays, error) {
		var raws []rawHoliday
		if err := s.call(ctx, methodHolidays, nil, &raws); err != nil {
			return nil, err
		}
		items := make([]model.Holiday, 0, len(raws))
		for _, raw := range raws {
			items = append(items, raw.holiday(s.loc))
		}
		return collection.NewHolidays(items...), nil
	})
}

func (s *Source) Departments(ctx context.Context) (*collection.Collection[model.Department], error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	return cached(s, keyDepartments, func() (*collection.Collection[model.Department], error) {
		var raws []rawDepartment
		if err := s.call(ctx, methodDepartments, nil, &raws); err != nil {
			return nil, err
		}
		items := make([]model.Department, 0, len(raws))
		for _, raw := range raws {
			items = append(items, raw.department())
		}
		return collection.New(items...), nil
	})
}

// ClassesForYear returns the classes of one school year.
func (s *Source) ClassesForYear(ctx context.Context, year model.Year) (*collection.Collection[model.Class], error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	return cached(s, classesKey{yearID: year.ID}, func() (*collection.Collection[model.Class], error) {
		var raws []rawClass
		params := map[string]any{"schoolyearId": year.ID}
		if err := s.call(ctx, methodClasses, params, &raws); err != nil {
			return nil, err
		}
		items := make([]model.Class, 0, len(raws))
		for _, raw := range raws {
			c, err := denormalizeClass(ctx, s, raw)
			if err != nil {
				return nil, err
			}
			items = append(items, c)
		}
		return collection.New(items...), nil
	})
}

func (s *Source) Subjects(ctx context.Context) (*collection.Collection[model.Subject], error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	return cached(s, keySubjects, func() (*collection.Collection[model.Subject], error) {
		var raws []rawSubject
		if err := s.call(ctx, methodSubjects, nil, &raws); err != nil {
			return nil, err
		}
		items := make([]model.Subject, 0, len(raws))
		for _, raw := range raws {
			items = append(items, raw.subject())
		}
		return collection.New(items...), nil
	})
}

func (s *Source) Rooms(ctx context.Context) (*collection.Collection[model.Room], error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	return cached(s, keyRooms, func() (*collection.Collection[model.Room], error) {
		var raws []rawRoom
		if err := s.call(ctx, methodRooms, nil, &raws); err != nil {
			return nil, err
		}
		items := make([]model.Room, 0, len(raws))
		for _, raw := range raws {
			items = append(items, raw.room())
		}
		return collection.New(items...), nil
	})
}

// PeriodsFor returns the sorted, merged periods of one class, subject or room
// between start and end (whole days, inclusive).
func (s *Source) PeriodsFor(ctx context.Context, ref model.Reference, start, end time.Time) (*collection.Timetable, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	switch ref.Kind {
	case model.KindClass, model.KindSubject, model.KindRoom:
	case model.KindTeacher, model.KindStudent:
		return nil, apperrors.Invalid("timetables by %s are not supported", ref.Kind)
	default:
		return nil, apperrors.Invalid("unknown reference kind %d", int(ref.Kind))
	}
	if end.Before(start) {
		return nil, apperrors.Invalid("start date %s is after end date %s",
			start.Format(untisdate.ISODateLayout), end.Format(untisdate.ISODateLayout))
	}

	return cached(s, newPeriodsKey(ref, start, end), func() (*collection.Timetable, error) {
		var raws []rawPeriod
		params := map[string]any{
			"id":        ref.ID,
			"type":      int(ref.Kind),
			"startDate": untisdate.FormatDate(start),
			"endDate":   untisdate.FormatDate(end),
		}
		if err := s.call(ctx, methodTimetable, params, &raws); err != nil {
			return nil, err
		}
		items := make([]model.Period, 0, len(raws))
		for _, raw := range raws {
			p, err := denormalizePeriod(ctx, s, raw, s.loc)
			if err != nil {
				return nil, err
			}
			items = append(items, p)
		}
		appLog.Debug("periods fetched", "ref", ref.String(), "count", len(items))
		return collection.NewTimetable(items...), nil
	})
}
