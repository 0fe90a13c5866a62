package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"untiscal/internal/config"
	appLog "untiscal/internal/log"
	"untiscal/internal/probe"
	"untiscal/internal/rpc"
	"untiscal/internal/timetable"
)

// SourceFactory creates a fresh, unauthenticated Source for one school.
type SourceFactory func(server, school string) (*timetable.Source, error)

// StatusReporter exposes the result of the last upstream probe.
type StatusReporter interface {
	Status() (probe.Status, bool)
}

// Server serves the read-only timetable API. Every request under
// /{server}/{school}/ runs in its own upstream session.
type Server struct {
	cfg       *config.Config
	loc       *time.Location
	mux       *http.ServeMux
	newSource SourceFactory
	probe     StatusReporter
	now       func() time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithSourceFactory replaces the factory building upstream sessions.
func WithSourceFactory(f SourceFactory) Option {
	return func(s *Server) { s.newSource = f }
}

// WithProbe makes /health report the probe status.
func WithProbe(p StatusReporter) Option {
	return func(s *Server) { s.probe = p }
}

// WithClock overrides the clock used to pick the current school year.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		cfg: cfg,
		loc: resolveLocationOrLocal(cfg.Timezone),
		mux: http.NewServeMux(),
		now: time.Now,
	}
	s.newSource = DefaultSourceFactory(cfg, s.loc)
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

// DefaultSourceFactory talks JSON-RPC to the endpoint configured in cfg.
func DefaultSourceFactory(cfg *config.Config, loc *time.Location) SourceFactory {
	return func(server, school string) (*timetable.Source, error) {
		endpoint, err := rpc.Endpoint(cfg.Upstream.Endpoint, server, school)
		if err != nil {
			return nil, err
		}
		client := rpc.NewClient(endpoint, rpc.Options{
			Timeout:   cfg.Upstream.Timeout(),
			UserAgent: cfg.Upstream.ClientName,
		})
		return timetable.New(client,
			timetable.WithLocation(loc),
			timetable.WithClientName(cfg.Upstream.ClientName),
		), nil
	}
}

// Handler returns the router wrapped in the request id, logging and CORS
// middleware.
func (s *Server) Handler() http.Handler {
	return requestIDMiddleware(s.corsMiddleware(s.mux))
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	appLog.Info("shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.handle("years", s.handleYears)
	s.handle("years/{id}", s.handleYear)
	s.handle("holidays", s.handleHolidays)
	s.handle("holidays/calendar.ics", s.handleHolidayCalendar)
	s.handle("holidays/{id}", s.handleHoliday)
	s.handle("departments", s.handleDepartments)
	s.handle("departments/{id}", s.handleDepartment)
	s.handle("years/{yearId}/classes", s.handleClasses)
	s.handle("years/{yearId}/classes/{id}", s.handleClass)
	s.handle("subjects", s.handleSubjects)
	s.handle("subjects/{id}", s.handleSubject)
	s.handle("rooms", s.handleRooms)
	s.handle("rooms/{id}", s.handleRoom)

	s.handle("years/{yearId}/classes/{ids}/timetable", s.classTimetable(asJSON))
	s.handle("years/{yearId}/classes/{ids}/timetable/calendar.ics", s.classTimetable(asCalendar))
	s.handle("subjects/{ids}/timetable", s.subjectTimetable(asJSON))
	s.handle("subjects/{ids}/timetable/calendar.ics", s.subjectTimetable(asCalendar))
	s.handle("rooms/{ids}/timetable", s.roomTimetable(asJSON))
	s.handle("rooms/{ids}/timetable/calendar.ics", s.roomTimetable(asCalendar))
}

// handle registers a session-backed GET route below /{server}/{school}/. The
// route also answers with a single trailing slash.
func (s *Server) handle(path string, h sessionHandler) {
	handler := s.withSession(h)
	s.mux.Handle("GET /{server}/{school}/"+path, handler)
	s.mux.Handle("GET /{server}/{school}/"+path+"/{$}", handler)
}

type healthResponse struct {
	Status string        `json:"status"`
	Probe  *probe.Status `json:"probe,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	if s.probe != nil {
		if st, ok := s.probe.Status(); ok {
			resp.Probe = &st
			if !st.OK {
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
	}
	writeJSON(w, status, resp)
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}
