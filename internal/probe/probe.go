// Package probe periodically checks that the upstream timetable service
// accepts a login, and keeps the last result for /health.
package probe

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "untiscal/internal/log"
	"untiscal/internal/timetable"
)

const defaultTimeout = 30 * time.Second

// CheckFunc performs one check. A nil error means the upstream is healthy.
type CheckFunc func(ctx context.Context) error

// Status is the outcome of the most recent check.
type Status struct {
	OK        bool          `json:"ok"`
	CheckedAt time.Time     `json:"checkedAt"`
	Latency   time.Duration `json:"latencyNs"`
	Error     string        `json:"error,omitempty"`
}

// Prober runs a CheckFunc on a cron schedule.
type Prober struct {
	cron    *cron.Cron
	check   CheckFunc
	timeout time.Duration

	mu      sync.RWMutex
	status  Status
	checked bool
}

// New schedules check according to spec (standard five-field cron syntax or
// descriptors such as "@every 5m"). The schedule starts with Start.
func New(spec string, check CheckFunc) (*Prober, error) {
	if check == nil {
		return nil, errors.New("probe: check is nil")
	}
	p := &Prober{
		cron:    cron.New(),
		check:   check,
		timeout: defaultTimeout,
	}
	if _, err := p.cron.AddFunc(spec, func() { p.Run(context.Background()) }); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Prober) Start() {
	p.cron.Start()
	appLog.Info("probe scheduler started")
}

// Stop halts the schedule and waits for a running check to finish.
func (p *Prober) Stop() {
	<-p.cron.Stop().Done()
}

// Run performs one check now and records its outcome.
func (p *Prober) Run(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err := p.check(ctx)
	st := Status{
		OK:        err == nil,
		CheckedAt: start,
		Latency:   time.Since(start),
	}
	if err != nil {
		st.Error = err.Error()
		appLog.Warn("probe failed", "err", err, "latency_ms", st.Latency.Milliseconds())
	} else {
		appLog.Debug("probe ok", "latency_ms", st.Latency.Milliseconds())
	}

	p.mu.Lock()
	p.status = st
	p.checked = true
	p.mu.Unlock()
	return st
}

// Status returns the last recorded status. ok is false until the first check
// has completed.
func (p *Prober) Status() (st Status, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status, p.checked
}

// LoginCheck logs in with a fresh Source, reads the school years and logs out.
func LoginCheck(newSource func() (*timetable.Source, error), user, password string) CheckFunc {
	return func(ctx context.Context) error {
		s, err := newSource()
		if err != nil {
			return err
		}
		if err := s.Login(ctx, user, password); err != nil {
			return err
		}
		_, readErr := s.Years(ctx)
		logoutErr := s.Logout(ctx)
		return errors.Join(readErr, logoutErr)
	}
}
