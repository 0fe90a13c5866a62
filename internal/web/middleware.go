package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"untiscal/internal/apperrors"
	appLog "untiscal/internal/log"
	"untiscal/internal/timetable"
)

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the id requestIDMiddleware stored in ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestIDMiddleware tags every request with an id (taken from the incoming
// header when present) and logs it once served.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))

		appLog.Info("http request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware sets Access-Control-Allow-Origin when configured and answers
// preflight requests.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	origin := s.cfg.CORS.AllowOrigin
	if origin == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionHandler serves one request against a logged in Source.
type sessionHandler func(w http.ResponseWriter, r *http.Request, src *timetable.Source) error

// withSession forwards the request's basic credentials to the upstream
// service, runs h and logs out afterwards. Faults are written centrally.
func (s *Server) withSession(h sessionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, password, ok := r.BasicAuth()
		if !ok {
			writeFault(w, r, apperrors.ErrUnauthorized)
			return
		}

		server, school := r.PathValue("server"), r.PathValue("school")
		src, err := s.newSource(server, school)
		if err != nil {
			writeFault(w, r, apperrors.Invalid("%s", err.Error()))
			return
		}

		if err := src.Login(ctx, user, password); err != nil {
			writeFault(w, r, err)
			return
		}
		defer func() {
			// The response may already be written; a failed logout only gets logged.
			if err := src.Logout(context.WithoutCancel(ctx)); err != nil {
				appLog.Warn("upstream logout failed", "err", err, "request_id", RequestID(ctx))
			}
		}()

		if err := h(w, r, src); err != nil {
			writeFault(w, r, err)
		}
	})
}
