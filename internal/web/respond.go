package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"untiscal/internal/apperrors"
	appLog "untiscal/internal/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// faultStatus maps a fault onto its HTTP status.
func faultStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeFault(w http.ResponseWriter, r *http.Request, err error) {
	status := faultStatus(err)
	id := RequestID(r.Context())

	switch status {
	case http.StatusUnauthorized:
		w.Header().Set("WWW-Authenticate", `Basic realm="untiscal", charset="UTF-8"`)
		appLog.Debug("request unauthorized", "request_id", id, "err", err)
	case http.StatusInternalServerError:
		appLog.Error("request failed", err, "request_id", id, "path", r.URL.Path)
		writeError(w, status, "internal server error")
		return
	case http.StatusBadGateway:
		appLog.Warn("upstream fault", "request_id", id, "err", err)
	default:
		appLog.Debug("request rejected", "request_id", id, "status", status, "err", err)
	}
	writeError(w, status, err.Error())
}
