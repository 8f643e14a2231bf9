package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"cookbook/internal/serial"
	"cookbook/pkg/domain"
)

// errBadRequest marks input that could not be bound, such as a non-numeric path id.
var errBadRequest = errors.New("bad request")

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s, for input string: %q", errBadRequest, name, raw)
	}
	return id, nil
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, serial.ErrBusy), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func asValidation(err error) *domain.ValidationError {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return nil
}

// renderError shows the error page matching err.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	view := ViewServerError
	switch status {
	case http.StatusBadRequest:
		view = ViewBadRequest
	case http.StatusNotFound:
		view = ViewNotFound
	}

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Warn("request rejected", fields...)
	}
	s.render(w, r, status, view, Model{"exception": err.Error()})
}
