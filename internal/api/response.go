package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/username/payroll-engine/internal/payroll"
	"go.uber.org/zap"
)

// Error is the error body of a failed response
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope wraps every JSON response
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload Envelope) {
	payload.RequestID = middleware.GetReqID(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("Failed to write response", zap.Error(err))
	}
}

func (s *Server) success(w http.ResponseWriter, r *http.Request, data any) {
	s.writeJSON(w, r, http.StatusOK, Envelope{Success: true, Data: data})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.writeJSON(w, r, status, Envelope{Error: &Error{Code: code, Message: message}})
}

// statusFor maps engine error kinds to HTTP statuses
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, payroll.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		return http.StatusNotFound, "employee_not_found"
	case errors.Is(err, payroll.ErrInvalidRate):
		return http.StatusUnprocessableEntity, "invalid_rate"
	case errors.Is(err, payroll.ErrLookupMiss):
		return http.StatusUnprocessableEntity, "lookup_miss"
	case errors.Is(err, payroll.ErrCalculationFault):
		return http.StatusInternalServerError, "calculation_fault"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) failErr(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	s.fail(w, r, status, code, err.Error())
}
