// Package apierr defines the stable error contract the gateway boundary
// speaks: a fixed {code, status} taxonomy with a JSON body shape of
// {code, message, status, requestId, details?}. Errors are built once at
// the boundary and never mutated; the With* helpers return copies.
package apierr

import (
	"encoding/json"
	"net/http"
)

// Code identifies a failure class. The set and its status mapping are a
// published contract; additions are fine, changes are not.
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeRateLimited  Code = "RATE_LIMITED"
	CodeInternal     Code = "INTERNAL"
)

// Status returns the HTTP status for the code. Unknown codes map to 500.
func (c Code) Status() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is the wire error body. It implements the error interface so
// services can return it directly to the boundary.
type Error struct {
	Code      Code           `json:"code"`
	Message   string         `json:"message"`
	Status    int            `json:"status"`
	RequestID string         `json:"requestId"`
	Details   map[string]any `json:"details,omitempty"`
}

// New builds an Error for code; the status comes from the taxonomy table.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  code.Status(),
	}
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// WithRequestID returns a copy carrying the request ID.
func (e *Error) WithRequestID(id string) *Error {
	clone := *e
	clone.RequestID = id
	return &clone
}

// WithDetails returns a copy carrying diagnostic details. The Responder
// strips these in production.
func (e *Error) WithDetails(details map[string]any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// Responder shapes taxonomy errors into HTTP responses. The production
// switch comes from configuration; it is not decided here.
type Responder struct {
	// Production suppresses diagnostic details and replaces internal-fault
	// messages with a generic one.
	Production bool
}

// Write emits e as the response body with its mapped status. Error
// responses are never cacheable.
func (rp Responder) Write(w http.ResponseWriter, requestID string, e *Error) {
	out := e.WithRequestID(requestID)

	if rp.Production {
		out.Details = nil
		if out.Code == CodeInternal {
			out.Message = "internal server error"
		}
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(out.Status)
	_ = json.NewEncoder(w).Encode(out)
}
