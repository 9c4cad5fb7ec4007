package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Registry error taxonomy. Callers branch on these with errors.Is
// instead of matching message text.
var (
	ErrNotFound      = errors.New("not found")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrConflict      = errors.New("conflict")
	ErrValidation    = errors.New("validation error")
	ErrUnreachable   = errors.New("delivery channel unreachable")
)

// StoreError wraps an underlying persistence failure. The wrapped error
// is for internal logs only; user-facing surfaces see the opaque message.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure in %s", e.Op)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store wraps err as a StoreError, passing nil through.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// IsStore reports whether err is (or wraps) a StoreError.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeQuotaExceeded = "QUOTA_EXCEEDED"
	ErrCodeUnreachable   = "UNREACHABLE"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}

// WriteTaxonomy maps a registry error to the HTTP envelope. Store
// failures become a generic internal error; raw persistence text never
// reaches the client.
func WriteTaxonomy(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, ErrQuotaExceeded):
		WriteError(w, http.StatusForbidden, ErrCodeQuotaExceeded, err.Error(), nil)
	case errors.Is(err, ErrConflict):
		WriteError(w, http.StatusConflict, ErrCodeConflict, err.Error(), nil)
	case errors.Is(err, ErrValidation):
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error(), nil)
	case errors.Is(err, ErrUnreachable):
		WriteError(w, http.StatusBadGateway, ErrCodeUnreachable, err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, ErrCodeInternal, "internal error", nil)
	}
}
