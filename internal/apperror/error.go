package apperror

import (
	"errors"
	"fmt"
	"log"
	"net/http"
)

// Kind classifies an AppError so callers can branch without string matching.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindForbidden    Kind = "forbidden"
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
)

// AppError is a caller-facing error: its message is safe to return to the
// client. Anything that is not an AppError is treated as an internal failure
// and surfaced generically.
type AppError struct {
	Kind    Kind
	Message string
	Status  int
}

func (e *AppError) Error() string {
	return e.Message
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message, Status: http.StatusNotFound}
}

func InvalidState(message string) *AppError {
	return &AppError{Kind: KindInvalidState, Message: message, Status: http.StatusConflict}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message, Status: http.StatusForbidden}
}

func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Status: http.StatusBadRequest}
}

func Validationf(format string, args ...any) *AppError {
	return Validation(fmt.Sprintf(format, args...))
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Status: http.StatusConflict}
}

// Is reports whether err is an AppError of the given kind.
func Is(err error, kind Kind) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// Write maps err onto the response. AppErrors pass their message through;
// everything else is logged with full detail and answered with a generic 500.
func Write(w http.ResponseWriter, err error) {
	var ae *AppError
	if errors.As(err, &ae) {
		http.Error(w, ae.Message, ae.Status)
		return
	}
	log.Println("internal error:", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
