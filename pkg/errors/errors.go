package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels classify failures independently of the layer that produced them.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrGone           = errors.New("gone")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrConfiguration  = errors.New("configuration error")
)

type kind struct {
	sentinel error
	code     string
	status   int
}

// kinds is ordered: HTTPStatus takes the first sentinel an error matches.
var kinds = []kind{
	{ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{ErrInvalidInput, "INVALID_INPUT", http.StatusBadRequest},
	{ErrValidation, "VALIDATION_ERROR", http.StatusUnprocessableEntity},
	{ErrUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized},
	{ErrForbidden, "FORBIDDEN", http.StatusForbidden},
	{ErrConflict, "CONFLICT", http.StatusConflict},
	{ErrGone, "GONE", http.StatusGone},
	{ErrServiceUnavail, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
	{ErrConfiguration, "CONFIGURATION_ERROR", http.StatusServiceUnavailable},
	{ErrInternal, "INTERNAL_ERROR", http.StatusInternalServerError},
}

// AppError is an error the HTTP layer can render as is: Code and Message go
// to the client, Status selects the response code.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(sentinel error, message string) *AppError {
	for _, k := range kinds {
		if k.sentinel == sentinel {
			return &AppError{Code: k.code, Message: message, Status: k.status, Err: sentinel}
		}
	}
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError, Err: sentinel}
}

// NotFound reports a missing resource, e.g. NotFound("product", id).
func NotFound(resource, id string) *AppError {
	return newError(ErrNotFound, fmt.Sprintf("%s %s not found", resource, id))
}

// InvalidInput reports a malformed request.
func InvalidInput(message string) *AppError {
	return newError(ErrInvalidInput, message)
}

// Conflict reports an operation that does not fit the current state, such as
// submitting a wizard that is not on its metadata step.
func Conflict(message string) *AppError {
	return newError(ErrConflict, message)
}

// Gone reports state that existed but has expired.
func Gone(message string) *AppError {
	return newError(ErrGone, message)
}

func Unauthorized(message string) *AppError {
	return newError(ErrUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return newError(ErrForbidden, message)
}

// Unavailable reports a dependency that cannot be reached. err is kept as the
// cause when given.
func Unavailable(message string, err error) *AppError {
	e := newError(ErrServiceUnavail, message)
	if err != nil {
		e.Err = err
	}
	return e
}

// Configuration reports a required setting that is missing. No request is
// attempted while it is in effect.
func Configuration(message string) *AppError {
	return newError(ErrConfiguration, message)
}

// Internal hides err behind a generic message.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// HTTPStatus maps err to a response status. Unclassified errors are 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return classify(err).status
}

// Code returns the client-facing code for err.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return classify(err).code
}

func classify(err error) kind {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k
		}
	}
	return kind{ErrInternal, "INTERNAL_ERROR", http.StatusInternalServerError}
}
