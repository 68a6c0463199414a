package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
)

// ErrorDetail is one field-level problem reported by a downstream service.
type ErrorDetail struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ResponseError is a non-2xx answer from a downstream service with its body
// decoded. Two body shapes are understood: the catalog backend's
// {"message", "errorMessages": [{path, message}]} and the envelope written by
// pkg/httputil, {"error": {"code", "message"}}.
type ResponseError struct {
	Service string
	Status  int
	Code    string
	Message string
	Details []ErrorDetail
	Body    string
}

func (e *ResponseError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, msg)
}

// Unwrap maps the status onto the shared sentinels so callers can use
// errors.Is without knowing about downstream formats.
func (e *ResponseError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case e.Status == http.StatusBadRequest, e.Status == http.StatusUnprocessableEntity:
		return apperrors.ErrInvalidInput
	case e.Status == http.StatusConflict:
		return apperrors.ErrConflict
	case e.Status == http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return apperrors.ErrForbidden
	case e.Status == http.StatusGone:
		return apperrors.ErrGone
	case e.Status == http.StatusServiceUnavailable:
		return apperrors.ErrServiceUnavail
	default:
		return nil
	}
}

type downstreamBody struct {
	Message       string        `json:"message"`
	ErrorMessages []ErrorDetail `json:"errorMessages"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError reads and closes the body of a non-2xx response and
// returns it as a *ResponseError.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}
	return DecodeResponseError(serviceName, resp.StatusCode, bodyBytes)
}

// DecodeResponseError builds a *ResponseError from an already-read body.
func DecodeResponseError(serviceName string, status int, body []byte) *ResponseError {
	respErr := &ResponseError{
		Service: serviceName,
		Status:  status,
		Body:    strings.TrimSpace(string(body)),
	}

	var parsed downstreamBody
	if json.Unmarshal(body, &parsed) == nil {
		respErr.Message = parsed.Message
		respErr.Details = parsed.ErrorMessages
		if parsed.Error != nil {
			respErr.Code = parsed.Error.Code
			if respErr.Message == "" {
				respErr.Message = parsed.Error.Message
			}
		}
	}
	return respErr
}

// AppError translates the downstream failure into an AppError that keeps the
// downstream status for client errors and reports 5xx as unavailability.
func (e *ResponseError) AppError() *apperrors.AppError {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	qualified := fmt.Sprintf("%s: %s", e.Service, msg)

	switch {
	case e.Status == http.StatusNotFound:
		return apperrors.NotFound(e.Service+" resource", msg)
	case e.Status == http.StatusBadRequest, e.Status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualified)
	case e.Status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case e.Status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case e.Status == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case e.Status == http.StatusGone:
		return apperrors.Gone(qualified)
	case e.Status >= 500:
		return apperrors.Unavailable(qualified, e)
	default:
		code := e.Code
		if code == "" {
			code = "DOWNSTREAM_ERROR"
		}
		return &apperrors.AppError{Code: code, Message: qualified, Status: e.Status, Err: e}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
