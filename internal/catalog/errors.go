package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/httpclient"
)

const (
	duplicateKeyMarker   = "Duplicate key error"
	defaultSaveMessage   = "Failed to save product"
	defaultDeleteMessage = "Failed to delete product."
)

// Rejection codes.
const (
	CodeSubmissionRejected = "SUBMISSION_REJECTED"
	CodeDeleteRejected     = "DELETE_REJECTED"
)

// SubmissionMessage turns a failed create or update into the single message
// shown to the admin. A duplicate key names the offending field, structured
// field errors are listed one per line, and anything else falls back to the
// backend message or a generic one.
func SubmissionMessage(err error) string {
	var respErr *httpclient.ResponseError
	if !errors.As(err, &respErr) {
		return defaultSaveMessage
	}

	if strings.Contains(respErr.Message, duplicateKeyMarker) {
		field := "field"
		if len(respErr.Details) > 0 && respErr.Details[0].Path != "" {
			field = respErr.Details[0].Path
		}
		return fmt.Sprintf("This %s is already in use by another product. Please choose a different one.", field)
	}

	if len(respErr.Details) > 0 {
		lines := make([]string, 0, len(respErr.Details))
		for _, d := range respErr.Details {
			lines = append(lines, d.Path+": "+d.Message)
		}
		return strings.Join(lines, "\n")
	}

	if respErr.Message != "" {
		return respErr.Message
	}
	return defaultSaveMessage
}

// DeleteMessage is the message shown when a delete fails.
func DeleteMessage(err error) string {
	var respErr *httpclient.ResponseError
	if errors.As(err, &respErr) && respErr.Message != "" {
		return respErr.Message
	}
	return defaultDeleteMessage
}

// Rejection wraps a backend failure with the admin-facing message. Client
// errors keep the backend status; anything else reports a bad gateway.
func Rejection(err error, code, message string) *apperrors.AppError {
	status := http.StatusBadGateway
	var respErr *httpclient.ResponseError
	if errors.As(err, &respErr) && httpclient.IsClientError(respErr.Status) {
		status = respErr.Status
	}
	return &apperrors.AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}
