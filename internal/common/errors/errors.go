// Package errors provides standardized error handling for report requests.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Network unreachable, TLS failure, connection reset.
	ErrCodeDatastoreTransportFailed ErrorCode = "DATASTORE_TRANSPORT_FAILED"
	// Deadline exceeded while waiting on the datastore.
	ErrCodeDatastoreTimeout ErrorCode = "DATASTORE_TIMEOUT"
	// Non-2xx response from the datastore.
	ErrCodeDatastoreStatus ErrorCode = "DATASTORE_STATUS_ERROR"
	// Response decoded but the expected subtree is missing or mistyped.
	ErrCodeResponseShapeInvalid ErrorCode = "RESPONSE_SHAPE_INVALID"

	ErrCodeQueryEncodingFailed ErrorCode = "QUERY_ENCODING_FAILED"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewTransportError wraps a network-level failure talking to the datastore.
// A context deadline or a network timeout is reported as a timeout.
func NewTransportError(operation string, err error) *StandardError {
	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return NewTimeoutError(operation, err)
	}
	return &StandardError{
		Code:      ErrCodeDatastoreTransportFailed,
		Message:   fmt.Sprintf("datastore %s request failed", operation),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"operation": operation},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewTimeoutError reports that a datastore call did not finish in time.
func NewTimeoutError(operation string, err error) *StandardError {
	details := "request exceeded timeout"
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeDatastoreTimeout,
		Message:   fmt.Sprintf("datastore %s request timed out", operation),
		Details:   details,
		Retryable: true,
		Metadata:  map[string]interface{}{"operation": operation},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStatusError reports a non-2xx answer from the datastore.
func NewStatusError(operation string, status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatastoreStatus,
		Message:   fmt.Sprintf("datastore %s request failed with status code %d", operation, status),
		Details:   body,
		Retryable: status >= 500,
		Metadata: map[string]interface{}{
			"operation": operation,
			"status":    status,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewShapeError reports a datastore response that lacks the expected subtree.
func NewShapeError(report, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponseShapeInvalid,
		Message:   fmt.Sprintf("unexpected datastore response for report %s", report),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"report": report},
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryEncodingError reports a query document that could not be serialized.
func NewQueryEncodingError(report string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryEncodingFailed,
		Message:   fmt.Sprintf("failed to encode query for report %s", report),
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"report": report},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("report", err)
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// CodeOf returns the error code of err, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

// IsTransport reports whether err is a TransportError (timeouts included).
func IsTransport(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeDatastoreTransportFailed || code == ErrCodeDatastoreTimeout
}

// IsStatus reports whether err is a DatastoreStatusError.
func IsStatus(err error) bool {
	return CodeOf(err) == ErrCodeDatastoreStatus
}

// IsShape reports whether err is a ShapeError.
func IsShape(err error) bool {
	return CodeOf(err) == ErrCodeResponseShapeInvalid
}

// StatusCode returns the datastore HTTP status carried by a DatastoreStatusError, or 0.
func StatusCode(err error) int {
	var stdErr *StandardError
	if !stderrors.As(err, &stdErr) || stdErr.Code != ErrCodeDatastoreStatus {
		return 0
	}
	status, _ := stdErr.Metadata["status"].(int)
	return status
}

// GetErrorCategory groups codes for metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeDatastoreTransportFailed, ErrCodeDatastoreTimeout:
		return "transport"
	case ErrCodeDatastoreStatus:
		return "status"
	case ErrCodeResponseShapeInvalid:
		return "shape"
	case ErrCodeQueryEncodingFailed:
		return "query"
	default:
		return "internal"
	}
}
