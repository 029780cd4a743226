// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns report failures into HTTP responses.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleHTTPError logs err and answers 500 {"error": <message>}.
// Every failure maps to 500; clients treat any non-200 as "report unavailable".
func (h *ErrorHandler) HandleHTTPError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := Normalize(err)
	h.logError(r, stdErr)
	WriteJSONError(w, http.StatusInternalServerError, stdErr.Error())
}

// WriteJSONError writes {"error": message} with the given status.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError) {
	if h.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
	}
	if r != nil {
		fields["method"] = r.Method
		fields["path"] = r.URL.Path
	}
	if status, ok := stdErr.Metadata["status"]; ok {
		fields["datastoreStatus"] = status
	}
	h.logger.Error("report request failed", fields)
}
