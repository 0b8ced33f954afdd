package httpserver

import (
	"fmt"
	"maps"
	"net/http"
)

// ErrInternal is the response sent when a handler panics.
var ErrInternal = NewApiError("internal_error", http.StatusInternalServerError, "The server encountered an internal error")

// ApiError represents a structured API error response that can be serialized to JSON.
type ApiError struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`

	httpStatus int
}

// NewApiError creates a new ApiError with the specified code, HTTP status, and message.
func NewApiError(code string, httpStatus int, message string) *ApiError {
	return &ApiError{
		Code:       code,
		Message:    message,
		httpStatus: httpStatus,
	}
}

// StatusCode returns the HTTP status code written by WriteResponse.
func (e ApiError) StatusCode() int {
	return e.httpStatus
}

// WriteResponse writes the ApiError as a JSON response with its HTTP status code.
func (e ApiError) WriteResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(HeaderContentType, ContentTypeJson)
	w.WriteHeader(e.httpStatus)

	RespondWithJSON(w, r, e)
}

// WithMetadata returns a copy of the ApiError with the given metadata added.
func (e ApiError) WithMetadata(metadata map[string]string) *ApiError {
	cloned := &ApiError{
		Code:       e.Code,
		Message:    e.Message,
		Metadata:   make(map[string]string, len(e.Metadata)+len(metadata)),
		httpStatus: e.httpStatus,
	}
	maps.Copy(cloned.Metadata, e.Metadata)
	maps.Copy(cloned.Metadata, metadata)
	return cloned
}

// Error implements the error interface.
func (e ApiError) Error() string {
	return fmt.Sprintf("API error (%s): %s", e.Code, e.Message)
}

// Is reports whether target is an ApiError with the same code.
func (e ApiError) Is(target error) bool {
	switch t := target.(type) {
	case ApiError:
		return t.Code == e.Code
	case *ApiError:
		return t != nil && t.Code == e.Code
	default:
		return false
	}
}
