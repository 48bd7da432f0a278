package billinglogix

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorName is the Name carried by every APIError.
const ErrorName = "BillingLogixApiError"

// ErrorKind classifies client errors.
type ErrorKind int

const (
	// KindConfig indicates invalid constructor arguments.
	KindConfig ErrorKind = iota
	// KindValidation indicates an invalid request descriptor.
	KindValidation
	// KindAuth indicates missing signing material.
	KindAuth
	// KindTransport indicates a network, connection or timeout failure.
	KindTransport
	// KindParse indicates a response body that is not valid JSON.
	KindParse
	// KindUnexpected indicates a panic recovered while building a request.
	KindUnexpected
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// APIError is the structured error produced by the client itself.
type APIError struct {
	Name    string
	Message string
	// Data is auxiliary detail: the offending value for config and
	// validation errors, the underlying error for transport and parse errors.
	Data any
	Kind ErrorKind

	stack []uintptr
}

func newAPIError(kind ErrorKind, message string, data any) *APIError {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	return &APIError{
		Name:    ErrorName,
		Message: message,
		Data:    data,
		Kind:    kind,
		stack:   pcs[:n],
	}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if err, ok := e.Data.(error); ok {
		return fmt.Sprintf("%s: %s: %v", e.Name, e.Message, err)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Unwrap returns Data when it is an error.
func (e *APIError) Unwrap() error {
	if err, ok := e.Data.(error); ok {
		return err
	}
	return nil
}

// Stack returns the call stack captured when the error was created.
func (e *APIError) Stack() string {
	if len(e.stack) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

type apiErrorJSON struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ToJSON returns the serializable shape {name, message, data?, stack?}.
// The stack is included only when stack is true.
func (e *APIError) ToJSON(stack bool) map[string]any {
	out := map[string]any{
		"name":    e.Name,
		"message": e.Message,
	}
	if e.Data != nil {
		out["data"] = jsonData(e.Data)
	}
	if stack {
		out["stack"] = e.Stack()
	}
	return out
}

// MarshalJSON encodes the error without its stack.
func (e *APIError) MarshalJSON() ([]byte, error) {
	return json.Marshal(apiErrorJSON{
		Name:    e.Name,
		Message: e.Message,
		Data:    jsonData(e.Data),
	})
}

// errors have no exported fields; encode them as their message
func jsonData(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

// UpstreamError is a non-2xx response from the API. Data holds the decoded
// response body exactly as received.
type UpstreamError struct {
	StatusCode int
	Data       any
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("billinglogix: upstream responded HTTP %d", e.StatusCode)
}

// MarshalJSON encodes the upstream body unchanged.
func (e *UpstreamError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Data)
}

func isKind(err error, kind ErrorKind) bool {
	var e *APIError
	return errors.As(err, &e) && e.Kind == kind
}

// IsConfig checks if an error is a configuration error.
func IsConfig(err error) bool { return isKind(err, KindConfig) }

// IsValidation checks if an error is a request validation error.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsAuth checks if an error is an authentication error.
func IsAuth(err error) bool { return isKind(err, KindAuth) }

// IsTransport checks if an error is a transport error.
func IsTransport(err error) bool { return isKind(err, KindTransport) }

// IsParse checks if an error is a response parsing error.
func IsParse(err error) bool { return isKind(err, KindParse) }

// IsUnexpected checks if an error wraps a recovered panic.
func IsUnexpected(err error) bool { return isKind(err, KindUnexpected) }

// IsUpstream checks if an error is a non-2xx API response.
func IsUpstream(err error) bool {
	var e *UpstreamError
	return errors.As(err, &e)
}
