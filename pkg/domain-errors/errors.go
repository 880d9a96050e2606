// Package domainerrors defines the error taxonomy shared by the certification
// core. Services return coded errors; transport layers (HTTP, CLI) translate
// codes into status codes or exit codes without inspecting messages.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for callers that need to branch on kind.
type Code string

const (
	// CodeValidation marks malformed input: negative head counts, unknown
	// enum values, empty required fields. Never retried.
	CodeValidation Code = "validation"

	// CodeInvalidTransition marks a status change that is not an edge in the
	// transition table. Terminal business-rule violation, never retried.
	CodeInvalidTransition Code = "invalid_transition"

	// CodeConflict marks a stale optimistic version. The caller may re-read
	// and retry; the core never retries internally.
	CodeConflict Code = "conflict"

	// CodeNotFound marks an unknown record or entry id.
	CodeNotFound Code = "not_found"

	// CodeAggregation marks a per-item failure during batch snapshot or
	// report computation. Batch jobs log it and continue.
	CodeAggregation Code = "aggregation"

	// CodeIntegrity marks a data-integrity bug: an audit entry or snapshot
	// referencing a nonexistent record. Treated as fatal, never swallowed.
	CodeIntegrity Code = "integrity_violation"

	// CodeTimeout marks a cancelled or deadline-exceeded operation.
	CodeTimeout Code = "timeout"

	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal"
)

// Error carries a code, a message, structured context fields, and an optional
// wrapped cause. It satisfies errors.Unwrap so errors.Is/As keep working.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. A nil cause
// returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// WithField returns a copy of err carrying an extra context field. Non-coded
// errors are wrapped as CodeInternal first.
func WithField(err error, key string, value any) error {
	if err == nil {
		return nil
	}
	var de *Error
	if !errors.As(err, &de) {
		de = &Error{Code: CodeInternal, Message: err.Error(), Err: err}
	}
	fields := make(map[string]any, len(de.Fields)+1)
	for k, v := range de.Fields {
		fields[k] = v
	}
	fields[key] = value
	return &Error{Code: de.Code, Message: de.Message, Fields: fields, Err: de.Err}
}

// Field reads a context field from a coded error, or nil.
func Field(err error, key string) any {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields[key]
	}
	return nil
}

// HasCode reports whether err (or any error it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability in tests.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors and "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps an error code to an HTTP status for the transport layer.
func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeInvalidTransition:
		return http.StatusUnprocessableEntity
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ToExitCode maps an error code to a CLI exit code: 0 success, 2 caller
// mistakes, 3 retryable conflicts, 1 everything else.
func ToExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch CodeOf(err) {
	case CodeValidation, CodeNotFound, CodeInvalidTransition:
		return 2
	case CodeConflict:
		return 3
	default:
		return 1
	}
}
