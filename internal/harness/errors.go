package harness

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorises harness failures.
type ErrorCode string

const (
	// ErrCodeUnusedResponse indicates responses were declared that no request consumed.
	ErrCodeUnusedResponse ErrorCode = "UNUSED_RESPONSE"

	// ErrCodeUnmatchedRequest indicates requests were left without a response.
	ErrCodeUnmatchedRequest ErrorCode = "UNMATCHED_REQUEST"

	// ErrCodePrecondition indicates a helper ran in the wrong session state.
	ErrCodePrecondition ErrorCode = "PRECONDITION"

	// ErrCodeAlreadyMounted indicates Mount was called twice.
	ErrCodeAlreadyMounted ErrorCode = "ALREADY_MOUNTED"

	// ErrCodeNotMounted indicates a chain without Mount, or a Request before it.
	ErrCodeNotMounted ErrorCode = "NOT_MOUNTED"

	// ErrCodeAlreadyCompleted indicates Complete was called twice.
	ErrCodeAlreadyCompleted ErrorCode = "ALREADY_COMPLETED"
)

// SequenceError is a violation of the harness protocol.
type SequenceError struct {
	Code    ErrorCode
	Message string

	// Counts at the time of failure.
	Issued   int
	Declared int
	Consumed int

	// Outstanding lists unanswered requests as "METHOD path".
	Outstanding []string
}

// Error implements the error interface.
func (e *SequenceError) Error() string {
	msg := fmt.Sprintf("%s: %s (issued=%d, declared=%d, consumed=%d)",
		e.Code, e.Message, e.Issued, e.Declared, e.Consumed)
	if len(e.Outstanding) > 0 {
		msg += " outstanding: " + strings.Join(e.Outstanding, ", ")
	}
	return msg
}

// NewPreconditionError creates a SequenceError for a violated precondition.
func NewPreconditionError(message string) *SequenceError {
	return &SequenceError{Code: ErrCodePrecondition, Message: message}
}

func newMisuseError(code ErrorCode, message string) *SequenceError {
	return &SequenceError{Code: code, Message: message}
}

// HasCode reports whether err wraps a SequenceError with code.
func HasCode(err error, code ErrorCode) bool {
	var se *SequenceError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsUnusedResponse reports whether err is an unused-response failure.
func IsUnusedResponse(err error) bool { return HasCode(err, ErrCodeUnusedResponse) }

// IsUnmatchedRequest reports whether err is an unmatched-request failure.
func IsUnmatchedRequest(err error) bool { return HasCode(err, ErrCodeUnmatchedRequest) }

// IsPrecondition reports whether err is a precondition failure.
func IsPrecondition(err error) bool { return HasCode(err, ErrCodePrecondition) }

// IsSequenceError reports whether err is any harness protocol failure, as
// opposed to an error raised by the component or the test's own actions.
func IsSequenceError(err error) bool {
	var se *SequenceError
	return errors.As(err, &se)
}
