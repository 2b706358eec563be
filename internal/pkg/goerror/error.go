package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates that the requested resource could not be found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates that the request could not be completed due to a conflict.
	ErrConflict = errors.New("resource conflict")
)

// Type classifies errors into high-level buckets used by the application.
type Type int

const (
	// TypeServer represents server-side failures.
	TypeServer Type = iota
	// TypeBusiness represents business rule violations.
	TypeBusiness
	// TypeValidation represents input validation failures.
	TypeValidation
)

// String returns the string representation of the error type.
func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable identifier surfaced to API callers.
type Code int

const (
	// CodeInternal represents an unclassified error.
	CodeInternal Code = iota
	// CodeInputInvalid indicates malformed or missing request fields.
	CodeInputInvalid
	// CodeOperationContextInvalid indicates an unsupported operation or missing operation fields.
	CodeOperationContextInvalid
	// CodeAuthenticationFailed indicates a primary credential failure, or a masked combined failure.
	CodeAuthenticationFailed
	// CodeSMSAuthorizationFailed indicates an OTP verification or delivery failure.
	CodeSMSAuthorizationFailed
	// CodeRemote indicates an unavailable downstream dependency.
	CodeRemote
	// CodeUnauthorized indicates a missing or invalid service token.
	CodeUnauthorized
	// CodeForbidden indicates the calling client is not allowed on the route.
	CodeForbidden
	// CodeNotFound indicates an unknown route.
	CodeNotFound
)

// String returns the wire identifier of the error code.
func (c Code) String() string {
	switch c {
	case CodeInputInvalid:
		return "INPUT_INVALID"
	case CodeOperationContextInvalid:
		return "OPERATION_CONTEXT_INVALID"
	case CodeAuthenticationFailed:
		return "AUTHENTICATION_FAILED"
	case CodeSMSAuthorizationFailed:
		return "SMS_AUTHORIZATION_FAILED"
	case CodeRemote:
		return "REMOTE_ERROR"
	case CodeUnauthorized:
		return "UNAUTHORIZED"
	case CodeForbidden:
		return "FORBIDDEN"
	case CodeNotFound:
		return "NOT_FOUND"
	default:
		return "ERROR_GENERIC"
	}
}

// Error is a structured error used across the application.
//
// It can wrap an underlying error while also carrying a user-facing message,
// a high-level type, a stable error code and, for authorization failures,
// the number of attempts the caller has left.
type Error struct {
	err       error
	msg       string
	errType   Type
	code      Code
	fields    map[string]string
	remaining *int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}

	if e.msg != "" {
		return e.msg
	}

	switch e.errType {
	case TypeValidation:
		return "Validation violation"
	case TypeBusiness:
		return "Logical business not meet with requirement"
	default:
		return "Unknown Error"
	}
}

// String returns a verbose representation of the error for debugging/logging.
func (e *Error) String() string {
	return fmt.Sprintf(
		"Error Type: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType.String(),
		e.code.String(),
		e.msg,
		e.err,
	)
}

// Msg returns the user-facing message key, if set.
func (e *Error) Msg() string {
	return e.msg
}

// Type returns the high-level error type.
func (e *Error) Type() Type {
	return e.errType
}

// Code returns the stable error code.
func (e *Error) Code() Code {
	return e.code
}

// Fields returns validation errors (field to message map), if any.
func (e *Error) Fields() map[string]string {
	return e.fields
}

// RemainingAttempts reports the attempt budget left, if the error carries one.
func (e *Error) RemainingAttempts() (int, bool) {
	if e.remaining == nil {
		return 0, false
	}
	return *e.remaining, true
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	switch e.code {
	case CodeInputInvalid, CodeOperationContextInvalid:
		return http.StatusBadRequest
	case CodeAuthenticationFailed, CodeSMSAuthorizationFailed, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func new(err error, msg string, et Type, code Code) *Error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer creates an unclassified server error. The cause is kept for logs only.
func NewServer(err error) error {
	return new(err, "Unknown Error", TypeServer, CodeInternal)
}

// NewRemote creates a retryable error for a failing downstream dependency.
func NewRemote(err error) error {
	return new(err, "error.remote", TypeServer, CodeRemote)
}

// NewBusiness creates a business-type error with the specified message and code.
func NewBusiness(msg string, code Code) error {
	return new(nil, msg, TypeBusiness, code)
}

// NewAttemptFailure creates an authorization failure that tells the caller how many attempts remain.
func NewAttemptFailure(msg string, code Code, remaining int) error {
	e := new(nil, msg, TypeBusiness, code)
	e.remaining = &remaining
	return e
}

// NewOperationContext creates an error for an unusable operation context.
func NewOperationContext(msg string) error {
	return new(nil, msg, TypeBusiness, CodeOperationContextInvalid)
}

// NewInvalidInput creates a validation error either from an underlying
// validator error or from explicit field/message pairs.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return new(err, "Validation error", TypeValidation, CodeInputInvalid)
	}

	if len(kv)%2 != 0 {
		return new(nil, "Invalid request body", TypeValidation, CodeInputInvalid)
	}

	e := new(nil, "Validation error", TypeValidation, CodeInputInvalid)
	e.fields = make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}

	return e
}

// NewInvalidFields creates a validation error with a top-level message and field detail.
func NewInvalidFields(msg string, fields map[string]string) error {
	e := new(nil, msg, TypeValidation, CodeInputInvalid)
	e.fields = fields
	return e
}

// NewInvalidFormat creates a validation error for an invalid request body format.
func NewInvalidFormat(msgs ...string) error {
	if len(msgs) == 0 {
		return new(nil, "Invalid request body", TypeValidation, CodeInputInvalid)
	}
	return new(nil, msgs[0], TypeValidation, CodeInputInvalid)
}
