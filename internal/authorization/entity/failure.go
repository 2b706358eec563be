package entity

import "fmt"

type FailureReason int

const (
	FailureUnknown FailureReason = iota
	FailureInvalidMessage
	FailureInvalidCode
	FailureExpired
	FailureAlreadyVerified
	FailureMaxAttemptsExceeded
	FailureOtpInvalid
	FailureAuthenticationFailed
)

func (r FailureReason) String() string {
	switch r {
	case FailureInvalidMessage:
		return "InvalidMessage"
	case FailureInvalidCode:
		return "InvalidCode"
	case FailureExpired:
		return "Expired"
	case FailureAlreadyVerified:
		return "AlreadyVerified"
	case FailureMaxAttemptsExceeded:
		return "MaxAttemptsExceeded"
	case FailureOtpInvalid:
		return "OtpInvalid"
	case FailureAuthenticationFailed:
		return "AuthenticationFailed"
	default:
		return "Unknown"
	}
}

// MessageKey is the stable message key reported to callers.
func (r FailureReason) MessageKey() string {
	switch r {
	case FailureInvalidMessage:
		return "smsAuthorization.invalidMessage"
	case FailureInvalidCode:
		return "smsAuthorization.invalidCode"
	case FailureExpired:
		return "smsAuthorization.expired"
	case FailureAlreadyVerified:
		return "smsAuthorization.alreadyVerified"
	case FailureMaxAttemptsExceeded:
		return "smsAuthorization.maxAttemptsExceeded"
	case FailureOtpInvalid:
		return "smsAuthorization.failed"
	case FailureAuthenticationFailed:
		return "login.authenticationFailed"
	default:
		return "error.unknown"
	}
}

// VerificationError is a failed verification of an existing or missing record.
type VerificationError struct {
	Reason FailureReason
	// Remaining is set when the caller should learn its attempt budget.
	Remaining *int
}

func NewVerificationError(reason FailureReason) *VerificationError {
	return &VerificationError{Reason: reason}
}

func NewVerificationErrorWithRemaining(reason FailureReason, remaining int) *VerificationError {
	return &VerificationError{Reason: reason, Remaining: &remaining}
}

func (e *VerificationError) Error() string {
	if e.Remaining != nil {
		return fmt.Sprintf("sms authorization failed: %s (remaining attempts: %d)", e.Reason, *e.Remaining)
	}
	return "sms authorization failed: " + e.Reason.String()
}
