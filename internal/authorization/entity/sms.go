package entity

import "time"

// SMSAuthorization is one issued SMS authorization code and its verification state.
type SMSAuthorization struct {
	MessageID         string
	OperationID       string
	UserID            string
	OrganizationID    string
	OperationName     string
	AuthorizationCode string
	Salt              []byte
	MessageText       string
	// VerifyRequestCount counts every verification call, successful or not.
	VerifyRequestCount int
	Verified           bool
	CreatedAt          time.Time
	VerifiedAt         *time.Time
	ExpiresAt          time.Time
}

// Expired reports whether now is after the expiry instant.
func (a *SMSAuthorization) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// RemainingAttempts is the attempt budget left, never below zero.
func (a *SMSAuthorization) RemainingAttempts(maxTries int) int {
	return max(maxTries-a.VerifyRequestCount, 0)
}
