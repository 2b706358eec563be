// Package uid generates identifiers: random UUIDs for OTP message ids,
// time-ordered UUIDs for correlation and token ids, and snowflake numbers for
// delivery log rows.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}
