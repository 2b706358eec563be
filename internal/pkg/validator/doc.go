// Package validator validates request structs and reports message keys.
//
// Failures are reported per field as stable message keys (for example
// "smsAuthorization.userId.empty") rather than English prose. The key prefix
// of a field comes from its `key` struct tag; the suffix comes from the rule
// that failed.
package validator
