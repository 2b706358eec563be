// Package otp derives operation-bound authorization codes.
//
// A code is an HMAC-SHA256 digest, keyed by a fresh random salt, over the
// ordered operation items joined with "&". The digest is reduced by dynamic
// truncation into a fixed number of decimal digits. The same items and salt
// always produce the same code; a new salt is drawn for every issuance.
package otp
