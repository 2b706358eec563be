// Package hash provides password hashing for the user backend.
//
// Only bcrypt hashes are stored. Verify against an unknown user still burns a
// full bcrypt comparison so a missing account and a wrong password take the
// same time.
package hash
