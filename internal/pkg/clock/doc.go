// Package clock provides a tiny time abstraction.
//
// Expiry decisions depend on Clocker instead of calling time.Now directly, so
// tests can drive a Manual clock past a record's expiry without sleeping.
package clock
