// Package jwt issues and verifies service tokens used between the
// authentication workflow and this adapter.
//
// Tokens are HS512 signed and carry the calling client identifier, which the
// router hands to the casbin enforcer.
package jwt
