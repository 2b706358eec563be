package hash

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies secrets.
type Hasher interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
	// VerifyMissing performs a comparison of the same cost as Verify and always fails.
	VerifyMissing(plaintext string)
}

// Bcrypt implements Hasher using bcrypt.
//
// Pepper is appended to the plaintext before hashing/verifying.
type Bcrypt struct {
	cost   int
	pepper string
	dummy  []byte
}

// NewBcrypt returns a bcrypt-based hasher. A cost outside bcrypt's range
// falls back to bcrypt.DefaultCost.
func NewBcrypt(cost int, pepper string) (*Bcrypt, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("unknown-user"+pepper), cost)
	if err != nil {
		return nil, err
	}

	return &Bcrypt{cost: cost, pepper: pepper, dummy: dummy}, nil
}

// Hash hashes plaintext using bcrypt.
func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext+h.pepper), h.cost)
}

// Verify returns true when plaintext matches the hashed value.
func (h *Bcrypt) Verify(hashed, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext+h.pepper)) == nil
}

// VerifyMissing compares plaintext against a throwaway hash.
func (h *Bcrypt) VerifyMissing(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext+h.pepper+"\x00"))
}
