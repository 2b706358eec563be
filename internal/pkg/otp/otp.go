package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"io"
	"strings"

	"github.com/pquerna/otp"
)

// SaltSize is the number of random bytes mixed into every digest.
const SaltSize = 16

var (
	// ErrNoItems is returned when there is nothing to digest.
	ErrNoItems = errors.New("otp: no digest items")
	// ErrSaltSize is returned when a salt of the wrong length is supplied.
	ErrSaltSize = errors.New("otp: invalid salt size")
)

// Code is a generated authorization code together with its salt.
type Code struct {
	Value string
	Salt  []byte
}

// Generator produces salted codes for ordered items.
type Generator interface {
	Generate(items []string) (Code, error)
}

// Digest implements Generator.
type Digest struct {
	digits otp.Digits
	rand   io.Reader
}

// NewDigest returns a Digest rendering codes with the given number of digits.
// Anything other than six or eight digits falls back to eight.
func NewDigest(digits otp.Digits) *Digest {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsEight
	}
	return &Digest{digits: digits, rand: rand.Reader}
}

// Generate draws a new salt and computes the code for items.
func (d *Digest) Generate(items []string) (Code, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(d.rand, salt); err != nil {
		return Code{}, err
	}

	value, err := d.Compute(items, salt)
	if err != nil {
		return Code{}, err
	}

	return Code{Value: value, Salt: salt}, nil
}

// Compute derives the code for items under an existing salt.
func (d *Digest) Compute(items []string, salt []byte) (string, error) {
	if len(items) == 0 {
		return "", ErrNoItems
	}
	if len(salt) != SaltSize {
		return "", ErrSaltSize
	}

	mac := hmac.New(sha256.New, salt)
	mac.Write([]byte(strings.Join(items, "&")))
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	mod := uint32(1)
	for range d.digits.Length() {
		mod *= 10
	}

	return d.digits.Format(int32(bin % mod)), nil
}

// Equal compares two codes in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
