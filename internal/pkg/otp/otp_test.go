package otp

import (
	"bytes"
	"errors"
	"regexp"
	"testing"

	"github.com/pquerna/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eightDigits = regexp.MustCompile(`^[0-9]{8}$`)

func TestDigest_Generate(t *testing.T) {
	d := NewDigest(otp.DigitsEight)
	items := []string{"100.00", "CZK", "CZ1234567890"}

	first, err := d.Generate(items)
	require.NoError(t, err)
	assert.Regexp(t, eightDigits, first.Value)
	assert.Len(t, first.Salt, SaltSize)

	second, err := d.Generate(items)
	require.NoError(t, err)
	assert.NotEqual(t, first.Salt, second.Salt)

	again, err := d.Compute(items, first.Salt)
	require.NoError(t, err)
	assert.Equal(t, first.Value, again)
}

func TestDigest_SaltFreshness(t *testing.T) {
	d := NewDigest(otp.DigitsEight)
	seen := make(map[string]struct{})
	for range 50 {
		c, err := d.Generate([]string{"login"})
		require.NoError(t, err)
		seen[c.Value] = struct{}{}
	}
	assert.Greater(t, len(seen), 45)
}

func TestDigest_ContentBinding(t *testing.T) {
	d := NewDigest(otp.DigitsEight)
	salt := bytes.Repeat([]byte{7}, SaltSize)

	a, err := d.Compute([]string{"100.00", "CZK", "CZ1"}, salt)
	require.NoError(t, err)
	b, err := d.Compute([]string{"100.01", "CZK", "CZ1"}, salt)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDigest_Compute_Errors(t *testing.T) {
	d := NewDigest(otp.DigitsSix)

	_, err := d.Compute(nil, make([]byte, SaltSize))
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = d.Compute([]string{"login"}, []byte{1, 2})
	assert.ErrorIs(t, err, ErrSaltSize)

	v, err := d.Compute([]string{"login"}, make([]byte, SaltSize))
	require.NoError(t, err)
	assert.Len(t, v, 6)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestDigest_Generate_RandError(t *testing.T) {
	d := NewDigest(otp.DigitsEight)
	d.rand = failingReader{}

	_, err := d.Generate([]string{"login"})
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("12345678", "12345678"))
	assert.False(t, Equal("12345678", "12345679"))
	assert.False(t, Equal("1234567", "12345678"))
}
