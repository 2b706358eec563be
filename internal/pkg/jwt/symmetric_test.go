package jwt

import (
	"bytes"
	"context"
	"testing"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/shandysiswandi/stepup/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func newSymmetric(t *testing.T, clk clocker) *Symmetric {
	t.Helper()
	s, err := NewHS512(Config{
		Secret:    bytes.Repeat([]byte("s"), 64),
		Issuer:    "stepup",
		Audiences: []string{"stepup"},
		TTL:       time.Minute,
		Clock:     clk,
		UUID:      fixedID("jti-1"),
	})
	require.NoError(t, err)
	return s
}

func TestNewHS512_ShortKey(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("short")})
	assert.ErrorIs(t, err, ErrSigningKeyTooShort)
}

func TestSymmetric_RoundTrip(t *testing.T) {
	clk := clock.NewManual(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	s := newSymmetric(t, clk)

	token, err := s.Generate("workflow")
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "workflow", claims.ClientID)
	assert.Equal(t, "jti-1", claims.ID)

	clk.Advance(2 * time.Minute)
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSymmetric_Rejects(t *testing.T) {
	clk := clock.NewManual(time.Now())
	s := newSymmetric(t, clk)

	_, err := s.Generate("")
	assert.ErrorIs(t, err, ErrMissingClient)

	other, err := NewHS512(Config{
		Secret:    bytes.Repeat([]byte("x"), 64),
		Issuer:    "stepup",
		Audiences: []string{"stepup"},
		TTL:       time.Minute,
		Clock:     clk,
		UUID:      fixedID("jti-2"),
	})
	require.NoError(t, err)
	foreign, err := other.Generate("workflow")
	require.NoError(t, err)
	_, err = s.Verify(foreign)
	assert.Error(t, err)

	hs256, err := libJWT.NewWithClaims(libJWT.SigningMethodHS256, Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			Issuer:    "stepup",
			Audience:  []string{"stepup"},
			IssuedAt:  libJWT.NewNumericDate(clk.Now()),
			ExpiresAt: libJWT.NewNumericDate(clk.Now().Add(time.Minute)),
		},
		ClientID: "workflow",
	}).SignedString(bytes.Repeat([]byte("s"), 64))
	require.NoError(t, err)
	_, err = s.Verify(hs256)
	assert.Error(t, err)
}

func TestContextAuth(t *testing.T) {
	assert.Nil(t, GetAuth(context.Background()))

	ctx := SetAuth(context.Background(), Claims{ClientID: "workflow"})
	require.NotNil(t, GetAuth(ctx))
	assert.Equal(t, "workflow", GetAuth(ctx).ClientID)
}
