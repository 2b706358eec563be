package userstore

import (
	"context"
	"testing"

	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
	"github.com/shandysiswandi/stepup/internal/pkg/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestParseSeeds(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		want    []Seed
		wantErr bool
	}{
		{
			name:  "valid",
			lines: []string{"12345678:jdoe:John:Doe:RETAIL", " 2 : alice : Alice : Smith : SME "},
			want: []Seed{
				{ID: "12345678", Username: "jdoe", GivenName: "John", FamilyName: "Doe", OrganizationID: "RETAIL"},
				{ID: "2", Username: "alice", GivenName: "Alice", FamilyName: "Smith", OrganizationID: "SME"},
			},
		},
		{name: "empty", lines: nil, want: []Seed{}},
		{name: "too few parts", lines: []string{"1:jdoe:John"}, wantErr: true},
		{name: "missing username", lines: []string{"1::John:Doe:RETAIL"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSeeds(tt.lines)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSeed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemory(t *testing.T) {
	hasher, err := hash.NewBcrypt(bcrypt.MinCost, "")
	require.NoError(t, err)

	store, err := NewMemory(hasher, "test", []Seed{{ID: "12345678", Username: "jdoe", GivenName: "John", FamilyName: "Doe", OrganizationID: "RETAIL"}})
	require.NoError(t, err)
	ctx := context.Background()

	u, err := store.GetUserByUsername(ctx, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, "12345678", u.ID)
	assert.True(t, hasher.Verify(u.PasswordHash, "test"))
	assert.False(t, hasher.Verify(u.PasswordHash, "nope"))

	u, err = store.GetUserByID(ctx, "12345678")
	require.NoError(t, err)
	assert.Equal(t, "Doe", u.FamilyName)

	_, err = store.GetUserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
	_, err = store.GetUserByID(ctx, "0")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestNewMemory_Duplicate(t *testing.T) {
	hasher, err := hash.NewBcrypt(bcrypt.MinCost, "")
	require.NoError(t, err)

	_, err = NewMemory(hasher, "test", []Seed{{ID: "1", Username: "jdoe"}, {ID: "2", Username: "jdoe"}})
	assert.ErrorIs(t, err, ErrInvalidSeed)
}
