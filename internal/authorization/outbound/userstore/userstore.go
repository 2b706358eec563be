// Package userstore is the sample user backend: a fixed table of users that
// share one password, hashed at startup.
package userstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/stepup/internal/authorization/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
	"github.com/shandysiswandi/stepup/internal/pkg/hash"
)

var ErrInvalidSeed = errors.New("userstore: invalid user seed")

// Seed describes one user. Users are configured as
// "id:username:given_name:family_name:organization_id".
type Seed struct {
	ID             string
	Username       string
	GivenName      string
	FamilyName     string
	OrganizationID string
}

func ParseSeeds(lines []string) ([]Seed, error) {
	seeds := make([]Seed, 0, len(lines))
	for _, line := range lines {
		parts := strings.Split(line, ":")
		if len(parts) != 5 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSeed, line)
		}
		parts = lo.Map(parts, func(p string, _ int) string { return strings.TrimSpace(p) })
		if parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSeed, line)
		}
		seeds = append(seeds, Seed{
			ID:             parts[0],
			Username:       parts[1],
			GivenName:      parts[2],
			FamilyName:     parts[3],
			OrganizationID: parts[4],
		})
	}
	return seeds, nil
}

// Memory is read-only after construction.
type Memory struct {
	byID       map[string]entity.User
	byUsername map[string]entity.User
}

func NewMemory(hasher hash.Hasher, password string, seeds []Seed) (*Memory, error) {
	m := &Memory{
		byID:       make(map[string]entity.User, len(seeds)),
		byUsername: make(map[string]entity.User, len(seeds)),
	}

	for _, s := range seeds {
		if _, dup := m.byUsername[s.Username]; dup {
			return nil, fmt.Errorf("%w: duplicate username %q", ErrInvalidSeed, s.Username)
		}
		if _, dup := m.byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidSeed, s.ID)
		}

		hashed, err := hasher.Hash(password)
		if err != nil {
			return nil, err
		}

		u := entity.User{
			ID:             s.ID,
			Username:       s.Username,
			PasswordHash:   string(hashed),
			GivenName:      s.GivenName,
			FamilyName:     s.FamilyName,
			OrganizationID: s.OrganizationID,
		}
		m.byID[u.ID] = u
		m.byUsername[u.Username] = u
	}

	return m, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*entity.User, error) {
	u, ok := m.byUsername[username]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &u, nil
}
