package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	pquerna "github.com/pquerna/otp"
	"github.com/shandysiswandi/stepup/internal/authorization/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/clock"
	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
	"github.com/shandysiswandi/stepup/internal/pkg/hash"
	"github.com/shandysiswandi/stepup/internal/pkg/l10n"
	"github.com/shandysiswandi/stepup/internal/pkg/otp"
	"github.com/shandysiswandi/stepup/internal/pkg/uid"
	"github.com/shandysiswandi/stepup/internal/pkg/validator"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	mu        sync.Mutex
	records   map[string]entity.SMSAuthorization
	createErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]entity.SMSAuthorization{}}
}

func (f *fakeStore) CreateSMSAuthorization(_ context.Context, in entity.SMSAuthorization) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.records[in.MessageID]; ok {
		return goerror.ErrConflict
	}
	f.records[in.MessageID] = in
	return nil
}

func (f *fakeStore) UpdateSMSAuthorization(_ context.Context, messageID string, mutate func(*entity.SMSAuthorization) error) (*entity.SMSAuthorization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return nil, f.updateErr
	}
	rec, ok := f.records[messageID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	if err := mutate(&rec); err != nil {
		return nil, err
	}
	f.records[messageID] = rec
	return &rec, nil
}

func (f *fakeStore) get(t *testing.T, messageID string) entity.SMSAuthorization {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[messageID]
	require.True(t, ok, "record %s not stored", messageID)
	return rec
}

func (f *fakeStore) set(rec entity.SMSAuthorization) {
	f.mu.Lock()
	f.records[rec.MessageID] = rec
	f.mu.Unlock()
}

type fakeUsers struct {
	users map[string]entity.User
	err   error
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (*entity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*entity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &u, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []SMSDelivery
	err  error
}

func (f *fakeSender) SendAuthorizationSMS(_ context.Context, in SMSDelivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, in)
	return nil
}

type recordingGenerator struct {
	otp.Generator
	items [][]string
}

func (g *recordingGenerator) Generate(items []string) (otp.Code, error) {
	g.items = append(g.items, items)
	return g.Generator.Generate(items)
}

type suite struct {
	uc        *Usecase
	store     *fakeStore
	users     *fakeUsers
	sender    *fakeSender
	generator *recordingGenerator
	clock     *clock.Manual
}

var errBoom = errors.New("boom")

func newSuite(t *testing.T, maxTries int) *suite {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	cat, err := l10n.New("en")
	require.NoError(t, err)

	hasher, err := hash.NewBcrypt(bcrypt.MinCost, "")
	require.NoError(t, err)
	pw, err := hasher.Hash("test")
	require.NoError(t, err)

	s := &suite{
		store: newFakeStore(),
		users: &fakeUsers{users: map[string]entity.User{
			"12345678": {ID: "12345678", Username: "jdoe", PasswordHash: string(pw), GivenName: "John", FamilyName: "Doe", OrganizationID: "RETAIL"},
		}},
		sender:    &fakeSender{},
		generator: &recordingGenerator{Generator: otp.NewDigest(pquerna.DigitsEight)},
		clock:     clock.NewManual(time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)),
	}

	s.uc = New(Dependency{
		Store:          s.store,
		Users:          s.users,
		Sender:         s.sender,
		Catalog:        cat,
		Generator:      s.generator,
		Hasher:         hasher,
		Validator:      v,
		UUID:           uid.NewRandomUUID(),
		Clock:          s.clock,
		SMSExpiration:  5 * time.Minute,
		MaxVerifyTries: maxTries,
	})

	return s
}

func requireGoError(t *testing.T, err error, code goerror.Code, msg string) *goerror.Error {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, code, gerr.Code(), gerr.String())
	require.Equal(t, msg, gerr.Msg())
	return gerr
}
