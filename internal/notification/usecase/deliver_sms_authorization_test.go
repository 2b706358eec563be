package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/stepup/internal/notification/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/clock"
	"github.com/shandysiswandi/stepup/internal/pkg/idempotency"
	"github.com/shandysiswandi/stepup/internal/pkg/instrument"
	"github.com/shandysiswandi/stepup/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	existing []entity.DeliveryLog
	created  []entity.CreateDeliveryLog
	updated  []entity.UpdateDeliveryLog
	err      error
}

func (f *fakeDB) GetDeliveryLogsByMessageID(_ context.Context, messageID string) ([]entity.DeliveryLog, error) {
	var out []entity.DeliveryLog
	for _, dl := range f.existing {
		if dl.MessageID == messageID {
			out = append(out, dl)
		}
	}
	return out, nil
}

func (f *fakeDB) CreateDeliveryLog(_ context.Context, dl entity.CreateDeliveryLog) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, dl)
	return nil
}

func (f *fakeDB) UpdateDeliveryLogStatus(_ context.Context, u entity.UpdateDeliveryLog) error {
	f.updated = append(f.updated, u)
	return nil
}

type fakeSMS struct {
	sent []entity.SMS
	err  error
}

func (f *fakeSMS) Send(_ context.Context, msg entity.SMS) (entity.SendResult, error) {
	f.sent = append(f.sent, msg)
	if f.err != nil {
		return entity.SendResult{}, f.err
	}
	return entity.SendResult{Provider: "log", ProviderID: "p-1"}, nil
}

// memoryIdempotency mirrors the redis tracker without a server.
type memoryIdempotency struct {
	mu      sync.Mutex
	done    map[string]bool
	running map[string]bool
}

func (m *memoryIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	m.mu.Lock()
	if m.done[key] {
		m.mu.Unlock()
		return idempotency.ErrAlreadyCompleted
	}
	if m.running[key] {
		m.mu.Unlock()
		return idempotency.ErrAlreadyInProgress
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.done[key] = true
	m.mu.Unlock()
	return nil
}

type seq struct{ n int64 }

func (s *seq) Generate() int64 {
	s.n++
	return s.n
}

type suite struct {
	uc    *Usecase
	db    *fakeDB
	sms   *fakeSMS
	idemp *memoryIdempotency
	clock *clock.Manual
}

func newSuite(t *testing.T) *suite {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	s := &suite{
		db:    &fakeDB{},
		sms:   &fakeSMS{},
		idemp: &memoryIdempotency{done: map[string]bool{}, running: map[string]bool{}},
		clock: clock.NewManual(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)),
	}
	s.uc = NewNotification(Dependency{
		RepoDB:      s.db,
		RepoSMS:     s.sms,
		Idempotency: s.idemp,
		UID:         &seq{},
		Clock:       s.clock,
		Validator:   v,
		Instrument:  instrument.NewNoop(),
	})
	return s
}

var input = DeliverSMSAuthorizationInput{
	MessageID:      "m-1",
	UserID:         "12345678",
	OrganizationID: "RETAIL",
	OperationID:    "op-1",
	OperationName:  "login",
	Text:           "Login authorization code: 12345678",
}

func TestDeliverSMSAuthorization_Sent(t *testing.T) {
	s := newSuite(t)

	require.NoError(t, s.uc.DeliverSMSAuthorization(context.Background(), input))

	require.Len(t, s.sms.sent, 1)
	assert.Equal(t, input.Text, s.sms.sent[0].Text)
	require.Len(t, s.db.created, 1)
	assert.Equal(t, entity.DeliveryStatusQueued, s.db.created[0].Status)
	assert.Equal(t, int64(1), s.db.created[0].ID)
	require.Len(t, s.db.updated, 1)
	assert.Equal(t, entity.DeliveryStatusSent, s.db.updated[0].Status)
	assert.Equal(t, "p-1", s.db.updated[0].ProviderResponse["provider_id"])

	require.NoError(t, s.uc.DeliverSMSAuthorization(context.Background(), input))
	assert.Len(t, s.sms.sent, 1, "redelivered event must not send twice")
}

func TestDeliverSMSAuthorization_GatewayFailure(t *testing.T) {
	s := newSuite(t)
	s.sms.err = errors.New("gateway down")

	err := s.uc.DeliverSMSAuthorization(context.Background(), input)
	require.ErrorIs(t, err, s.sms.err)

	require.Len(t, s.db.updated, 1)
	assert.Equal(t, entity.DeliveryStatusFailed, s.db.updated[0].Status)
	require.NotNil(t, s.db.updated[0].NextRetryAt)
	assert.Equal(t, s.clock.Now().Add(defaultRetryDelay), *s.db.updated[0].NextRetryAt)

	s.sms.err = nil
	require.NoError(t, s.uc.DeliverSMSAuthorization(context.Background(), input))
	assert.Len(t, s.sms.sent, 2)
	assert.Len(t, s.db.created, 2)
}

func TestDeliverSMSAuthorization_InvalidIsDropped(t *testing.T) {
	s := newSuite(t)

	require.NoError(t, s.uc.DeliverSMSAuthorization(context.Background(), DeliverSMSAuthorizationInput{MessageID: "m-2"}))
	assert.Empty(t, s.sms.sent)
	assert.Empty(t, s.db.created)
}

func TestDeliverSMSAuthorization_LogFailure(t *testing.T) {
	s := newSuite(t)
	s.db.err = errors.New("db down")

	require.ErrorIs(t, s.uc.DeliverSMSAuthorization(context.Background(), input), s.db.err)
	assert.Empty(t, s.sms.sent)
}

func TestDeliverSMSAuthorization_SentLogSkipsResend(t *testing.T) {
	s := newSuite(t)
	s.db.existing = []entity.DeliveryLog{
		{ID: 7, MessageID: "m-1", Status: entity.DeliveryStatusFailed},
		{ID: 8, MessageID: "m-1", Status: entity.DeliveryStatusSent},
	}

	require.NoError(t, s.uc.DeliverSMSAuthorization(context.Background(), input))
	assert.Empty(t, s.sms.sent)
	assert.Empty(t, s.db.created)
}

func TestDeliverSMSAuthorization_InProgressIsRedelivered(t *testing.T) {
	s := newSuite(t)
	s.idemp.running["sms_delivery:"+input.MessageID] = true

	err := s.uc.DeliverSMSAuthorization(context.Background(), input)
	require.ErrorIs(t, err, idempotency.ErrAlreadyInProgress)
	assert.Empty(t, s.sms.sent)

	delete(s.idemp.running, "sms_delivery:"+input.MessageID)
	require.NoError(t, s.uc.DeliverSMSAuthorization(context.Background(), input))
	assert.Len(t, s.sms.sent, 1)
}
