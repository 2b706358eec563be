package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shandysiswandi/stepup/internal/authorization/entity"
	"github.com/shandysiswandi/stepup/internal/authorization/usecase"
	"github.com/shandysiswandi/stepup/internal/pkg/instrument"
	"github.com/shandysiswandi/stepup/internal/pkg/messaging"
	"github.com/shandysiswandi/stepup/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessaging_SendAuthorizationSMS(t *testing.T) {
	broker := messaging.NewMemory(4)
	t.Cleanup(func() { _ = broker.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sender := NewMessaging(broker, instrument.NewNoop())
	require.NoError(t, sender.SendAuthorizationSMS(instrument.SetCorrelationID(ctx, "cid-42"), usecase.SMSDelivery{
		MessageID:        "m-1",
		UserID:           "12345678",
		OrganizationID:   "RETAIL",
		MessageText:      "Login authorization code: 12345678",
		OperationContext: entity.OperationContext{ID: "op-1", Name: entity.OperationLogin},
	}))

	got := make(chan messaging.Message, 1)
	go func() {
		_ = broker.Consume(ctx, event.SMSAuthorizationRequestedDestination, func(_ context.Context, msg messaging.Message) error {
			got <- msg
			cancel()
			return nil
		}, messaging.WithAutoAck(true))
	}()

	select {
	case msg := <-got:
		var body event.SMSAuthorizationRequestedMessage
		require.NoError(t, json.Unmarshal(msg.Body(), &body))
		assert.Equal(t, event.SMSAuthorizationRequestedMessage{
			MessageID:      "m-1",
			UserID:         "12345678",
			OrganizationID: "RETAIL",
			OperationID:    "op-1",
			OperationName:  "login",
			MessageText:    "Login authorization code: 12345678",
		}, body)
		assert.Equal(t, "cid-42", msg.Header(keyOfCorrelationID))
		assert.Equal(t, []byte("12345678"), msg.Key())
	case <-time.After(3 * time.Second):
		t.Fatal("event not published")
	}
}

func TestMessaging_SendAuthorizationSMSClosedBroker(t *testing.T) {
	broker := messaging.NewMemory(1)
	require.NoError(t, broker.Close())

	err := NewMessaging(broker, instrument.NewNoop()).SendAuthorizationSMS(context.Background(), usecase.SMSDelivery{MessageID: "m-1"})
	assert.Error(t, err)
}
