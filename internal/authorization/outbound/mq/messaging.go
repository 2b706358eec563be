package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/stepup/internal/authorization/usecase"
	"github.com/shandysiswandi/stepup/internal/pkg/instrument"
	"github.com/shandysiswandi/stepup/internal/pkg/messaging"
	"github.com/shandysiswandi/stepup/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) SendAuthorizationSMS(ctx context.Context, msg usecase.SMSDelivery) error {
	ctx, span := m.ins.Tracer("authorization.outbound.mq").Start(ctx, "SendAuthorizationSMS")
	defer span.End()

	body, err := json.Marshal(event.SMSAuthorizationRequestedMessage{
		MessageID:      msg.MessageID,
		UserID:         msg.UserID,
		OrganizationID: msg.OrganizationID,
		OperationID:    msg.OperationContext.ID,
		OperationName:  msg.OperationContext.Name,
		MessageText:    msg.MessageText,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.SMSAuthorizationRequestedDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(msg.UserID),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
