package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/stepup/internal/notification/usecase"
	"github.com/shandysiswandi/stepup/internal/pkg/instrument"
	"github.com/shandysiswandi/stepup/internal/pkg/messaging"
	"github.com/shandysiswandi/stepup/internal/pkg/uid"
	"github.com/shandysiswandi/stepup/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(keyOfCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) SMSAuthorizationRequested(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "SMSAuthorizationRequested")
	defer span.End()

	var payload event.SMSAuthorizationRequestedMessage
	if err := json.Unmarshal(msg.Body(), &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of sms authorization requested", "msg_id", msg.ID(), "error", err)
		return nil
	}

	slog.InfoContext(ctx, "consume: sms authorization requested",
		"message_id", payload.MessageID,
		"operation_id", payload.OperationID,
		"attempt", msg.Attempts(),
	)

	if err := h.uc.DeliverSMSAuthorization(ctx, usecase.DeliverSMSAuthorizationInput{
		MessageID:      payload.MessageID,
		UserID:         payload.UserID,
		OrganizationID: payload.OrganizationID,
		OperationID:    payload.OperationID,
		OperationName:  payload.OperationName,
		Text:           payload.MessageText,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume sms authorization requested", "message_id", payload.MessageID, "error", err)
		return err
	}

	return nil
}
