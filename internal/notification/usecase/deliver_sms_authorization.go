package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/stepup/internal/notification/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/idempotency"
)

type DeliverSMSAuthorizationInput struct {
	MessageID      string `validate:"required"`
	UserID         string `validate:"required"`
	OrganizationID string
	OperationID    string
	OperationName  string
	Text           string `validate:"required"`
}

// DeliverSMSAuthorization sends an authorization text once per message id.
// A failed send, or a send still running elsewhere, is returned so the broker
// redelivers it.
func (s *Usecase) DeliverSMSAuthorization(ctx context.Context, in DeliverSMSAuthorizationInput) error {
	ctx, span := s.startSpan(ctx, "DeliverSMSAuthorization")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "message_id", in.MessageID, "error", err)
		return nil
	}

	err := s.idempotency.Exec(ctx, "sms_delivery:"+in.MessageID, func(ctx context.Context) error {
		return s.deliver(ctx, in)
	})
	switch {
	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		slog.InfoContext(ctx, "sms already delivered", "message_id", in.MessageID)
		return nil
	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		// nack so the broker redelivers if the running attempt fails
		slog.WarnContext(ctx, "sms delivery already in progress", "message_id", in.MessageID)
		return fmt.Errorf("sms delivery %s: %w", in.MessageID, err)
	}

	return err
}

func (s *Usecase) deliver(ctx context.Context, in DeliverSMSAuthorizationInput) error {
	logs, err := s.repoDB.GetDeliveryLogsByMessageID(ctx, in.MessageID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get delivery logs", "message_id", in.MessageID, "error", err)
		return err
	}
	for _, dl := range logs {
		if dl.Status.Final() {
			slog.InfoContext(ctx, "sms already delivered", "message_id", in.MessageID, "log_id", dl.ID)
			return nil
		}
	}

	logID := s.uid.Generate()
	if err := s.repoDB.CreateDeliveryLog(ctx, entity.CreateDeliveryLog{
		ID:             logID,
		MessageID:      in.MessageID,
		UserID:         in.UserID,
		OrganizationID: in.OrganizationID,
		OperationID:    in.OperationID,
		OperationName:  in.OperationName,
		Channel:        entity.ChannelSMS,
		Status:         entity.DeliveryStatusQueued,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery log", "message_id", in.MessageID, "error", err)
		return err
	}

	res, sendErr := s.repoSMS.Send(ctx, entity.SMS{
		MessageID:      in.MessageID,
		UserID:         in.UserID,
		OrganizationID: in.OrganizationID,
		Text:           in.Text,
	})
	if sendErr == nil {
		if err := s.repoDB.UpdateDeliveryLogStatus(ctx, entity.UpdateDeliveryLog{
			ID:               logID,
			Status:           entity.DeliveryStatusSent,
			ProviderResponse: map[string]any{"provider": res.Provider, "provider_id": res.ProviderID},
		}); err != nil {
			slog.ErrorContext(ctx, "failed to repo update delivery log status sent", "log_id", logID, "error", err)
		}
		slog.InfoContext(ctx, "sms delivered", "log_id", logID, "message_id", in.MessageID, "provider", res.Provider)
		return nil
	}

	nextRetry := s.clock.Now().Add(s.retryDelay)
	if err := s.repoDB.UpdateDeliveryLogStatus(ctx, entity.UpdateDeliveryLog{
		ID:               logID,
		Status:           entity.DeliveryStatusFailed,
		ProviderResponse: map[string]any{"error": sendErr.Error()},
		NextRetryAt:      &nextRetry,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo update delivery log status failed", "log_id", logID, "error", err)
	}

	slog.ErrorContext(ctx, "failed to send sms", "log_id", logID, "message_id", in.MessageID, "error", sendErr)
	return sendErr
}
