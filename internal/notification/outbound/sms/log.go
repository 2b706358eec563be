package sms

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/shandysiswandi/stepup/internal/notification/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/instrument"
)

// Log accepts every SMS and only logs its envelope.
type Log struct {
	ins instrument.Instrumentation
}

func NewLog(ins instrument.Instrumentation) *Log {
	return &Log{ins: ins}
}

func (l *Log) Send(ctx context.Context, msg entity.SMS) (entity.SendResult, error) {
	ctx, span := l.ins.Tracer("notification.outbound.sms").Start(ctx, "Log.Send")
	defer span.End()

	// the text carries the code
	slog.InfoContext(ctx, "sms delivered to log gateway",
		"message_id", msg.MessageID,
		"user_id", msg.UserID,
		"organization_id", msg.OrganizationID,
		"text_length", utf8.RuneCountInString(msg.Text),
	)

	return entity.SendResult{Provider: DriverLog, ProviderID: msg.MessageID}, nil
}
