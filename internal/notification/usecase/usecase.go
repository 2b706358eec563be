package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/stepup/internal/notification/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/clock"
	"github.com/shandysiswandi/stepup/internal/pkg/idempotency"
	"github.com/shandysiswandi/stepup/internal/pkg/instrument"
	"github.com/shandysiswandi/stepup/internal/pkg/uid"
	"github.com/shandysiswandi/stepup/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const defaultRetryDelay = 2 * time.Minute

type repoDB interface {
	GetDeliveryLogsByMessageID(ctx context.Context, messageID string) ([]entity.DeliveryLog, error)
	CreateDeliveryLog(ctx context.Context, dl entity.CreateDeliveryLog) error
	UpdateDeliveryLogStatus(ctx context.Context, u entity.UpdateDeliveryLog) error
}

type repoSMS interface {
	Send(ctx context.Context, msg entity.SMS) (entity.SendResult, error)
}

type Usecase struct {
	repoDB      repoDB
	repoSMS     repoSMS
	idempotency idempotency.Idempotency
	uid         uid.NumberID
	clock       clock.Clocker
	validator   validator.Validator
	ins         instrument.Instrumentation
	retryDelay  time.Duration
}

type Dependency struct {
	RepoDB      repoDB
	RepoSMS     repoSMS
	Idempotency idempotency.Idempotency
	UID         uid.NumberID
	Clock       clock.Clocker
	Validator   validator.Validator
	Instrument  instrument.Instrumentation
	// RetryDelay is recorded as the next retry time of a failed delivery.
	RetryDelay time.Duration
}

func NewNotification(dep Dependency) *Usecase {
	if dep.RetryDelay <= 0 {
		dep.RetryDelay = defaultRetryDelay
	}

	return &Usecase{
		repoDB:      dep.RepoDB,
		repoSMS:     dep.RepoSMS,
		idempotency: dep.Idempotency,
		uid:         dep.UID,
		clock:       dep.Clock,
		validator:   dep.Validator,
		ins:         dep.Instrument,
		retryDelay:  dep.RetryDelay,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}
