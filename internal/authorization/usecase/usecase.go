package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/stepup/internal/authorization/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/clock"
	"github.com/shandysiswandi/stepup/internal/pkg/hash"
	"github.com/shandysiswandi/stepup/internal/pkg/instrument"
	"github.com/shandysiswandi/stepup/internal/pkg/otp"
	"github.com/shandysiswandi/stepup/internal/pkg/uid"
	"github.com/shandysiswandi/stepup/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultSMSExpiration  = 300 * time.Second
	DefaultMaxVerifyTries = 5
)

// SMSDelivery is what the delivery channel needs to reach the user.
type SMSDelivery struct {
	MessageID        string
	UserID           string
	OrganizationID   string
	MessageText      string
	OperationContext entity.OperationContext
}

// Store persists SMS authorizations.
type Store interface {
	CreateSMSAuthorization(ctx context.Context, in entity.SMSAuthorization) error
	// UpdateSMSAuthorization applies mutate to the record under a per-record
	// lock and persists the result. A missing record yields goerror.ErrNotFound.
	UpdateSMSAuthorization(ctx context.Context, messageID string, mutate func(*entity.SMSAuthorization) error) (*entity.SMSAuthorization, error)
}

type repoUser interface {
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
}

type smsSender interface {
	SendAuthorizationSMS(ctx context.Context, in SMSDelivery) error
}

type catalog interface {
	Message(lang, id string, args ...string) (string, error)
}

type Usecase struct {
	store     Store
	users     repoUser
	sender    smsSender
	catalog   catalog
	generator otp.Generator
	hasher    hash.Hasher
	validator validator.Validator
	uuid      uid.StringID
	clock     clock.Clocker
	ins       instrument.Instrumentation

	expiration     time.Duration
	maxVerifyTries int
	defaultLang    string
}

type Dependency struct {
	Store     Store
	Users     repoUser
	Sender    smsSender
	Catalog   catalog
	Generator otp.Generator
	Hasher    hash.Hasher
	Validator validator.Validator
	UUID      uid.StringID
	Clock     clock.Clocker
	// Instrument is the observability sink for spans and metrics.
	Instrument instrument.Instrumentation

	// SMSExpiration is the validity of an issued code.
	SMSExpiration time.Duration
	// MaxVerifyTries is the verification budget of one code.
	MaxVerifyTries int
	// DefaultLang is used when a request names no language.
	DefaultLang string
}

func New(dep Dependency) *Usecase {
	if dep.SMSExpiration <= 0 {
		dep.SMSExpiration = DefaultSMSExpiration
	}
	if dep.MaxVerifyTries <= 0 {
		dep.MaxVerifyTries = DefaultMaxVerifyTries
	}
	if dep.DefaultLang == "" {
		dep.DefaultLang = "en"
	}
	if dep.Instrument == nil {
		dep.Instrument = instrument.NewNoop()
	}

	return &Usecase{
		store:          dep.Store,
		users:          dep.Users,
		sender:         dep.Sender,
		catalog:        dep.Catalog,
		generator:      dep.Generator,
		hasher:         dep.Hasher,
		validator:      dep.Validator,
		uuid:           dep.UUID,
		clock:          dep.Clock,
		ins:            dep.Instrument,
		expiration:     dep.SMSExpiration,
		maxVerifyTries: dep.MaxVerifyTries,
		defaultLang:    dep.DefaultLang,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("authorization.usecase").Start(ctx, name)
}
