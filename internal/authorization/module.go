package authorization

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pquerna/otp"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/stepup/internal/authorization/inbound"
	"github.com/shandysiswandi/stepup/internal/authorization/outbound/cache"
	"github.com/shandysiswandi/stepup/internal/authorization/outbound/db"
	"github.com/shandysiswandi/stepup/internal/authorization/outbound/mq"
	"github.com/shandysiswandi/stepup/internal/authorization/outbound/userstore"
	"github.com/shandysiswandi/stepup/internal/authorization/usecase"
	"github.com/shandysiswandi/stepup/internal/pkg/clock"
	"github.com/shandysiswandi/stepup/internal/pkg/config"
	"github.com/shandysiswandi/stepup/internal/pkg/hash"
	"github.com/shandysiswandi/stepup/internal/pkg/instrument"
	"github.com/shandysiswandi/stepup/internal/pkg/l10n"
	"github.com/shandysiswandi/stepup/internal/pkg/messaging"
	pkgotp "github.com/shandysiswandi/stepup/internal/pkg/otp"
	"github.com/shandysiswandi/stepup/internal/pkg/router"
	"github.com/shandysiswandi/stepup/internal/pkg/uid"
	"github.com/shandysiswandi/stepup/internal/pkg/validator"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

var ErrUnknownStoreDriver = errors.New("authorization: unknown store driver")

type Dependency struct {
	// DBConn is required by the postgres store driver.
	DBConn *pgxpool.Pool
	// CacheConn is required by the redis store driver.
	CacheConn  redis.UniversalClient
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Catalog    *l10n.Catalog              `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Bcrypt     hash.Hasher                `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	store, err := newStore(dep)
	if err != nil {
		return err
	}

	seeds, err := userstore.ParseSeeds(dep.Config.GetArray("authorization.users"))
	if err != nil {
		return err
	}
	password := dep.Config.GetString("authorization.users_password")
	if password == "" {
		password = "test"
	}
	users, err := userstore.NewMemory(dep.Bcrypt, password, seeds)
	if err != nil {
		return err
	}

	digits := otp.DigitsEight
	if dep.Config.GetInt("authorization.sms.digits") == 6 {
		digits = otp.DigitsSix
	}

	uc := usecase.New(usecase.Dependency{
		Store:          store,
		Users:          users,
		Sender:         mq.NewMessaging(dep.Messaging, dep.Instrument),
		Catalog:        dep.Catalog,
		Generator:      pkgotp.NewDigest(digits),
		Hasher:         dep.Bcrypt,
		Validator:      dep.Validator,
		UUID:           dep.UUID,
		Clock:          dep.Clock,
		Instrument:     dep.Instrument,
		SMSExpiration:  dep.Config.GetSecond("authorization.sms.expiration_time"),
		MaxVerifyTries: dep.Config.GetInt("authorization.sms.max_verify_tries"),
		DefaultLang:    dep.Config.GetString("authorization.default_lang"),
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}

func newStore(dep Dependency) (usecase.Store, error) {
	switch driver := dep.Config.GetString("authorization.store.driver"); driver {
	case "", StoreDriverPostgres:
		if dep.DBConn == nil {
			return nil, fmt.Errorf("%w: postgres store requires a database connection", ErrUnknownStoreDriver)
		}
		return db.NewDB(dep.DBConn, dep.Instrument), nil
	case StoreDriverRedis:
		if dep.CacheConn == nil {
			return nil, fmt.Errorf("%w: redis store requires a redis connection", ErrUnknownStoreDriver)
		}
		return cache.NewCache(dep.CacheConn, dep.Instrument, dep.Config.GetString("authorization.store.prefix")), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStoreDriver, driver)
	}
}
