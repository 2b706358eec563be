// Package cache keeps SMS authorizations in Redis hashes.
//
// Records expire on their own shortly after the code does, so the store never
// needs a sweeper.
package cache

import (
	"context"
	"encoding/base64"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/stepup/internal/authorization/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
	"github.com/shandysiswandi/stepup/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPrefix = "sms_authorization:"
	// retention past expiry keeps expired records answerable as expired.
	retention = time.Hour
)

const (
	fieldOperationID    = "operation_id"
	fieldUserID         = "user_id"
	fieldOrganizationID = "organization_id"
	fieldOperationName  = "operation_name"
	fieldCode           = "authorization_code"
	fieldSalt           = "salt"
	fieldMessageText    = "message_text"
	fieldCount          = "verify_request_count"
	fieldVerified       = "verified"
	fieldCreated        = "timestamp_created"
	fieldVerifiedAt     = "timestamp_verified"
	fieldExpires        = "timestamp_expires"
)

var errMalformed = errors.New("cache: malformed sms authorization record")

type Cache struct {
	client  redis.UniversalClient
	ins     instrument.Instrumentation
	prefix  string
	backoff func() retry.Backoff
}

func NewCache(client redis.UniversalClient, ins instrument.Instrumentation, prefix string) *Cache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Cache{
		client: client,
		ins:    ins,
		prefix: prefix,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(50, retry.WithJitter(10*time.Millisecond, retry.NewConstant(2*time.Millisecond)))
		},
	}
}

func (c *Cache) key(messageID string) string {
	return c.prefix + messageID
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("authorization.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *Cache) CreateSMSAuthorization(ctx context.Context, in entity.SMSAuthorization) (err error) {
	ctx, span := c.startSpan(ctx, "CreateSMSAuthorization")
	defer func() { c.endSpan(span, err) }()

	key := c.key(in.MessageID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return goerror.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, encode(in))
			p.ExpireAt(ctx, key, in.ExpiresAt.Add(retention))
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		err = goerror.ErrConflict
	}
	return err
}

// UpdateSMSAuthorization runs mutate inside an optimistic WATCH transaction and
// retries when another writer touched the record in between.
func (c *Cache) UpdateSMSAuthorization(ctx context.Context, messageID string, mutate func(*entity.SMSAuthorization) error) (_ *entity.SMSAuthorization, err error) {
	ctx, span := c.startSpan(ctx, "UpdateSMSAuthorization")
	defer func() { c.endSpan(span, err) }()

	key := c.key(messageID)
	var rec *entity.SMSAuthorization

	err = retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		err := c.client.Watch(ctx, func(tx *redis.Tx) error {
			values, err := tx.HGetAll(ctx, key).Result()
			if err != nil {
				return err
			}
			if len(values) == 0 {
				return goerror.ErrNotFound
			}

			r, err := decode(messageID, values)
			if err != nil {
				return err
			}
			if err := mutate(r); err != nil {
				return err
			}

			if _, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				p.HSet(ctx, key, encodeState(*r))
				return nil
			}); err != nil {
				return err
			}

			rec = r
			return nil
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func (c *Cache) GetSMSAuthorization(ctx context.Context, messageID string) (_ *entity.SMSAuthorization, err error) {
	ctx, span := c.startSpan(ctx, "GetSMSAuthorization")
	defer func() { c.endSpan(span, err) }()

	values, err := c.client.HGetAll(ctx, c.key(messageID)).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, goerror.ErrNotFound
	}

	return decode(messageID, values)
}

func encode(r entity.SMSAuthorization) map[string]any {
	m := map[string]any{
		fieldOperationID:    r.OperationID,
		fieldUserID:         r.UserID,
		fieldOrganizationID: r.OrganizationID,
		fieldOperationName:  r.OperationName,
		fieldCode:           r.AuthorizationCode,
		fieldSalt:           base64.StdEncoding.EncodeToString(r.Salt),
		fieldMessageText:    r.MessageText,
		fieldCreated:        r.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldExpires:        r.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}
	for k, v := range encodeState(r) {
		m[k] = v
	}
	return m
}

func encodeState(r entity.SMSAuthorization) map[string]any {
	verifiedAt := ""
	if r.VerifiedAt != nil {
		verifiedAt = r.VerifiedAt.UTC().Format(time.RFC3339Nano)
	}
	return map[string]any{
		fieldCount:      strconv.Itoa(r.VerifyRequestCount),
		fieldVerified:   strconv.FormatBool(r.Verified),
		fieldVerifiedAt: verifiedAt,
	}
}

func decode(messageID string, v map[string]string) (*entity.SMSAuthorization, error) {
	salt, err := base64.StdEncoding.DecodeString(v[fieldSalt])
	if err != nil {
		return nil, errors.Join(errMalformed, err)
	}
	count, err := strconv.Atoi(v[fieldCount])
	if err != nil {
		return nil, errors.Join(errMalformed, err)
	}
	verified, err := strconv.ParseBool(v[fieldVerified])
	if err != nil {
		return nil, errors.Join(errMalformed, err)
	}
	created, err := time.Parse(time.RFC3339Nano, v[fieldCreated])
	if err != nil {
		return nil, errors.Join(errMalformed, err)
	}
	expires, err := time.Parse(time.RFC3339Nano, v[fieldExpires])
	if err != nil {
		return nil, errors.Join(errMalformed, err)
	}

	rec := &entity.SMSAuthorization{
		MessageID:          messageID,
		OperationID:        v[fieldOperationID],
		UserID:             v[fieldUserID],
		OrganizationID:     v[fieldOrganizationID],
		OperationName:      v[fieldOperationName],
		AuthorizationCode:  v[fieldCode],
		Salt:               salt,
		MessageText:        v[fieldMessageText],
		VerifyRequestCount: count,
		Verified:           verified,
		CreatedAt:          created,
		ExpiresAt:          expires,
	}

	if s := v[fieldVerifiedAt]; s != "" {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, errors.Join(errMalformed, err)
		}
		rec.VerifiedAt = &t
	}

	return rec, nil
}
