package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shandysiswandi/stepup/internal/authorization/entity"
)

const (
	queryInsertSMS = `
INSERT INTO sms_authorization (
	message_id, operation_id, user_id, organization_id, operation_name,
	authorization_code, salt, message_text, verify_request_count, verified,
	timestamp_created, timestamp_verified, timestamp_expires
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	querySelectSMSForUpdate = `
SELECT message_id, operation_id, user_id, organization_id, operation_name,
	authorization_code, salt, message_text, verify_request_count, verified,
	timestamp_created, timestamp_verified, timestamp_expires
FROM sms_authorization
WHERE message_id = $1
FOR UPDATE`

	querySelectSMS = `
SELECT message_id, operation_id, user_id, organization_id, operation_name,
	authorization_code, salt, message_text, verify_request_count, verified,
	timestamp_created, timestamp_verified, timestamp_expires
FROM sms_authorization
WHERE message_id = $1`

	queryUpdateSMSState = `
UPDATE sms_authorization
SET verify_request_count = $2, verified = $3, timestamp_verified = $4
WHERE message_id = $1`
)

func (s *DB) CreateSMSAuthorization(ctx context.Context, in entity.SMSAuthorization) (err error) {
	ctx, span := s.startSpan(ctx, "CreateSMSAuthorization")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryInsertSMS,
		in.MessageID, in.OperationID, in.UserID, in.OrganizationID, in.OperationName,
		in.AuthorizationCode, in.Salt, in.MessageText, in.VerifyRequestCount, in.Verified,
		in.CreatedAt, toTimestamptz(in.VerifiedAt), in.ExpiresAt,
	)
	err = s.mapError(err)
	return err
}

func (s *DB) GetSMSAuthorization(ctx context.Context, messageID string) (_ *entity.SMSAuthorization, err error) {
	ctx, span := s.startSpan(ctx, "GetSMSAuthorization")
	defer func() { s.endSpan(span, err) }()

	rec, err := scanSMS(s.conn.QueryRow(ctx, querySelectSMS, messageID))
	if err != nil {
		return nil, s.mapError(err)
	}
	return rec, nil
}

// UpdateSMSAuthorization locks the row, applies mutate and writes the
// counters back in one transaction. Only the verification state is written.
func (s *DB) UpdateSMSAuthorization(ctx context.Context, messageID string, mutate func(*entity.SMSAuthorization) error) (_ *entity.SMSAuthorization, err error) {
	ctx, span := s.startSpan(ctx, "UpdateSMSAuthorization")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	rec, err := scanSMS(tx.QueryRow(ctx, querySelectSMSForUpdate, messageID))
	if err != nil {
		return nil, s.mapError(err)
	}

	if err := mutate(rec); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, queryUpdateSMSState,
		rec.MessageID, rec.VerifyRequestCount, rec.Verified, toTimestamptz(rec.VerifiedAt),
	); err != nil {
		return nil, s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, s.mapError(err)
	}

	return rec, nil
}

func scanSMS(row pgx.Row) (*entity.SMSAuthorization, error) {
	var (
		rec      entity.SMSAuthorization
		verified pgtype.Timestamptz
	)

	if err := row.Scan(
		&rec.MessageID, &rec.OperationID, &rec.UserID, &rec.OrganizationID, &rec.OperationName,
		&rec.AuthorizationCode, &rec.Salt, &rec.MessageText, &rec.VerifyRequestCount, &rec.Verified,
		&rec.CreatedAt, &verified, &rec.ExpiresAt,
	); err != nil {
		return nil, err
	}

	if verified.Valid {
		t := verified.Time
		rec.VerifiedAt = &t
	}
	return &rec, nil
}

func toTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Valid: true, Time: *t}
}
