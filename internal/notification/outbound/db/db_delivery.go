package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shandysiswandi/stepup/internal/notification/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
)

const (
	queryCreateDeliveryLog = `
INSERT INTO sms_delivery (id, message_id, user_id, organization_id, operation_id, operation_name, channel, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	queryUpdateDeliveryLogStatus = `
UPDATE sms_delivery
SET status = $2, provider_response = $3, next_retry_at = $4, attempts = attempts + 1, updated_at = now()
WHERE id = $1`

	queryGetDeliveryLogsByMessageID = `
SELECT id, message_id, user_id, organization_id, operation_id, operation_name, channel, status,
	attempts, provider_response, next_retry_at, created_at, updated_at
FROM sms_delivery
WHERE message_id = $1
ORDER BY id`
)

func (s *DB) CreateDeliveryLog(ctx context.Context, dl entity.CreateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreateDeliveryLog,
		dl.ID, dl.MessageID, dl.UserID, dl.OrganizationID, dl.OperationID, dl.OperationName,
		int16(dl.Channel), int16(dl.Status),
	)
	err = s.mapError(err)
	return err
}

func (s *DB) UpdateDeliveryLogStatus(ctx context.Context, u entity.UpdateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDeliveryLogStatus")
	defer func() { s.endSpan(span, err) }()

	var next pgtype.Timestamptz
	if u.NextRetryAt != nil {
		next = pgtype.Timestamptz{Time: *u.NextRetryAt, Valid: true}
	}

	resp := u.ProviderResponse
	if resp == nil {
		resp = map[string]any{}
	}

	tag, err := s.conn.Exec(ctx, queryUpdateDeliveryLogStatus, u.ID, int16(u.Status), resp, next)
	if err != nil {
		err = s.mapError(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
	}
	return err
}

func (s *DB) GetDeliveryLogsByMessageID(ctx context.Context, messageID string) (_ []entity.DeliveryLog, err error) {
	ctx, span := s.startSpan(ctx, "GetDeliveryLogsByMessageID")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, queryGetDeliveryLogsByMessageID, messageID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var out []entity.DeliveryLog
	for rows.Next() {
		var (
			dl              entity.DeliveryLog
			channel, status int16
			next            pgtype.Timestamptz
		)
		if err = rows.Scan(
			&dl.ID, &dl.MessageID, &dl.UserID, &dl.OrganizationID, &dl.OperationID, &dl.OperationName,
			&channel, &status, &dl.Attempts, &dl.ProviderResponse, &next, &dl.CreatedAt, &dl.UpdatedAt,
		); err != nil {
			return nil, s.mapError(err)
		}
		dl.Channel = entity.Channel(channel)
		dl.Status = entity.DeliveryStatus(status)
		if next.Valid {
			t := next.Time
			dl.NextRetryAt = &t
		}
		out = append(out, dl)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}
