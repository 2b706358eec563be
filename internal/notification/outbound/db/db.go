package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
	"github.com/shandysiswandi/stepup/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Schema creates the delivery log table.
const Schema = `
CREATE TABLE IF NOT EXISTS sms_delivery (
	id                BIGINT       PRIMARY KEY,
	message_id        VARCHAR(36)  NOT NULL,
	user_id           VARCHAR(256) NOT NULL,
	organization_id   VARCHAR(256) NOT NULL,
	operation_id      VARCHAR(256) NOT NULL DEFAULT '',
	operation_name    VARCHAR(32)  NOT NULL DEFAULT '',
	channel           SMALLINT     NOT NULL,
	status            SMALLINT     NOT NULL,
	attempts          INTEGER      NOT NULL DEFAULT 0,
	provider_response JSONB        NOT NULL DEFAULT '{}'::jsonb,
	next_retry_at     TIMESTAMPTZ,
	created_at        TIMESTAMPTZ  NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ  NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS sms_delivery_message_id_idx ON sms_delivery (message_id)`

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
