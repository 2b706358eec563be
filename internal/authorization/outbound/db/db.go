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

// Schema creates the table used by DB.
const Schema = `
CREATE TABLE IF NOT EXISTS sms_authorization (
	message_id           VARCHAR(36)  PRIMARY KEY,
	operation_id         VARCHAR(256) NOT NULL,
	user_id              VARCHAR(256) NOT NULL,
	organization_id      VARCHAR(256) NOT NULL,
	operation_name       VARCHAR(32)  NOT NULL,
	authorization_code   VARCHAR(32)  NOT NULL,
	salt                 BYTEA        NOT NULL,
	message_text         TEXT         NOT NULL,
	verify_request_count INTEGER      NOT NULL DEFAULT 0,
	verified             BOOLEAN      NOT NULL DEFAULT FALSE,
	timestamp_created    TIMESTAMPTZ  NOT NULL,
	timestamp_verified   TIMESTAMPTZ,
	timestamp_expires    TIMESTAMPTZ  NOT NULL
)`

// DB stores SMS authorizations in PostgreSQL.
type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

// - 23505 unique violation → goerror.ErrConflict
// - 40001 serialization_failure and 40P01 deadlock_detected are returned as is
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
	return s.ins.Tracer("authorization.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
