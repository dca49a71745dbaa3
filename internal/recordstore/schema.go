package recordstore

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the DDL for the PostgreSQL record store. Statements are
// idempotent so Migrate can run on every start.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	user_id    TEXT PRIMARY KEY,
	email      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS user_roles (
	user_id TEXT NOT NULL,
	role    TEXT NOT NULL,
	PRIMARY KEY (user_id, role)
);

CREATE TABLE IF NOT EXISTS mfa_enrollments (
	user_id TEXT PRIMARY KEY,
	enabled BOOLEAN NOT NULL DEFAULT FALSE,
	methods TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS mfa_bypass_grants (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	granted_by TEXT NOT NULL DEFAULT '',
	reason     TEXT NOT NULL DEFAULT '',
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bypass_user_expiry ON mfa_bypass_grants (user_id, expires_at);

CREATE TABLE IF NOT EXISTS mfa_attempts (
	id           BIGSERIAL PRIMARY KEY,
	user_id      TEXT NOT NULL,
	device_id    TEXT NOT NULL DEFAULT '',
	success      BOOLEAN NOT NULL,
	attempted_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mfa_attempts_user_time ON mfa_attempts (user_id, attempted_at);

CREATE TABLE IF NOT EXISTS businesses (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	verification_status TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS verifications (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	business_id  TEXT REFERENCES businesses (id),
	status       TEXT NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL,
	country      TEXT NOT NULL DEFAULT '',
	latitude     DOUBLE PRECISION,
	longitude    DOUBLE PRECISION,
	city         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_verifications_user_time ON verifications (user_id, submitted_at);

CREATE TABLE IF NOT EXISTS documents (
	id                TEXT PRIMARY KEY,
	verification_id   TEXT NOT NULL REFERENCES verifications (id),
	file_hash         TEXT NOT NULL DEFAULT '',
	original_filename TEXT NOT NULL DEFAULT '',
	uploaded_at       TIMESTAMPTZ NOT NULL,
	quality_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
	ocr_confidence    DOUBLE PRECISION NOT NULL DEFAULT 0,
	validation_status TEXT NOT NULL,
	extracted_fields  JSONB NOT NULL DEFAULT '{}',
	fraud_indicators  TEXT[] NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents (file_hash);

CREATE TABLE IF NOT EXISTS sessions (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT NOT NULL,
	device_id  TEXT NOT NULL DEFAULT '',
	ip_address TEXT NOT NULL DEFAULT '',
	latitude   DOUBLE PRECISION,
	longitude  DOUBLE PRECISION,
	country    TEXT NOT NULL DEFAULT '',
	city       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user_time ON sessions (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS device_trust (
	user_id      TEXT NOT NULL,
	device_id    TEXT NOT NULL,
	fingerprint  JSONB NOT NULL,
	behavior     JSONB,
	display_name TEXT NOT NULL DEFAULT '',
	trust_score  DOUBLE PRECISION NOT NULL,
	trust_level  TEXT NOT NULL,
	risk_factors TEXT[] NOT NULL DEFAULT '{}',
	first_seen   TIMESTAMPTZ NOT NULL,
	last_seen    TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, device_id)
);

CREATE TABLE IF NOT EXISTS trusted_devices (
	user_id     TEXT NOT NULL,
	device_id   TEXT NOT NULL,
	trust_score DOUBLE PRECISION NOT NULL,
	trusted_at  TIMESTAMPTZ NOT NULL,
	expires_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, device_id)
);

CREATE TABLE IF NOT EXISTS audit_events (
	id         TEXT PRIMARY KEY,
	category   TEXT NOT NULL,
	timestamp  TIMESTAMPTZ NOT NULL,
	user_id    TEXT NOT NULL DEFAULT '',
	subject    TEXT NOT NULL DEFAULT '',
	action     TEXT NOT NULL,
	decision   TEXT NOT NULL DEFAULT '',
	reason     TEXT NOT NULL DEFAULT '',
	severity   TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT '',
	metadata   JSONB
);
CREATE INDEX IF NOT EXISTS idx_audit_events_user_time ON audit_events (user_id, timestamp DESC);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply record store schema: %w", err)
	}
	return nil
}
