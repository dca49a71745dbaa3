package recordstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"riskgate/pkg/domain"
	auditpg "riskgate/pkg/platform/audit/store/postgres"
	"riskgate/pkg/platform/sentinel"
)

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	*auditpg.Store
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{Store: auditpg.New(db), db: db}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
}

// -----------------------------------------------------------------------------
// Verification data
// -----------------------------------------------------------------------------

func (s *PostgresStore) GetVerificationByID(ctx context.Context, id string) (*VerificationRecord, error) {
	query := `
		SELECT v.id, v.user_id, v.status, v.submitted_at, v.country, v.latitude, v.longitude, v.city,
		       a.user_id, a.email, a.created_at,
		       b.id, b.name, b.verification_status, b.created_at
		FROM verifications v
		LEFT JOIN accounts a ON a.user_id = v.user_id
		LEFT JOIN businesses b ON b.id = v.business_id
		WHERE v.id = $1
	`
	var (
		rec                       VerificationRecord
		status                    string
		lat, lon                  sql.NullFloat64
		city                      string
		accUserID, accEmail       sql.NullString
		accCreated                sql.NullTime
		bizID, bizName, bizStatus sql.NullString
		bizCreated                sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.UserID, &status, &rec.SubmittedAt, &rec.Country, &lat, &lon, &city,
		&accUserID, &accEmail, &accCreated,
		&bizID, &bizName, &bizStatus, &bizCreated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get verification", err)
	}

	if rec.Status, err = ParseVerificationStatus(status); err != nil {
		return nil, fmt.Errorf("verification %s: %w: %w", id, sentinel.ErrInvalidState, err)
	}
	if lat.Valid && lon.Valid {
		rec.Location = &domain.GeoLocation{Latitude: lat.Float64, Longitude: lon.Float64, Country: rec.Country, City: city}
	}
	if accUserID.Valid {
		rec.Account = &AccountRecord{UserID: accUserID.String, Email: accEmail.String, CreatedAt: accCreated.Time}
	}
	if bizID.Valid {
		bs, err := ParseBusinessStatus(bizStatus.String)
		if err != nil {
			return nil, fmt.Errorf("business %s: %w: %w", bizID.String, sentinel.ErrInvalidState, err)
		}
		rec.Business = &BusinessRecord{ID: bizID.String, Name: bizName.String, VerificationStatus: bs, CreatedAt: bizCreated.Time}
	}

	docs, err := s.documentsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Documents = docs
	return &rec, nil
}

func (s *PostgresStore) documentsFor(ctx context.Context, verificationID string) ([]DocumentRecord, error) {
	query := `
		SELECT id, verification_id, file_hash, original_filename, uploaded_at,
		       quality_score, ocr_confidence, validation_status, extracted_fields, fraud_indicators
		FROM documents
		WHERE verification_id = $1
		ORDER BY uploaded_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, verificationID)
	if err != nil {
		return nil, unavailable("query documents", err)
	}
	defer rows.Close()

	docs := []DocumentRecord{}
	for rows.Next() {
		var (
			d          DocumentRecord
			validation string
			fields     []byte
		)
		if err := rows.Scan(&d.ID, &d.VerificationID, &d.FileHash, &d.OriginalFilename, &d.UploadedAt,
			&d.QualityScore, &d.OCRConfidence, &validation, &fields, pq.Array(&d.FraudIndicators)); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if d.ValidationStatus, err = ParseDocumentValidation(validation); err != nil {
			return nil, fmt.Errorf("document %s: %w: %w", d.ID, sentinel.ErrInvalidState, err)
		}
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &d.ExtractedFields); err != nil {
				return nil, fmt.Errorf("document %s extracted fields: %w", d.ID, err)
			}
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate documents", err)
	}
	return docs, nil
}

func (s *PostgresStore) FindDocumentsByHash(ctx context.Context, fileHash, excludeVerificationID string) ([]DocumentRef, error) {
	query := `
		SELECT d.id, d.verification_id, v.user_id
		FROM documents d
		JOIN verifications v ON v.id = d.verification_id
		WHERE d.file_hash = $1 AND d.file_hash <> '' AND d.verification_id <> $2
		ORDER BY d.verification_id, d.id
	`
	rows, err := s.db.QueryContext(ctx, query, fileHash, excludeVerificationID)
	if err != nil {
		return nil, unavailable("find documents by hash", err)
	}
	defer rows.Close()

	var refs []DocumentRef
	for rows.Next() {
		var r DocumentRef
		if err := rows.Scan(&r.DocumentID, &r.VerificationID, &r.UserID); err != nil {
			return nil, fmt.Errorf("scan document ref: %w", err)
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate document refs", err)
	}
	return refs, nil
}

func (s *PostgresStore) CountRecentVerifications(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM verifications WHERE user_id = $1 AND submitted_at >= $2`,
		userID, since,
	).Scan(&n)
	if err != nil {
		return 0, unavailable("count verifications", err)
	}
	return n, nil
}

// -----------------------------------------------------------------------------
// Accounts and MFA data
// -----------------------------------------------------------------------------

func (s *PostgresStore) GetAccountCreationDate(ctx context.Context, userID string) (time.Time, error) {
	var created time.Time
	err := s.db.QueryRowContext(ctx, `SELECT created_at FROM accounts WHERE user_id = $1`, userID).Scan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, sentinel.ErrNotFound
	}
	if err != nil {
		return time.Time{}, unavailable("get account creation date", err)
	}
	return created, nil
}

func (s *PostgresStore) GetUserRoles(ctx context.Context, userID string) ([]string, error) {
	var roles []string
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(array_agg(role ORDER BY role), '{}') FROM user_roles WHERE user_id = $1`,
		userID,
	).Scan(pq.Array(&roles))
	if err != nil {
		return nil, unavailable("get user roles", err)
	}
	return roles, nil
}

func (s *PostgresStore) GetMFAEnrollment(ctx context.Context, userID string) (MFAEnrollment, error) {
	var e MFAEnrollment
	err := s.db.QueryRowContext(ctx,
		`SELECT enabled, methods FROM mfa_enrollments WHERE user_id = $1`, userID,
	).Scan(&e.Enabled, pq.Array(&e.Methods))
	if errors.Is(err, sql.ErrNoRows) {
		return MFAEnrollment{}, nil
	}
	if err != nil {
		return MFAEnrollment{}, unavailable("get mfa enrollment", err)
	}
	return e, nil
}

func (s *PostgresStore) GetActiveBypassGrants(ctx context.Context, userID string, now time.Time) ([]BypassGrant, error) {
	query := `
		SELECT user_id, kind, granted_by, reason, expires_at
		FROM mfa_bypass_grants
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY expires_at
	`
	rows, err := s.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, unavailable("get bypass grants", err)
	}
	defer rows.Close()

	var grants []BypassGrant
	for rows.Next() {
		var (
			g    BypassGrant
			kind string
		)
		if err := rows.Scan(&g.UserID, &kind, &g.GrantedBy, &g.Reason, &g.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan bypass grant: %w", err)
		}
		g.Kind = BypassKind(kind)
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate bypass grants", err)
	}
	return grants, nil
}

func (s *PostgresStore) GetMFAVerificationAttempts(ctx context.Context, userID, deviceID string, since time.Time) (MFAAttemptStats, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE success)
		FROM mfa_attempts
		WHERE user_id = $1 AND attempted_at >= $2 AND ($3 = '' OR device_id = $3)
	`
	var stats MFAAttemptStats
	if err := s.db.QueryRowContext(ctx, query, userID, since, deviceID).Scan(&stats.Total, &stats.Successful); err != nil {
		return MFAAttemptStats{}, unavailable("get mfa attempts", err)
	}
	return stats, nil
}

// -----------------------------------------------------------------------------
// Sessions and devices
// -----------------------------------------------------------------------------

func (s *PostgresStore) GetRecentSessions(ctx context.Context, userID, deviceID string, since time.Time, limit int) ([]SessionRecord, error) {
	query := `
		SELECT user_id, device_id, ip_address, latitude, longitude, country, city, created_at
		FROM sessions
		WHERE user_id = $1 AND created_at >= $2 AND ($3 = '' OR device_id = $3)
		ORDER BY created_at DESC
		LIMIT $4
	`
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, query, userID, since, deviceID, limit)
	if err != nil {
		return nil, unavailable("get recent sessions", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var (
			sess          SessionRecord
			lat, lon      sql.NullFloat64
			country, city string
		)
		if err := rows.Scan(&sess.UserID, &sess.DeviceID, &sess.IPAddress, &lat, &lon, &country, &city, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if lat.Valid && lon.Valid {
			sess.Location = &domain.GeoLocation{Latitude: lat.Float64, Longitude: lon.Float64, Country: country, City: city}
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate sessions", err)
	}
	return out, nil
}

func (s *PostgresStore) GetDeviceTrustRecord(ctx context.Context, userID, deviceID string) (*DeviceTrustRecord, error) {
	query := `
		SELECT user_id, device_id, fingerprint, behavior, display_name, trust_score, trust_level,
		       risk_factors, first_seen, last_seen, updated_at
		FROM device_trust
		WHERE user_id = $1 AND device_id = $2
	`
	var (
		r           DeviceTrustRecord
		fingerprint []byte
		behavior    []byte
	)
	err := s.db.QueryRowContext(ctx, query, userID, deviceID).Scan(
		&r.UserID, &r.DeviceID, &fingerprint, &behavior, &r.DisplayName, &r.TrustScore, &r.TrustLevel,
		pq.Array(&r.RiskFactors), &r.FirstSeen, &r.LastSeen, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get device trust", err)
	}
	if err := json.Unmarshal(fingerprint, &r.Fingerprint); err != nil {
		return nil, fmt.Errorf("decode fingerprint: %w", err)
	}
	if len(behavior) > 0 && string(behavior) != "null" {
		r.Behavior = &BehaviorProfile{}
		if err := json.Unmarshal(behavior, r.Behavior); err != nil {
			return nil, fmt.Errorf("decode behavior profile: %w", err)
		}
	}
	return &r, nil
}

// UpsertDeviceTrustRecord is last-write-wins on updated_at; first_seen is
// preserved from the original insert.
func (s *PostgresStore) UpsertDeviceTrustRecord(ctx context.Context, r DeviceTrustRecord) error {
	fingerprint, err := json.Marshal(r.Fingerprint)
	if err != nil {
		return fmt.Errorf("encode fingerprint: %w", err)
	}
	if r.RiskFactors == nil {
		r.RiskFactors = []string{}
	}
	var behavior []byte
	if r.Behavior != nil {
		if behavior, err = json.Marshal(r.Behavior); err != nil {
			return fmt.Errorf("encode behavior profile: %w", err)
		}
	}
	query := `
		INSERT INTO device_trust (
			user_id, device_id, fingerprint, behavior, display_name, trust_score, trust_level,
			risk_factors, first_seen, last_seen, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, device_id) DO UPDATE SET
			fingerprint  = EXCLUDED.fingerprint,
			behavior     = EXCLUDED.behavior,
			display_name = EXCLUDED.display_name,
			trust_score  = EXCLUDED.trust_score,
			trust_level  = EXCLUDED.trust_level,
			risk_factors = EXCLUDED.risk_factors,
			last_seen    = EXCLUDED.last_seen,
			updated_at   = EXCLUDED.updated_at
		WHERE device_trust.updated_at <= EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		r.UserID, r.DeviceID, fingerprint, behavior, r.DisplayName, r.TrustScore, r.TrustLevel,
		pq.Array(r.RiskFactors), r.FirstSeen, r.LastSeen, r.UpdatedAt,
	)
	if err != nil {
		return unavailable("upsert device trust", err)
	}
	return nil
}

func (s *PostgresStore) GetTrustedDevice(ctx context.Context, userID, deviceID string) (*TrustedDeviceRecord, error) {
	var r TrustedDeviceRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, device_id, trust_score, trusted_at, expires_at
		 FROM trusted_devices WHERE user_id = $1 AND device_id = $2`,
		userID, deviceID,
	).Scan(&r.UserID, &r.DeviceID, &r.TrustScore, &r.TrustedAt, &r.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get trusted device", err)
	}
	return &r, nil
}

// UpsertTrustedDevice is last-write-wins on trusted_at.
func (s *PostgresStore) UpsertTrustedDevice(ctx context.Context, r TrustedDeviceRecord) error {
	query := `
		INSERT INTO trusted_devices (user_id, device_id, trust_score, trusted_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, device_id) DO UPDATE SET
			trust_score = EXCLUDED.trust_score,
			trusted_at  = EXCLUDED.trusted_at,
			expires_at  = EXCLUDED.expires_at
		WHERE trusted_devices.trusted_at <= EXCLUDED.trusted_at
	`
	if _, err := s.db.ExecContext(ctx, query, r.UserID, r.DeviceID, r.TrustScore, r.TrustedAt, r.ExpiresAt); err != nil {
		return unavailable("upsert trusted device", err)
	}
	return nil
}
