// Package recordstore is the persistence boundary of every engine. Stores
// return sentinel.ErrNotFound for absent records and wrap
// sentinel.ErrUnavailable for connectivity failures.
package recordstore

import (
	"context"
	"time"

	audit "riskgate/pkg/platform/audit"
)

// Store is the full record store contract.
type Store interface {
	GetVerificationByID(ctx context.Context, id string) (*VerificationRecord, error)
	FindDocumentsByHash(ctx context.Context, fileHash, excludeVerificationID string) ([]DocumentRef, error)
	CountRecentVerifications(ctx context.Context, userID string, since time.Time) (int, error)

	GetAccountCreationDate(ctx context.Context, userID string) (time.Time, error)
	GetUserRoles(ctx context.Context, userID string) ([]string, error)
	GetMFAEnrollment(ctx context.Context, userID string) (MFAEnrollment, error)
	GetActiveBypassGrants(ctx context.Context, userID string, now time.Time) ([]BypassGrant, error)
	GetMFAVerificationAttempts(ctx context.Context, userID, deviceID string, since time.Time) (MFAAttemptStats, error)

	// GetRecentSessions returns sessions newest first. An empty deviceID
	// matches every device of the user.
	GetRecentSessions(ctx context.Context, userID, deviceID string, since time.Time, limit int) ([]SessionRecord, error)
	GetDeviceTrustRecord(ctx context.Context, userID, deviceID string) (*DeviceTrustRecord, error)
	UpsertDeviceTrustRecord(ctx context.Context, record DeviceTrustRecord) error
	GetTrustedDevice(ctx context.Context, userID, deviceID string) (*TrustedDeviceRecord, error)
	UpsertTrustedDevice(ctx context.Context, record TrustedDeviceRecord) error

	audit.Store
}
