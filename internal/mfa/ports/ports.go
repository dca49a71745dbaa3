package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	devicemodels "riskgate/internal/device/models"
	"riskgate/internal/recordstore"
)

// Store is the slice of the record store the MFA engine uses.
type Store interface {
	GetUserRoles(ctx context.Context, userID string) ([]string, error)
	GetMFAEnrollment(ctx context.Context, userID string) (recordstore.MFAEnrollment, error)
	GetAccountCreationDate(ctx context.Context, userID string) (time.Time, error)
	GetActiveBypassGrants(ctx context.Context, userID string, now time.Time) ([]recordstore.BypassGrant, error)
}

// DeviceTrust reports a device's current trust. Implementations degrade to
// an untrusted status rather than failing.
type DeviceTrust interface {
	GetDeviceTrustStatus(ctx context.Context, userID, deviceID string) devicemodels.DeviceTrustStatus
}

// RecoveryVerifier checks a recovery token issued to userID and returns
// when the recovery flow completed.
type RecoveryVerifier interface {
	VerifyRecovery(token, userID string, now time.Time) (time.Time, error)
}
