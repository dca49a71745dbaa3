package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"riskgate/internal/device/models"
	"riskgate/internal/recordstore"
)

// Store is the slice of the record store the device engine uses.
type Store interface {
	GetRecentSessions(ctx context.Context, userID, deviceID string, since time.Time, limit int) ([]recordstore.SessionRecord, error)
	GetMFAVerificationAttempts(ctx context.Context, userID, deviceID string, since time.Time) (recordstore.MFAAttemptStats, error)
	GetDeviceTrustRecord(ctx context.Context, userID, deviceID string) (*recordstore.DeviceTrustRecord, error)
	UpsertDeviceTrustRecord(ctx context.Context, record recordstore.DeviceTrustRecord) error
	GetTrustedDevice(ctx context.Context, userID, deviceID string) (*recordstore.TrustedDeviceRecord, error)
	UpsertTrustedDevice(ctx context.Context, record recordstore.TrustedDeviceRecord) error
}

// TrustCache holds recently computed trust status. A miss returns
// (nil, nil). A positive maxAge shortens the entry's lifetime below the
// cache default.
type TrustCache interface {
	Get(ctx context.Context, userID, deviceID string) (*models.DeviceTrustStatus, error)
	Set(ctx context.Context, userID, deviceID string, status models.DeviceTrustStatus, maxAge time.Duration) error
	Invalidate(ctx context.Context, userID, deviceID string) error
}
