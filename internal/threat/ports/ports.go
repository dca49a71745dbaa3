package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"riskgate/internal/recordstore"
	"riskgate/internal/threat/models"
	"riskgate/pkg/domain"
)

// GeoResolver maps an address to a location. Unknown addresses return
// (nil, nil).
type GeoResolver interface {
	Resolve(ctx context.Context, ip string) (*domain.GeoLocation, error)
}

// ThreatIntel reports what is known about an address.
type ThreatIntel interface {
	Lookup(ctx context.Context, ip string) (models.IPReputation, error)
}

// BehaviorModel scores how unusual an event is for its user, from 0
// (habitual) to 1 (never seen).
type BehaviorModel interface {
	Score(ctx context.Context, event models.SecurityEvent) (float64, error)
}

// History is the slice of the record store the detectors read.
type History interface {
	GetRecentSessions(ctx context.Context, userID, deviceID string, since time.Time, limit int) ([]recordstore.SessionRecord, error)
	GetDeviceTrustRecord(ctx context.Context, userID, deviceID string) (*recordstore.DeviceTrustRecord, error)
}

// Counters tracks sliding-window counts for the credential attack
// detectors. Both methods record the observation and return the count
// inside the window ending at the observation.
type Counters interface {
	RecordFailure(ctx context.Context, userID string, at time.Time, window time.Duration) (int, error)
	RecordUserForIP(ctx context.Context, ip, userID string, at time.Time, window time.Duration) (int, error)
}

// AlertPublisher forwards alerts to downstream consumers.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert models.Alert) error
}
