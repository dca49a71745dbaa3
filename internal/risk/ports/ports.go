package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"riskgate/internal/recordstore"
	"riskgate/internal/risk/models"
)

// Store is the slice of the record store the risk engine reads.
type Store interface {
	GetVerificationByID(ctx context.Context, id string) (*recordstore.VerificationRecord, error)
	GetAccountCreationDate(ctx context.Context, userID string) (time.Time, error)
	FindDocumentsByHash(ctx context.Context, fileHash, excludeVerificationID string) ([]recordstore.DocumentRef, error)
	CountRecentVerifications(ctx context.Context, userID string, since time.Time) (int, error)
}

// ScreeningProvider queries sanctions, PEP and watch lists.
type ScreeningProvider interface {
	Screen(ctx context.Context, subject models.ScreeningSubject) ([]models.ScreeningHit, error)
}

// SignalResult is what a pluggable sub-scorer returns.
type SignalResult struct {
	Score   float64
	Factors []models.RiskFactor
}

// BehavioralSignal scores interaction behaviour for a submission.
type BehavioralSignal interface {
	Score(ctx context.Context, v *recordstore.VerificationRecord) (SignalResult, error)
}

// GeographicSignal scores the submission's jurisdiction and location.
type GeographicSignal interface {
	Score(ctx context.Context, v *recordstore.VerificationRecord) (SignalResult, error)
}
