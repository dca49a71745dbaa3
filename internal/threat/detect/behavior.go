package detect

import (
	"context"
	"fmt"
	"time"

	"riskgate/internal/threat/models"
	"riskgate/internal/threat/ports"
	"riskgate/pkg/scoring"
)

const (
	behaviorHistoryWindow = 30 * 24 * time.Hour
	behaviorHistoryLimit  = 100
	minBehaviorSessions   = 5
	// hours beyond the habitual spread at which an event is fully anomalous
	behaviorDriftScale = 6.0
)

// SessionHourModel scores an event by how far its hour of day sits from the
// user's habitual session hours. Users with little history score 0.
type SessionHourModel struct {
	history ports.History
}

func NewSessionHourModel(history ports.History) *SessionHourModel {
	return &SessionHourModel{history: history}
}

func (m *SessionHourModel) Score(ctx context.Context, event models.SecurityEvent) (float64, error) {
	if m.history == nil {
		return 0, nil
	}
	sessions, err := m.history.GetRecentSessions(ctx, event.UserID, "", event.Timestamp.Add(-behaviorHistoryWindow), behaviorHistoryLimit)
	if err != nil {
		return 0, fmt.Errorf("load sessions: %w", err)
	}
	if len(sessions) < minBehaviorSessions {
		return 0, nil
	}
	hours := make([]float64, len(sessions))
	for i, s := range sessions {
		hours[i] = hourOfDay(s.CreatedAt)
	}
	mean, spread, ok := scoring.CircularHourStats(hours)
	if !ok {
		return 0, nil
	}
	drift := scoring.HourDistance(hourOfDay(event.Timestamp), mean)
	return scoring.Clamp((drift-spread)/behaviorDriftScale, 0, 1), nil
}

func hourOfDay(t time.Time) float64 {
	t = t.UTC()
	return float64(t.Hour()) + float64(t.Minute())/60
}
