package metrics

import (
	"sync"
	"time"

	"riskgate/internal/threat/models"
)

const (
	bucketWidth = time.Minute
	bucketCount = 60
)

type bucket struct {
	minute     int64
	events     int
	byType     map[string]int
	bySeverity map[string]int
	threats    int
	byThreat   map[string]int
	violations int
	total      time.Duration
}

func (b *bucket) reset(minute int64) {
	*b = bucket{
		minute:     minute,
		byType:     make(map[string]int),
		bySeverity: make(map[string]int),
		byThreat:   make(map[string]int),
	}
}

// Rolling aggregates processed events over the last hour in one-minute
// buckets. Buckets are reused in a ring, so memory stays fixed.
type Rolling struct {
	mu      sync.Mutex
	buckets [bucketCount]bucket
}

func NewRolling() *Rolling {
	return &Rolling{}
}

func minuteOf(t time.Time) int64 {
	return t.UnixNano() / int64(bucketWidth)
}

func (r *Rolling) Record(p models.ProcessedEvent) {
	minute := minuteOf(p.ProcessedAt)
	r.mu.Lock()
	defer r.mu.Unlock()

	b := &r.buckets[minute%bucketCount]
	if b.minute != minute || b.byType == nil {
		b.reset(minute)
	}
	b.events++
	b.byType[string(p.Event.Type)]++
	b.bySeverity[string(p.Event.Severity)]++
	b.threats += len(p.Threats)
	for _, t := range p.Threats {
		b.byThreat[string(t.Type)]++
	}
	b.violations += len(p.Violations)
	b.total += p.Duration
}

// Snapshot sums the buckets of the hour ending at now.
func (r *Rolling) Snapshot(now time.Time, queueDepth int) models.MetricsSnapshot {
	current := minuteOf(now)
	snap := models.MetricsSnapshot{
		WindowStart:      time.Unix(0, (current-bucketCount+1)*int64(bucketWidth)).UTC(),
		WindowEnd:        now.UTC(),
		EventsByType:     map[string]int{},
		EventsBySeverity: map[string]int{},
		ThreatsByType:    map[string]int{},
		QueueDepth:       queueDepth,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var total time.Duration
	for i := range r.buckets {
		b := &r.buckets[i]
		if b.byType == nil || b.minute > current || b.minute <= current-bucketCount {
			continue
		}
		snap.EventsProcessed += b.events
		snap.ThreatsDetected += b.threats
		snap.ComplianceViolations += b.violations
		for k, v := range b.byType {
			snap.EventsByType[k] += v
		}
		for k, v := range b.bySeverity {
			snap.EventsBySeverity[k] += v
		}
		for k, v := range b.byThreat {
			snap.ThreatsByType[k] += v
		}
		total += b.total
	}
	if snap.EventsProcessed > 0 {
		snap.AvgProcessingMs = float64(total.Microseconds()) / float64(snap.EventsProcessed) / 1000
	}
	return snap
}
