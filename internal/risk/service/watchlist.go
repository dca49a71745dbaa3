package service

import (
	"context"
	"strings"

	"riskgate/internal/risk/models"
)

// WatchlistEntry is one name on a locally maintained list.
type WatchlistEntry struct {
	Name   string
	List   string
	Source string
}

// WatchlistProvider screens against an in-process list using token overlap.
// It is the default provider when no external screening service is wired.
type WatchlistProvider struct {
	entries   []WatchlistEntry
	threshold float64
}

func NewWatchlistProvider(entries []WatchlistEntry) *WatchlistProvider {
	return &WatchlistProvider{entries: entries, threshold: 0.6}
}

func (p *WatchlistProvider) Screen(ctx context.Context, subject models.ScreeningSubject) ([]models.ScreeningHit, error) {
	var hits []models.ScreeningHit
	for _, candidate := range []string{subject.FullName, subject.BusinessName} {
		if candidate == "" {
			continue
		}
		for _, e := range p.entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			score := tokenOverlap(candidate, e.Name)
			if score >= p.threshold {
				hits = append(hits, models.ScreeningHit{
					List:       e.List,
					Source:     e.Source,
					MatchScore: score,
					MatchedOn:  e.Name,
				})
			}
		}
	}
	return hits, nil
}

// tokenOverlap is the Jaccard index of the lower-cased word sets.
func tokenOverlap(a, b string) float64 {
	ta := strings.Fields(strings.ToLower(a))
	tb := strings.Fields(strings.ToLower(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	inter := 0
	union := len(set)
	seen := make(map[string]bool, len(tb))
	for _, t := range tb {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}
