package enrich

import (
	"context"
	"fmt"
	"net/netip"

	"riskgate/internal/threat/models"
	"riskgate/pkg/domain"
)

// GeoRange maps a network to a location.
type GeoRange struct {
	Prefix   netip.Prefix
	Location domain.GeoLocation
}

// StaticGeoResolver answers from a fixed table. The most specific matching
// prefix wins.
type StaticGeoResolver struct {
	ranges []GeoRange
}

func NewStaticGeoResolver(ranges ...GeoRange) *StaticGeoResolver {
	return &StaticGeoResolver{ranges: ranges}
}

func (r *StaticGeoResolver) Resolve(_ context.Context, ip string) (*domain.GeoLocation, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return nil, fmt.Errorf("parse ip %q: %w", ip, err)
	}
	var best *GeoRange
	for i := range r.ranges {
		gr := &r.ranges[i]
		if gr.Prefix.Contains(addr) && (best == nil || gr.Prefix.Bits() > best.Prefix.Bits()) {
			best = gr
		}
	}
	if best == nil {
		return nil, nil
	}
	loc := best.Location
	return &loc, nil
}

// BlockedRange is a network known to be hostile.
type BlockedRange struct {
	Prefix     netip.Prefix
	Score      float64
	Categories []string
}

// BlocklistIntel flags addresses inside any blocked range. Private and
// loopback addresses are never malicious.
type BlocklistIntel struct {
	blocked []BlockedRange
}

func NewBlocklistIntel(blocked ...BlockedRange) *BlocklistIntel {
	return &BlocklistIntel{blocked: blocked}
}

func (b *BlocklistIntel) Lookup(_ context.Context, ip string) (models.IPReputation, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return models.IPReputation{}, fmt.Errorf("parse ip %q: %w", ip, err)
	}
	if addr.IsPrivate() || addr.IsLoopback() {
		return models.IPReputation{}, nil
	}
	rep := models.IPReputation{}
	for _, br := range b.blocked {
		if !br.Prefix.Contains(addr) {
			continue
		}
		rep.Malicious = true
		if br.Score > rep.Score {
			rep.Score = br.Score
		}
		rep.Categories = append(rep.Categories, br.Categories...)
	}
	return rep, nil
}
