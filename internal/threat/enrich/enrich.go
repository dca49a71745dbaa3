// Package enrich gathers the context detectors need for a security event.
// Every lookup is bounded by a timeout and fails open.
package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"riskgate/internal/threat/models"
	"riskgate/internal/threat/ports"
	"riskgate/pkg/domain"
	"riskgate/pkg/platform/circuit"
)

const (
	defaultTimeout  = 3 * time.Second
	defaultCacheTTL = 5 * time.Minute
	breakerCooldown = 30 * time.Second

	LookupGeo   = "geo"
	LookupIntel = "threat_intel"
)

// guarded wraps one external lookup with its breaker state.
type guarded struct {
	breaker   *circuit.Breaker
	trippedAt atomic.Int64
}

func (g *guarded) shortCircuit(now time.Time) bool {
	return g.breaker.IsOpen() && now.Sub(time.Unix(0, g.trippedAt.Load())) < breakerCooldown
}

type Enricher struct {
	geo     ports.GeoResolver
	intel   ports.ThreatIntel
	timeout time.Duration
	cache   *cache.Cache
	logger  *slog.Logger

	geoGuard   guarded
	intelGuard guarded
}

type Option func(*Enricher)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(e *Enricher) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithCacheTTL sets how long lookup results are reused.
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Enricher) {
		if ttl > 0 {
			e.cache = cache.New(ttl, 2*ttl)
		}
	}
}

func New(geo ports.GeoResolver, intel ports.ThreatIntel, opts ...Option) *Enricher {
	e := &Enricher{
		geo:     geo,
		intel:   intel,
		timeout: defaultTimeout,
		cache:   cache.New(defaultCacheTTL, 2*defaultCacheTTL),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	e.geoGuard.breaker = circuit.New("threat-geo")
	e.intelGuard.breaker = circuit.New("threat-intel")
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich resolves location and reputation concurrently. A location carried
// on the event wins over the resolved one. Lookups that fail are listed in
// Degraded and contribute nothing.
func (e *Enricher) Enrich(ctx context.Context, event models.SecurityEvent) models.Enrichment {
	out := models.Enrichment{Location: event.Location}
	if event.IPAddress == "" {
		return out
	}

	var (
		loc      *domain.GeoLocation
		rep      models.IPReputation
		geoErr   error
		intelErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	if e.geo != nil && event.Location == nil {
		g.Go(func() error {
			loc, geoErr = lookup(gctx, e, &e.geoGuard, LookupGeo, event.IPAddress, e.geo.Resolve)
			return nil
		})
	}
	if e.intel != nil {
		g.Go(func() error {
			rep, intelErr = lookup(gctx, e, &e.intelGuard, LookupIntel, event.IPAddress, e.intel.Lookup)
			return nil
		})
	}
	_ = g.Wait()

	if geoErr != nil {
		out.Degraded = append(out.Degraded, LookupGeo)
	} else if loc != nil {
		out.Location = loc
	}
	if intelErr != nil {
		out.Degraded = append(out.Degraded, LookupIntel)
	} else {
		out.Reputation = rep
	}
	return out
}

func lookup[T any](ctx context.Context, e *Enricher, g *guarded, kind, ip string, fn func(context.Context, string) (T, error)) (T, error) {
	var zero T
	key := kind + ":" + ip
	if v, ok := e.cache.Get(key); ok {
		return v.(T), nil
	}
	if g.shortCircuit(time.Now()) {
		return zero, fmt.Errorf("%s lookup skipped: circuit open", kind)
	}

	lctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	v, err := fn(lctx, ip)
	if err != nil {
		useFallback, change := g.breaker.RecordFailure()
		if useFallback {
			g.trippedAt.Store(time.Now().UnixNano())
		}
		if change.Opened {
			e.logger.WarnContext(ctx, "enrichment circuit opened", "breaker", g.breaker.Name())
		}
		e.logger.WarnContext(ctx, "enrichment lookup degraded",
			"lookup", kind,
			"ip_address", ip,
			"error", err,
		)
		return zero, err
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		e.logger.InfoContext(ctx, "enrichment circuit closed", "breaker", g.breaker.Name())
	}
	e.cache.Set(key, v, cache.DefaultExpiration)
	return v, nil
}
