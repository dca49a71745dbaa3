package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	devicehandler "riskgate/internal/device/handler"
	devicemetrics "riskgate/internal/device/metrics"
	deviceservice "riskgate/internal/device/service"
	devicestore "riskgate/internal/device/store"
	mfahandler "riskgate/internal/mfa/handler"
	mfametrics "riskgate/internal/mfa/metrics"
	"riskgate/internal/mfa/recovery"
	mfaservice "riskgate/internal/mfa/service"
	"riskgate/internal/platform/config"
	"riskgate/internal/platform/httpserver"
	"riskgate/internal/platform/kafka"
	"riskgate/internal/platform/logger"
	"riskgate/internal/platform/metrics"
	natsconn "riskgate/internal/platform/nats"
	"riskgate/internal/platform/postgres"
	"riskgate/internal/platform/redis"
	"riskgate/internal/recordstore"
	riskhandler "riskgate/internal/risk/handler"
	riskmetrics "riskgate/internal/risk/metrics"
	riskservice "riskgate/internal/risk/service"
	"riskgate/internal/threat/compliance"
	"riskgate/internal/threat/detect"
	"riskgate/internal/threat/enrich"
	threathandler "riskgate/internal/threat/handler"
	threatmetrics "riskgate/internal/threat/metrics"
	threatports "riskgate/internal/threat/ports"
	"riskgate/internal/threat/publisher"
	"riskgate/internal/threat/queue"
	threatservice "riskgate/internal/threat/service"
	threatstore "riskgate/internal/threat/store"
	httptransport "riskgate/internal/transport/http"
	"riskgate/pkg/domain"
	audit "riskgate/pkg/platform/audit"
	"riskgate/pkg/platform/audit/publishers"
	auditcompliance "riskgate/pkg/platform/audit/publishers/compliance"
	auditops "riskgate/pkg/platform/audit/publishers/ops"
	auditsecurity "riskgate/pkg/platform/audit/publishers/security"
	auditworker "riskgate/pkg/platform/audit/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("RISKGATE_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("riskgate stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("riskgate stopped")
}

// infra holds the optional external connections. Nil fields mean the
// in-process fallback is used.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kafka.Producer
	nats  *nats.Conn
}

func (i *infra) close() {
	if i.nats != nil {
		i.nats.Close()
	}
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{}
	var err error

	if in.db, err = postgres.Open(ctx, cfg.Postgres); err != nil {
		return in, err
	}
	if in.db != nil && cfg.Postgres.Migrate {
		if err := recordstore.Migrate(ctx, in.db); err != nil {
			return in, fmt.Errorf("migrate record store: %w", err)
		}
	}
	if in.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		return in, err
	}
	if in.kafka, err = kafka.NewProducer(cfg.Kafka); err != nil {
		return in, err
	}
	if in.kafka != nil {
		if err := in.kafka.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			return in, err
		}
	}
	if in.nats, err = natsconn.Connect(cfg.NATS, log); err != nil {
		return in, err
	}

	log.Info("infrastructure connected",
		"postgres", in.db != nil,
		"redis", in.redis != nil,
		"kafka", in.kafka != nil,
		"nats", in.nats != nil,
	)
	return in, nil
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	in, err := connect(ctx, cfg, log)
	defer in.close()
	if err != nil {
		return err
	}

	var store recordstore.Store = recordstore.NewInMemoryStore()
	if in.db != nil {
		store = recordstore.NewPostgresStore(in.db)
	}

	opsQueue := audit.NewPublisher(store, audit.WithPublisherLogger(log))
	worker := auditworker.NewWorker(store, opsQueue.Inbox(), log)
	securityAudit := auditsecurity.New(store,
		auditsecurity.WithCapacity(cfg.Audit.SecurityBufferSize),
		auditsecurity.WithFlushInterval(cfg.Audit.SecurityFlushInterval),
		auditsecurity.WithLogger(log),
	)
	auditor := publishers.NewRouter(
		auditcompliance.New(store, auditcompliance.WithLogger(log), auditcompliance.WithMetrics(auditcompliance.NewMetrics())),
		securityAudit,
		auditops.New(opsQueue,
			auditops.WithSampler(auditops.NewSampler(cfg.Audit.OpsSampleRate)),
			auditops.WithMetrics(auditops.NewMetrics()),
			auditops.WithLogger(log),
		),
	)

	// risk
	watchlist := make([]riskservice.WatchlistEntry, 0, len(cfg.Screening.Watchlist))
	for _, e := range cfg.Screening.Watchlist {
		watchlist = append(watchlist, riskservice.WatchlistEntry{Name: e.Name, List: e.List, Source: e.Source})
	}
	riskSvc := riskservice.New(store,
		riskservice.WithLogger(log),
		riskservice.WithMetrics(riskmetrics.New()),
		riskservice.WithAuditor(auditor),
		riskservice.WithScreeningProvider(riskservice.NewWatchlistProvider(watchlist)),
		riskservice.WithScreeningTimeout(cfg.Screening.Timeout),
	)

	// device
	deviceOpts := []deviceservice.Option{
		deviceservice.WithLogger(log),
		deviceservice.WithMetrics(devicemetrics.New()),
		deviceservice.WithAuditor(auditor),
		deviceservice.WithTrustedTTL(cfg.Device.TrustedTTL),
	}
	if in.redis != nil {
		deviceOpts = append(deviceOpts, deviceservice.WithTrustCache(
			devicestore.NewRedisTrustCache(in.redis.Client, devicestore.WithTTL(cfg.Redis.TrustCacheTTL))))
	}
	deviceSvc := deviceservice.New(store, deviceOpts...)

	// mfa
	mfaSvc := mfaservice.New(store,
		mfaservice.WithLogger(log),
		mfaservice.WithMetrics(mfametrics.New()),
		mfaservice.WithAuditor(auditor),
		mfaservice.WithDeviceTrust(deviceSvc),
		mfaservice.WithRecoveryVerifier(recovery.NewTokenService(cfg.Recovery.SigningKey, cfg.Recovery.TokenTTL)),
	)

	// threat
	threatSvc, err := buildThreatService(cfg, in, store, auditor, log)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:     log,
		Metrics:    metrics.New(),
		AdminToken: cfg.AdminToken,
		Checks:     healthChecks(in),
		Modules: []httptransport.Registrar{
			riskhandler.New(riskSvc, log),
			devicehandler.New(deviceSvc, log),
			mfahandler.New(mfaSvc, log),
			threathandler.New(threatSvc, log),
		},
	})
	srv := httpserver.New(cfg.Addr, router)

	// audit sinks stop last so the threat queue's final drain is recorded
	auditCtx, stopAudit := context.WithCancel(context.WithoutCancel(ctx))
	var sinks errgroup.Group
	sinks.Go(func() error {
		return ignoreCanceled(worker.Run(auditCtx))
	})
	sinks.Go(func() error {
		return ignoreCanceled(securityAudit.Run(auditCtx))
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ignoreCanceled(threatSvc.Run(gctx))
	})
	g.Go(func() error {
		log.Info("starting riskgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	err = g.Wait()

	stopAudit()
	return errors.Join(err, sinks.Wait())
}

func buildThreatService(cfg config.Server, in *infra, store recordstore.Store, auditor audit.Emitter, log *slog.Logger) (*threatservice.Service, error) {
	geo, intel, err := staticLookups(cfg.Threat)
	if err != nil {
		return nil, err
	}
	enricher := enrich.New(geo, intel,
		enrich.WithLogger(log),
		enrich.WithTimeout(cfg.Threat.ExternalTimeout),
		enrich.WithCacheTTL(cfg.Threat.LookupCacheTTL),
	)

	var counters threatports.Counters = threatstore.NewMemoryCounters()
	if in.redis != nil {
		counters = threatstore.NewRedisCounters(in.redis.Client)
	}
	detector := detect.New(store, counters, detect.WithLogger(log))

	engine, err := compliance.NewEngine(compliance.DefaultRules(), compliance.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("compile compliance rules: %w", err)
	}

	queueOpts := []queue.Option{
		queue.WithCapacity(cfg.Threat.QueueSize),
		queue.WithBatchSize(cfg.Threat.BatchSize),
		queue.WithFlushInterval(cfg.Threat.FlushInterval),
	}
	var q queue.Queue = queue.NewChannelQueue(queueOpts...)
	if in.nats != nil {
		q = queue.NewNATSQueue(in.nats, cfg.NATS.Subject, log, queueOpts...)
	}

	opts := []threatservice.Option{
		threatservice.WithLogger(log),
		threatservice.WithMetrics(threatmetrics.New()),
		threatservice.WithAuditor(auditor),
		threatservice.WithQueue(q),
	}
	if in.kafka != nil {
		opts = append(opts, threatservice.WithAlertPublisher(publisher.NewKafkaAlertPublisher(in.kafka)))
	}
	return threatservice.New(enricher, detector, engine, opts...), nil
}

func staticLookups(cfg config.ThreatConfig) (*enrich.StaticGeoResolver, *enrich.BlocklistIntel, error) {
	geo := make([]enrich.GeoRange, 0, len(cfg.GeoRanges))
	for _, g := range cfg.GeoRanges {
		prefix, err := netip.ParsePrefix(g.CIDR)
		if err != nil {
			return nil, nil, fmt.Errorf("threat.geo_ranges %q: %w", g.CIDR, err)
		}
		geo = append(geo, enrich.GeoRange{Prefix: prefix, Location: domain.GeoLocation{
			Latitude:  g.Latitude,
			Longitude: g.Longitude,
			Country:   g.Country,
			City:      g.City,
		}})
	}
	blocked := make([]enrich.BlockedRange, 0, len(cfg.Blocklist))
	for _, b := range cfg.Blocklist {
		prefix, err := netip.ParsePrefix(b.CIDR)
		if err != nil {
			return nil, nil, fmt.Errorf("threat.blocklist %q: %w", b.CIDR, err)
		}
		blocked = append(blocked, enrich.BlockedRange{Prefix: prefix, Score: b.Score, Categories: b.Categories})
	}
	return enrich.NewStaticGeoResolver(geo...), enrich.NewBlocklistIntel(blocked...), nil
}

func healthChecks(in *infra) map[string]httptransport.HealthCheck {
	checks := map[string]httptransport.HealthCheck{}
	if in.db != nil {
		checks["postgres"] = in.db.PingContext
	}
	if in.redis != nil {
		checks["redis"] = in.redis.Health
	}
	if in.kafka != nil {
		checks["kafka"] = in.kafka.Ping
	}
	if in.nats != nil {
		checks["nats"] = func(context.Context) error {
			if !in.nats.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}
	return checks
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
