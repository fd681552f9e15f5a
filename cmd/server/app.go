package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"voluntr/internal/accesscontrol"
	apphandler "voluntr/internal/application/handler"
	appservice "voluntr/internal/application/service"
	appstore "voluntr/internal/application/store"
	"voluntr/internal/auth/revocation"
	"voluntr/internal/auth/token"
	eventhandler "voluntr/internal/event/handler"
	eventservice "voluntr/internal/event/service"
	eventstore "voluntr/internal/event/store"
	identityhandler "voluntr/internal/identity/handler"
	"voluntr/internal/identity/provider"
	identityservice "voluntr/internal/identity/service"
	identitystore "voluntr/internal/identity/store"
	orghandler "voluntr/internal/organization/handler"
	orgservice "voluntr/internal/organization/service"
	orgstore "voluntr/internal/organization/store"
	"voluntr/internal/platform/config"
	"voluntr/internal/platform/kafka"
	"voluntr/internal/platform/metrics"
	"voluntr/internal/platform/postgres"
	redisclient "voluntr/internal/platform/redis"
	"voluntr/internal/ratelimit"
	"voluntr/internal/storage"
	storagehandler "voluntr/internal/storage/handler"
	httptransport "voluntr/internal/transport/http"
	"voluntr/pkg/platform/audit"
	"voluntr/pkg/platform/audit/publisher"
	auditmemory "voluntr/pkg/platform/audit/store/memory"
	auditpg "voluntr/pkg/platform/audit/store/postgres"
	"voluntr/pkg/platform/audit/worker"
	txcontext "voluntr/pkg/platform/tx"
)

type eventStore interface {
	eventservice.Store
	appservice.Events
}

type applicationStore interface {
	appservice.Store
	eventservice.PendingCounter
}

type tokenRevocations interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// app holds the wired services shared by every subcommand.
type app struct {
	cfg      config.Server
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	db       *sql.DB
	redis    *redisclient.Client
	producer *kafka.Producer
	outbox   *auditpg.Store
	tx       txcontext.Runner

	jwt          *token.JWTService
	revocations  tokenRevocations
	guard        *accesscontrol.Guard
	identity     *identityservice.Service
	orgs         *orgservice.Service
	events       *eventservice.Service
	applications *appservice.Service
}

// newApp connects the configured backends. Without DATABASE_URL every store is
// in memory and shares one transaction runner.
func newApp(ctx context.Context, cfg config.Server, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	var (
		accounts   identityservice.Store
		orgStore   orgservice.Store
		events     eventStore
		apps       applicationStore
		auditStore audit.Store
	)

	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.tx = postgres.NewTxRunner(db)
		a.outbox = auditpg.New(db)
		accounts = identitystore.NewPostgres(db)
		orgStore = orgstore.NewPostgres(db)
		events = eventstore.NewPostgres(db)
		apps = appstore.NewPostgres(db)
		auditStore = a.outbox
		logger.Info("using postgres stores")
	} else {
		a.tx = txcontext.NewMemoryRunner()
		accounts = identitystore.NewInMemory()
		orgStore = orgstore.NewInMemory()
		events = eventstore.NewInMemory()
		apps = appstore.NewInMemory()
		auditStore = auditmemory.NewInMemoryStore()
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.redis = rc
	if rc != nil {
		a.revocations = revocation.NewRedisTRL(rc.Client, revocation.WithLatencyHistogram(a.registry))
	} else {
		a.revocations = revocation.NewInMemoryTRL()
	}

	producer, err := kafka.NewProducer(cfg.Kafka, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.producer = producer

	auditPublisher := publisher.NewPublisher(auditStore)
	a.jwt = token.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer)

	a.orgs = orgservice.New(orgStore,
		orgservice.WithLogger(logger),
		orgservice.WithAuditPublisher(auditPublisher),
		orgservice.WithTx(a.tx),
	)
	a.identity = identityservice.New(accounts, a.orgs, a.jwt, a.revocations,
		identityservice.WithLogger(logger),
		identityservice.WithAuditPublisher(auditPublisher),
		identityservice.WithTx(a.tx),
		identityservice.WithMetrics(a.metrics),
		identityservice.WithSessionTTL(cfg.Auth.SessionTTL),
	)
	a.guard, err = accesscontrol.New(a.identity, a.orgs, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.events = eventservice.New(events, a.orgs,
		eventservice.WithLogger(logger),
		eventservice.WithAuditPublisher(auditPublisher),
		eventservice.WithTx(a.tx),
		eventservice.WithMetrics(a.metrics),
		eventservice.WithPendingCounter(apps),
		eventservice.WithDiscoverRequireVerified(cfg.Events.DiscoverRequireVerified),
	)
	a.applications = appservice.New(apps, events, a.identity, a.orgs, a.guard,
		appservice.WithLogger(logger),
		appservice.WithAuditPublisher(auditPublisher),
		appservice.WithTx(a.tx),
		appservice.WithMetrics(a.metrics),
		appservice.WithStrictCapacity(cfg.Events.CapacityPolicy == config.CapacityStrict),
	)
	return a, nil
}

func (a *app) rateLimitStore() (ratelimit.Store, error) {
	if a.redis != nil {
		return ratelimit.NewRedis(a.redis.Client), nil
	}
	return ratelimit.NewInMemory(a.cfg.RateLimit.MaxTrackedKeys)
}

func (a *app) router() (http.Handler, error) {
	cfg := a.cfg

	limits, err := a.rateLimitStore()
	if err != nil {
		return nil, fmt.Errorf("rate limit store: %w", err)
	}
	uploads, err := storage.NewLocal(cfg.Uploads.Dir, cfg.PublicBaseURL, cfg.Uploads.MaxBytes)
	if err != nil {
		return nil, err
	}

	var google identityhandler.Provider
	if cfg.Google.ClientID != "" {
		google = provider.NewGoogle(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	} else {
		a.logger.Warn("GOOGLE_CLIENT_ID not set, sign-in is unavailable")
	}
	identity := identityhandler.New(a.identity, google, a.guard, a.logger,
		identityhandler.WithSecureCookies(cfg.IsProduction()))

	deps := httptransport.Deps{
		Logger:      a.logger,
		Metrics:     a.metrics,
		Gatherer:    a.registry,
		Tokens:      token.NewMiddlewareValidator(a.jwt),
		Revocations: a.revocations,
		RateLimits: ratelimit.New(limits, a.logger,
			ratelimit.WithDisabled(cfg.RateLimit.Disabled),
			ratelimit.WithRule(ratelimit.ClassAuth, ratelimit.Rule{Limit: cfg.RateLimit.AuthPerMinute, Window: time.Minute}),
			ratelimit.WithRule(ratelimit.ClassWrite, ratelimit.Rule{Limit: cfg.RateLimit.WritePerMinute, Window: time.Minute}),
			ratelimit.WithRule(ratelimit.ClassUpload, ratelimit.Rule{Limit: cfg.RateLimit.UploadPerMinute, Window: time.Minute}),
		),
		AdminToken:    cfg.AdminAPIToken,
		Identity:      identity,
		Events:        eventhandler.New(a.events, a.guard, a.logger),
		Applications:  apphandler.New(a.applications, a.guard, a.logger),
		Organizations: orghandler.New(a.orgs, a.events, a.logger),
		Uploads:       storagehandler.New(uploads, a.guard, a.logger),
		HealthChecks:  a.healthChecks(),
	}
	if google != nil {
		deps.Login = identity
	}
	return httptransport.NewRouter(deps), nil
}

func (a *app) healthChecks() map[string]httptransport.HealthCheck {
	checks := map[string]httptransport.HealthCheck{}
	if a.db != nil {
		checks["postgres"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}
	if a.producer != nil {
		checks["kafka"] = a.producer.Health
	}
	return checks
}

// relay returns the audit outbox relay, or nil when there is no outbox table
// or no broker to drain it into.
func (a *app) relay() *worker.Relay {
	if a.producer == nil {
		return nil
	}
	if a.outbox == nil {
		a.logger.Warn("KAFKA_BROKERS set without DATABASE_URL, audit relay disabled")
		return nil
	}
	return worker.NewRelay(a.outbox, a.producer, a.tx, a.logger, worker.WithCounter(a.metrics))
}

func (a *app) Close() {
	var errs []error
	if a.producer != nil {
		a.producer.Close()
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Error("closing backends", "error", err)
	}
}
