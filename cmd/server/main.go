package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vouch/internal/activity"
	"vouch/internal/audit"
	"vouch/internal/delegation"
	"vouch/internal/endorsement"
	"vouch/internal/platform/config"
	"vouch/internal/platform/httpserver"
	"vouch/internal/platform/logger"
	"vouch/internal/platform/metrics"
	platformredis "vouch/internal/platform/redis"
	"vouch/internal/privacy"
	"vouch/internal/registry"
	"vouch/internal/scoring"
	httptransport "vouch/internal/transport/http"
	"vouch/internal/verification"
)

// main wires the dependency graph and owns the server lifecycle. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	m := metrics.New()

	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err.Error())
		os.Exit(1)
	}

	auditStore := audit.NewInMemoryStore()
	auditOpts := []audit.PublisherOption{audit.WithLogger(log)}
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka sink unavailable", "error", err.Error())
			os.Exit(1)
		}
		defer sink.Close()
		auditOpts = append(auditOpts, audit.WithSink(sink))
	}
	auditPublisher := audit.NewPublisher(auditStore, auditOpts...)

	registrySvc := registry.New(registry.NewInMemoryStore(),
		registry.WithLogger(log),
		registry.WithAuditPublisher(auditPublisher),
		registry.WithMetrics(m),
	)

	privacySvc := privacy.New(privacy.NewInMemoryStore(), registrySvc,
		privacy.WithLogger(log),
		privacy.WithAuditPublisher(auditPublisher),
	)

	engineOpts := []scoring.EngineOption{
		scoring.WithLogger(log),
		scoring.WithMetrics(m),
	}
	var scoreCache scoring.ScoreCache
	if rdb != nil {
		cache := scoring.NewRedisScoreCache(rdb.Client, cfg.ScoreCacheTTL)
		scoreCache = cache
		engineOpts = append(engineOpts, scoring.WithCache(cache))
	}
	engine := scoring.NewEngine(scoring.NewInMemoryRecordStore(), registrySvc, engineOpts...)
	locks := scoring.NewKeyLock()
	scoreQuery := scoring.NewQuery(engine, registrySvc, privacySvc, scoreCache)

	delegationSvc := delegation.New(
		delegation.NewInMemoryVerifierStore(),
		delegation.NewInMemoryDelegationStore(),
		registrySvc,
		delegation.WithLogger(log),
		delegation.WithAuditPublisher(auditPublisher),
	)

	endorsementSvc := endorsement.New(endorsement.NewInMemoryStore(), registrySvc, engine, locks, privacySvc,
		endorsement.WithLogger(log),
		endorsement.WithAuditPublisher(auditPublisher),
		endorsement.WithMetrics(m),
	)

	activitySvc := activity.New(activity.NewInMemoryStore(), registrySvc, engine, delegationSvc, locks, privacySvc,
		activity.WithLogger(log),
		activity.WithAuditPublisher(auditPublisher),
		activity.WithMetrics(m),
	)

	verificationSvc := verification.New(verification.NewInMemoryStore(), registrySvc, engine, delegationSvc, locks, privacySvc,
		verification.WithLogger(log),
		verification.WithAuditPublisher(auditPublisher),
		verification.WithMetrics(m),
	)

	handlers := httptransport.Handlers{
		Registry:     httptransport.NewRegistryHandler(registrySvc, log),
		Endorsement:  httptransport.NewEndorsementHandler(endorsementSvc, log),
		Activity:     httptransport.NewActivityHandler(activitySvc, log),
		Verification: httptransport.NewVerificationHandler(verificationSvc, log),
		Delegation:   httptransport.NewDelegationHandler(delegationSvc, log),
		Privacy:      httptransport.NewPrivacyHandler(privacySvc, log),
		Score:        httptransport.NewScoreHandler(scoreQuery, log),
		Audit:        httptransport.NewAuditHandler(auditPublisher, log),
	}

	var health httptransport.HealthChecker
	if rdb != nil {
		health = rdb
	}
	router := httptransport.NewRouter(handlers, cfg.JWTSigningKey, log, m, health)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting vouch", "addr", cfg.Addr, "cache", rdb != nil, "audit_sink", len(cfg.Kafka.Brokers) > 0)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info("vouch stopped")
}
