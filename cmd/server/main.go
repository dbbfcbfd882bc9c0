package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	elighandler "giggate/internal/eligibility/handler"
	eligmetrics "giggate/internal/eligibility/metrics"
	eligservice "giggate/internal/eligibility/service"
	gighandler "giggate/internal/gig/handler"
	gigmetrics "giggate/internal/gig/metrics"
	gigservice "giggate/internal/gig/service"
	gigstore "giggate/internal/gig/store"
	"giggate/internal/oracle"
	"giggate/internal/platform/config"
	"giggate/internal/platform/httpserver"
	"giggate/internal/platform/logger"
	"giggate/internal/platform/middleware"
	platformredis "giggate/internal/platform/redis"
	"giggate/internal/token"
	"giggate/internal/verification/center"
	verhandler "giggate/internal/verification/handler"
	vermetrics "giggate/internal/verification/metrics"
	verservice "giggate/internal/verification/service"
	verstore "giggate/internal/verification/store"
	"giggate/pkg/platform/audit"
	auditkafka "giggate/pkg/platform/audit/store/kafka"
	auditmemory "giggate/pkg/platform/audit/store/memory"
	auditpostgres "giggate/pkg/platform/audit/store/postgres"
)

// main wires the dependency graph and owns the process lifecycle. Business
// logic lives in the internal services; everything here is assembly.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when a DSN is configured, in-memory otherwise.
	var (
		db        *sql.DB
		gigStore  gigservice.Store
		verStore  verservice.Store
		auditSink audit.Store
	)
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres unreachable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		gigStore = gigstore.NewPostgres(db)
		verStore = verstore.NewPostgres(db)
		auditSink = auditpostgres.New(db)
		log.Info("using postgres stores")
	} else {
		gigStore = gigstore.NewInMemory()
		verStore = verstore.NewInMemory()
		auditSink = auditmemory.New()
		log.Warn("no postgres DSN configured, using in-memory stores")
	}

	// Kafka overrides the audit sink when brokers are configured.
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := auditkafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("failed to connect kafka audit sink", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		auditSink = kafkaSink
		log.Info("audit events flowing to kafka", "topic", cfg.KafkaTopic)
	}

	auditPublisher := audit.NewPublisher(cfg.AuditBuffer, log)
	auditWorker := audit.NewWorker(auditSink, auditPublisher.Inbox(), log)

	// Trust score oracle, optionally cached in Redis.
	var scoreSource eligservice.ScoreSource
	if cfg.OracleURL != "" {
		scoreSource = oracle.NewBreakerSource(
			oracle.NewClient(cfg.OracleURL, cfg.OracleTimeout), nil, log)
	} else {
		log.Warn("no oracle URL configured, scores default to zero")
		scoreSource = oracle.NewStatic(nil)
	}
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		scoreSource = oracle.NewCache(scoreSource, redisClient, cfg.OracleCacheTTL, log)
		log.Info("oracle score cache enabled")
	}

	// Off-chain center dispatch.
	dispatcher := center.NewDispatcher(cfg.AuditBuffer, log)
	centerClient := center.NewClient(cfg.CenterURL, cfg.CenterSecret)
	dispatchWorker := center.NewWorker(centerClient, dispatcher.Inbox(), log)

	tokens := token.NewService(cfg.JWTSigningKey, "giggate")

	gigs := gigservice.New(gigStore,
		gigservice.WithAuditPublisher(auditPublisher),
		gigservice.WithMetrics(gigmetrics.New()),
		gigservice.WithLogger(log),
	)
	verification := verservice.New(verStore, dispatcher,
		verservice.WithAuditPublisher(auditPublisher),
		verservice.WithMetrics(vermetrics.New()),
		verservice.WithLogger(log),
	)
	eligibility := eligservice.New(gigs, verification, scoreSource,
		eligservice.WithAuditPublisher(auditPublisher),
		eligservice.WithMetrics(eligmetrics.New()),
		eligservice.WithLogger(log),
	)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.ClientMetadata)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))

	gighandler.New(gigs, log, tokens).Register(router)
	verhandler.New(verification, log, tokens, cfg.CenterSecret).Register(router)
	elighandler.New(eligibility, log, tokens).Register(router)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return auditWorker.Run(gctx)
	})
	g.Go(func() error {
		return dispatchWorker.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting giggate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("giggate stopped")
}
