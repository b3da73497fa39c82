package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"meldeflow/internal/audit"
	"meldeflow/internal/casefile"
	casehandler "meldeflow/internal/casefile/handler"
	casemetrics "meldeflow/internal/casefile/metrics"
	"meldeflow/internal/connectors/address"
	"meldeflow/internal/connectors/certificate"
	"meldeflow/internal/connectors/document"
	"meldeflow/internal/connectors/extraction"
	"meldeflow/internal/connectors/identity"
	"meldeflow/internal/connectors/notify"
	"meldeflow/internal/connectors/registry"
	"meldeflow/internal/connectors/rules"
	"meldeflow/internal/hitl"
	hitlhandler "meldeflow/internal/hitl/handler"
	"meldeflow/internal/platform/config"
	"meldeflow/internal/platform/httpserver"
	"meldeflow/internal/platform/kafka"
	"meldeflow/internal/platform/logger"
	"meldeflow/internal/platform/redis"
	"meldeflow/internal/policy"
	httptransport "meldeflow/internal/transport/http"
	"meldeflow/internal/workflow"
	workflowhandler "meldeflow/internal/workflow/handler"
	workflowmetrics "meldeflow/internal/workflow/metrics"
)

// main wires dependencies and owns the process lifecycle. Business logic lives
// in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pol := policy.Default()
	pol.ConfidenceThreshold = cfg.ConfidenceThreshold
	pol.IdentityMatchThreshold = cfg.IdentityMatchThreshold

	g, ctx := errgroup.WithContext(ctx)

	// The audit mirror only runs when a broker is configured; without a worker
	// draining it the buffer would just fill and drop.
	var mirror casefile.AuditMirror = casefile.NopMirror{}
	if cfg.Kafka.Enabled() {
		auditMetrics := audit.NewMetrics()
		m := audit.NewMirror(256, log, auditMetrics)
		producer, err := kafka.NewProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer producer.Close()

		worker := audit.NewWorker(m.Records(), producer, log, auditMetrics)
		g.Go(func() error {
			err := worker.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		mirror = m
		log.Info("audit mirror enabled", "topic", cfg.Kafka.Topic)
	}

	var store casefile.Store
	if cfg.PostgresURL != "" {
		pg, err := casefile.NewPostgresStore(ctx, cfg.PostgresURL, mirror)
		if err != nil {
			return err
		}
		defer pg.Close()
		store = pg
		log.Info("using postgres case store")
	} else {
		store = casefile.NewInMemoryStore(casefile.WithMirror(mirror))
		log.Info("using in-memory case store")
	}

	var addressCache address.Cache = address.NewInMemoryCache()
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		addressCache = address.NewRedisCache(redisClient)
		log.Info("address cache backed by redis")
	}

	caseMetrics := casemetrics.New()
	workflowService := workflow.NewService(store, workflow.Collaborators{
		Extractor:    extraction.New(),
		Identity:     identity.New(),
		Documents:    document.New(),
		Addresses:    address.NewCached(address.New(), addressCache, policy.AddressCacheTTL),
		Rules:        rules.New(),
		Registry:     registry.New(),
		Certificates: certificate.New(),
		Notifier:     notify.New(log),
	}, pol, log, workflowmetrics.New())
	hitlService := hitl.NewService(store, pol, log, caseMetrics)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:      log,
		Policy:      pol,
		Cases:       casehandler.New(store, log, caseMetrics),
		HITL:        hitlhandler.New(hitlService, store, log),
		Steps:       workflowhandler.New(workflowService, log),
		ClerkJWTKey: cfg.ClerkJWTKey,
		AdminToken:  cfg.AdminToken,
	})

	srv := httpserver.New(cfg.Addr, router)

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
