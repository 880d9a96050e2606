// Command server runs the brand-certification API: the transition engine
// behind HTTP, the dashboard and report read surface, and the nightly KPI
// snapshot job.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"brandcert/internal/audittrail"
	"brandcert/internal/certification"
	"brandcert/internal/dashboard"
	"brandcert/internal/kpi"
	kpimetrics "brandcert/internal/kpi/metrics"
	"brandcert/internal/logostats"
	"brandcert/internal/platform/config"
	"brandcert/internal/platform/httpserver"
	"brandcert/internal/platform/logger"
	"brandcert/internal/platform/postgres"
	platformredis "brandcert/internal/platform/redis"
	"brandcert/internal/report"
	"brandcert/internal/transition"
	transitionmetrics "brandcert/internal/transition/metrics"
	httptransport "brandcert/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	var (
		db        *sql.DB
		records   certification.RecordStore
		trail     audittrail.Store
		snapshots kpi.SnapshotStore
		logos     kpi.LogoStats
		txRunner  transition.TxRunner
		err       error
	)
	if cfg.DatabaseURL != "" {
		db, err = postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		records = certification.NewPostgresStore(db)
		trail = audittrail.NewPostgresStore(db)
		snapshots = kpi.NewPostgresSnapshotStore(db)
		logos = logostats.NewBreakerProvider(
			logostats.NewPostgresProvider(db), logostats.WithLogger(log))
		txRunner = transition.NewPostgresTxRunner(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		memRecords := certification.NewInMemoryStore()
		records = memRecords
		trail = audittrail.NewInMemoryStore(memRecords)
		snapshots = kpi.NewInMemorySnapshotStore()
		logos = logostats.NopProvider{}
		txRunner = transition.NewMemoryTxRunner()
	}

	var publisher audittrail.Publisher = audittrail.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := audittrail.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			return err
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	engine := transition.NewEngine(records, trail, txRunner,
		transition.WithLogger(log),
		transition.WithPublisher(publisher),
		transition.WithMetrics(transitionmetrics.New()),
	)
	aggregator := kpi.NewAggregator(records, logos, snapshots,
		kpi.WithLogger(log),
		kpi.WithMetrics(kpimetrics.New()),
	)

	composerOpts := []dashboard.ComposerOption{
		dashboard.WithLogger(log),
		dashboard.WithThresholds(cfg.Thresholds),
	}
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		composerOpts = append(composerOpts, dashboard.WithCache(dashboard.NewRedisCache(redisClient.Client)))
	}
	composer := dashboard.NewComposer(records, snapshots, composerOpts...)
	generator := report.NewGenerator(records, snapshots, trail, report.WithLogger(log))

	scheduler, err := startSnapshotCron(cfg.SnapshotCron, aggregator, log)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	handler := httptransport.NewHandler(records, trail, snapshots, engine, composer, generator, aggregator, log)
	server := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return httpserver.Shutdown(server, cfg.ShutdownTimeout)
}

// startSnapshotCron schedules the nightly recomputation of yesterday's
// snapshot. Running shortly after midnight covers the full previous day.
func startSnapshotCron(spec string, aggregator *kpi.Aggregator, log *slog.Logger) (*cron.Cron, error) {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		yesterday := kpi.Day(time.Now().UTC().AddDate(0, 0, -1))
		if _, err := aggregator.ComputeSnapshot(ctx, yesterday); err != nil {
			log.Error("nightly snapshot failed",
				"date", yesterday.Format(time.DateOnly), "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	return scheduler, nil
}
