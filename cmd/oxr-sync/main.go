package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"service-exchangerates/internal"
	"service-exchangerates/internal/api/http/middleware"
	rateshttp "service-exchangerates/internal/api/http/rates"
	"service-exchangerates/internal/clients/openexchangerates"
	"service-exchangerates/internal/logger"
	"service-exchangerates/internal/postgresql"
	"service-exchangerates/internal/repository/migrations"
	"service-exchangerates/internal/service/ratesync"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	lg := logger.New(cfg.LogLevel)

	// DB
	dbCtx, cancelDB := context.WithTimeout(ctx, 5*time.Second)
	defer cancelDB()

	pool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	if err := migrations.New(pool).Setup(dbCtx); err != nil {
		return fmt.Errorf("ensure tables: %w", err)
	}

	currencyStorage := postgresql.NewCurrencyStorage(pool)
	auditLogger := internal.NewStorageAuditLogger(postgresql.NewRequestLogStorage(pool))
	apiKeys := internal.NewAPIKeyValidator(postgresql.NewAPIKeyStorage(pool), cfg.EncodingKey)

	// client
	client := openexchangerates.New(cfg.OXRAppID,
		openexchangerates.WithBaseURL(cfg.OXRBaseURL),
		openexchangerates.WithTimeout(cfg.OXRTimeout),
		openexchangerates.WithLogger(lg.WithField("component", "openexchangerates")),
	)

	syncCfg := ratesync.Config{
		Base:            cfg.BaseCCY,
		LocalBase:       cfg.LocalBaseCCY,
		BackfillDays:    cfg.BackfillDays,
		BackfillWorkers: cfg.BackfillWorkers,
	}
	syncer := ratesync.New(client, currencyStorage, syncCfg, lg.WithField("component", "ratesync"))
	syncer.Bootstrap(ctx)

	// cron
	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		return fmt.Errorf("load location %s: %w", cfg.Location, err)
	}
	scheduler := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
	)

	// HTTP
	router := mux.NewRouter()
	router.Use(middleware.RequestID(lg), middleware.APIKeyAuth(apiKeys, lg))

	converter := internal.NewRateConverter(currencyStorage, syncCfg.StoredBase())
	rateshttp.New(converter, currencyStorage, auditLogger, lg).Register(router)

	g, gctx := errgroup.WithContext(ctx)

	if _, err := syncer.Schedule(gctx, scheduler, cfg.CronSpec); err != nil {
		return err
	}

	g.Go(func() error {
		return runCron(gctx, scheduler)
	})

	g.Go(func() error {
		return serveHTTP(gctx, lg, ":"+cfg.HTTPPort, router)
	})

	lg.WithFields(logrus.Fields{
		"base":       cfg.BaseCCY,
		"local_base": cfg.LocalBaseCCY,
		"cron":       cfg.CronSpec,
	}).Info("running, stop with Ctrl+C / SIGTERM")
	return g.Wait()
}

func runCron(ctx context.Context, c *cron.Cron) error {
	c.Start()
	defer func() {
		stopCtx := c.Stop()
		<-stopCtx.Done()
	}()

	<-ctx.Done()
	return nil
}

func serveHTTP(ctx context.Context, lg logrus.FieldLogger, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	lg.WithField("addr", addr).Info("http listening")
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
