package ratesync

import (
	"context"
	"fmt"
	"time"

	"service-exchangerates/internal"
	"service-exchangerates/internal/clients/openexchangerates"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Fetcher interface {
	FetchAndSaveLatest(ctx context.Context, storage openexchangerates.RatesStorage, base, localBase internal.CurrencyCode) (*internal.RateTable, error)
	FetchAndSaveHistorical(ctx context.Context, storage openexchangerates.RatesStorage, date internal.Date, base, localBase internal.CurrencyCode) (*internal.RateTable, error)
	FetchAndSaveCurrencies(ctx context.Context, storage openexchangerates.CurrencyStorage) (internal.CurrencyDirectory, error)
}

type Storage interface {
	openexchangerates.RatesStorage
	openexchangerates.CurrencyStorage
}

type Config struct {
	Base            internal.CurrencyCode
	LocalBase       internal.CurrencyCode
	BackfillDays    int
	BackfillWorkers int
}

// StoredBase is the currency rates end up quoted against in storage.
func (c Config) StoredBase() internal.CurrencyCode {
	if c.LocalBase != "" {
		return c.LocalBase
	}
	if c.Base != "" {
		return c.Base
	}
	return internal.DefaultBase
}

type Service struct {
	fetcher Fetcher
	storage Storage
	cfg     Config
	log     logrus.FieldLogger
	now     func() time.Time
}

func New(fetcher Fetcher, storage Storage, cfg Config, log logrus.FieldLogger) *Service {
	if cfg.BackfillWorkers <= 0 {
		cfg.BackfillWorkers = 1
	}
	return &Service{fetcher: fetcher, storage: storage, cfg: cfg, log: log, now: time.Now}
}

func (s *Service) SyncLatest(ctx context.Context) error {
	table, err := s.fetcher.FetchAndSaveLatest(ctx, s.storage, s.cfg.Base, s.cfg.LocalBase)
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"base":   table.Base,
		"date":   table.AsOf().String(),
		"quotes": len(table.Rates),
	}).Info("rates updated")
	return nil
}

func (s *Service) SyncCurrencies(ctx context.Context) error {
	dir, err := s.fetcher.FetchAndSaveCurrencies(ctx, s.storage)
	if err != nil {
		return err
	}
	s.log.WithField("currencies", len(dir)).Info("currencies updated")
	return nil
}

// Backfill loads end-of-day tables for the BackfillDays days before today, at most
// BackfillWorkers requests in flight. The first failure cancels the rest.
func (s *Service) Backfill(ctx context.Context) error {
	if s.cfg.BackfillDays <= 0 {
		return nil
	}

	today := internal.NewDate(s.now())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BackfillWorkers)

	for i := 1; i <= s.cfg.BackfillDays; i++ {
		date := internal.NewDate(today.AddDate(0, 0, -i))
		g.Go(func() error {
			if _, err := s.fetcher.FetchAndSaveHistorical(gctx, s.storage, date, s.cfg.Base, s.cfg.LocalBase); err != nil {
				return fmt.Errorf("backfill %s: %w", date, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	s.log.WithField("days", s.cfg.BackfillDays).Info("historical backfill done")
	return nil
}

// Bootstrap runs every sync once. Failures are logged, not fatal: the scheduled
// job retries latest rates on its next tick.
func (s *Service) Bootstrap(ctx context.Context) {
	if err := s.SyncCurrencies(ctx); err != nil {
		s.log.WithError(err).Error("initial currencies fetch failed")
	}
	if err := s.SyncLatest(ctx); err != nil {
		s.log.WithError(err).Error("initial rates fetch failed")
	}
	if err := s.Backfill(ctx); err != nil {
		s.log.WithError(err).Error("historical backfill failed")
	}
}

func (s *Service) Schedule(ctx context.Context, c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		if err := s.SyncLatest(ctx); err != nil {
			s.log.WithError(err).Error("scheduled job failed")
		}
	})
	if err != nil {
		return 0, fmt.Errorf("add cron func %q: %w", spec, err)
	}
	return id, nil
}
