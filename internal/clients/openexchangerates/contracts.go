package openexchangerates

import (
	"context"

	"service-exchangerates/internal"
)

type RatesClient interface {
	Latest(ctx context.Context, base, localBase internal.CurrencyCode) (*internal.RateTable, error)
	Historical(ctx context.Context, date internal.Date, base, localBase internal.CurrencyCode) (*internal.RateTable, error)
	Currencies(ctx context.Context) (internal.CurrencyDirectory, error)
}

type RatesStorage interface {
	UpsertRateTable(ctx context.Context, table *internal.RateTable) error
}

type CurrencyStorage interface {
	UpsertCurrencies(ctx context.Context, dir internal.CurrencyDirectory) error
}

var _ RatesClient = (*Client)(nil)
