package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"service-exchangerates/internal"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type CurrencyStorage struct {
	pgpool *pgxpool.Pool
}

func NewCurrencyStorage(pgpool *pgxpool.Pool) *CurrencyStorage {
	return &CurrencyStorage{pgpool: pgpool}
}

// UpsertRateTable stores every quote of the table under the table's base and the
// UTC day of its timestamp. The base's own rate is not stored.
func (c *CurrencyStorage) UpsertRateTable(ctx context.Context, table *internal.RateTable) error {
	if table == nil {
		return errors.New("rate table is nil")
	}
	if !table.Base.IsSupported() {
		return fmt.Errorf("base currency %q: %w", table.Base, internal.ErrUnsupportedCurrency)
	}
	if table.Timestamp <= 0 {
		return fmt.Errorf("timestamp is empty")
	}

	asOf := table.AsOf()

	tx, err := c.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for quote, rate := range table.Rates {
		if quote == table.Base {
			continue
		}

		_, err := tx.Exec(ctx, `
insert into currency_rate (base_ccy, quote_ccy, as_of_date, rate, fetched_at)
values ($1, $2, $3::date, $4::numeric, now())
on conflict (base_ccy, quote_ccy, as_of_date)
do update set
  rate = excluded.rate,
  fetched_at = now();
`, table.Base.String(), quote.String(), asOf.Time, rate.String())
		if err != nil {
			return fmt.Errorf("upsert %s/%s=%q @%s: %w", table.Base, quote, rate.String(), asOf, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetLatest returns the most recent rate (by as_of_date) of each quote against base.
// An empty quotes list returns every quote stored for base.
func (c *CurrencyStorage) GetLatest(
	ctx context.Context,
	base internal.CurrencyCode,
	quotes []internal.CurrencyCode,
) ([]internal.CurrencyLatestRate, error) {
	if !base.IsSupported() {
		return nil, fmt.Errorf("base currency %q: %w", base, internal.ErrUnsupportedCurrency)
	}

	if len(quotes) == 0 {
		rows, err := c.pgpool.Query(ctx, `
select distinct on (quote_ccy)
  base_ccy,
  quote_ccy,
  rate::text,
  as_of_date,
  fetched_at
from currency_rate
where base_ccy = $1
order by quote_ccy, as_of_date desc, fetched_at desc;
`, base.String())
		if err != nil {
			return nil, fmt.Errorf("query latest rates: %w", err)
		}
		return collectLatest(rows)
	}

	norm := make([]string, 0, len(quotes))
	for _, q := range quotes {
		if q.IsSupported() && q != base {
			norm = append(norm, q.String())
		}
	}
	if len(norm) == 0 {
		return []internal.CurrencyLatestRate{}, nil
	}

	rows, err := c.pgpool.Query(ctx, `
select distinct on (quote_ccy)
  base_ccy,
  quote_ccy,
  rate::text,
  as_of_date,
  fetched_at
from currency_rate
where base_ccy = $1 and quote_ccy = any($2)
order by quote_ccy, as_of_date desc, fetched_at desc;
`, base.String(), norm)
	if err != nil {
		return nil, fmt.Errorf("query latest rates: %w", err)
	}
	return collectLatest(rows)
}

func collectLatest(rows pgx.Rows) ([]internal.CurrencyLatestRate, error) {
	defer rows.Close()

	var out []internal.CurrencyLatestRate
	for rows.Next() {
		var r internal.CurrencyLatestRate
		var bRaw, qRaw, rateText string
		var asOf time.Time

		if err := rows.Scan(&bRaw, &qRaw, &rateText, &asOf, &r.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		b, err := internal.NewCurrencyCode(bRaw)
		if err != nil {
			return nil, fmt.Errorf("bad base_ccy from db %q: %w", bRaw, err)
		}
		q, err := internal.NewCurrencyCode(qRaw)
		if err != nil {
			return nil, fmt.Errorf("bad quote_ccy from db %q: %w", qRaw, err)
		}
		r.BaseCCY = b
		r.QuoteCCY = q

		rateText = strings.TrimSpace(rateText)
		if rateText == "" {
			return nil, fmt.Errorf("empty rate for %s/%s", r.BaseCCY, r.QuoteCCY)
		}
		rate, err := decimal.NewFromString(rateText)
		if err != nil {
			return nil, fmt.Errorf("parse rate %s/%s=%q: %w", r.BaseCCY, r.QuoteCCY, rateText, err)
		}
		r.Rate = rate

		d := internal.NewDate(asOf)
		r.AsOfDate = &d

		out = append(out, r)
	}
	return out, rows.Err()
}

func (c *CurrencyStorage) UpsertCurrencies(ctx context.Context, dir internal.CurrencyDirectory) error {
	if len(dir) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for code, name := range dir {
		batch.Queue(`
insert into currency (code, name, updated_at)
values ($1, $2, now())
on conflict (code)
do update set
  name = excluded.name,
  updated_at = now();
`, code.String(), strings.TrimSpace(name))
	}

	br := c.pgpool.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("upsert currency: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return nil
}

func (c *CurrencyStorage) GetCurrencies(ctx context.Context) (internal.CurrencyDirectory, error) {
	rows, err := c.pgpool.Query(ctx, `select code, name from currency order by code;`)
	if err != nil {
		return nil, fmt.Errorf("query currencies: %w", err)
	}
	defer rows.Close()

	out := internal.CurrencyDirectory{}
	for rows.Next() {
		var codeRaw, name string
		if err := rows.Scan(&codeRaw, &name); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		code, err := internal.NewCurrencyCode(codeRaw)
		if err != nil {
			return nil, fmt.Errorf("bad currency code from db %q: %w", codeRaw, err)
		}
		out[code] = name
	}
	return out, rows.Err()
}
