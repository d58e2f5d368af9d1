package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Migrations struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Migrations {
	return &Migrations{pool: pool}
}

func (m *Migrations) Setup(ctx context.Context) error {
	steps := []struct {
		name string
		sql  string
	}{
		{"currency_rate", currencyRateTable},
		{"currency", currencyTable},
		{"request_log", requestLogTable},
		{"api_keys", apiKeysTable},
	}

	for _, step := range steps {
		if _, err := m.pool.Exec(ctx, step.sql); err != nil {
			return fmt.Errorf("ensure table %s: %w", step.name, err)
		}
	}
	return nil
}

// rate is unconstrained numeric: locally re-based rates carry 8 fractional digits,
// crypto quotes against fiat carry more.
const currencyRateTable = `
create table if not exists currency_rate (
  base_ccy   char(3) not null,
  quote_ccy  char(3) not null,
  as_of_date date not null,
  rate       numeric not null,
  fetched_at timestamptz not null default now(),
  primary key (base_ccy, quote_ccy, as_of_date)
);

create index if not exists idx_currency_rate_fetched_at
  on currency_rate (fetched_at desc);
`

const currencyTable = `
create table if not exists currency (
  code       char(3) primary key,
  name       text not null,
  updated_at timestamptz not null default now()
);
`

const requestLogTable = `
create table if not exists request_log (
  id          bigserial primary key,
  request_id  uuid,
  path        text not null,
  status      integer,
  date_as_of  date,
  created_at  timestamptz not null default now()
);

create index if not exists idx_request_log_created_at
  on request_log (created_at desc);

create index if not exists idx_request_log_path_created_at
  on request_log (path, created_at desc);
`

const apiKeysTable = `
create table if not exists api_keys (
  key_hash   text primary key,
  is_active  boolean not null default true,
  expires_at timestamptz,
  created_at timestamptz not null default now()
);
`
