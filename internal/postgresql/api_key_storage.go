package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"service-exchangerates/internal"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type APIKeyStorage struct {
	pool *pgxpool.Pool
}

func NewAPIKeyStorage(pool *pgxpool.Pool) *APIKeyStorage {
	return &APIKeyStorage{pool: pool}
}

func (s *APIKeyStorage) GetByHash(ctx context.Context, keyHash string) (*internal.APIKey, error) {
	keyHash = strings.TrimSpace(keyHash)
	if keyHash == "" {
		return nil, internal.ErrAPIKeyNotFound
	}

	key := internal.APIKey{Hash: keyHash}
	err := s.pool.QueryRow(ctx, `
select is_active, expires_at
from api_keys
where key_hash = $1;
`, keyHash).Scan(&key.Active, &key.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("select api_keys: %w", err)
	}
	return &key, nil
}
