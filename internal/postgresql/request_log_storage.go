package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"service-exchangerates/internal"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RequestLogStorage struct {
	pgpool *pgxpool.Pool
}

func NewRequestLogStorage(pgpool *pgxpool.Pool) *RequestLogStorage {
	return &RequestLogStorage{pgpool: pgpool}
}

func (s *RequestLogStorage) Insert(ctx context.Context, entry internal.AuditEntry) error {
	path := strings.TrimSpace(entry.Path)
	if path == "" {
		path = "unknown"
	}

	var requestID *string
	if entry.RequestID != "" {
		requestID = &entry.RequestID
	}

	var asOf *time.Time
	if entry.DateAsOf != nil && !entry.DateAsOf.IsZero() {
		t := entry.DateAsOf.Time
		asOf = &t
	}

	_, err := s.pgpool.Exec(ctx, `
insert into request_log (request_id, path, status, date_as_of)
values ($1::uuid, $2, $3, $4::date);
`, requestID, path, entry.Status, asOf)
	if err != nil {
		return fmt.Errorf("insert request_log: %w", err)
	}
	return nil
}
