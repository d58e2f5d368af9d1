package internal

import (
	"context"
	"fmt"
	"strings"
)

// AuditEntry is one served API request as persisted in request_log.
type AuditEntry struct {
	RequestID string
	Path      string
	Status    int
	DateAsOf  *Date
}

type RequestAuditLogger interface {
	LogRequest(ctx context.Context, entry AuditEntry) error
}

type AuditLogStorage interface {
	Insert(ctx context.Context, entry AuditEntry) error
}

func NewStorageAuditLogger(storage AuditLogStorage) *StorageAuditLogger {
	return &StorageAuditLogger{auditLogStorage: storage}
}

type StorageAuditLogger struct {
	auditLogStorage AuditLogStorage
}

func (l *StorageAuditLogger) LogRequest(ctx context.Context, entry AuditEntry) error {
	p := strings.Trim(strings.TrimSpace(entry.Path), "/")
	if p == "" {
		p = "unknown"
	}
	entry.Path = p

	if err := l.auditLogStorage.Insert(ctx, entry); err != nil {
		return fmt.Errorf("audit %s: %w", p, err)
	}
	return nil
}
