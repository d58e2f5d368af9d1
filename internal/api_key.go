package internal

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrAPIKeyNotFound = errors.New("api key not found")

type APIKeyStatus int

const (
	APIKeyUnknown APIKeyStatus = iota
	APIKeyActive
	APIKeyRevoked
	APIKeyExpired
)

func (s APIKeyStatus) String() string {
	switch s {
	case APIKeyActive:
		return "active"
	case APIKeyRevoked:
		return "revoked"
	case APIKeyExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// APIKey is a stored key; only the hash is ever persisted.
type APIKey struct {
	Hash      string
	Active    bool
	ExpiresAt *time.Time
}

// Status classifies the key at now. A key expires at ExpiresAt, not after it.
func (k *APIKey) Status(now time.Time) APIKeyStatus {
	switch {
	case k == nil:
		return APIKeyUnknown
	case !k.Active:
		return APIKeyRevoked
	case k.ExpiresAt != nil && !now.Before(*k.ExpiresAt):
		return APIKeyExpired
	default:
		return APIKeyActive
	}
}

type APIKeyRepository interface {
	// GetByHash returns ErrAPIKeyNotFound when no key has that hash.
	GetByHash(ctx context.Context, keyHash string) (*APIKey, error)
}

type APIKeyValidator interface {
	Validate(ctx context.Context, rawKey string) (APIKeyStatus, error)
}

type hmacAPIKeyValidator struct {
	repo        APIKeyRepository
	encodingKey string
	now         func() time.Time
}

func NewAPIKeyValidator(repo APIKeyRepository, encodingKey string) APIKeyValidator {
	return &hmacAPIKeyValidator{
		repo:        repo,
		encodingKey: strings.TrimSpace(encodingKey),
		now:         time.Now,
	}
}

func (v *hmacAPIKeyValidator) Validate(ctx context.Context, rawKey string) (APIKeyStatus, error) {
	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return APIKeyUnknown, nil
	}

	key, err := v.repo.GetByHash(ctx, HashAPIKey(rawKey, v.encodingKey))
	if errors.Is(err, ErrAPIKeyNotFound) {
		return APIKeyUnknown, nil
	}
	if err != nil {
		return APIKeyUnknown, fmt.Errorf("lookup api key: %w", err)
	}
	return key.Status(v.now()), nil
}

// HashAPIKey is the hex HMAC-SHA256 of rawKey, the form stored in api_keys.key_hash.
func HashAPIKey(rawKey, encodingKey string) string {
	mac := hmac.New(sha256.New, []byte(encodingKey))
	_, _ = mac.Write([]byte(rawKey))
	return hex.EncodeToString(mac.Sum(nil))
}
