package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"service-exchangerates/internal"
	"service-exchangerates/internal/models"

	"github.com/sirupsen/logrus"
)

const APIKeyHeader = "X-API-Key"

type APIKeyValidator interface {
	Validate(ctx context.Context, rawKey string) (internal.APIKeyStatus, error)
}

func APIKeyAuth(validator APIKeyValidator, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(APIKeyHeader))
			if key == "" {
				WriteBizErr(w, http.StatusUnauthorized, models.BizError("api_key_missing", "missing "+APIKeyHeader))
				return
			}

			status, err := validator.Validate(r.Context(), key)
			if err != nil {
				log.WithField("request_id", RequestIDFrom(r.Context())).WithError(err).Error("api key validation failed")
				WriteBizErr(w, http.StatusInternalServerError, models.BizError(models.CodeInternal, "internal error"))
				return
			}
			switch status {
			case internal.APIKeyActive:
			case internal.APIKeyRevoked:
				WriteBizErr(w, http.StatusForbidden, models.BizError("api_key_revoked", "api key is revoked"))
				return
			case internal.APIKeyExpired:
				WriteBizErr(w, http.StatusForbidden, models.BizError("api_key_expired", "api key is expired"))
				return
			default:
				WriteBizErr(w, http.StatusUnauthorized, models.BizError("invalid_api_key", "invalid api key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func WriteBizErr(w http.ResponseWriter, status int, biz *models.BusinessError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(biz)
}
