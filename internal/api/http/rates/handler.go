package rates

import (
	"context"
	"encoding/json"
	"net/http"

	"service-exchangerates/internal"
	"service-exchangerates/internal/api/http/middleware"
	"service-exchangerates/internal/models"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type RateService interface {
	GetPairRate(ctx context.Context, base, quote internal.CurrencyCode) (internal.PairRate, error)
}

type CurrencyReader interface {
	GetCurrencies(ctx context.Context) (internal.CurrencyDirectory, error)
}

type Handler struct {
	rates      RateService
	currencies CurrencyReader
	audit      internal.RequestAuditLogger
	log        logrus.FieldLogger
}

func New(r RateService, c CurrencyReader, a internal.RequestAuditLogger, l logrus.FieldLogger) *Handler {
	return &Handler{rates: r, currencies: c, audit: a, log: l}
}

func (h *Handler) Register(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/rate", h.getRate).Methods(http.MethodGet)
	api.HandleFunc("/currencies", h.getCurrencies).Methods(http.MethodGet)
}

func (h *Handler) getRate(w http.ResponseWriter, r *http.Request) {
	base, err := internal.NewCurrencyCode(r.URL.Query().Get("base"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	quote, err := internal.NewCurrencyCode(r.URL.Query().Get("quote"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	out, err := h.rates.GetPairRate(r.Context(), base, quote)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	h.writeJSON(w, r, out, out.Date)
}

func (h *Handler) getCurrencies(w http.ResponseWriter, r *http.Request) {
	dir, err := h.currencies.GetCurrencies(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, r, dir, nil)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, body interface{}, asOf *internal.Date) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
	h.logRequest(r, http.StatusOK, asOf)
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, biz := models.FromError(err)
	if status >= http.StatusInternalServerError {
		h.log.WithField("request_id", middleware.RequestIDFrom(r.Context())).WithError(err).Error("request failed")
	}
	middleware.WriteBizErr(w, status, biz)
	h.logRequest(r, status, nil)
}

func (h *Handler) logRequest(r *http.Request, status int, asOf *internal.Date) {
	err := h.audit.LogRequest(r.Context(), internal.AuditEntry{
		RequestID: middleware.RequestIDFrom(r.Context()),
		Path:      r.URL.Path,
		Status:    status,
		DateAsOf:  asOf,
	})
	if err != nil {
		h.log.WithError(err).Warn("audit log write failed")
	}
}
