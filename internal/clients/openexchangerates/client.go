package openexchangerates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"service-exchangerates/internal"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://openexchangerates.org/api"
	DefaultTimeout = 20 * time.Second

	endpointLatest     = "/latest.json"
	endpointCurrencies = "/currencies.json"
	endpointHistorical = "/historical/%s.json"

	appIDParam = "app_id"

	maxBodyBytes = 1 << 20
	fetchTimeout = 10 * time.Second
)

type Client struct {
	BaseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.BaseURL = baseURL
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(apiKey string, opts ...Option) *Client {
	silent := logrus.New()
	silent.SetOutput(io.Discard)

	c := &Client{
		BaseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: silent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type response struct {
	url    string // app_id redacted
	status int
	body   []byte
}

// get performs one GET round trip with the app_id attached. Non-2xx answers are
// not errors at this level.
func (c *Client) get(ctx context.Context, op, endpoint string, q url.Values) (*response, error) {
	if q == nil {
		q = url.Values{}
	}
	q.Set(appIDParam, c.apiKey)

	u, err := url.Parse(c.BaseURL + endpoint)
	if err != nil {
		return nil, &RequestError{Op: op, URL: endpoint, Err: fmt.Errorf("parse base url: %w", err)}
	}
	u.RawQuery = q.Encode()
	safeURL := redactURL(u.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, newTransportError(op, safeURL, fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		reqErr := newTransportError(op, safeURL, err)
		c.logger.WithFields(logrus.Fields{"op": op, "url": safeURL}).WithError(reqErr).Debug("openexchangerates request failed")
		return nil, reqErr
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, newTransportError(op, safeURL, fmt.Errorf("read response body: %w", err))
	}

	c.logger.WithFields(logrus.Fields{
		"op":       op,
		"url":      safeURL,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("openexchangerates request")

	return &response{url: safeURL, status: resp.StatusCode, body: body}, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func (c *Client) getRates(ctx context.Context, op, endpoint string, base, localBase internal.CurrencyCode) (*internal.RateTable, error) {
	if base == "" {
		base = internal.DefaultBase
	}
	base, err := internal.NewCurrencyCode(base.String())
	if err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}
	if localBase != "" {
		if localBase, err = internal.NewCurrencyCode(localBase.String()); err != nil {
			return nil, fmt.Errorf("local base: %w", err)
		}
	}

	q := url.Values{}
	q.Set("base", base.String())

	resp, err := c.get(ctx, op, endpoint, q)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.status) {
		return nil, newStatusError(op, resp.url, resp.status, resp.body)
	}

	var out internal.RateTable
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal %s response: %w", op, err)
	}

	if localBase == "" {
		return &out, nil
	}
	rebased, err := out.Rebase(localBase)
	if err != nil {
		return nil, fmt.Errorf("local base: %w", err)
	}
	return rebased, nil
}

// Latest fetches the most recent rates quoted against base (USD when empty). A
// non-empty localBase re-bases the table on the client side.
func (c *Client) Latest(ctx context.Context, base, localBase internal.CurrencyCode) (*internal.RateTable, error) {
	return c.getRates(ctx, "latest", endpointLatest, base, localBase)
}

// Historical fetches end-of-day rates for date.
func (c *Client) Historical(ctx context.Context, date internal.Date, base, localBase internal.CurrencyCode) (*internal.RateTable, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("date is empty")
	}
	return c.getRates(ctx, "historical", fmt.Sprintf(endpointHistorical, date.String()), base, localBase)
}

// Currencies fetches the code to name directory. A non-2xx status alone is not an
// error: the body is still decoded unless it is the service's error envelope.
func (c *Client) Currencies(ctx context.Context) (internal.CurrencyDirectory, error) {
	resp, err := c.get(ctx, "currencies", endpointCurrencies, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.status) {
		if isErrorEnvelope(resp.body) {
			return nil, newStatusError("currencies", resp.url, resp.status, resp.body)
		}
		c.logger.WithField("status", resp.status).Warn("openexchangerates currencies returned non-success status")
	}

	var out internal.CurrencyDirectory
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal currencies response: %w", err)
	}
	return out, nil
}

func (c *Client) FetchAndSaveLatest(
	ctx context.Context,
	storage RatesStorage,
	base internal.CurrencyCode,
	localBase internal.CurrencyCode,
) (*internal.RateTable, error) {
	reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	table, err := c.Latest(reqCtx, base, localBase)
	if err != nil {
		return nil, fmt.Errorf("latest rates: %w", err)
	}

	if err := storage.UpsertRateTable(reqCtx, table); err != nil {
		return nil, fmt.Errorf("save rates: %w", err)
	}
	return table, nil
}

func (c *Client) FetchAndSaveHistorical(
	ctx context.Context,
	storage RatesStorage,
	date internal.Date,
	base internal.CurrencyCode,
	localBase internal.CurrencyCode,
) (*internal.RateTable, error) {
	reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	table, err := c.Historical(reqCtx, date, base, localBase)
	if err != nil {
		return nil, fmt.Errorf("historical rates %s: %w", date, err)
	}

	if err := storage.UpsertRateTable(reqCtx, table); err != nil {
		return nil, fmt.Errorf("save rates %s: %w", date, err)
	}
	return table, nil
}

func (c *Client) FetchAndSaveCurrencies(ctx context.Context, storage CurrencyStorage) (internal.CurrencyDirectory, error) {
	reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	dir, err := c.Currencies(reqCtx)
	if err != nil {
		return nil, fmt.Errorf("currencies: %w", err)
	}

	if err := storage.UpsertCurrencies(reqCtx, dir); err != nil {
		return nil, fmt.Errorf("save currencies: %w", err)
	}
	return dir, nil
}
