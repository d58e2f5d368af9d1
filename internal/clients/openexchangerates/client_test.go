package openexchangerates_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"service-exchangerates/internal"
	"service-exchangerates/internal/clients/openexchangerates"
	"service-exchangerates/internal/clients/openexchangerates/mock"

	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const fixtureCurrencies = `{
    "AED": "United Arab Emirates Dirham",
    "AFN": "Afghan Afghani",
    "ALL": "Albanian Lek",
    "USD": "United States Dollar"
}`

const fixtureRates = `{
    "disclaimer": "<Disclaimer data>",
    "license": "<License data>",
    "timestamp": 1358150409,
    "base": "USD",
    "rates": {
        "AED": 3.666311,
        "AFN": 51.2281,
        "ALL": 104.748751,
        "USD": 1
    }
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *openexchangerates.Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	return openexchangerates.New("test-app-id", openexchangerates.WithBaseURL(server.URL))
}

func writeBody(t *testing.T, w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write([]byte(body))
	require.NoError(t, err)
}

func assertFixtureRates(t *testing.T, table *internal.RateTable) {
	t.Helper()
	require.NotNil(t, table)
	assert.Equal(t, internal.USD, table.Base)
	assert.Equal(t, "<Disclaimer data>", table.Disclaimer)
	assert.Equal(t, "<License data>", table.License)
	assert.Equal(t, int64(1358150409), table.Timestamp)
	require.Len(t, table.Rates, 4)
	assert.Equal(t, "3.666311", table.Rates[internal.AED].String())
	assert.Equal(t, "51.2281", table.Rates[internal.AFN].String())
	assert.Equal(t, "104.748751", table.Rates[internal.ALL].String())
	assert.Equal(t, "1", table.Rates[internal.USD].String())
}

func assertRebasedToAED(t *testing.T, table *internal.RateTable) {
	t.Helper()
	require.NotNil(t, table)
	assert.Equal(t, internal.AED, table.Base)
	assert.Equal(t, "1", table.Rates[internal.AED].String())
	assert.Equal(t, "13.97265535", table.Rates[internal.AFN].String())
	assert.Equal(t, "28.57061253", table.Rates[internal.ALL].String())
	assert.Equal(t, "0.27275373", table.Rates[internal.USD].String())
}

func TestClient_Latest_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/latest.json", r.URL.Path)
		assert.Equal(t, "test-app-id", r.URL.Query().Get("app_id"))
		assert.Equal(t, "USD", r.URL.Query().Get("base"))
		writeBody(t, w, http.StatusOK, fixtureRates)
	})

	table, err := client.Latest(context.Background(), "", "")

	require.NoError(t, err)
	assertFixtureRates(t, table)
}

func TestClient_Latest_PassesBase(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "EUR", r.URL.Query().Get("base"))
		writeBody(t, w, http.StatusOK, fixtureRates)
	})

	_, err := client.Latest(context.Background(), "eur", "")
	require.NoError(t, err)
}

func TestClient_Latest_LocalBase(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USD", r.URL.Query().Get("base"))
		writeBody(t, w, http.StatusOK, fixtureRates)
	})

	table, err := client.Latest(context.Background(), internal.USD, internal.AED)

	require.NoError(t, err)
	assertRebasedToAED(t, table)
}

func TestClient_Latest_LowerCaseCodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USD", r.URL.Query().Get("base"))
		writeBody(t, w, http.StatusOK, fixtureRates)
	})

	table, err := client.Latest(context.Background(), "usd", "aed")

	require.NoError(t, err)
	assertRebasedToAED(t, table)
}

func TestClient_Latest_InvalidLocalBase(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an invalid local base")
	})

	table, err := client.Latest(context.Background(), internal.USD, "ae")

	require.Error(t, err)
	assert.Nil(t, table)
	assert.True(t, errors.Is(err, internal.ErrUnsupportedCurrency))
}

func TestClient_Latest_LocalBaseMissing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, http.StatusOK, fixtureRates)
	})

	table, err := client.Latest(context.Background(), internal.USD, internal.EUR)

	require.Error(t, err)
	assert.Nil(t, table)
	assert.True(t, errors.Is(err, internal.ErrUnknownCurrency))
}

func TestClient_Latest_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	table, err := client.Latest(context.Background(), "", "")

	require.Error(t, err)
	assert.Nil(t, table)

	var reqErr *openexchangerates.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Equal(t, "latest", reqErr.Op)
	assert.True(t, errors.Is(err, openexchangerates.ErrUnexpectedStatus))
	assert.Contains(t, err.Error(), "404")
}

func TestClient_Latest_ServiceErrorEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, http.StatusUnauthorized, `{
  "error": true,
  "status": 401,
  "message": "invalid_app_id",
  "description": "Invalid App ID provided."
}`)
	})

	_, err := client.Latest(context.Background(), "", "")

	var reqErr *openexchangerates.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, "invalid_app_id", reqErr.Message)
	assert.Equal(t, "Invalid App ID provided.", reqErr.Description)
	assert.NotContains(t, reqErr.URL, "test-app-id")
	assert.Contains(t, reqErr.URL, "app_id=REDACTED")
}

func TestClient_Latest_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := openexchangerates.New("secret-app-id", openexchangerates.WithBaseURL(baseURL))
	table, err := client.Latest(context.Background(), "", "")

	require.Error(t, err)
	assert.Nil(t, table)

	var reqErr *openexchangerates.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, 0, reqErr.StatusCode)
	assert.NotContains(t, err.Error(), "secret-app-id")
}

func TestClient_Latest_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	client := openexchangerates.New("test-app-id",
		openexchangerates.WithBaseURL(server.URL),
		openexchangerates.WithTimeout(50*time.Millisecond),
	)
	_, err := client.Latest(context.Background(), "", "")

	var reqErr *openexchangerates.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, 0, reqErr.StatusCode)
}

func TestClient_Latest_InvalidBase(t *testing.T) {
	client := openexchangerates.New("test-app-id", openexchangerates.WithBaseURL("http://127.0.0.1:1"))

	_, err := client.Latest(context.Background(), "US", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, internal.ErrUnsupportedCurrency))
}

func TestClient_Currencies_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/currencies.json", r.URL.Path)
		assert.Equal(t, "test-app-id", r.URL.Query().Get("app_id"))
		assert.False(t, r.URL.Query().Has("base"))
		writeBody(t, w, http.StatusOK, fixtureCurrencies)
	})

	dir, err := client.Currencies(context.Background())

	require.NoError(t, err)
	require.Len(t, dir, 4)
	assert.Contains(t, dir, internal.AED)
	assert.Contains(t, dir, internal.AFN)
	assert.Contains(t, dir, internal.ALL)
	assert.Contains(t, dir, internal.USD)
	assert.Equal(t, "United States Dollar", dir[internal.USD])
}

func TestClient_Currencies_IgnoresStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, http.StatusServiceUnavailable, fixtureCurrencies)
	})

	dir, err := client.Currencies(context.Background())

	require.NoError(t, err)
	assert.Len(t, dir, 4)
}

func TestClient_Currencies_ServiceErrorEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, http.StatusUnauthorized, `{
  "error": true,
  "status": 401,
  "message": "invalid_app_id",
  "description": "Invalid App ID provided."
}`)
	})

	dir, err := client.Currencies(context.Background())

	require.Error(t, err)
	assert.Nil(t, dir)

	var reqErr *openexchangerates.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "currencies", reqErr.Op)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, "invalid_app_id", reqErr.Message)
	assert.True(t, errors.Is(err, openexchangerates.ErrUnexpectedStatus))
	assert.Contains(t, reqErr.URL, "app_id=REDACTED")
}

func TestClient_Currencies_BadBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, http.StatusBadGateway, "<html>bad gateway</html>")
	})

	dir, err := client.Currencies(context.Background())

	require.Error(t, err)
	assert.Nil(t, dir)
}

func TestClient_Historical_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/historical/2013-01-14.json", r.URL.Path)
		assert.Equal(t, "test-app-id", r.URL.Query().Get("app_id"))
		assert.Equal(t, "USD", r.URL.Query().Get("base"))
		writeBody(t, w, http.StatusOK, fixtureRates)
	})

	date := internal.DateFromUnix(1358150409)
	table, err := client.Historical(context.Background(), date, "", "")

	require.NoError(t, err)
	assertFixtureRates(t, table)
}

func TestClient_Historical_ZeroPaddedPath(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/historical/2001-02-03.json", r.URL.Path)
		writeBody(t, w, http.StatusOK, fixtureRates)
	})

	date := internal.NewDate(time.Date(2001, time.February, 3, 18, 0, 0, 0, time.UTC))
	_, err := client.Historical(context.Background(), date, "", "")
	require.NoError(t, err)
}

func TestClient_Historical_LocalBase(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, http.StatusOK, fixtureRates)
	})

	table, err := client.Historical(context.Background(), internal.DateFromUnix(1358150409), "", internal.AED)

	require.NoError(t, err)
	assertRebasedToAED(t, table)
}

func TestClient_Historical_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	table, err := client.Historical(context.Background(), internal.DateFromUnix(1358150409), "", "")

	require.Error(t, err)
	assert.Nil(t, table)
	var reqErr *openexchangerates.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "historical", reqErr.Op)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
}

func TestClient_Historical_EmptyDate(t *testing.T) {
	client := openexchangerates.New("test-app-id")

	table, err := client.Historical(context.Background(), internal.Date{}, "", "")

	require.Error(t, err)
	assert.Nil(t, table)
	assert.Contains(t, err.Error(), "date is empty")
}

func TestClient_FetchAndSaveLatest_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, http.StatusOK, fixtureRates)
	})

	mockStorage := mock.NewMockRatesStorage(t)
	mockStorage.EXPECT().
		UpsertRateTable(
			testifymock.Anything,
			testifymock.MatchedBy(func(table *internal.RateTable) bool {
				return table.Base == internal.AED &&
					len(table.Rates) == 4 &&
					table.Rates[internal.USD].String() == "0.27275373"
			}),
		).
		Return(nil).
		Once()

	table, err := client.FetchAndSaveLatest(context.Background(), mockStorage, internal.USD, internal.AED)

	require.NoError(t, err)
	require.NotNil(t, table)
	assert.Equal(t, internal.AED, table.Base)
}

func TestClient_FetchAndSaveLatest_StorageError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, http.StatusOK, fixtureRates)
	})

	mockStorage := mock.NewMockRatesStorage(t)
	mockStorage.EXPECT().
		UpsertRateTable(testifymock.Anything, testifymock.Anything).
		Return(errors.New("database error")).
		Once()

	table, err := client.FetchAndSaveLatest(context.Background(), mockStorage, "", "")

	require.Error(t, err)
	assert.Nil(t, table)
	assert.Contains(t, err.Error(), "save rates")
	assert.Contains(t, err.Error(), "database error")
}

func TestClient_FetchAndSaveLatest_RequestErrorSkipsStorage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	mockStorage := mock.NewMockRatesStorage(t)

	_, err := client.FetchAndSaveLatest(context.Background(), mockStorage, "", "")

	var reqErr *openexchangerates.RequestError
	require.True(t, errors.As(err, &reqErr))
	mockStorage.AssertNotCalled(t, "UpsertRateTable", testifymock.Anything, testifymock.Anything)
}

func TestClient_FetchAndSaveHistorical_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/historical/2013-01-14.json", r.URL.Path)
		writeBody(t, w, http.StatusOK, fixtureRates)
	})

	mockStorage := mock.NewMockRatesStorage(t)
	mockStorage.EXPECT().
		UpsertRateTable(testifymock.Anything, testifymock.AnythingOfType("*internal.RateTable")).
		Return(nil).
		Once()

	table, err := client.FetchAndSaveHistorical(context.Background(), mockStorage, internal.DateFromUnix(1358150409), "", "")

	require.NoError(t, err)
	assertFixtureRates(t, table)
}

func TestClient_FetchAndSaveCurrencies_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, http.StatusOK, fixtureCurrencies)
	})

	mockStorage := mock.NewMockCurrencyStorage(t)
	mockStorage.EXPECT().
		UpsertCurrencies(
			testifymock.Anything,
			testifymock.MatchedBy(func(dir internal.CurrencyDirectory) bool {
				return len(dir) == 4 && dir[internal.AED] == "United Arab Emirates Dirham"
			}),
		).
		Return(nil).
		Once()

	dir, err := client.FetchAndSaveCurrencies(context.Background(), mockStorage)

	require.NoError(t, err)
	assert.Len(t, dir, 4)
}
