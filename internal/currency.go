package internal

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedCurrency = errors.New("unsupported currency")

// CurrencyCode is an upper-case three letter currency code (ISO 4217 style, the
// service also uses it for metals and crypto such as XAU or BTC).
type CurrencyCode string

func NewCurrencyCode(s string) (CurrencyCode, error) {
	ccy := CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))
	if !ccy.IsSupported() {
		return "", fmt.Errorf("%w %q", ErrUnsupportedCurrency, s)
	}
	return ccy, nil
}

const (
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
	AED CurrencyCode = "AED"
	AFN CurrencyCode = "AFN"
	ALL CurrencyCode = "ALL"
	RUB CurrencyCode = "RUB"
	JPY CurrencyCode = "JPY"
)

// DefaultBase is what the service quotes against when no base is requested.
const DefaultBase = USD

func (c CurrencyCode) IsSupported() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < len(c); i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

func (c CurrencyCode) String() string { return string(c) }

func (c CurrencyCode) MarshalText() ([]byte, error) {
	return []byte(c), nil
}

func (c *CurrencyCode) UnmarshalText(b []byte) error {
	ccy, err := NewCurrencyCode(string(b))
	if err != nil {
		return err
	}
	*c = ccy
	return nil
}
