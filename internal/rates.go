package internal

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// RebasePlaces is the number of fractional digits kept by locally computed rates.
const RebasePlaces int32 = 8

var (
	ErrUnknownCurrency  = errors.New("currency not present in rate table")
	ErrZeroRate         = errors.New("rate is zero")
	ErrRateNotAvailable = errors.New("rate not available")
	ErrSameCurrency     = errors.New("base and quote must be different")
)

// RateTable is the payload of the latest and historical endpoints.
type RateTable struct {
	Disclaimer string                           `json:"disclaimer"`
	License    string                           `json:"license"`
	Timestamp  int64                            `json:"timestamp"`
	Base       CurrencyCode                     `json:"base"`
	Rates      map[CurrencyCode]decimal.Decimal `json:"rates"`
}

// CurrencyDirectory maps currency codes to their display names.
type CurrencyDirectory map[CurrencyCode]string

// AsOf is the UTC day of the table's timestamp.
func (t *RateTable) AsOf() Date {
	return DateFromUnix(t.Timestamp)
}

// Rebase returns a copy of the table quoted against base. Every rate is divided by
// the old rate of base and rounded half-even to RebasePlaces digits. The receiver
// is left untouched.
func (t *RateTable) Rebase(base CurrencyCode) (*RateTable, error) {
	pivot, ok := t.Rates[base]
	if !ok {
		return nil, fmt.Errorf("rebase to %s: %w", base, ErrUnknownCurrency)
	}
	if pivot.IsZero() {
		return nil, fmt.Errorf("rebase to %s: %w", base, ErrZeroRate)
	}

	rates := make(map[CurrencyCode]decimal.Decimal, len(t.Rates))
	for ccy, rate := range t.Rates {
		rates[ccy] = DivRoundHalfEven(rate, pivot, RebasePlaces)
	}

	out := *t
	out.Base = base
	out.Rates = rates
	return &out, nil
}

// DivRoundHalfEven divides x by y exactly and rounds the quotient to places
// fractional digits, ties going to the even neighbour. y must not be zero.
func DivRoundHalfEven(x, y decimal.Decimal, places int32) decimal.Decimal {
	q, r := x.QuoRem(y, places)
	if r.IsZero() {
		return q
	}

	// |r| < |y| * 10^-places; compare 2|r| with that bound to find the tie.
	unit := decimal.New(1, -places)
	half := r.Abs().Mul(decimal.NewFromInt(2)).Cmp(y.Abs().Mul(unit))
	if half < 0 {
		return q
	}
	if half == 0 && isEvenAt(q, places) {
		return q
	}

	if x.Sign()*y.Sign() < 0 {
		return q.Sub(unit)
	}
	return q.Add(unit)
}

func isEvenAt(d decimal.Decimal, places int32) bool {
	var n big.Int
	n.Abs(d.Shift(places).BigInt())
	return n.Bit(0) == 0
}

type CurrencyLatestRate struct {
	BaseCCY   CurrencyCode
	QuoteCCY  CurrencyCode
	Rate      decimal.Decimal
	AsOfDate  *Date
	FetchedAt time.Time
}

type Storage interface {
	GetLatest(ctx context.Context, base CurrencyCode, quotes []CurrencyCode) ([]CurrencyLatestRate, error)
}

// RateConverter answers pair rates from tables stored against a single pivot currency.
type RateConverter struct {
	storage Storage
	pivot   CurrencyCode
}

func NewRateConverter(storage Storage, pivot CurrencyCode) *RateConverter {
	if pivot == "" {
		pivot = DefaultBase
	}
	return &RateConverter{storage: storage, pivot: pivot}
}

type PairRate struct {
	Base  CurrencyCode    `json:"base"`
	Quote CurrencyCode    `json:"quote"`
	Rate  decimal.Decimal `json:"rate"`
	Date  *Date           `json:"date,omitempty"`
}

func (s *RateConverter) GetPairRate(ctx context.Context, base, quote CurrencyCode) (PairRate, error) {
	if !base.IsSupported() || !quote.IsSupported() {
		return PairRate{}, ErrUnsupportedCurrency
	}
	if base == quote {
		return PairRate{}, ErrSameCurrency
	}

	// pivot -> any
	if base == s.pivot {
		r, err := s.getLatestPivotTo(ctx, quote)
		if err != nil {
			return PairRate{}, err
		}
		return PairRate{Base: base, Quote: quote, Rate: r.Rate, Date: r.AsOfDate}, nil
	}

	// any -> pivot
	if quote == s.pivot {
		r, err := s.getLatestPivotTo(ctx, base)
		if err != nil {
			return PairRate{}, err
		}
		if r.Rate.IsZero() {
			return PairRate{}, fmt.Errorf("invert %s/%s: %w", s.pivot, base, ErrZeroRate)
		}

		inv := DivRoundHalfEven(decimal.NewFromInt(1), r.Rate, RebasePlaces)
		return PairRate{Base: base, Quote: quote, Rate: inv, Date: r.AsOfDate}, nil
	}

	// any -> any through the pivot
	rBase, err := s.getLatestPivotTo(ctx, base)
	if err != nil {
		return PairRate{}, err
	}
	rQuote, err := s.getLatestPivotTo(ctx, quote)
	if err != nil {
		return PairRate{}, err
	}
	if rBase.Rate.IsZero() {
		return PairRate{}, fmt.Errorf("cross %s/%s: %w", s.pivot, base, ErrZeroRate)
	}

	cross := DivRoundHalfEven(rQuote.Rate, rBase.Rate, RebasePlaces)
	return PairRate{Base: base, Quote: quote, Rate: cross, Date: rBase.AsOfDate}, nil
}

func (s *RateConverter) getLatestPivotTo(ctx context.Context, quote CurrencyCode) (CurrencyLatestRate, error) {
	rows, err := s.storage.GetLatest(ctx, s.pivot, []CurrencyCode{quote})
	if err != nil {
		return CurrencyLatestRate{}, fmt.Errorf("get latest %s/%s: %w", s.pivot, quote, err)
	}
	if len(rows) == 0 {
		return CurrencyLatestRate{}, fmt.Errorf("%s/%s: %w", s.pivot, quote, ErrRateNotAvailable)
	}
	return rows[0], nil
}
