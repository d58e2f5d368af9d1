package internal

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Date is a calendar day, always stored at midnight UTC.
type Date struct{ time.Time }

const dateTimeLayout = "2006-01-02 15:04:05Z07"
const DateLayout = "2006-01-02"

func NewDate(t time.Time) Date {
	tt := t.UTC()
	return Date{Time: time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, time.UTC)}
}

// DateFromUnix truncates a unix timestamp to its UTC day.
func DateFromUnix(sec int64) Date {
	return NewDate(time.Unix(sec, 0))
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		t, err = time.Parse(dateTimeLayout, s)
		if err != nil {
			return Date{}, fmt.Errorf("parse date %q: %w", s, err)
		}
	}
	return NewDate(t), nil
}

// String formats as YYYY-MM-DD, the year zero padded to four digits.
func (d Date) String() string {
	return d.Time.Format(DateLayout)
}

func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}

	s := strings.TrimSpace(strings.Trim(string(b), "\""))
	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", d.String())), nil
}
