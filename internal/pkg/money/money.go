// Package money holds whole-unit prices with their currency.
package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const DefaultCurrency = "BDT"

var ErrInvalid = errors.New("invalid money value")

// Money is an amount in whole currency units.
type Money struct {
	Amount   int64
	Currency string
}

func New(amount int64, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: amount, Currency: currency}
}

// String renders the display form, e.g. "150 BDT".
func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.currency())
}

func (m Money) Float() float64 { return float64(m.Amount) }

func (m Money) currency() string {
	if m.Currency == "" {
		return DefaultCurrency
	}
	return m.Currency
}

// Parse reads the display form ("150 BDT", "150", "150.00 BDT").
// Fractions are rounded to the nearest whole unit.
func Parse(s string) (Money, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	currency := DefaultCurrency
	if len(fields) == 2 {
		currency = strings.ToUpper(fields[1])
	}
	return Money{Amount: int64(math.Round(v)), Currency: currency}, nil
}

// ParseOrZero parses s and yields a zero amount when it cannot.
func ParseOrZero(s string) Money {
	m, err := Parse(s)
	if err != nil {
		return New(0, DefaultCurrency)
	}
	return m
}

// Format renders a fractional total the way dashboards show it: "150.00 BDT".
func Format(amount float64, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}

type wire struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{Amount: m.Amount, Currency: m.currency(), Display: m.String()})
}

// UnmarshalJSON accepts the object form or a legacy display string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = ParseOrZero(s)
		return nil
	}

	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = New(w.Amount, w.Currency)
	return nil
}
