package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a money value in integer cents. It is stored as NUMERIC(12,2)
// and serialised as a JSON number with two decimals, so comparisons are exact.
type Amount int64

var errAmountFormat = errors.New("invalid amount")

// maxAmountWhole is the largest whole part NUMERIC(12,2) holds.
const maxAmountWhole = 9_999_999_999

// ParseAmount parses "850", "850.5" or "850.50". More than two fractional
// digits is an error rather than a rounding, and so is a value beyond
// 9999999999.99 in either direction.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errAmountFormat
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" || len(frac) > 2 || !digits(whole) || !digits(frac) {
		return 0, fmt.Errorf("%w: %q", errAmountFormat, s)
	}
	if whole == "" {
		whole = "0"
	}
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w > maxAmountWhole {
		return 0, fmt.Errorf("%w: %q", errAmountFormat, s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errAmountFormat, s)
	}

	cents := w*100 + f
	if neg {
		cents = -cents
	}
	return Amount(cents), nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the amount with exactly two decimals.
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return errAmountFormat
		}
		n = json.Number(s)
	}
	v, err := ParseAmount(n.String())
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Scan implements sql.Scanner for NUMERIC columns.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = 0
		return nil
	case int64:
		*a = Amount(v * 100)
		return nil
	case []byte:
		return a.scanString(string(v))
	case string:
		return a.scanString(v)
	case float64:
		return a.scanString(strconv.FormatFloat(v, 'f', 2, 64))
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
}

func (a *Amount) scanString(s string) error {
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Value implements driver.Valuer.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}
