package types

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a currency value that decodes from a JSON number or a numeric
// string ("12,50" included). Set is false when the field was absent or null;
// Valid is false when it could not be read as a number.
type Amount struct {
	Value decimal.Decimal
	Set   bool
	Valid bool
}

// NewAmount wraps a known value.
func NewAmount(value decimal.Decimal) Amount {
	return Amount{Value: value, Set: true, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler. Unreadable values never fail the
// whole body; they surface as Valid=false.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = Amount{}
		return nil
	}
	*a = Amount{Set: true}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	a.Value = value
	a.Valid = true
	return nil
}

// OrZero returns the value, or zero when absent or unreadable.
func (a Amount) OrZero() decimal.Decimal {
	if !a.Valid {
		return decimal.Zero
	}
	return a.Value
}
