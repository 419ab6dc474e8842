package papertrade

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency of accounts opened without one.
const DefaultCurrency = "USD"

// Money represents a monetary value.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M creates a Money value from any numeric type.
func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// ParseMoney parses a decimal amount as typed by a user, e.g. "1500.25".
func ParseMoney(s, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not a number", ErrInvalidArgument, s)
	}
	return Money{value: d, cur: currency}, nil
}

// ValidateCurrency checks that code is a currency known to go-money.
func ValidateCurrency(code string) error {
	if code == "" {
		return fmt.Errorf("%w: missing currency", ErrInvalidArgument)
	}
	if money.GetCurrency(code) == nil {
		return fmt.Errorf("%w: unknown currency %q", ErrInvalidArgument, code)
	}
	return nil
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the amount formatted in its currency, e.g. "$1,500.00".
func (m Money) String() string {
	if m.cur == "" {
		return m.value.StringFixed(2)
	}
	cur := m.currency()
	d := m.value.Round(int32(cur.Fraction))
	s := format(d.Abs().StringFixed(int32(cur.Fraction)), cur)
	if d.IsNegative() {
		s = "-" + s
	}
	return s
}

// format lays out a non negative fixed point number the way go-money's
// Formatter does, without going through int64 minor units.
func format(fixed string, cur money.Currency) string {
	intPart, frac, _ := strings.Cut(fixed, ".")
	if cur.Thousand != "" {
		for i := len(intPart) - 3; i > 0; i -= 3 {
			intPart = intPart[:i] + cur.Thousand + intPart[i:]
		}
	}
	s := intPart
	if frac != "" {
		s += cur.Decimal + frac
	}
	s = strings.Replace(cur.Template, "1", s, 1)
	return strings.Replace(s, "$", cur.Grapheme, 1)
}

// SignedString returns the formatted value with an explicit sign, "-" for zero.
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() string                { return m.cur }
func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Mul(q Quantity) Money            { return Money{value: m.value.Mul(q.value), cur: m.cur} }
func (m Money) Div(q Quantity) Money            { return Money{value: m.value.Div(q.value), cur: m.cur} }

// InexactFloat64 is for display and tests only.
func (m Money) InexactFloat64() float64 { return m.value.InexactFloat64() }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// in returns m in the given currency, failing when m already holds another one.
func (m Money) in(currency string) (Money, bool) {
	if m.cur != "" && m.cur != currency {
		return m, false
	}
	m.cur = currency
	return m, true
}

// MarshalJSON writes {"currency":..., "amount":...} with the amount rounded
// to the currency minor unit.
func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	w.Append("amount", m.rounded())
	return w.MarshalJSON()
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (m *Money) UnmarshalJSON(data []byte) error {
	var temp amountField
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*m = temp.Money()
	return nil
}

func (m Money) rounded() decimal.Decimal {
	if m.cur == "" {
		return m.value
	}
	return m.value.Round(int32(m.currency().Fraction))
}

// amountField is the persisted form of a Money value.
type amountField struct {
	Currency string          `json:"currency,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

func (a amountField) Money() Money { return Money{value: a.Amount, cur: a.Currency} }
