// Package money holds the decimal-backed scalar types that sit at the
// bondmath API boundary: Money, Price, Yield, Spread, and Rate. Each is a
// distinct type so the compiler rejects mixing, say, a Yield and a Spread
// in an arithmetic expression — internal solvers still work in float64 for
// speed, converting at the edges (SPEC_FULL.md Section 3).
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a currency-tagged monetary amount.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney constructs a Money from a decimal amount and an ISO-4217-style currency code.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// MoneyFromFloat constructs a Money from a float64 amount via
// decimal.NewFromFloat, with no further rounding.
func MoneyFromFloat(amount float64, currency string) Money {
	return Money{Amount: decimal.NewFromFloat(amount), Currency: currency}
}

// Float64 returns the amount as a float64 for internal numerical use.
func (m Money) Float64() float64 { return m.Amount.InexactFloat64() }

func (m Money) String() string { return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency) }

// Add sums two Money values of the same currency. Mixing currencies is a
// caller error (no FX conversion lives in this package), so it panics the
// same way the teacher's code panics on malformed internal invariants
// rather than threading an error through every arithmetic call site.
func (m Money) Add(o Money) Money {
	m.mustMatchCurrency(o)
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}
}

// Sub subtracts o from m; same same-currency requirement as Add.
func (m Money) Sub(o Money) Money {
	m.mustMatchCurrency(o)
	return Money{Amount: m.Amount.Sub(o.Amount), Currency: m.Currency}
}

// Scale multiplies m by a unitless factor (e.g. a notional-weighted share).
func (m Money) Scale(factor float64) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromFloat(factor)), Currency: m.Currency}
}

func (m Money) mustMatchCurrency(o Money) {
	if m.Currency != o.Currency {
		panic(fmt.Sprintf("money: currency mismatch %s vs %s", m.Currency, o.Currency))
	}
}

// Price is a clean or dirty bond price, quoted per 100 of face value.
type Price struct {
	Value decimal.Decimal
}

func NewPrice(v decimal.Decimal) Price        { return Price{Value: v} }
func PriceFromFloat(v float64) Price          { return Price{Value: decimal.NewFromFloat(v)} }
func (p Price) Float64() float64              { return p.Value.InexactFloat64() }
func (p Price) String() string                { return p.Value.StringFixed(6) }
func (p Price) Add(o Price) Price             { return Price{Value: p.Value.Add(o.Value)} }
func (p Price) Sub(o Price) Price             { return Price{Value: p.Value.Sub(o.Value)} }

// Yield is an annualized yield expressed as a decimal (0.05 = 5%).
type Yield struct {
	Value decimal.Decimal
}

func NewYield(v decimal.Decimal) Yield { return Yield{Value: v} }
func YieldFromFloat(v float64) Yield   { return Yield{Value: decimal.NewFromFloat(v)} }
func (y Yield) Float64() float64       { return y.Value.InexactFloat64() }

// Percent renders the yield as a percentage value (0.05 -> 5.0).
func (y Yield) Percent() float64 { return y.Float64() * 100 }
func (y Yield) String() string   { return fmt.Sprintf("%s%%", y.Value.Mul(decimal.NewFromInt(100)).StringFixed(4)) }

// Spread is a yield differential, conventionally expressed in basis points.
type Spread struct {
	Value decimal.Decimal // decimal form, 0.0001 = 1bp
}

func NewSpread(v decimal.Decimal) Spread { return Spread{Value: v} }

// SpreadFromBps builds a Spread from a basis-point quantity (100 -> 1%).
func SpreadFromBps(bps float64) Spread {
	return Spread{Value: decimal.NewFromFloat(bps / 10000.0)}
}
func (s Spread) Bps() float64     { return s.Value.InexactFloat64() * 10000.0 }
func (s Spread) Float64() float64 { return s.Value.InexactFloat64() }
func (s Spread) String() string   { return fmt.Sprintf("%.2fbp", s.Bps()) }

// Rate is a short-rate / discount-curve rate, decimal form like Yield but
// kept as a distinct type so a curve's zero rate can't be silently passed
// where a bond's yield-to-maturity is expected.
type Rate struct {
	Value decimal.Decimal
}

func NewRate(v decimal.Decimal) Rate { return Rate{Value: v} }
func RateFromFloat(v float64) Rate   { return Rate{Value: decimal.NewFromFloat(v)} }
func (r Rate) Float64() float64      { return r.Value.InexactFloat64() }
func (r Rate) Percent() float64      { return r.Float64() * 100 }
func (r Rate) String() string        { return fmt.Sprintf("%s%%", r.Value.Mul(decimal.NewFromInt(100)).StringFixed(4)) }
