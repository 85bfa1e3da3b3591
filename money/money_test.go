package money_test

import (
	"testing"

	"github.com/meenmo/bondmath/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_AddSameCurrency(t *testing.T) {
	t.Parallel()

	a := money.MoneyFromFloat(100.50, "USD")
	b := money.MoneyFromFloat(0.25, "USD")
	got := a.Add(b)
	assert.Equal(t, 100.75, got.Float64())
}

func TestMoney_Add_CurrencyMismatchPanics(t *testing.T) {
	t.Parallel()

	a := money.MoneyFromFloat(1, "USD")
	b := money.MoneyFromFloat(1, "EUR")
	assert.Panics(t, func() { a.Add(b) }, "expected panic on currency mismatch")
}

func TestSpread_BpsRoundTrip(t *testing.T) {
	t.Parallel()

	s := money.SpreadFromBps(125.5)
	require.Equal(t, 125.5, s.Bps())
}

func TestYield_Percent(t *testing.T) {
	t.Parallel()

	y := money.YieldFromFloat(0.0425)
	require.Equal(t, 4.25, y.Percent())
}

func TestPrice_ArithmeticPreservesDecimal(t *testing.T) {
	t.Parallel()

	p1 := money.NewPrice(decimal.NewFromFloat(99.125))
	p2 := money.NewPrice(decimal.NewFromFloat(0.375))
	sum := p1.Add(p2)
	assert.InDelta(t, 99.5, sum.Float64(), 1e-9)
}
