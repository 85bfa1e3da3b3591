// Package instrument defines the bond and calibration-instrument tagged
// unions: the contractual description of what a bond pays and when, and
// the market quotes used to bootstrap a curve.
package instrument

import (
	"fmt"

	"github.com/meenmo/bondmath/calendar"
	"github.com/meenmo/bondmath/daycount"
	"github.com/meenmo/bondmath/money"
	"github.com/meenmo/bondmath/schedule"
)

// Kind discriminates the Bond tagged union. Go has no sum types, so the
// teacher's own pattern — a flat struct carrying every variant's fields,
// discriminated by an enum tag and switched on exhaustively at the call
// site — is used here instead of interface-based polymorphism
// (DESIGN.md instrument/).
type Kind int

const (
	FixedBullet Kind = iota
	FixedCallable
	FixedPutable
	FloatingRate
	ZeroCoupon
	InflationLinked
	Amortizing
)

func (k Kind) String() string {
	switch k {
	case FixedBullet:
		return "FixedBullet"
	case FixedCallable:
		return "FixedCallable"
	case FixedPutable:
		return "FixedPutable"
	case FloatingRate:
		return "FloatingRate"
	case ZeroCoupon:
		return "ZeroCoupon"
	case InflationLinked:
		return "InflationLinked"
	case Amortizing:
		return "Amortizing"
	default:
		return "Unknown"
	}
}

// CallPut describes a single exercise date and strike (clean) price for a
// callable or putable bond.
type CallPut struct {
	Date  calendar.Date
	Price float64 // clean strike price, per 100
}

// StrikePrice wraps Price as the decimal-tagged money.Price boundary type
// (spec.md Section 3: prices are a distinct type from yields and spreads).
func (cp CallPut) StrikePrice() money.Price { return money.PriceFromFloat(cp.Price) }

// AmortizationStep is a scheduled principal paydown.
type AmortizationStep struct {
	Date         calendar.Date
	OutstandingPct float64 // outstanding notional fraction, per 1.0, after this step
}

// FloatSpec describes a floating-rate coupon: reference index tenor,
// spread over the index, and optional cap/floor.
type FloatSpec struct {
	IndexTenor calendar.Tenor
	SpreadBps  float64
	CapRate    *float64 // nil = uncapped
	FloorRate  *float64 // nil = unfloored
}

// InflationFixing is a single reference-index print applicable to cash
// flows dated LagMonths after it (e.g. a 3-month-lagged CPI print).
type InflationFixing struct {
	Date  calendar.Date
	Index float64
}

// InflationSpec describes an inflation-linked bond's indexation: coupon
// and principal scale by IndexRatio(paymentDate) = referenceIndex(paymentDate
// lagged by LagMonths) / BaseIndex. This package carries no reference-index
// feed of its own, so ReferenceIndex must supply every fixing a cash flow's
// lagged date requires.
type InflationSpec struct {
	BaseIndex      float64
	LagMonths      int
	DeflationFloor bool // if true, the index ratio never falls below 1.0
	ReferenceIndex []InflationFixing
}

// IndexRatio returns the accretion factor for a cash flow dated
// paymentDate: the reference index observed LagMonths earlier, divided by
// BaseIndex, floored at 1.0 when DeflationFloor is set.
func (s InflationSpec) IndexRatio(paymentDate calendar.Date) (float64, error) {
	ref := paymentDate.AddMonths(-s.LagMonths)
	for _, fx := range s.ReferenceIndex {
		if fx.Date.Equal(ref) {
			ratio := fx.Index / s.BaseIndex
			if s.DeflationFloor && ratio < 1.0 {
				ratio = 1.0
			}
			return ratio, nil
		}
	}
	return 0, fmt.Errorf("instrument: no reference index fixing for %s (lagged %d months from %s)", ref, s.LagMonths, paymentDate)
}

// Bond is the exhaustive tagged union of instruments spec.md Section 3 names.
type Bond struct {
	Kind Kind

	Issue    calendar.Date
	Maturity calendar.Date

	CouponRate float64 // annualized, decimal (0.05 = 5%)
	Frequency  schedule.Frequency
	DayCount   daycount.Convention
	Calendar   calendar.Calendar
	BDC        calendar.Convention
	Stub       schedule.StubRule

	FaceValue float64

	// Currency is the ISO 4217 code FaceAmount is denominated in. Empty
	// defaults to "USD" (defaultCurrency).
	Currency string

	// ExDividendDays is an explicit nullable override: nil means no
	// ex-dividend period at all. It is never inferred from currency
	// (DESIGN.md Open Questions).
	ExDividendDays *int

	AdjustBothDatesAndAmount bool

	// Variant-specific fields, populated only for the matching Kind.
	Calls   []CallPut        // FixedCallable
	Puts    []CallPut        // FixedPutable
	Float   *FloatSpec       // FloatingRate
	Inflation *InflationSpec // InflationLinked
	AmortizationSchedule []AmortizationStep // Amortizing
}

// defaultCurrency is used by FaceAmount when Bond.Currency is unset.
const defaultCurrency = "USD"

// CouponYield wraps CouponRate as the decimal-tagged money.Rate boundary
// type (spec.md Section 3).
func (b Bond) CouponYield() money.Rate { return money.RateFromFloat(b.CouponRate) }

// FaceAmount wraps FaceValue as the decimal-tagged money.Money boundary
// type, defaulting Currency to "USD" when unset.
func (b Bond) FaceAmount() money.Money {
	ccy := b.Currency
	if ccy == "" {
		ccy = defaultCurrency
	}
	return money.MoneyFromFloat(b.FaceValue, ccy)
}

// Validate checks the tagged-union invariants: each Kind must carry its own
// variant field (and ZeroCoupon a zero CouponRate). Only FixedBullet also
// rejects another variant's fields (Calls, Puts, Float); the other kinds do
// not check fields that belong to other variants.
func (b Bond) Validate() error {
	if b.Maturity.Before(b.Issue) || b.Maturity.Equal(b.Issue) {
		return fmt.Errorf("instrument: maturity %s must be after issue %s", b.Maturity, b.Issue)
	}
	if b.FaceValue <= 0 {
		return fmt.Errorf("instrument: face value must be positive, got %v", b.FaceValue)
	}
	switch b.Kind {
	case FixedBullet:
		if b.Calls != nil || b.Puts != nil || b.Float != nil {
			return fmt.Errorf("instrument: FixedBullet must not carry call/put/float fields")
		}
	case FixedCallable:
		if len(b.Calls) == 0 {
			return fmt.Errorf("instrument: FixedCallable requires at least one call date")
		}
	case FixedPutable:
		if len(b.Puts) == 0 {
			return fmt.Errorf("instrument: FixedPutable requires at least one put date")
		}
	case FloatingRate:
		if b.Float == nil {
			return fmt.Errorf("instrument: FloatingRate requires Float spec")
		}
	case ZeroCoupon:
		if b.CouponRate != 0 {
			return fmt.Errorf("instrument: ZeroCoupon must have zero coupon rate")
		}
	case InflationLinked:
		if b.Inflation == nil {
			return fmt.Errorf("instrument: InflationLinked requires Inflation spec")
		}
	case Amortizing:
		if len(b.AmortizationSchedule) == 0 {
			return fmt.Errorf("instrument: Amortizing requires a non-empty amortization schedule")
		}
	default:
		return fmt.Errorf("instrument: unknown bond kind %v", b.Kind)
	}
	return nil
}

// CalibrationKind discriminates the instruments used to bootstrap a curve.
type CalibrationKind int

const (
	Deposit CalibrationKind = iota
	FRA
	Swap
	OIS
	CalibrationBond
)

func (k CalibrationKind) String() string {
	switch k {
	case Deposit:
		return "Deposit"
	case FRA:
		return "FRA"
	case Swap:
		return "Swap"
	case OIS:
		return "OIS"
	case CalibrationBond:
		return "Bond"
	default:
		return "Unknown"
	}
}

// CalibrationInstrument is a single market quote used as a bootstrap pillar.
type CalibrationInstrument struct {
	Kind CalibrationKind

	StartDate calendar.Date
	EndDate   calendar.Date

	// Quote is the market rate (Deposit/FRA/Swap/OIS, decimal) or clean
	// price (CalibrationBond, per 100).
	Quote float64

	DayCount daycount.Convention
	Calendar calendar.Calendar
	BDC      calendar.Convention

	// FixedLegFrequency applies to Swap/OIS only.
	FixedLegFrequency schedule.Frequency

	// Bond is populated only when Kind == CalibrationBond.
	Bond *Bond
}

// QuoteRate wraps Quote as money.Rate for Deposit/FRA/Swap/OIS pillars,
// where Quote is a market rate (spec.md Section 3's decimal-tagged
// boundary for rates).
func (ci CalibrationInstrument) QuoteRate() money.Rate { return money.RateFromFloat(ci.Quote) }

// QuotePrice wraps Quote as money.Price for CalibrationBond pillars,
// where Quote is a clean price per 100.
func (ci CalibrationInstrument) QuotePrice() money.Price { return money.PriceFromFloat(ci.Quote) }

func (ci CalibrationInstrument) Validate() error {
	if ci.EndDate.Before(ci.StartDate) || ci.EndDate.Equal(ci.StartDate) {
		return fmt.Errorf("instrument: calibration instrument end %s must be after start %s", ci.EndDate, ci.StartDate)
	}
	if ci.Kind == CalibrationBond && ci.Bond == nil {
		return fmt.Errorf("instrument: CalibrationBond requires a Bond")
	}
	if (ci.Kind == Swap || ci.Kind == OIS) && ci.FixedLegFrequency <= 0 {
		return fmt.Errorf("instrument: %v requires a fixed-leg frequency", ci.Kind)
	}
	return nil
}
