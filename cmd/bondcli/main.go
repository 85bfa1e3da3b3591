// Command bondcli prices the spec.md Section 8 par-bond scenario end to
// end: build a discount curve, price a bond off a clean price quote, and
// print the resulting analytics and risk metrics. Mirrors the teacher's
// root main.go, which builds a swap curve and prints a trade's PV by leg.
package main

import (
	"fmt"
	"log"

	"github.com/meenmo/bondmath/calendar"
	"github.com/meenmo/bondmath/curve"
	"github.com/meenmo/bondmath/daycount"
	"github.com/meenmo/bondmath/instrument"
	"github.com/meenmo/bondmath/pricer"
	"github.com/meenmo/bondmath/risk"
	"github.com/meenmo/bondmath/schedule"
)

func printNotional(b instrument.Bond) {
	fmt.Printf("Face value:        %s at a %.4f%% coupon\n", b.FaceAmount(), b.CouponYield().Percent())
}

func main() {
	settle := calendar.NewDate(2024, 6, 15)

	flat5pct := []curve.Knot{
		{Date: settle, DiscountFactor: 1.0},
		{Date: calendar.NewDate(2034, 6, 15), DiscountFactor: 0.6065}, // e^(-0.05*10)
	}
	zeroCurve, err := curve.New(settle, flat5pct, daycount.Act365F, curve.LogLinearDF)
	if err != nil {
		log.Fatalf("curve.New: %v", err)
	}

	bond := instrument.Bond{
		Kind:       instrument.FixedBullet,
		Issue:      settle,
		Maturity:   calendar.NewDate(2029, 6, 15),
		CouponRate: 0.05,
		Frequency:  schedule.Semiannual,
		DayCount:   daycount.Thirty360US,
		Calendar:   calendar.Fedwire(),
		BDC:        calendar.ModifiedFollowing,
		Stub:       schedule.ShortFront,
		FaceValue:  100,
	}

	analytics, err := pricer.Price(bond, zeroCurve, settle, pricer.MarketInput{
		Kind:       pricer.CleanPriceInput,
		CleanPrice: 100.000,
	}, pricer.Options{
		Benchmarks: pricer.Benchmarks{SwapCurve: zeroCurve},
	})
	if err != nil {
		log.Fatalf("pricer.Price: %v", err)
	}

	metrics, err := risk.Compute(bond, zeroCurve, settle, analytics, risk.Config{ShiftBps: 25})
	if err != nil {
		log.Fatalf("risk.Compute: %v", err)
	}

	printNotional(bond)
	fmt.Printf("Clean price:       %.4f\n", analytics.CleanPrice)
	fmt.Printf("Dirty price:       %.4f\n", analytics.DirtyPrice)
	fmt.Printf("YTM:               %.4f%%\n", analytics.YTM*100)
	fmt.Printf("Z-spread:          %.2f bp\n", analytics.ZSpreadBps)
	fmt.Printf("Modified duration: %.4f\n", metrics.ModifiedDuration)
	fmt.Printf("DV01:              %.5f\n", metrics.DV01)
	fmt.Printf("Convexity:         %.4f\n", metrics.Convexity)
}
