package daycount_test

import (
	"math"
	"testing"

	"github.com/meenmo/bondmath/calendar"
	"github.com/meenmo/bondmath/daycount"
)

func TestYearFraction_Act360(t *testing.T) {
	t.Parallel()

	start := calendar.NewDate(2025, 1, 1)
	end := calendar.NewDate(2025, 7, 1)
	got, err := daycount.YearFraction(start, end, daycount.Act360, nil)
	if err != nil {
		t.Fatalf("YearFraction: %v", err)
	}
	want := 181.0 / 360.0
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("ACT/360 = %.12f, want %.12f", got, want)
	}
}

func TestYearFraction_Act365F(t *testing.T) {
	t.Parallel()

	start := calendar.NewDate(2024, 1, 1)
	end := calendar.NewDate(2025, 1, 1)
	got, err := daycount.YearFraction(start, end, daycount.Act365F, nil)
	if err != nil {
		t.Fatalf("YearFraction: %v", err)
	}
	want := 366.0 / 365.0 // 2024 is a leap year but ACT/365F always divides by 365
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("ACT/365F = %.12f, want %.12f", got, want)
	}
}

func TestYearFraction_ActActISDA_SpansLeapBoundary(t *testing.T) {
	t.Parallel()

	start := calendar.NewDate(2024, 7, 1)
	end := calendar.NewDate(2025, 7, 1)
	got, err := daycount.YearFraction(start, end, daycount.ActActISDA, nil)
	if err != nil {
		t.Fatalf("YearFraction: %v", err)
	}
	// 184 days in 2024 (leap, /366) + 181 days in 2025 (/365)
	want := 184.0/366.0 + 181.0/365.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("ACT/ACT-ISDA = %.12f, want %.12f", got, want)
	}
}

func TestYearFraction_ActActICMA_RequiresPeriod(t *testing.T) {
	t.Parallel()

	start := calendar.NewDate(2025, 1, 1)
	end := calendar.NewDate(2025, 4, 1)
	_, err := daycount.YearFraction(start, end, daycount.ActActICMA, nil)
	if err == nil {
		t.Fatalf("expected ErrNeedsSchedule when period is nil")
	}
}

func TestYearFraction_ActActICMA_SemiannualPeriod(t *testing.T) {
	t.Parallel()

	periodStart := calendar.NewDate(2025, 1, 1)
	periodEnd := calendar.NewDate(2025, 7, 1)
	period := &daycount.Period{Start: periodStart, End: periodEnd, Frequency: 2}

	got, err := daycount.YearFraction(periodStart, periodEnd, daycount.ActActICMA, period)
	if err != nil {
		t.Fatalf("YearFraction: %v", err)
	}
	want := 0.5 // full period at semiannual frequency is exactly half a year
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("ACT/ACT-ICMA full period = %.12f, want %.12f", got, want)
	}
}

func TestYearFraction_Thirty360US_EndOfMonth(t *testing.T) {
	t.Parallel()

	start := calendar.NewDate(2025, 1, 31)
	end := calendar.NewDate(2025, 2, 28)
	got, err := daycount.YearFraction(start, end, daycount.Thirty360US, nil)
	if err != nil {
		t.Fatalf("YearFraction: %v", err)
	}
	// US 30/360: d1=31->30 (since d1==31); d2=28 stays 28 (only forced to 30 if d2==31 and d1==30)
	want := (360*0 + 30*1 + (28 - 30)) / 360.0
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("30/360-US = %.12f, want %.12f", got, want)
	}
}

func TestYearFraction_Thirty360EU_Day31Capped(t *testing.T) {
	t.Parallel()

	start := calendar.NewDate(2025, 1, 31)
	end := calendar.NewDate(2025, 3, 31)
	got, err := daycount.YearFraction(start, end, daycount.Thirty360EU, nil)
	if err != nil {
		t.Fatalf("YearFraction: %v", err)
	}
	want := 60.0 / 360.0 // both days capped to 30: 2 months exactly
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("30E/360 = %.12f, want %.12f", got, want)
	}
}

func TestYearFraction_Thirty360EUISDA_FebruaryEndCapped(t *testing.T) {
	t.Parallel()

	start := calendar.NewDate(2025, 2, 28) // last day of Feb in a non-leap year
	end := calendar.NewDate(2025, 8, 31)
	got, err := daycount.YearFraction(start, end, daycount.Thirty360EUISDA, nil)
	if err != nil {
		t.Fatalf("YearFraction: %v", err)
	}
	want := 180.0 / 360.0 // Feb 28 capped to 30, Aug 31 capped to 30: exactly 6 months
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("30E/360-ISDA = %.12f, want %.12f", got, want)
	}
}

func TestYearFractionWithMaturity_Thirty360EUISDA_MaturityExemptFromFebruaryCap(t *testing.T) {
	t.Parallel()

	start := calendar.NewDate(2025, 1, 31)
	end := calendar.NewDate(2025, 2, 28) // last day of Feb in a non-leap year

	notMaturity, err := daycount.YearFractionWithMaturity(start, end, daycount.Thirty360EUISDA, nil, false)
	if err != nil {
		t.Fatalf("YearFractionWithMaturity: %v", err)
	}
	wantNotMaturity := 30.0 / 360.0 // Jan 31 -> 30, Feb 28 capped to 30: exactly 1 month
	if math.Abs(notMaturity-wantNotMaturity) > 1e-12 {
		t.Fatalf("30E/360-ISDA non-maturity = %.12f, want %.12f", notMaturity, wantNotMaturity)
	}

	atMaturity, err := daycount.YearFractionWithMaturity(start, end, daycount.Thirty360EUISDA, nil, true)
	if err != nil {
		t.Fatalf("YearFractionWithMaturity: %v", err)
	}
	wantAtMaturity := 28.0 / 360.0 // Feb 28 exempt from the cap at maturity: Jan 31(->30) to Feb 28
	if math.Abs(atMaturity-wantAtMaturity) > 1e-12 {
		t.Fatalf("30E/360-ISDA at maturity = %.12f, want %.12f", atMaturity, wantAtMaturity)
	}
}

func TestYearFraction_NegativePeriod_Negates(t *testing.T) {
	t.Parallel()

	start := calendar.NewDate(2025, 7, 1)
	end := calendar.NewDate(2025, 1, 1)
	got, err := daycount.YearFraction(start, end, daycount.Act360, nil)
	if err != nil {
		t.Fatalf("YearFraction: %v", err)
	}
	if got >= 0 {
		t.Fatalf("expected negative year fraction for end before start, got %.6f", got)
	}
}
