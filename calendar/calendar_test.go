package calendar_test

import (
	"testing"

	"github.com/meenmo/bondmath/calendar"
)

func TestIsBusinessDay_WeekendAndHoliday(t *testing.T) {
	t.Parallel()

	cal := calendar.TARGET()
	sat := calendar.NewDate(2025, 1, 4)
	if cal.IsBusinessDay(sat) {
		t.Fatalf("expected Saturday to not be a business day")
	}
	newYear := calendar.NewDate(2025, 1, 1)
	if cal.IsBusinessDay(newYear) {
		t.Fatalf("expected New Year's Day to not be a business day")
	}
	ordinary := calendar.NewDate(2025, 1, 2)
	if !cal.IsBusinessDay(ordinary) {
		t.Fatalf("expected 2025-01-02 to be a business day")
	}
}

func TestAdjust_ModifiedFollowing_MonthRollback(t *testing.T) {
	t.Parallel()

	cal := calendar.Fedwire()
	// 2024-11-30 is a Saturday and the following business day (2024-12-02)
	// is in December, so ModifiedFollowing must roll back into November.
	d := calendar.NewDate(2024, 11, 30)
	adjusted := cal.Adjust(d, calendar.ModifiedFollowing)
	if adjusted.Month() != d.Month() {
		t.Fatalf("ModifiedFollowing must not cross month boundary, got %s", adjusted)
	}
}

func TestAdjust_Unadjusted_NoOp(t *testing.T) {
	t.Parallel()

	cal := calendar.TARGET()
	d := calendar.NewDate(2025, 1, 1)
	if got := cal.Adjust(d, calendar.Unadjusted); !got.Equal(d) {
		t.Fatalf("Unadjusted changed date: got %s want %s", got, d)
	}
}

func TestAdvance_TenorResolution(t *testing.T) {
	t.Parallel()

	cal := calendar.TARGET()
	ref := calendar.NewDate(2025, 6, 2)
	tenor, err := calendar.ParseTenor("3M")
	if err != nil {
		t.Fatalf("ParseTenor: %v", err)
	}
	got := cal.Advance(ref, tenor, calendar.ModifiedFollowing)
	want := calendar.NewDate(2025, 9, 2)
	if !got.Equal(want) {
		t.Fatalf("Advance(3M) = %s, want %s", got, want)
	}
}

func TestUnion_StricterThanEither(t *testing.T) {
	t.Parallel()

	a := calendar.TARGET()
	b := calendar.JPN()
	u := calendar.Union(a, b)

	// 2024-01-08 is a JPN holiday but not a TARGET holiday.
	jpnOnly := calendar.NewDate(2024, 1, 8)
	if u.IsBusinessDay(jpnOnly) {
		t.Fatalf("union calendar should inherit JPN holiday on %s", jpnOnly)
	}
}

func TestIntersection_LooserThanEither(t *testing.T) {
	t.Parallel()

	a := calendar.TARGET()
	b := calendar.JPN()
	i := calendar.Intersection(a, b)

	jpnOnly := calendar.NewDate(2024, 1, 8)
	if !i.IsBusinessDay(jpnOnly) {
		t.Fatalf("intersection calendar should treat %s as a business day (TARGET is open)", jpnOnly)
	}
}

func TestParseTenor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want calendar.Tenor
	}{
		{"1W", calendar.Tenor{Count: 7, Unit: calendar.Days}},
		{"3M", calendar.Tenor{Count: 3, Unit: calendar.Months}},
		{"10Y", calendar.Tenor{Count: 10, Unit: calendar.Years}},
		{"2D", calendar.Tenor{Count: 2, Unit: calendar.Days}},
	}
	for _, c := range cases {
		got, err := calendar.ParseTenor(c.in)
		if err != nil {
			t.Fatalf("ParseTenor(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseTenor(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestParseTenor_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := calendar.ParseTenor("X"); err == nil {
		t.Fatalf("expected error for malformed tenor")
	}
	if _, err := calendar.ParseTenor("5Z"); err == nil {
		t.Fatalf("expected error for unknown tenor suffix")
	}
}

func TestDate_AddMonths_EndOfMonth(t *testing.T) {
	t.Parallel()

	jan31 := calendar.NewDate(2025, 1, 31)
	got := jan31.AddMonths(1)
	want := calendar.NewDate(2025, 2, 28)
	if !got.Equal(want) {
		t.Fatalf("AddMonths EOM roll: got %s want %s", got, want)
	}
}

func TestDate_JSON_RoundTrip(t *testing.T) {
	t.Parallel()

	d := calendar.NewDate(2025, 3, 15)
	data, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(data) != `"2025-03-15"` {
		t.Fatalf("MarshalJSON = %s, want \"2025-03-15\"", data)
	}
	var round calendar.Date
	if err := round.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !round.Equal(d) {
		t.Fatalf("round trip mismatch: got %s want %s", round, d)
	}
}
