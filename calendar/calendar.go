// Package calendar provides holiday calendars, business-day conventions,
// and the Date/Tenor domain types used throughout bondmath.
package calendar

import "time"

// Convention is a business-day adjustment rule.
type Convention int

const (
	// Unadjusted leaves the date as given, even if it falls on a non-business day.
	Unadjusted Convention = iota
	// Following rolls forward to the next business day.
	Following
	// ModifiedFollowing rolls forward, unless that crosses a month boundary,
	// in which case it rolls backward instead.
	ModifiedFollowing
	// Preceding rolls backward to the previous business day.
	Preceding
	// ModifiedPreceding rolls backward, unless that crosses a month boundary,
	// in which case it rolls forward instead.
	ModifiedPreceding
)

func (c Convention) String() string {
	switch c {
	case Unadjusted:
		return "Unadjusted"
	case Following:
		return "Following"
	case ModifiedFollowing:
		return "ModifiedFollowing"
	case Preceding:
		return "Preceding"
	case ModifiedPreceding:
		return "ModifiedPreceding"
	default:
		return "Unknown"
	}
}

// Calendar is a set of holidays plus a weekend rule. Calendars are
// immutable value objects: once built, IsBusinessDay/Adjust/Advance never
// observe mutation, so a Calendar can be shared by reference across
// goroutines without locking (spec.md Section 5).
type Calendar struct {
	name     string
	holidays map[string]struct{}
	weekend  func(time.Weekday) bool
}

func defaultWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

// NewCalendar builds a Calendar from an explicit holiday set and an
// optional weekend rule (nil defaults to Saturday/Sunday).
func NewCalendar(name string, holidays []Date, weekend func(time.Weekday) bool) Calendar {
	if weekend == nil {
		weekend = defaultWeekend
	}
	m := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		m[h.String()] = struct{}{}
	}
	return Calendar{name: name, holidays: m, weekend: weekend}
}

func newBuiltin(name string, literals []string) Calendar {
	return Calendar{name: name, holidays: dateSet(literals), weekend: defaultWeekend}
}

// Built-in calendars. Each is a best-effort illustrative holiday set; see
// holidays.go.
func TARGET() Calendar  { return newBuiltin("TARGET", targetHolidays) }
func JPN() Calendar     { return newBuiltin("JPN", jpnHolidays) }
func Fedwire() Calendar { return newBuiltin("FD", fedwireHolidays) }
func Gilt() Calendar    { return newBuiltin("GT", giltHolidays) }
func KRX() Calendar     { return newBuiltin("KOR", krxHolidays) }

// Name returns the calendar's identifying label.
func (c Calendar) Name() string { return c.name }

// IsBusinessDay reports whether d is neither a weekend day nor a holiday.
func (c Calendar) IsBusinessDay(d Date) bool {
	if c.weekend == nil {
		c.weekend = defaultWeekend
	}
	if c.weekend(d.Weekday()) {
		return false
	}
	_, holiday := c.holidays[d.String()]
	return !holiday
}

// Union combines two calendars: a date is a business day only if it is a
// business day on both (used for multi-currency settlement, e.g. a EUR/JPY
// swap's payment calendar).
func Union(a, b Calendar) Calendar {
	return Calendar{
		name: a.name + "+" + b.name,
		weekend: func(d time.Weekday) bool {
			return a.weekend(d) || b.weekend(d)
		},
		holidays: unionHolidaySets(a, b),
	}
}

// Intersection combines two calendars: a date is a business day if it is a
// business day on either (the "settle wherever either market is open" rule).
func Intersection(a, b Calendar) Calendar {
	return Calendar{
		name: a.name + "&" + b.name,
		weekend: func(d time.Weekday) bool {
			return a.weekend(d) && b.weekend(d)
		},
		holidays: intersectHolidaySets(a, b),
	}
}

func unionHolidaySets(a, b Calendar) map[string]struct{} {
	m := make(map[string]struct{}, len(a.holidays)+len(b.holidays))
	for k := range a.holidays {
		m[k] = struct{}{}
	}
	for k := range b.holidays {
		m[k] = struct{}{}
	}
	return m
}

func intersectHolidaySets(a, b Calendar) map[string]struct{} {
	m := make(map[string]struct{})
	for k := range a.holidays {
		if _, ok := b.holidays[k]; ok {
			m[k] = struct{}{}
		}
	}
	return m
}

// Adjust applies a business-day convention to d.
func (c Calendar) Adjust(d Date, conv Convention) Date {
	switch conv {
	case Unadjusted:
		return d
	case Following:
		return c.rollForward(d)
	case Preceding:
		return c.rollBackward(d)
	case ModifiedFollowing:
		adjusted := c.rollForward(d)
		if adjusted.Month() != d.Month() {
			return c.rollBackward(d)
		}
		return adjusted
	case ModifiedPreceding:
		adjusted := c.rollBackward(d)
		if adjusted.Month() != d.Month() {
			return c.rollForward(d)
		}
		return adjusted
	default:
		return d
	}
}

func (c Calendar) rollForward(d Date) Date {
	for !c.IsBusinessDay(d) {
		d = d.AddDays(1)
	}
	return d
}

func (c Calendar) rollBackward(d Date) Date {
	for !c.IsBusinessDay(d) {
		d = d.AddDays(-1)
	}
	return d
}

// AddBusinessDays advances n business days from d (n may be negative).
func (c Calendar) AddBusinessDays(d Date, n int) Date {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		d = d.AddDays(step)
		if c.IsBusinessDay(d) {
			n -= step
		}
	}
	return d
}

// Advance resolves a Tenor against a reference date, applying bdc after the
// raw calendar shift — the contract spec.md 4.1 names.
func (c Calendar) Advance(ref Date, t Tenor, bdc Convention) Date {
	return c.Adjust(t.addRaw(ref), bdc)
}

// LastBusinessDayOfMonth returns the last business day on or before the
// last calendar day of d's month.
func (c Calendar) LastBusinessDayOfMonth(d Date) Date {
	nextMonthFirst := NewDate(d.Year(), d.Month(), 1).AddMonths(1)
	return c.AddBusinessDays(nextMonthFirst, -1)
}

// IsEndOfMonth reports whether d is the last business day of its month.
func (c Calendar) IsEndOfMonth(d Date) bool {
	return d.Equal(c.LastBusinessDayOfMonth(d))
}
