package schedule_test

import (
	"testing"

	"github.com/meenmo/bondmath/calendar"
	"github.com/meenmo/bondmath/schedule"
)

func TestGenerate_RegularSemiannual(t *testing.T) {
	t.Parallel()

	cfg := schedule.Config{
		Issue:     calendar.NewDate(2020, 1, 15),
		Maturity:  calendar.NewDate(2030, 1, 15),
		Frequency: schedule.Semiannual,
		Calendar:  calendar.TARGET(),
		BDC:       calendar.ModifiedFollowing,
		Stub:      schedule.ShortFront,
	}
	periods, err := schedule.Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(periods) != 20 {
		t.Fatalf("expected 20 semiannual periods over 10 years, got %d", len(periods))
	}
	if !periods[0].Start.Equal(cfg.Issue) {
		t.Fatalf("first period must start at issue: got %s", periods[0].Start)
	}
	if !periods[len(periods)-1].End.Equal(cfg.Maturity) {
		t.Fatalf("last period must end at maturity: got %s", periods[len(periods)-1].End)
	}
	for _, p := range periods {
		if p.Stub {
			t.Fatalf("no stub expected in an evenly-divisible schedule, got stub period %s-%s", p.Start, p.End)
		}
	}
}

func TestGenerate_ShortFrontStub(t *testing.T) {
	t.Parallel()

	cfg := schedule.Config{
		Issue:     calendar.NewDate(2020, 3, 1),
		Maturity:  calendar.NewDate(2025, 1, 15),
		Frequency: schedule.Semiannual,
		Calendar:  calendar.TARGET(),
		BDC:       calendar.ModifiedFollowing,
		Stub:      schedule.ShortFront,
	}
	periods, err := schedule.Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !periods[0].Stub {
		t.Fatalf("expected first period to be a short stub")
	}
	if !periods[0].Start.Equal(cfg.Issue) {
		t.Fatalf("stub period must still start at issue: got %s", periods[0].Start)
	}
}

func TestGenerate_BoundariesStrictlyIncreasing(t *testing.T) {
	t.Parallel()

	cfg := schedule.Config{
		Issue:     calendar.NewDate(2021, 6, 30),
		Maturity:  calendar.NewDate(2026, 6, 30),
		Frequency: schedule.Quarterly,
		Calendar:  calendar.TARGET(),
		BDC:       calendar.ModifiedFollowing,
		Stub:      schedule.ShortBack,
	}
	periods, err := schedule.Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := 1; i < len(periods); i++ {
		if !periods[i].Start.After(periods[i-1].Start) {
			t.Fatalf("period starts not strictly increasing at index %d", i)
		}
	}
}

func TestGenerate_RejectsMaturityBeforeIssue(t *testing.T) {
	t.Parallel()

	cfg := schedule.Config{
		Issue:     calendar.NewDate(2025, 1, 1),
		Maturity:  calendar.NewDate(2024, 1, 1),
		Frequency: schedule.Annual,
		Calendar:  calendar.TARGET(),
		BDC:       calendar.ModifiedFollowing,
		Stub:      schedule.ShortFront,
	}
	if _, err := schedule.Generate(cfg); err == nil {
		t.Fatalf("expected error for maturity before issue")
	}
}

func TestGenerate_RejectsBadFrequency(t *testing.T) {
	t.Parallel()

	cfg := schedule.Config{
		Issue:     calendar.NewDate(2025, 1, 1),
		Maturity:  calendar.NewDate(2026, 1, 1),
		Frequency: 5,
		Calendar:  calendar.TARGET(),
		BDC:       calendar.ModifiedFollowing,
		Stub:      schedule.ShortFront,
	}
	if _, err := schedule.Generate(cfg); err == nil {
		t.Fatalf("expected error for frequency not dividing 12")
	}
}
