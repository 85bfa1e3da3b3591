package calendar

// Representative fixed/observed holiday sets for the five built-in
// calendars. These are illustrative settlement calendars (New Year's Day,
// Christmas, and a handful of well-known fixed national holidays) rather
// than exhaustive multi-decade tables — callers with a full holiday feed
// should build their own Calendar via NewCalendar instead of relying on
// the bundled sets for anything beyond examples and tests.
var (
	targetHolidays = []string{
		"2024-01-01", "2024-03-29", "2024-04-01", "2024-05-01", "2024-12-25", "2024-12-26",
		"2025-01-01", "2025-04-18", "2025-04-21", "2025-05-01", "2025-12-25", "2025-12-26",
		"2026-01-01", "2026-04-03", "2026-04-06", "2026-05-01", "2026-12-25", "2026-12-28",
		"2027-01-01", "2027-03-26", "2027-03-29", "2027-05-03", "2027-12-27", "2027-12-28",
		"2028-01-03", "2028-04-14", "2028-04-17", "2028-05-01", "2028-12-25", "2028-12-26",
		"2029-01-01", "2029-03-30", "2029-04-02", "2029-05-01", "2029-12-25", "2029-12-26",
	}
	jpnHolidays = []string{
		"2024-01-01", "2024-01-08", "2024-02-11", "2024-02-12", "2024-05-03", "2024-05-06",
		"2025-01-01", "2025-01-13", "2025-02-11", "2025-05-05", "2025-05-06",
		"2026-01-01", "2026-01-12", "2026-02-11", "2026-05-04", "2026-05-05", "2026-05-06",
		"2027-01-01", "2027-01-11", "2027-02-11", "2027-05-03", "2027-05-04", "2027-05-05",
		"2028-01-01", "2028-01-10", "2028-02-11", "2028-05-03", "2028-05-04", "2028-05-05",
		"2029-01-01", "2029-01-08", "2029-02-12", "2029-05-03", "2029-05-04",
	}
	fedwireHolidays = []string{
		"2024-01-01", "2024-01-15", "2024-02-19", "2024-05-27", "2024-06-19", "2024-07-04", "2024-11-11", "2024-11-28", "2024-12-25",
		"2025-01-01", "2025-01-20", "2025-02-17", "2025-05-26", "2025-06-19", "2025-07-04", "2025-11-11", "2025-11-27", "2025-12-25",
		"2026-01-01", "2026-01-19", "2026-02-16", "2026-05-25", "2026-06-19", "2026-07-03", "2026-11-11", "2026-11-26", "2026-12-25",
		"2027-01-01", "2027-01-18", "2027-02-15", "2027-05-31", "2027-06-18", "2027-07-05", "2027-11-11", "2027-11-25", "2027-12-24",
		"2028-01-01", "2028-01-17", "2028-02-21", "2028-05-29", "2028-06-19", "2028-07-04", "2028-11-10", "2028-11-23", "2028-12-25",
		"2029-01-01", "2029-01-15", "2029-02-19", "2029-05-28", "2029-06-19", "2029-07-04", "2029-11-12", "2029-11-22", "2029-12-25",
	}
	giltHolidays = []string{
		"2024-01-01", "2024-03-29", "2024-04-01", "2024-05-06", "2024-05-27", "2024-08-26", "2024-12-25", "2024-12-26",
		"2025-01-01", "2025-04-18", "2025-04-21", "2025-05-05", "2025-05-26", "2025-08-25", "2025-12-25", "2025-12-26",
		"2026-01-01", "2026-04-03", "2026-04-06", "2026-05-04", "2026-05-25", "2026-08-31", "2026-12-25", "2026-12-28",
		"2027-01-01", "2027-03-26", "2027-03-29", "2027-05-03", "2027-05-31", "2027-08-30", "2027-12-27", "2027-12-28",
		"2028-01-03", "2028-04-14", "2028-04-17", "2028-05-01", "2028-05-29", "2028-08-28", "2028-12-25", "2028-12-26",
		"2029-01-01", "2029-03-30", "2029-04-02", "2029-05-07", "2029-05-28", "2029-08-27", "2029-12-25", "2029-12-26",
	}
	krxHolidays = []string{
		"2024-01-01", "2024-02-09", "2024-02-12", "2024-03-01", "2024-05-06", "2024-05-15", "2024-06-06", "2024-08-15", "2024-09-16", "2024-09-17", "2024-10-03", "2024-10-09", "2024-12-25",
		"2025-01-01", "2025-01-27", "2025-01-28", "2025-01-29", "2025-01-30", "2025-03-03", "2025-05-05", "2025-05-06", "2025-06-06", "2025-08-15", "2025-10-03", "2025-10-06", "2025-10-07", "2025-10-08", "2025-12-25",
		"2026-01-01", "2026-02-16", "2026-02-17", "2026-02-18", "2026-03-02", "2026-05-05", "2026-05-25", "2026-06-06", "2026-08-17", "2026-09-24", "2026-09-25", "2026-10-05", "2026-10-09", "2026-12-25",
	}
)

func dateSet(literals []string) map[string]struct{} {
	m := make(map[string]struct{}, len(literals))
	for _, l := range literals {
		m[l] = struct{}{}
	}
	return m
}
