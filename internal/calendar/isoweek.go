package calendar

const (
	isoWeekStartWeekday = 1 // Monday
	isoWeek1Weekday     = 4 // Thursday

	// Large enough to keep isoWeekDays' modulus non-negative for any day of
	// year down to -366.
	bigMultipleOf7 = (daysPerLeapYear/daysPerWeek + 2) * daysPerWeek
)

// isoWeekDays returns the number of days from the Monday starting ISO week 1
// of the record's year to yday. The result is negative when yday falls
// before that Monday.
func isoWeekDays(yday, wday int) int {
	return yday - (yday-wday+isoWeek1Weekday+bigMultipleOf7)%daysPerWeek +
		isoWeek1Weekday - isoWeekStartWeekday
}

// ISOWeek returns the ISO 8601 week-numbering year and week number of r.
// Weeks start on Monday and week 1 holds the year's first Thursday, so the
// first and last days of a year can belong to the neighbouring week-year.
func ISOWeek(r Record) (year, week int) {
	year = r.year
	days := isoWeekDays(r.yday, r.wday)
	if days < 0 {
		year--
		days = isoWeekDays(r.yday+YearLength(year), r.wday)
	} else if d := isoWeekDays(r.yday-YearLength(year), r.wday); d >= 0 {
		year++
		days = d
	}
	return year, days/daysPerWeek + 1
}
