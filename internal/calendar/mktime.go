package calendar

// Mktime converts r back to seconds since the epoch. Only year, day of year,
// hour, minute and second take part; month, day of month and weekday are
// ignored. For every record produced by Decompose,
// Mktime(Decompose(ms))*1000 == ms - ms%1000.
func Mktime(r Record) int64 {
	return ydhmsDiff(r, Epoch())
}

// ydhmsDiff returns the number of seconds from b to a, counting the leap days
// that fall between the two years.
func ydhmsDiff(a, b Record) int64 {
	leapDays := leapsBefore(int64(a.year)) - leapsBefore(int64(b.year))
	years := int64(a.year) - int64(b.year)
	days := daysPerYear*years + int64(a.yday) - int64(b.yday) + leapDays

	hours := days*24 + int64(a.hour) - int64(b.hour)
	minutes := hours*60 + int64(a.min) - int64(b.min)
	return minutes*60 + int64(a.sec) - int64(b.sec)
}

// leapsBefore counts leap years in the proleptic Gregorian calendar that
// precede year, relative to year 1.
func leapsBefore(year int64) int64 {
	y := year - 1
	return floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
