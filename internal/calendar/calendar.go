// Package calendar converts millisecond counts since the Unix epoch into
// broken-down Gregorian calendar records and back. All values are UTC.
package calendar

// EpochMillis counts milliseconds since 1970-01-01T00:00:00Z.
type EpochMillis uint64

const (
	epochYear = 1970

	// 1970-01-01 was a Thursday.
	epochWeekday = 4

	daysPerWeek     = 7
	daysPerYear     = 365
	daysPerLeapYear = 366

	// A Gregorian 400-year cycle always holds the same number of days,
	// whichever year it starts at.
	yearsPerCycle = 400
	daysPerCycle  = 146097

	millisPerSecond = 1000
	millisPerMinute = 60 * millisPerSecond
	millisPerHour   = 60 * millisPerMinute
	millisPerDay    = 24 * millisPerHour
)

// daysBeforeMonth[leap][m] is the number of days in the year before month m
// (0-indexed); index 12 is the length of the year.
var daysBeforeMonth = [2][13]int{
	{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365},
	{0, 31, 60, 91, 121, 152, 182, 213, 244, 274, 305, 335, 366},
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// YearLength returns 366 for leap years and 365 otherwise.
func YearLength(year int) int {
	if IsLeapYear(year) {
		return daysPerLeapYear
	}
	return daysPerYear
}

// Record is a broken-down calendar time. It is a value: once built it never
// changes, so it can be shared freely between goroutines.
type Record struct {
	sec   int // [0,59]
	min   int // [0,59]
	hour  int // [0,23]
	mday  int // [1,31]
	month int // [1,12]
	year  int // absolute, e.g. 1983
	wday  int // [0,6], 0 = Sunday
	yday  int // [0,365], 0-indexed
}

// New builds a Record from explicit field values. Values are stored as given;
// out-of-range fields are not rejected.
func New(sec, min, hour, mday, month, year, wday, yday int) Record {
	return Record{
		sec:   sec,
		min:   min,
		hour:  hour,
		mday:  mday,
		month: month,
		year:  year,
		wday:  wday,
		yday:  yday,
	}
}

// Epoch returns the record for 1970-01-01T00:00:00Z.
func Epoch() Record {
	return New(0, 0, 0, 1, 1, epochYear, epochWeekday, 0)
}

// Decompose converts ms into a calendar record. The sub-second part of ms is
// dropped. Decompose is total over all inputs.
func Decompose(ms EpochMillis) Record {
	days := uint64(ms / millisPerDay)
	clock := uint64(ms % millisPerDay)

	hour := clock / millisPerHour
	clock -= hour * millisPerHour
	min := clock / millisPerMinute
	clock -= min * millisPerMinute
	sec := clock / millisPerSecond

	wday := (days + epochWeekday) % daysPerWeek

	year := epochYear
	if cycles := days / daysPerCycle; cycles > 0 {
		days -= cycles * daysPerCycle
		year += int(cycles) * yearsPerCycle
	}
	for days >= uint64(YearLength(year)) {
		days -= uint64(YearLength(year))
		year++
	}
	yday := int(days)

	before := &daysBeforeMonth[leapIndex(year)]
	month := 11
	for yday < before[month] {
		month--
	}

	return Record{
		sec:   int(sec),
		min:   int(min),
		hour:  int(hour),
		mday:  yday - before[month] + 1,
		month: month + 1,
		year:  year,
		wday:  int(wday),
		yday:  yday,
	}
}

func leapIndex(year int) int {
	if IsLeapYear(year) {
		return 1
	}
	return 0
}

func (r Record) Second() int     { return r.sec }
func (r Record) Minute() int     { return r.min }
func (r Record) Hour() int       { return r.hour }
func (r Record) DayOfMonth() int { return r.mday }
func (r Record) Month() int      { return r.month }
func (r Record) Year() int       { return r.year }
func (r Record) DayOfWeek() int  { return r.wday }
func (r Record) DayOfYear() int  { return r.yday }

// Unix returns the record as seconds since the epoch. It is shorthand for
// Mktime(r).
func (r Record) Unix() int64 {
	return Mktime(r)
}

// Millis returns the record as EpochMillis. Records before the epoch clamp
// to zero.
func (r Record) Millis() EpochMillis {
	s := Mktime(r)
	if s < 0 {
		return 0
	}
	return EpochMillis(s) * millisPerSecond
}
