package calendar

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearLength(t *testing.T) {
	t.Parallel()

	cases := map[int]int{
		1900: 365,
		1970: 365,
		1983: 365,
		1984: 366,
		2000: 366,
		2100: 365,
		2400: 366,
	}
	for year, want := range cases {
		assert.Equal(t, want, YearLength(year), "year %d", year)
		assert.Equal(t, want == 366, IsLeapYear(year), "year %d", year)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	r := New(21, 0, 12, 23, 9, 1983, 5, 265)
	assert.Equal(t, 21, r.Second())
	assert.Equal(t, 0, r.Minute())
	assert.Equal(t, 12, r.Hour())
	assert.Equal(t, 23, r.DayOfMonth())
	assert.Equal(t, 9, r.Month())
	assert.Equal(t, 1983, r.Year())
	assert.Equal(t, 5, r.DayOfWeek())
	assert.Equal(t, 265, r.DayOfYear())
}

func TestDecomposeReference(t *testing.T) {
	t.Parallel()

	assert.Equal(t, New(21, 0, 12, 23, 9, 1983, 5, 265), Decompose(433166421023))
	assert.Equal(t, New(30, 31, 23, 13, 2, 2009, 5, 43), Decompose(1234567890543))
	assert.Equal(t, Epoch(), Decompose(0))
}

func TestDecomposeBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		ms   EpochMillis
		want Record
	}{
		{"last ms of 1970", 31535999999, New(59, 59, 23, 31, 12, 1970, 4, 364)},
		{"first day of 1971", 31536000000, New(0, 0, 0, 1, 1, 1971, 5, 0)},
		{"leap day 1972", 68169600000, New(0, 0, 0, 29, 2, 1972, 2, 59)},
		{"day after leap day", 68256000000, New(0, 0, 0, 1, 3, 1972, 3, 60)},
		{"end of leap year 2000", 978220800000, New(0, 0, 0, 31, 12, 2000, 0, 365)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Decompose(tc.ms))
		})
	}
}

// Every field must agree with the time package for UTC instants.
func TestDecomposeMatchesTimePackage(t *testing.T) {
	t.Parallel()

	// Step by a prime number of seconds so clock fields and days both vary.
	const step = 7919*1000 + 317
	for ms := EpochMillis(0); ms < 5_000_000_000_000; ms += step * 977 {
		got := Decompose(ms)
		ref := time.UnixMilli(int64(ms)).UTC()

		require.Equal(t, ref.Year(), got.Year(), "ms=%d", ms)
		require.Equal(t, int(ref.Month()), got.Month(), "ms=%d", ms)
		require.Equal(t, ref.Day(), got.DayOfMonth(), "ms=%d", ms)
		require.Equal(t, ref.Hour(), got.Hour(), "ms=%d", ms)
		require.Equal(t, ref.Minute(), got.Minute(), "ms=%d", ms)
		require.Equal(t, ref.Second(), got.Second(), "ms=%d", ms)
		require.Equal(t, int(ref.Weekday()), got.DayOfWeek(), "ms=%d", ms)
		require.Equal(t, ref.YearDay()-1, got.DayOfYear(), "ms=%d", ms)
	}
}

// walkYears is the plain year-by-year walk without cycle skipping.
func walkYears(days uint64) (year, yday int) {
	year = epochYear
	for days >= uint64(YearLength(year)) {
		days -= uint64(YearLength(year))
		year++
	}
	return year, int(days)
}

func TestDecomposeCycleSkipMatchesWalk(t *testing.T) {
	t.Parallel()

	for days := uint64(0); days < 3*daysPerCycle; days += 113 {
		year, yday := walkYears(days)
		r := Decompose(EpochMillis(days * millisPerDay))
		require.Equal(t, year, r.Year(), "days=%d", days)
		require.Equal(t, yday, r.DayOfYear(), "days=%d", days)
	}
}

func TestDecomposeHugeValue(t *testing.T) {
	t.Parallel()

	r := Decompose(math.MaxUint64)
	assert.Greater(t, r.Year(), 500_000_000)
	assert.GreaterOrEqual(t, r.DayOfWeek(), 0)
	assert.Less(t, r.DayOfWeek(), 7)
	assert.Less(t, r.DayOfYear(), YearLength(r.Year()))
}

func TestDecomposeWeekdayInvariant(t *testing.T) {
	t.Parallel()

	for days := uint64(0); days < 1000; days++ {
		r := Decompose(EpochMillis(days*millisPerDay + 12345))
		require.Equal(t, int((days+4)%7), r.DayOfWeek())
	}
}

func TestDecomposeSameDay(t *testing.T) {
	t.Parallel()

	start := EpochMillis(1234483200000) // 2009-02-13T00:00:00Z
	for off := EpochMillis(0); off < millisPerDay; off += 3_600_017 {
		assert.Equal(t, Decompose(start).DayOfYear(), Decompose(start+off).DayOfYear())
	}
	assert.NotEqual(t, Decompose(start).DayOfYear(), Decompose(start+millisPerDay).DayOfYear())
}

func TestMktimeRoundTrip(t *testing.T) {
	t.Parallel()

	samples := []EpochMillis{0, 999, 1000, 433166421023, 1234567890543, 951782400000, 4102444799999}
	for ms := EpochMillis(0); ms < 8_000_000_000_000; ms += 86_399_999 * 37 {
		samples = append(samples, ms)
	}
	for _, ms := range samples {
		got := Mktime(Decompose(ms))
		require.Equal(t, int64(ms-ms%1000), got*1000, "ms=%d", ms)
	}
}

func TestMktimeEpoch(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), Mktime(Epoch()))
	assert.Equal(t, int64(0), Epoch().Unix())
	assert.Equal(t, EpochMillis(433166421000), Decompose(433166421023).Millis())
}

func TestMktimeBeforeEpoch(t *testing.T) {
	t.Parallel()

	// 1969-12-31T23:59:59Z
	r := New(59, 59, 23, 31, 12, 1969, 3, 364)
	assert.Equal(t, int64(-1), Mktime(r))
	assert.Equal(t, EpochMillis(0), r.Millis())
}

func TestMktimeOutOfRangeFields(t *testing.T) {
	t.Parallel()

	// Fields beyond their ranges still combine linearly.
	r := New(75, 0, 0, 1, 1, 1970, 9, 0)
	assert.Equal(t, int64(75), Mktime(r))
}

func TestISOWeek(t *testing.T) {
	t.Parallel()

	cases := []struct {
		date     string
		year, wk int
	}{
		{"2005-01-01", 2004, 53},
		{"2005-01-02", 2004, 53},
		{"2005-01-03", 2005, 1},
		{"2008-12-29", 2009, 1},
		{"2009-02-13", 2009, 7},
		{"2010-01-03", 2009, 53},
		{"2010-01-04", 2010, 1},
		{"1970-01-01", 1970, 1},
	}
	for _, tc := range cases {
		ts, err := time.Parse("2006-01-02", tc.date)
		require.NoError(t, err)
		year, wk := ISOWeek(Decompose(EpochMillis(ts.UnixMilli())))
		assert.Equal(t, tc.year, year, tc.date)
		assert.Equal(t, tc.wk, wk, tc.date)
	}
}

func TestISOWeekMatchesTimePackage(t *testing.T) {
	t.Parallel()

	for days := int64(0); days < 40*366; days++ {
		ms := days * millisPerDay
		year, wk := ISOWeek(Decompose(EpochMillis(ms)))
		refYear, refWk := time.UnixMilli(ms).UTC().ISOWeek()
		require.Equal(t, refYear, year, "days=%d", days)
		require.Equal(t, refWk, wk, "days=%d", days)
	}
}
