// Package strftime renders calendar records with POSIX strftime-style
// directives. Output is fixed at UTC and uses C-locale English names.
package strftime

import (
	"fmt"
	"strconv"
	"strings"

	"datetime/internal/calendar"
)

// Directive is a single format code, the character after '%'.
type Directive rune

var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

const (
	zoneName   = "UTC"
	zoneOffset = "-0000"
)

// known holds every directive FormatDirective can render.
var known = func() map[Directive]bool {
	m := make(map[Directive]bool)
	for _, c := range "AaBbhCcDxdefFGgHIjklMmntPpRrSsTXUuVvWwYyZz%" {
		m[Directive(c)] = true
	}
	return m
}()

// Valid reports whether d is a recognized directive code.
func (d Directive) Valid() bool {
	return known[d]
}

// FormatDirective renders a single directive against r. Composite directives
// such as 'c' or 'F' are expanded through their parts.
func FormatDirective(r calendar.Record, d Directive) (string, error) {
	switch d {
	case 'A':
		return weekdayName(r, d, 0)
	case 'a':
		return weekdayName(r, d, 3)
	case 'B':
		return monthName(r, d, 0)
	case 'b', 'h':
		return monthName(r, d, 3)
	case 'C':
		return pad2(r.Year() / 100), nil
	case 'c':
		return join(r, " ", 'a', 'b', 'e', 'T', 'Y')
	case 'D', 'x':
		return join(r, "/", 'm', 'd', 'y')
	case 'd':
		return pad2(r.DayOfMonth()), nil
	case 'e':
		return space2(r.DayOfMonth()), nil
	case 'f':
		// No sub-second field exists; the whole second is widened instead.
		return padN(r.Second(), 9), nil
	case 'F':
		return join(r, "-", 'Y', 'm', 'd')
	case 'G':
		year, _ := calendar.ISOWeek(r)
		return strconv.Itoa(year), nil
	case 'g':
		year, _ := calendar.ISOWeek(r)
		return pad2(year % 100), nil
	case 'H':
		return pad2(r.Hour()), nil
	case 'I':
		h := r.Hour()
		if h > 12 {
			h -= 12
		}
		return pad2(h), nil
	case 'j':
		return padN(r.DayOfYear()+1, 3), nil
	case 'k':
		return space2(r.Hour()), nil
	case 'l':
		h := r.Hour()
		switch {
		case h == 0:
			h = 12
		case h > 12:
			h -= 12
		}
		return space2(h), nil
	case 'M':
		return pad2(r.Minute()), nil
	case 'm':
		return pad2(r.Month()), nil
	case 'n':
		return "\n", nil
	case 't':
		return "\t", nil
	case 'P':
		if r.Hour() < 12 {
			return "am", nil
		}
		return "pm", nil
	case 'p':
		if r.Hour() < 12 {
			return "AM", nil
		}
		return "PM", nil
	case 'R':
		return join(r, ":", 'H', 'M')
	case 'r':
		clock, err := join(r, ":", 'I', 'M', 'S')
		if err != nil {
			return "", err
		}
		ampm, _ := FormatDirective(r, 'p')
		return clock + " " + ampm, nil
	case 'S':
		return pad2(r.Second()), nil
	case 's':
		return strconv.FormatInt(calendar.Mktime(r), 10), nil
	case 'T', 'X':
		return join(r, ":", 'H', 'M', 'S')
	case 'U':
		return pad2((r.DayOfYear() - r.DayOfWeek() + 7) / 7), nil
	case 'u':
		if r.DayOfWeek() == 0 {
			return "7", nil
		}
		return strconv.Itoa(r.DayOfWeek()), nil
	case 'V':
		_, week := calendar.ISOWeek(r)
		return pad2(week), nil
	case 'v':
		return join(r, "-", 'e', 'b', 'Y')
	case 'W':
		return pad2((r.DayOfYear() - (r.DayOfWeek()-1+7)%7 + 7) / 7), nil
	case 'w':
		return strconv.Itoa(r.DayOfWeek()), nil
	case 'Y':
		return strconv.Itoa(r.Year()), nil
	case 'y':
		return pad2(r.Year() % 100), nil
	case 'Z':
		return zoneName, nil
	case 'z':
		return zoneOffset, nil
	case '%':
		return "%", nil
	}
	return "", &DirectiveError{Directive: d}
}

// weekdayName looks up the weekday name, cut to n bytes when n > 0.
func weekdayName(r calendar.Record, d Directive, n int) (string, error) {
	if !inRange(r.DayOfWeek(), 0, 6) {
		return "", &DirectiveError{Directive: d, Field: "day of week", Value: r.DayOfWeek()}
	}
	return abbrev(weekdayNames[r.DayOfWeek()], n), nil
}

func monthName(r calendar.Record, d Directive, n int) (string, error) {
	if !inRange(r.Month(), 1, 12) {
		return "", &DirectiveError{Directive: d, Field: "month", Value: r.Month()}
	}
	return abbrev(monthNames[r.Month()-1], n), nil
}

func abbrev(name string, n int) string {
	if n > 0 && n < len(name) {
		return name[:n]
	}
	return name
}

// join renders each directive and joins the pieces with sep.
func join(r calendar.Record, sep string, ds ...Directive) (string, error) {
	parts := make([]string, 0, len(ds))
	for _, d := range ds {
		s, err := FormatDirective(r, d)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, sep), nil
}

func inRange(v, lo, hi int) bool {
	return v >= lo && v <= hi
}

func pad2(v int) string {
	return padN(v, 2)
}

func padN(v, width int) string {
	return fmt.Sprintf("%0*d", width, v)
}

func space2(v int) string {
	return fmt.Sprintf("%2d", v)
}
