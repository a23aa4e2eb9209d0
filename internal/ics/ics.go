// Package ics writes occurrences as iCalendar (RFC 5545) documents and reads
// their start instants back.
package ics

import (
	"errors"
	"fmt"
	"strings"

	ical "github.com/arran4/golang-ical"

	"datetime/internal/calendar"
	appLog "datetime/internal/log"
	"datetime/internal/model"
	"datetime/internal/strftime"
)

const productID = "-//datetime//strftime calendar export//EN"

// utcLayout is the iCalendar DATE-TIME form in UTC.
var utcLayout = strftime.MustCompile("%Y%m%dT%H%M%SZ")

// Export builds a VCALENDAR with one VEVENT per occurrence. stamp is written
// as DTSTAMP on every event.
func Export(occs []model.Occurrence, stamp calendar.EpochMillis) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	dtstamp, err := utcLayout.FormatMillis(stamp)
	if err != nil {
		return "", err
	}

	for _, occ := range occs {
		if occ.UID == "" {
			return "", errors.New("ics: occurrence UID is empty")
		}
		start, err := utcLayout.FormatMillis(occ.Start)
		if err != nil {
			return "", err
		}
		end, err := utcLayout.FormatMillis(occ.End)
		if err != nil {
			return "", err
		}

		uid := occ.UID
		if occ.InstanceKey != "" {
			uid += "-" + occ.InstanceKey
		}
		ev := cal.AddEvent(uid)
		ev.SetProperty(ical.ComponentPropertyDtstamp, dtstamp)
		ev.SetProperty(ical.ComponentPropertyDtStart, start)
		ev.SetProperty(ical.ComponentPropertyDtEnd, end)
		if occ.Summary != "" {
			ev.SetSummary(occ.Summary)
		}
	}

	appLog.Debug("ics export", "events", len(occs))
	return cal.Serialize(), nil
}

// ParseStarts parses an iCalendar body and returns the DTSTART of every
// VEVENT as epoch milliseconds, in document order.
func ParseStarts(body string) ([]calendar.EpochMillis, error) {
	if body == "" {
		return nil, errors.New("ics: empty body")
	}
	cal, err := ical.ParseCalendar(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ics: parse: %w", err)
	}

	out := make([]calendar.EpochMillis, 0)
	for _, ev := range cal.Events() {
		start, err := ev.GetStartAt()
		if err != nil {
			return nil, fmt.Errorf("ics: event DTSTART: %w", err)
		}
		ms := start.UnixMilli()
		if ms < 0 {
			return nil, fmt.Errorf("ics: DTSTART %d before epoch", ms)
		}
		out = append(out, calendar.EpochMillis(ms))
	}
	return out, nil
}
