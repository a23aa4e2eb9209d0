// Package recur expands RFC 5545 recurrence rules into epoch instants.
package recur

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"datetime/internal/calendar"
	appLog "datetime/internal/log"
	"datetime/internal/model"
	"datetime/internal/strftime"
)

const defaultMaxOccurrences = 1000

// instanceKeyLayout renders the per-instance key, in the iCalendar
// RECURRENCE-ID form.
var instanceKeyLayout = strftime.MustCompile("%Y%m%dT%H%M%SZ")

// Config controls a single expansion.
type Config struct {
	// Rule is an RRULE value such as "FREQ=DAILY;COUNT=3". A DTSTART inside
	// the rule is replaced by Start.
	Rule  string
	Start calendar.EpochMillis

	// Duration is added to every start to form the occurrence end.
	Duration time.Duration

	UID     string
	Summary string

	// MaxOccurrences caps unbounded rules. If zero, defaultMaxOccurrences
	// is used.
	MaxOccurrences int
}

// Result holds expanded occurrences and whether the cap cut the series
// short.
type Result struct {
	Occurrences []model.Occurrence
	Truncated   bool
}

// Expand parses cfg.Rule, anchors it at cfg.Start and returns occurrences in
// ascending order. Instants are computed in UTC.
func Expand(cfg Config) (Result, error) {
	var result Result

	if cfg.Rule == "" {
		return result, errors.New("recur: rule is empty")
	}
	if cfg.Duration < 0 {
		return result, errors.New("recur: negative duration")
	}
	if cfg.MaxOccurrences <= 0 {
		cfg.MaxOccurrences = defaultMaxOccurrences
	}

	r, err := rrule.StrToRRule(cfg.Rule)
	if err != nil {
		return result, fmt.Errorf("recur: parse rule: %w", err)
	}
	r.DTStart(time.UnixMilli(int64(cfg.Start)).UTC())

	next := r.Iterator()
	for {
		t, ok := next()
		if !ok {
			break
		}
		if len(result.Occurrences) == cfg.MaxOccurrences {
			result.Truncated = true
			appLog.Warn("recur: occurrence cap reached", "rule", cfg.Rule, "cap", cfg.MaxOccurrences)
			break
		}
		occ, err := makeOccurrence(cfg, t)
		if err != nil {
			return Result{}, err
		}
		result.Occurrences = append(result.Occurrences, occ)
	}

	return result, nil
}

func makeOccurrence(cfg Config, t time.Time) (model.Occurrence, error) {
	ms := t.UnixMilli()
	if ms < 0 {
		return model.Occurrence{}, fmt.Errorf("recur: occurrence %d before epoch", ms)
	}
	start := calendar.EpochMillis(ms)
	end := start + calendar.EpochMillis(cfg.Duration.Milliseconds())

	key, err := instanceKeyLayout.FormatMillis(start)
	if err != nil {
		return model.Occurrence{}, err
	}

	return model.Occurrence{
		UID:         cfg.UID,
		InstanceKey: key,
		Summary:     cfg.Summary,
		Start:       start,
		End:         end,
	}, nil
}
