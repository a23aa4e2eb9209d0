// Package schedule renders the current time on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"datetime/internal/calendar"
	"datetime/internal/clock"
	appLog "datetime/internal/log"
	"datetime/internal/strftime"
)

// Next returns the first fire time of the standard five-field cron spec
// strictly after from. Schedules are evaluated in UTC.
func Next(spec string, from calendar.EpochMillis) (calendar.EpochMillis, error) {
	if !strings.HasPrefix(spec, "TZ=") && !strings.HasPrefix(spec, "CRON_TZ=") {
		spec = "CRON_TZ=UTC " + spec
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return 0, fmt.Errorf("schedule: parse %q: %w", spec, err)
	}
	next := sched.Next(time.UnixMilli(int64(from)).UTC())
	if next.IsZero() {
		return 0, fmt.Errorf("schedule: %q never fires", spec)
	}
	return calendar.EpochMillis(next.UnixMilli()), nil
}

// Ticker writes one rendered line to Out each time Spec fires.
type Ticker struct {
	Spec   string
	Layout *strftime.Layout
	Source clock.Source
	Out    io.Writer
}

// Tick renders a single line. Each tick reads the now-source exactly once.
func (t *Ticker) Tick() error {
	ms := t.Source.NowMillis()
	line, err := t.Layout.FormatMillis(ms)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(t.Out, line)
	return err
}

// Run schedules Tick on the cron spec and blocks until ctx is done. Running
// jobs are allowed to finish before Run returns.
func (t *Ticker) Run(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(t.Spec, func() {
		if err := t.Tick(); err != nil {
			appLog.Error("scheduled render failed", err, "spec", t.Spec, "template", t.Layout.String())
		}
	})
	if err != nil {
		return fmt.Errorf("schedule: parse %q: %w", t.Spec, err)
	}

	kv := []any{"spec", t.Spec, "template", t.Layout.String()}
	if next, err := Next(t.Spec, t.Source.NowMillis()); err == nil {
		if s, err := strftime.RFC3339Layout.FormatMillis(next); err == nil {
			kv = append(kv, "next", s)
		}
	}
	appLog.Info("schedule started", kv...)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("schedule stopped", "spec", t.Spec)
	return nil
}
