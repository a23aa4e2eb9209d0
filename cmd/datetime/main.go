package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"datetime/internal/clock"
	"datetime/internal/config"
	"datetime/internal/ics"
	appLog "datetime/internal/log"
	"datetime/internal/recur"
	"datetime/internal/schedule"
	"datetime/internal/strftime"
	"datetime/internal/web"
)

// flagConfig holds CLI flag values; non-empty values override the config file.
type flagConfig struct {
	configPath string
	listen     string
	logLevel   string
	epoch      string
	format     string
	layout     string
	rrule      string
	count      int
	ics        bool
	every      string
	tick       bool
	serve      bool
}

func main() {
	flags, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	if err := run(flags, os.Stdout); err != nil {
		appLog.Error("datetime failed", err)
		os.Exit(1)
	}
}

func run(flags flagConfig, out io.Writer) error {
	conf, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", flags.configPath, err)
	}

	// CLI overrides.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Debug("effective config",
		"listen", conf.Listen,
		"template", conf.Template,
		"layouts", len(conf.Layouts),
		"schedule", conf.Schedule,
		"max_occurrences", conf.MaxOccurrences,
	)

	src, err := nowSource(flags.epoch)
	if err != nil {
		return err
	}

	layout, err := pickLayout(conf, flags)
	if err != nil {
		return err
	}

	switch {
	case flags.serve:
		ctx, cancel := signalContext()
		defer cancel()
		return web.StartServer(ctx, conf, src)

	case flags.every != "" || flags.tick:
		spec := flags.every
		if spec == "" {
			spec = conf.Schedule
		}
		ctx, cancel := signalContext()
		defer cancel()
		t := &schedule.Ticker{Spec: spec, Layout: layout, Source: src, Out: out}
		return t.Run(ctx)

	case flags.rrule != "":
		return runRecur(conf, flags, layout, src, out)
	}

	text, err := layout.FormatMillis(src.NowMillis())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, text)
	return err
}

// runRecur prints one rendered line per occurrence, or the whole series as
// an iCalendar document with -ics.
func runRecur(conf *config.Config, flags flagConfig, layout *strftime.Layout, src clock.Source, out io.Writer) error {
	now := src.NowMillis()
	cfg := recur.Config{
		Rule:           flags.rrule,
		Start:          now,
		UID:            "datetime",
		MaxOccurrences: conf.MaxOccurrences,
	}
	if flags.count > 0 && flags.count < cfg.MaxOccurrences {
		cfg.MaxOccurrences = flags.count
	}

	res, err := recur.Expand(cfg)
	if err != nil {
		return err
	}

	if flags.ics {
		body, err := ics.Export(res.Occurrences, now)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, body)
		return err
	}

	for _, occ := range res.Occurrences {
		text, err := layout.FormatMillis(occ.Start)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, text); err != nil {
			return err
		}
	}
	if res.Truncated {
		appLog.Warn("occurrence list truncated", "cap", cfg.MaxOccurrences)
	}
	return nil
}

// nowSource returns a fixed source for a literal -epoch value and the wall
// clock otherwise.
func nowSource(epoch string) (clock.Source, error) {
	if epoch == "" {
		return clock.NewSystem(), nil
	}
	ms, err := strconv.ParseUint(epoch, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid -epoch %q: %w", epoch, err)
	}
	return clock.Fixed(ms), nil
}

// pickLayout resolves -layout, then -format, then the configured template.
func pickLayout(conf *config.Config, flags flagConfig) (*strftime.Layout, error) {
	if flags.layout != "" {
		l, ok := conf.CompiledLayouts()[flags.layout]
		if !ok {
			return nil, fmt.Errorf("unknown layout %q", flags.layout)
		}
		return l, nil
	}
	tpl := flags.format
	if tpl == "" {
		tpl = conf.Template
	}
	return strftime.Compile(tpl)
}

// signalContext is canceled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func parseFlags(args []string) (flagConfig, error) {
	var cfg flagConfig

	fs := flag.NewFlagSet("datetime", flag.ContinueOnError)
	fs.StringVar(&cfg.configPath, "config", defaultConfigPath(), "Path to config file")
	fs.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	fs.StringVar(&cfg.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config if set)")
	fs.StringVar(&cfg.epoch, "epoch", "", "Milliseconds since 1970-01-01T00:00:00Z to render instead of now")
	fs.StringVar(&cfg.format, "format", "", "strftime template (default: config template)")
	fs.StringVar(&cfg.layout, "layout", "", "Named layout: iso8601, ctime, rfc822, rfc822z, rfc3339 or a configured name")
	fs.StringVar(&cfg.rrule, "rrule", "", "RRULE to expand from the epoch value, e.g. FREQ=DAILY;COUNT=3")
	fs.IntVar(&cfg.count, "count", 0, "Cap on RRULE occurrences (default: config max_occurrences)")
	fs.BoolVar(&cfg.ics, "ics", false, "Write RRULE occurrences as an iCalendar document")
	fs.StringVar(&cfg.every, "every", "", "Cron spec; render repeatedly until interrupted")
	fs.BoolVar(&cfg.tick, "tick", false, "Render repeatedly on the configured schedule")
	fs.BoolVar(&cfg.serve, "serve", false, "Serve the HTTP API")

	err := fs.Parse(args)
	return cfg, err
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "datetime", "config.yaml")
	}
	return "./datetime.yaml"
}
