package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"

	"datetime/internal/calendar"
	"datetime/internal/clock"
	"datetime/internal/strftime"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

var (
	mu       sync.Mutex
	logger   = stdlog.New(os.Stderr, "", 0)
	minLevel = LevelInfo
	now      = clock.Source(clock.NewSystem())
)

// Timestamps carry milliseconds, which the layout below has no field for.
var stampLayout = strftime.MustCompile("%Y-%m-%dT%H:%M:%S")

// ParseLevel maps a config string ("debug", "info", "warn", "error") to a
// Level. Unknown names fall back to INFO.
func ParseLevel(s string) Level {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelRank[l]; ok {
		return l
	}
	return LevelInfo
}

func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

// SetOutput redirects log lines, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = stdlog.New(w, "", 0)
}

// SetClock replaces the timestamp source.
func SetClock(src clock.Source) {
	mu.Lock()
	defer mu.Unlock()
	now = src
}

func Debug(msg string, kv ...any) {
	logWithLevel(LevelDebug, msg, kv...)
}

func Info(msg string, kv ...any) {
	logWithLevel(LevelInfo, msg, kv...)
}

func Warn(msg string, kv ...any) {
	logWithLevel(LevelWarn, msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	logWithLevel(LevelError, msg, extended...)
}

func logWithLevel(level Level, msg string, kv ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled(level) {
		return
	}

	// 2009-02-13T23:31:30.543Z [LEVEL] msg key=value ...
	var b strings.Builder
	b.WriteString(timestamp(now.NowMillis()))
	b.WriteString(" [")
	b.WriteString(string(level))
	b.WriteString("] ")
	b.WriteString(msg)
	writeKVs(&b, kv...)

	logger.Println(b.String())
}

func timestamp(ms calendar.EpochMillis) string {
	s, err := stampLayout.FormatMillis(ms)
	if err != nil {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%s.%03dZ", s, ms%1000)
}

func enabled(level Level) bool {
	rank, ok := levelRank[level]
	if !ok {
		return true
	}
	return rank >= levelRank[minLevel]
}

// writeKVs appends " key=value" for each pair. Non-string keys are skipped
// and a trailing odd value is ignored.
func writeKVs(b *strings.Builder, kv ...any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		b.WriteString(" ")
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(fmt.Sprint(kv[i+1]))
	}
}
