package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()

	args = append([]string{"-config", filepath.Join(t.TempDir(), "config.yaml")}, args...)
	flags, err := parseFlags(args)
	require.NoError(t, err)

	var out bytes.Buffer
	err = run(flags, &out)
	return out.String(), err
}

func TestRunDefaultTemplate(t *testing.T) {
	out, err := runArgs(t, "-epoch", "1234567890543")
	require.NoError(t, err)
	assert.Equal(t, "2009-02-13 23:31:30\n", out)
}

func TestRunFormatAndLayout(t *testing.T) {
	out, err := runArgs(t, "-epoch", "433166421023", "-format", "%A %j %V")
	require.NoError(t, err)
	assert.Equal(t, "Friday 266 38\n", out)

	out, err = runArgs(t, "-epoch", "1234567890543", "-layout", "ctime")
	require.NoError(t, err)
	assert.Equal(t, "Fri Feb 13 23:31:30 2009\n", out)
}

func TestRunErrors(t *testing.T) {
	_, err := runArgs(t, "-epoch", "-1")
	assert.Error(t, err)

	_, err = runArgs(t, "-epoch", "0", "-format", "%Q")
	assert.Error(t, err)

	_, err = runArgs(t, "-epoch", "0", "-format", "x%")
	assert.Error(t, err)

	_, err = runArgs(t, "-layout", "missing")
	assert.Error(t, err)
}

func TestRunRecur(t *testing.T) {
	out, err := runArgs(t, "-epoch", "1234567890000", "-rrule", "FREQ=DAILY", "-count", "3", "-format", "%F")
	require.NoError(t, err)
	assert.Equal(t, "2009-02-13\n2009-02-14\n2009-02-15\n", out)
}

func TestRunRecurICS(t *testing.T) {
	out, err := runArgs(t, "-epoch", "1234567890000", "-rrule", "FREQ=DAILY;COUNT=2", "-ics")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "DTSTART:20090214T233130Z")
}

func TestParseFlagsRejectsUnknown(t *testing.T) {
	_, err := parseFlags([]string{"-bogus"})
	assert.Error(t, err)
}
