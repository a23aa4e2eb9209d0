package ics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datetime/internal/calendar"
	"datetime/internal/model"
	"datetime/internal/recur"
)

func TestExportRoundTrip(t *testing.T) {
	t.Parallel()

	res, err := recur.Expand(recur.Config{
		Rule:    "FREQ=DAILY;COUNT=3",
		Start:   1234567890000,
		UID:     "series@example",
		Summary: "check",
	})
	require.NoError(t, err)

	body, err := Export(res.Occurrences, 433166421023)
	require.NoError(t, err)

	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "DTSTART:20090213T233130Z")
	assert.Contains(t, body, "DTSTAMP:19830923T120021Z")
	assert.Contains(t, body, "UID:series@example-20090214T233130Z")
	assert.Contains(t, body, "SUMMARY:check")
	assert.Equal(t, 3, strings.Count(body, "BEGIN:VEVENT"))

	starts, err := ParseStarts(body)
	require.NoError(t, err)
	require.Len(t, starts, 3)
	for i, occ := range res.Occurrences {
		assert.Equal(t, occ.Start, starts[i])
	}
}

func TestExportRequiresUID(t *testing.T) {
	t.Parallel()

	_, err := Export([]model.Occurrence{{Start: 0}}, 0)
	assert.Error(t, err)
}

func TestExportEmpty(t *testing.T) {
	t.Parallel()

	body, err := Export(nil, 0)
	require.NoError(t, err)
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.NotContains(t, body, "BEGIN:VEVENT")

	starts, err := ParseStarts(body)
	require.NoError(t, err)
	assert.Empty(t, starts)
}

func TestParseStartsErrors(t *testing.T) {
	t.Parallel()

	_, err := ParseStarts("")
	assert.Error(t, err)
}

func TestParseStartsEpoch(t *testing.T) {
	t.Parallel()

	body, err := Export([]model.Occurrence{{UID: "epoch", Start: 0, End: 1000}}, 0)
	require.NoError(t, err)

	starts, err := ParseStarts(body)
	require.NoError(t, err)
	assert.Equal(t, []calendar.EpochMillis{0}, starts)
}
