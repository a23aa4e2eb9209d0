package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datetime/internal/calendar"
)

// 2009-02-13T23:31:30Z, a Friday.
const friday = calendar.EpochMillis(1234567890000)

func TestExpandDaily(t *testing.T) {
	t.Parallel()

	res, err := Expand(Config{
		Rule:     "FREQ=DAILY;COUNT=3",
		Start:    friday,
		Duration: time.Hour,
		UID:      "daily@example",
		Summary:  "standup",
	})
	require.NoError(t, err)
	require.False(t, res.Truncated)
	require.Len(t, res.Occurrences, 3)

	day := calendar.EpochMillis(86_400_000)
	for i, occ := range res.Occurrences {
		assert.Equal(t, friday+calendar.EpochMillis(i)*day, occ.Start)
		assert.Equal(t, occ.Start+3_600_000, occ.End)
		assert.Equal(t, "daily@example", occ.UID)
		assert.Equal(t, "standup", occ.Summary)
	}
	assert.Equal(t, "20090213T233130Z", res.Occurrences[0].InstanceKey)
	assert.Equal(t, "20090215T233130Z", res.Occurrences[2].InstanceKey)
}

func TestExpandWeeklyByDay(t *testing.T) {
	t.Parallel()

	res, err := Expand(Config{Rule: "FREQ=WEEKLY;BYDAY=MO;COUNT=2", Start: friday})
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 2)

	for _, occ := range res.Occurrences {
		assert.Equal(t, 1, occ.Record().DayOfWeek())
		assert.Equal(t, occ.Start, occ.End)
	}
	assert.Equal(t, "20090216T233130Z", res.Occurrences[0].InstanceKey)
	assert.Equal(t, "20090223T233130Z", res.Occurrences[1].InstanceKey)
}

func TestExpandCap(t *testing.T) {
	t.Parallel()

	res, err := Expand(Config{Rule: "FREQ=HOURLY", Start: friday, MaxOccurrences: 5})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Len(t, res.Occurrences, 5)
	assert.Equal(t, friday+4*3_600_000, res.Occurrences[4].Start)
}

func TestExpandErrors(t *testing.T) {
	t.Parallel()

	_, err := Expand(Config{})
	assert.Error(t, err)

	_, err = Expand(Config{Rule: "FREQ=SOMETIMES", Start: friday})
	assert.Error(t, err)

	_, err = Expand(Config{Rule: "FREQ=DAILY;COUNT=1", Start: friday, Duration: -time.Second})
	assert.Error(t, err)
}
