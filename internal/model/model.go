package model

import "datetime/internal/calendar"

// Occurrence is a single concrete instant produced by recurrence expansion
// (or supplied directly), shared by the ICS export and the HTTP API.
type Occurrence struct {
	// UID identifies the series; InstanceKey identifies this instance within
	// it and is derived from Start.
	UID         string
	InstanceKey string

	Summary string

	// Start / End are epoch milliseconds; End equals Start for instants
	// without a duration.
	Start calendar.EpochMillis
	End   calendar.EpochMillis
}

// Record decomposes the occurrence start.
func (o Occurrence) Record() calendar.Record {
	return calendar.Decompose(o.Start)
}
