// Package analytics summarises a snapshot of audience queries.
package analytics

import (
	"math"

	"github.com/tejzpr/audience-inbox/internal/inbox"
)

// Compute builds the dashboard summary for queries. It reads its input only
// and keeps no reference to it.
//
// Every priority, tag and channel is present in the returned maps, zero when
// unused. Averages and rates are rounded half away from zero and are 0 when
// there is nothing to divide by.
func Compute(queries []inbox.Query) inbox.Analytics {
	out := inbox.Analytics{
		TotalQueries:      len(queries),
		QueriesByPriority: make(map[inbox.Priority]int, len(inbox.AllPriorities)),
		QueriesByTag:      make(map[inbox.Tag]int, len(inbox.AllTags)),
		QueriesByChannel:  make(map[inbox.Channel]int, len(inbox.AllChannels)),
	}
	for _, p := range inbox.AllPriorities {
		out.QueriesByPriority[p] = 0
	}
	for _, t := range inbox.AllTags {
		out.QueriesByTag[t] = 0
	}
	for _, c := range inbox.AllChannels {
		out.QueriesByChannel[c] = 0
	}

	var (
		responseSum   int
		responseCount int
		doneCount     int
	)
	for _, q := range queries {
		out.QueriesByPriority[q.Priority]++
		for _, t := range q.Tags {
			out.QueriesByTag[t]++
		}
		out.QueriesByChannel[q.Channel]++

		if q.ResponseTime != nil {
			responseSum += *q.ResponseTime
			responseCount++
		}
		if q.Status.Done() {
			doneCount++
		}
	}

	if responseCount > 0 {
		out.AverageResponseTime = int(math.Round(float64(responseSum) / float64(responseCount)))
	}
	if out.TotalQueries > 0 {
		out.ResolutionRate = int(math.Round(float64(doneCount) / float64(out.TotalQueries) * 100))
	}
	return out
}
