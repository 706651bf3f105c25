// Package funnel turns the upstream analytics payload into flat rows and
// aggregates them into the pivot, conversion steps and headline metrics the
// presentation layer consumes.
package funnel

import (
	"time"

	"github.com/expahub/exchange-funnel/internal/fetch"
	"github.com/expahub/exchange-funnel/internal/models"
)

// stageKeys maps the upstream protocol keys to stage labels, in funnel order.
var stageKeys = []struct {
	key   string
	label string
}{
	{"total_applications", models.StageApplied},
	{"total_an_accepted", models.StageAccepted},
	{"total_approvals", models.StageApproved},
	{"total_realized", models.StageRealized},
	{"total_finished", models.StageFinished},
	{"total_completed", models.StageCompleted},
}

// Normalize flattens the analytics mapping into a FunnelTable. Sparse data is
// tolerated at every level: a missing stage key, sub-object or buckets array
// yields zero rows for that stage, never an error. Rows come out grouped by
// stage in protocol-key order, buckets in payload order.
func Normalize(a fetch.Analytics) models.FunnelTable {
	var rows models.FunnelTable
	for _, sk := range stageKeys {
		doc, ok := a[sk.key]
		if !ok {
			continue
		}
		// Signup counts live under "people"; every application stage
		// lives under "applications". No signup key is in the current
		// set, but the upstream protocol still distinguishes the two.
		list := doc.Applications
		if sk.key == "total_signup" {
			list = doc.People
		}
		if list == nil || list.Buckets == nil {
			continue
		}
		for _, b := range list.Buckets {
			d, ok := parseBucketTime(b.KeyAsString)
			if !ok {
				continue
			}
			rows = append(rows, models.FunnelRow{Date: d, Stage: sk.label, Count: b.DocCount})
		}
	}
	return rows
}

func parseBucketTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
