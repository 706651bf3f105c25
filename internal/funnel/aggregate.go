package funnel

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/expahub/exchange-funnel/internal/models"
)

// ErrNoData signals that no rows survived filtering. It is a distinct
// user-visible state, not a transport or schema failure, and must be raised
// instead of producing a degenerate pivot.
var ErrNoData = errors.New("no data returned for the selected filters")

// signUpLabel never appears under the current six-key stage set, but rows
// carrying it are dropped if the upstream ever emits them.
const signUpLabel = "Sign Up"

// FilterStages keeps rows whose stage is in selectedStages, dropping any
// Sign Up rows regardless of selection. Row order is preserved.
func FilterStages(table models.FunnelTable, selectedStages []string) models.FunnelTable {
	selected := lo.SliceToMap(selectedStages, func(s string) (string, struct{}) {
		return s, struct{}{}
	})
	return lo.Filter(table, func(r models.FunnelRow, _ int) bool {
		_, ok := selected[r.Stage]
		return ok && r.Stage != signUpLabel
	})
}

// Aggregate pivots the table into per-date-per-stage counts, computes the
// conversion ratio for each adjacent pair of the fixed stage sequence, and
// derives the headline metrics. Duplicate (date, stage) rows sum into one
// pivot cell. Every ratio is guarded: a zero denominator yields 0.
func Aggregate(table models.FunnelTable, selectedStages []string) (models.PivotTable, []models.FunnelStep, models.Metrics, error) {
	kept := FilterStages(table, selectedStages)
	if len(kept) == 0 {
		return nil, nil, models.Metrics{}, ErrNoData
	}

	pivot := make(models.PivotTable)
	for _, r := range kept {
		byStage, ok := pivot[r.Date]
		if !ok {
			byStage = make(map[string]int)
			pivot[r.Date] = byStage
		}
		byStage[r.Stage] += r.Count
	}

	steps := make([]models.FunnelStep, 0, len(models.StageSequence)-1)
	for i := 0; i < len(models.StageSequence)-1; i++ {
		from, to := models.StageSequence[i], models.StageSequence[i+1]
		fromTotal := pivot.Column(from)
		toTotal := pivot.Column(to)
		steps = append(steps, models.FunnelStep{
			From:           from,
			To:             to,
			FromTotal:      fromTotal,
			ToTotal:        toTotal,
			ConversionRate: safeRatio(toTotal, fromTotal),
		})
	}

	applied := pivot.Column(models.StageApplied)
	realized := pivot.Column(models.StageRealized)
	m := models.Metrics{
		TotalApplied:    applied,
		TotalApproved:   pivot.Column(models.StageApproved),
		TotalRealized:   realized,
		RealizationRate: safeRatio(realized, applied),
	}
	return pivot, steps, m, nil
}

func safeRatio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}
