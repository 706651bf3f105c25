// Package dashboard runs one render cycle end to end: resolve filters, fetch,
// normalize, aggregate, and shape the presentation payload. Renders are
// stateless and independent; the response cache inside the fetcher is the
// only state shared between them.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/expahub/exchange-funnel/internal/fetch"
	"github.com/expahub/exchange-funnel/internal/funnel"
	"github.com/expahub/exchange-funnel/internal/metrics"
	"github.com/expahub/exchange-funnel/internal/models"
	"github.com/expahub/exchange-funnel/internal/params"
)

// Point is one chart sample.
type Point struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Series is one chart line: all samples of a single stage, in payload order.
type Series struct {
	Stage  string  `json:"stage"`
	Points []Point `json:"points"`
}

// StepView is one row of the conversion table.
type StepView struct {
	Step          string `json:"step"`
	FromCount     int    `json:"from_count"`
	ToCount       int    `json:"to_count"`
	ConversionPct string `json:"conversion_pct"`
}

// MetricsView carries the headline scalars with the rate pre-formatted.
type MetricsView struct {
	TotalApplied    int    `json:"total_applied"`
	TotalApproved   int    `json:"total_approved"`
	TotalRealized   int    `json:"total_realized"`
	RealizationRate string `json:"realization_rate"`
}

// Result is the full presentation hand-off for one render.
type Result struct {
	Series  []Series           `json:"series"`
	Steps   []StepView         `json:"funnel_steps"`
	Metrics MetricsView        `json:"metrics"`
	Rows    models.FunnelTable `json:"rows"`
}

type Service struct {
	fetcher *fetch.Fetcher
	log     *slog.Logger
}

func NewService(f *fetch.Fetcher, log *slog.Logger) *Service {
	return &Service{fetcher: f, log: log}
}

// Render executes the linear pipeline for one request. Errors keep their
// taxonomy: params.InputError, fetch.TransportError, fetch.SchemaError and
// funnel.ErrNoData all pass through unwrapped for the transport layer to map.
func (s *Service) Render(ctx context.Context, token string, fs models.FilterSet, selectedStages []string) (*Result, error) {
	res, err := s.render(ctx, token, fs, selectedStages)
	metrics.Renders.WithLabelValues(renderResult(err)).Inc()
	return res, err
}

func (s *Service) render(ctx context.Context, token string, fs models.FilterSet, selectedStages []string) (*Result, error) {
	v, err := params.Resolve(fs)
	if err != nil {
		return nil, err
	}

	payload, err := s.fetcher.Fetch(ctx, token, v)
	if err != nil {
		return nil, err
	}

	table := funnel.Normalize(payload.Analytics)
	pivot, steps, m, err := funnel.Aggregate(table, selectedStages)
	if err != nil {
		return nil, err
	}

	kept := funnel.FilterStages(table, selectedStages)
	s.log.Info("render complete",
		slog.Int("rows", len(kept)),
		slog.Int("dates", len(pivot)),
		slog.Int("entity_id", fs.EntityID))

	return &Result{
		Series:  buildSeries(kept),
		Steps:   buildSteps(steps),
		Metrics: buildMetrics(m),
		Rows:    kept,
	}, nil
}

// buildSeries groups rows into one chart line per stage, emitted in funnel
// order so the legend is stable across renders.
func buildSeries(rows models.FunnelTable) []Series {
	byStage := lo.GroupBy(rows, func(r models.FunnelRow) string { return r.Stage })
	out := make([]Series, 0, len(byStage))
	for _, stage := range models.StageSequence {
		group, ok := byStage[stage]
		if !ok {
			continue
		}
		points := lo.Map(group, func(r models.FunnelRow, _ int) Point {
			return Point{Date: r.Date, Count: r.Count}
		})
		out = append(out, Series{Stage: stage, Points: points})
	}
	return out
}

func buildSteps(steps []models.FunnelStep) []StepView {
	return lo.Map(steps, func(st models.FunnelStep, _ int) StepView {
		return StepView{
			Step:          st.From + " → " + st.To,
			FromCount:     st.FromTotal,
			ToCount:       st.ToTotal,
			ConversionPct: funnel.FormatPercent(st.ConversionRate),
		}
	})
}

func buildMetrics(m models.Metrics) MetricsView {
	return MetricsView{
		TotalApplied:    m.TotalApplied,
		TotalApproved:   m.TotalApproved,
		TotalRealized:   m.TotalRealized,
		RealizationRate: funnel.FormatPercent(m.RealizationRate),
	}
}

func renderResult(err error) string {
	var inputErr *params.InputError
	var transportErr *fetch.TransportError
	var schemaErr *fetch.SchemaError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &inputErr):
		return "input_error"
	case errors.As(err, &transportErr):
		return "transport_error"
	case errors.As(err, &schemaErr):
		return "schema_error"
	case errors.Is(err, funnel.ErrNoData):
		return "no_data"
	}
	return "error"
}
