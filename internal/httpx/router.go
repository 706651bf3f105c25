package httpx

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/expahub/exchange-funnel/internal/dashboard"
	"github.com/expahub/exchange-funnel/internal/fetch"
	"github.com/expahub/exchange-funnel/internal/funnel"
	"github.com/expahub/exchange-funnel/internal/models"
	"github.com/expahub/exchange-funnel/internal/params"
	"github.com/expahub/exchange-funnel/internal/utils"
)

func NewRouter(log *slog.Logger, svc *dashboard.Service) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Get("/api/v1/funnel", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		// The pipeline must not run at all without a credential and a
		// valid entity id.
		token := strings.TrimSpace(q.Get("access_token"))
		if token == "" {
			writeError(w, 400, "invalid_input", "access_token is required", nil)
			return
		}
		fs, stages, err := parseFilters(q.Get("exchange_type"), q.Get("programmes"),
			q.Get("entity_id"), q.Get("start_date"), q.Get("end_date"), q.Get("stages"))
		if err != nil {
			writeError(w, 400, "invalid_input", err.Error(), nil)
			return
		}

		res, err := svc.Render(r.Context(), token, fs, stages)
		if err != nil {
			writePipelineError(w, err)
			return
		}
		writeJSON(w, 200, res)
	})

	return mux
}

func parseFilters(exchangeType, programmes, entityID, startDate, endDate, stages string) (models.FilterSet, []string, error) {
	et := models.Outgoing
	if exchangeType != "" {
		parsed, err := params.ParseExchangeType(exchangeType)
		if err != nil {
			return models.FilterSet{}, nil, err
		}
		et = parsed
	}

	id, err := params.ParseEntityID(entityID)
	if err != nil {
		return models.FilterSet{}, nil, err
	}

	progs := models.AllProgrammes
	if programmes != "" {
		progs = nil
		for _, name := range strings.Split(programmes, ",") {
			progs = append(progs, models.Programme(strings.TrimSpace(name)))
		}
	}

	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return models.FilterSet{}, nil, &params.InputError{Field: "start_date", Reason: "must be YYYY-MM-DD"}
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return models.FilterSet{}, nil, &params.InputError{Field: "end_date", Reason: "must be YYYY-MM-DD"}
	}

	selected := models.StageSequence
	if stages != "" {
		selected = nil
		for _, s := range strings.Split(stages, ",") {
			selected = append(selected, strings.TrimSpace(s))
		}
	}

	return models.FilterSet{
		ExchangeType: et,
		Programmes:   progs,
		EntityID:     id,
		StartDate:    start,
		EndDate:      end,
		Interval:     "month",
	}, selected, nil
}

// writePipelineError maps the pipeline error taxonomy onto HTTP statuses.
// Upstream failures carry the verbatim response body for diagnosis.
func writePipelineError(w http.ResponseWriter, err error) {
	var inputErr *params.InputError
	var transportErr *fetch.TransportError
	var schemaErr *fetch.SchemaError
	switch {
	case errors.As(err, &inputErr):
		writeError(w, 400, "invalid_input", inputErr.Error(), nil)
	case errors.As(err, &transportErr):
		writeError(w, 502, "upstream_error", "analytics API request failed", transportErr.Body)
	case errors.As(err, &schemaErr):
		writeError(w, 502, "upstream_schema_error", "analytics API response has no 'analytics' key", schemaErr.Body)
	case errors.Is(err, funnel.ErrNoData):
		writeError(w, 404, "no_data", "no data returned from the API for the selected filters", nil)
	default:
		writeError(w, 502, "upstream_error", err.Error(), nil)
	}
}

type errorBody struct {
	Error        string          `json:"error"`
	Message      string          `json:"message"`
	UpstreamBody json.RawMessage `json:"upstream_body,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string, upstream []byte) {
	body := errorBody{Error: code, Message: msg}
	if len(upstream) > 0 {
		if json.Valid(upstream) {
			body.UpstreamBody = upstream
		} else {
			quoted, _ := json.Marshal(string(upstream))
			body.UpstreamBody = quoted
		}
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
