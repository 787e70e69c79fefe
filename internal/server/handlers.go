package server

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rpgo/policy-projector/internal/calculation"
	"github.com/rpgo/policy-projector/internal/config"
	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/rpgo/policy-projector/internal/output"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

var routes = []string{
	"/v1/projections",
	"/v1/brackets",
	"/v1/mortality",
	"/v1/market/percentile",
	"/healthz",
	"/metrics",
}

func routeLabel(path string) string {
	for _, r := range routes {
		if path == r {
			return r
		}
	}
	return "other"
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	want := fasthttp.MethodGet
	var h fasthttp.RequestHandler
	switch path {
	case "/v1/projections":
		want, h = fasthttp.MethodPost, s.handleProjection
	case "/v1/brackets":
		h = s.handleBrackets
	case "/v1/mortality":
		h = s.handleMortality
	case "/v1/market/percentile":
		h = s.handlePercentile
	case "/healthz":
		h = s.handleHealth
	case "/metrics":
		h = s.metricsHandler
	default:
		writeError(ctx, fasthttp.StatusNotFound, "no route for "+path)
		return
	}
	if method != want {
		ctx.Response.Header.Set("Allow", want)
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "method "+method+" not allowed")
		return
	}
	h(ctx)
}

// handleProjection runs the engine on a JSON assumption set. ?format= selects any registered
// output formatter; the default is the JSON result document.
func (s *Server) handleProjection(ctx *fasthttp.RequestCtx) {
	var in config.AssumptionInput
	if err := json.Unmarshal(ctx.PostBody(), &in); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.parser.ValidateAssumptions(&in); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	var formatter output.Formatter = output.JSONFormatter{}
	if name := string(ctx.QueryArgs().Peek("format")); name != "" {
		f, err := output.Lookup(name)
		if err != nil {
			writeError(ctx, fasthttp.StatusBadRequest, err.Error())
			return
		}
		formatter = f
	}

	result, err := s.engine.Project(in.ToAssumptionSet(), s.store.Current())
	if err != nil {
		s.metrics.projections.WithLabelValues("rejected").Inc()
		status := fasthttp.StatusInternalServerError
		if errors.Is(err, calculation.ErrMissingRequiredInput) {
			status = fasthttp.StatusBadRequest
		}
		writeError(ctx, status, err.Error())
		return
	}
	s.metrics.projections.WithLabelValues("ok").Inc()
	s.metrics.projectionRows.Observe(float64(len(result.Rows)))

	body, err := formatter.Format(result)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "format: "+err.Error())
		return
	}
	ctx.SetContentType(contentType(formatter))
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(body)
}

func contentType(f output.Formatter) string {
	switch output.Extension(f) {
	case "json":
		return "application/json"
	case "csv":
		return "text/csv; charset=utf-8"
	case "html":
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func queryInt(ctx *fasthttp.RequestCtx, name string) (int, error) {
	raw := string(ctx.QueryArgs().Peek(name))
	if raw == "" {
		return 0, errors.New(name + " is required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}

func querySex(ctx *fasthttp.RequestCtx) (domain.Sex, error) {
	sex := domain.ParseSex(string(ctx.QueryArgs().Peek("sex")))
	if !sex.Valid() {
		return "", errors.New("sex must be male or female")
	}
	return sex, nil
}

func queryDecimal(ctx *fasthttp.RequestCtx, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(string(ctx.QueryArgs().Peek(name)))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errors.New(name + " must be a number")
	}
	return &d, nil
}

// handleBrackets resolves the rate brackets for ?age=&sex=, selecting one when ?policy_size=
// or ?monthly_budget= is supplied.
func (s *Server) handleBrackets(ctx *fasthttp.RequestCtx) {
	age, err := queryInt(ctx, "age")
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	sex, err := querySex(ctx)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	policySize, err := queryDecimal(ctx, "policy_size")
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	budget, err := queryDecimal(ctx, "monthly_budget")
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	brackets, ok := calculation.ResolveBrackets(s.store.Current().Rates, age, sex)
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, "no rate table row for age "+strconv.Itoa(age))
		return
	}
	view := domain.RateTableView{Age: age, Sex: sex, Brackets: brackets}
	if idx, selected := calculation.SelectActiveBracket(brackets, policySize, budget); selected {
		view.ActiveBracketIndex = &idx
	}
	writeJSON(ctx, fasthttp.StatusOK, view)
}

type mortalityResponse struct {
	Sex           domain.Sex            `json:"sex"`
	Age           int                   `json:"age"`
	Probabilities []decimal.NullDecimal `json:"probabilities"`
}

// handleMortality returns the death probabilities for 0..?horizon= years ahead.
func (s *Server) handleMortality(ctx *fasthttp.RequestCtx) {
	age, err := queryInt(ctx, "age")
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	sex, err := querySex(ctx)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	horizon, err := queryInt(ctx, "horizon")
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	curve := calculation.MortalityCurve(s.store.Current().Mortality, sex, age, horizon)
	if curve == nil {
		writeError(ctx, fasthttp.StatusNotFound, "no mortality data for age "+strconv.Itoa(age))
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, mortalityResponse{Sex: sex, Age: age, Probabilities: curve})
}

type percentileResponse struct {
	Horizon        int                 `json:"horizon"`
	Percentile     float64             `json:"percentile"`
	Growth         decimal.Decimal     `json:"growth"`
	AnnualizedRate decimal.NullDecimal `json:"annualized_rate"`
}

// handlePercentile returns the historical growth multiple at ?percentile= for ?horizon= years.
func (s *Server) handlePercentile(ctx *fasthttp.RequestCtx) {
	horizon, err := queryInt(ctx, "horizon")
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	percentile, err := strconv.ParseFloat(string(ctx.QueryArgs().Peek("percentile")), 64)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "percentile must be a number")
		return
	}

	growth, ok := calculation.PercentileGrowth(s.store.Current().MarketHistory, horizon, percentile)
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, "no market history for a "+strconv.Itoa(horizon)+"-year horizon")
		return
	}
	resp := percentileResponse{Horizon: horizon, Percentile: percentile, Growth: growth}
	if rate, ok := calculation.AnnualizedRate(growth, horizon); ok {
		resp.AnnualizedRate = decimal.NullDecimal{Decimal: rate, Valid: true}
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

type healthResponse struct {
	Status        string `json:"status"`
	LoadedAt      string `json:"loaded_at,omitempty"`
	RateAges      int    `json:"rate_ages"`
	MortalitySexs int    `json:"mortality_sexes"`
	MarketEntries int    `json:"market_entries"`
	EngineVersion string `json:"engine_version"`
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	ref := s.store.Current()
	resp := healthResponse{
		Status:        "ok",
		RateAges:      len(ref.Rates),
		MortalitySexs: len(ref.Mortality),
		MarketEntries: len(ref.MarketHistory),
		EngineVersion: s.engine.Version,
	}
	status := fasthttp.StatusOK
	if !s.store.Ready() {
		resp.Status = "loading"
		status = fasthttp.StatusServiceUnavailable
	} else {
		resp.LoadedAt = s.store.LoadedAt().UTC().Format("2006-01-02T15:04:05Z")
	}
	writeJSON(ctx, status, resp)
}
