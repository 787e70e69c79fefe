package output

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/goccy/go-json"
	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/shopspring/decimal"
)

// HTMLFormatter produces a standalone HTML report with the row table and a balance chart.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr":     FormatCurrency,
	"compact":  FormatCompactCurrency,
	"rate":     FormatRate,
	"nullprob": func(v decimal.NullDecimal) string { return FormatNullable(v, FormatProbability) },
	"nullcurr": func(v decimal.NullDecimal) string { return FormatNullable(v, FormatCurrency) },
	"nullrate": func(v decimal.NullDecimal) string { return FormatNullable(v, fixed2) },
	"isActive": func(idx *int, i int) bool { return idx != nil && *idx == i },
	"json": func(v interface{}) template.JS {
		b, _ := json.Marshal(v)
		return template.JS(b)
	},
}).Parse(htmlTemplateSource))

type chartPoint struct {
	Age     int     `json:"age"`
	Balance float64 `json:"balance"`
	Real    float64 `json:"real"`
}

func (h HTMLFormatter) Format(result *domain.ProjectionResult) ([]byte, error) {
	var buf bytes.Buffer

	points := make([]chartPoint, 0, len(result.Rows))
	for _, r := range result.Rows {
		points = append(points, chartPoint{
			Age:     r.Age,
			Balance: r.RunningBalance.Round(2).InexactFloat64(),
			Real:    r.RunningBalanceInflationAdjusted.Round(2).InexactFloat64(),
		})
	}

	data := struct {
		*domain.ProjectionResult
		Assumptions []string
		Highlights  Highlights
		BreakEven   string
		Chart       []chartPoint
	}{result, GenerateAssumptions(result), AnalyzeProjection(result), breakEvenLine(result.Summary), points}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
