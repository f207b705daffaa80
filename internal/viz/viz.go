// Package viz renders calculation results as PNG charts, one small bundle
// per scenario. Rendering is best effort: the caller treats failures as
// non-fatal and an empty bundle as nothing to chart.
package viz

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/paisewise/paisewise/internal/calc"
	"github.com/paisewise/paisewise/internal/scenario"
)

// Renderer builds chart bundles from calculation results.
type Renderer struct{}

// NewRenderer returns a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render returns named PNG charts for the scenario, or an empty map when the
// result has nothing chartable.
func (r *Renderer) Render(t scenario.Type, result calc.Result) (map[string][]byte, error) {
	if len(result) == 0 {
		return nil, nil
	}

	charts := map[string][]byte{}
	add := func(name string, png []byte, err error) error {
		if err != nil {
			return fmt.Errorf("render %s chart: %w", name, err)
		}
		if png != nil {
			charts[name] = png
		}
		return nil
	}

	var err error
	switch t {
	case scenario.Retirement:
		png, renderErr := r.projectionLine(result, "yearly_projection", "closing_balance", "Projected Corpus")
		err = add("growth", png, renderErr)
	case scenario.Investment:
		png, renderErr := r.projectionLine(result, "yearly_projection", "value", "Portfolio Value")
		if err = add("returns", png, renderErr); err == nil {
			png, renderErr = r.pieFrom(nested(result, "portfolio_metrics", "recommended_allocation"), "Recommended Allocation")
			err = add("allocation", png, renderErr)
		}
	case scenario.Budgeting:
		png, renderErr := r.pieFrom(asMap(result["expense_breakdown"]), "Expense Breakdown")
		if err = add("expenses", png, renderErr); err == nil {
			png, renderErr = r.barFrom(map[string]any{
				"income":   pick(result, "income_analysis", "annual_income"),
				"expenses": pick(result, "income_analysis", "total_expenses"),
				"savings":  pick(result, "income_analysis", "savings_potential"),
			}, "Annual Cash Flow")
			err = add("cash_flow", png, renderErr)
		}
	case scenario.Insurance:
		png, renderErr := r.barFrom(map[string]any{
			"life needs":  pick(result, "life_insurance", "total_needs"),
			"life gap":    pick(result, "life_insurance", "coverage_gap"),
			"ci coverage": pick(result, "critical_illness", "recommended_coverage"),
		}, "Coverage Analysis")
		if err = add("coverage", png, renderErr); err == nil {
			png, renderErr = r.pieFrom(asMap(result["premium_estimates"]), "Premium Estimates")
			err = add("premiums", png, renderErr)
		}
	case scenario.RealEstate:
		png, renderErr := r.projectionLine(result, "equity_buildup", "equity", "Equity Buildup")
		if err = add("equity", png, renderErr); err == nil {
			png, renderErr = r.pieFrom(asMap(result["monthly_costs"]), "Monthly Costs")
			err = add("costs", png, renderErr)
		}
	case scenario.TaxPlanning, scenario.TaxCalculation:
		png, renderErr := r.barFrom(map[string]any{
			"old regime": pick(result, "old_regime", "total_tax"),
			"new regime": pick(result, "new_regime", "total_tax"),
		}, "Tax by Regime")
		err = add("regimes", png, renderErr)
	case scenario.Debt:
		png, renderErr := r.barFrom(map[string]any{
			"principal": pick(result, "debt_summary", "total_debt"),
			"interest":  pick(result, "payoff_analysis", "total_interest"),
		}, "Cost of Debt")
		err = add("payoff", png, renderErr)
	case scenario.EstatePlanning:
		png, renderErr := r.pieFrom(asMap(result["asset_breakdown"]), "Asset Breakdown")
		err = add("assets", png, renderErr)
	}
	if err != nil {
		return nil, err
	}
	return charts, nil
}

// projectionLine draws one series from a projection table, keyed by period.
func (r *Renderer) projectionLine(result calc.Result, rowsKey, valueKey, title string) ([]byte, error) {
	rows, ok := result[rowsKey].([]calc.Row)
	if !ok || len(rows) < 2 {
		return nil, nil
	}
	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, row := range rows {
		xs[i] = row["year"]
		ys[i] = row[valueKey]
	}

	graph := chart.Chart{
		Title: title,
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: ys},
		},
	}
	return renderPNG(func(buf *bytes.Buffer) error {
		return graph.Render(chart.PNG, buf)
	})
}

func (r *Renderer) pieFrom(m map[string]any, title string) ([]byte, error) {
	values := chartValues(m)
	if len(values) == 0 {
		return nil, nil
	}
	graph := chart.PieChart{Title: title, Values: values}
	return renderPNG(func(buf *bytes.Buffer) error {
		return graph.Render(chart.PNG, buf)
	})
}

func (r *Renderer) barFrom(m map[string]any, title string) ([]byte, error) {
	values := chartValues(m)
	if len(values) == 0 {
		return nil, nil
	}
	graph := chart.BarChart{Title: title, Bars: values}
	return renderPNG(func(buf *bytes.Buffer) error {
		return graph.Render(chart.PNG, buf)
	})
}

func renderPNG(render func(*bytes.Buffer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// chartValues converts a name→number map into sorted chart values, skipping
// non-numeric and non-positive entries.
func chartValues(m map[string]any) []chart.Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var values []chart.Value
	for _, k := range keys {
		if v, ok := m[k].(float64); ok && v > 0 {
			values = append(values, chart.Value{Label: k, Value: v})
		}
	}
	return values
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func nested(result calc.Result, outer, inner string) map[string]any {
	return asMap(asMap(result[outer])[inner])
}

func pick(result calc.Result, outer, key string) any {
	return asMap(result[outer])[key]
}
