package viz

import (
	"bytes"
	"testing"

	"github.com/paisewise/paisewise/internal/calc"
	"github.com/paisewise/paisewise/internal/scenario"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func assertPNG(t *testing.T, charts map[string][]byte, name string) {
	t.Helper()
	png, ok := charts[name]
	if !ok {
		t.Fatalf("bundle missing %q chart, have %v", name, chartNames(charts))
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Errorf("%q chart is not a PNG", name)
	}
}

func chartNames(charts map[string][]byte) []string {
	names := make([]string, 0, len(charts))
	for name := range charts {
		names = append(names, name)
	}
	return names
}

func TestRenderEmptyResult(t *testing.T) {
	charts, err := NewRenderer().Render(scenario.Retirement, nil)
	if err != nil || charts != nil {
		t.Errorf("Render(nil) = %v, %v; want nil, nil", charts, err)
	}
}

func TestRenderRetirementGrowth(t *testing.T) {
	result, err := calc.Retirement(calc.Input{
		"current_age":          30,
		"retirement_age":       60,
		"current_savings":      500000.0,
		"monthly_contribution": 10000.0,
	})
	if err != nil {
		t.Fatalf("Retirement() error = %v", err)
	}

	charts, err := NewRenderer().Render(scenario.Retirement, result)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	assertPNG(t, charts, "growth")
}

func TestRenderTaxRegimes(t *testing.T) {
	result, err := calc.Tax(calc.Input{"annual_income": 1500000.0})
	if err != nil {
		t.Fatalf("Tax() error = %v", err)
	}

	charts, err := NewRenderer().Render(scenario.TaxCalculation, result)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	assertPNG(t, charts, "regimes")
}

func TestRenderBudgetCharts(t *testing.T) {
	result, err := calc.Budgeting(calc.Input{
		"income": 1200000.0,
		"expenses": map[string]any{
			"housing":       300000.0,
			"food":          150000.0,
			"entertainment": 100000.0,
		},
	})
	if err != nil {
		t.Fatalf("Budgeting() error = %v", err)
	}

	charts, err := NewRenderer().Render(scenario.Budgeting, result)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	assertPNG(t, charts, "expenses")
	assertPNG(t, charts, "cash_flow")
}

func TestRenderUnchartableScenarioIsEmpty(t *testing.T) {
	charts, err := NewRenderer().Render(scenario.General, calc.Result{"note": "n"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(charts) != 0 {
		t.Errorf("got charts %v for general scenario, want none", chartNames(charts))
	}
}
