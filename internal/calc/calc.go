// Package calc implements the deterministic financial calculators, one per
// scenario. Each calculator is a pure function from a structured parameter
// map to a nested result record; no calculator touches I/O.
//
// Input validation happens before any arithmetic: missing required fields and
// negative amounts/ages fail with *ValidationError, violated financial
// preconditions with *DomainError. Rates are supplied as percentages and
// divided by 100 before compounding.
package calc

import (
	"math"

	"github.com/paisewise/paisewise/internal/scenario"
)

// Input maps parameter names to numeric or categorical values. Values arrive
// from structured callers (API payloads, CLI flags), never from free text.
// Numeric values may be any Go numeric type; JSON decoding yields float64.
type Input map[string]any

// Result is a nested mapping of metric name to value: a number, a string, a
// one-level sub-category map, or a projection ([]Row). Results are immutable
// once produced; response formatting, visualization and reporting only read.
type Result map[string]any

// Row is one period record in a timeline projection.
type Row map[string]float64

// Func is a single scenario calculator.
type Func func(Input) (Result, error)

// Registry is the closed mapping from scenario type to calculator. It is
// built once at construction; unknown scenarios are rejected then, not at
// call time.
type Registry struct {
	funcs map[scenario.Type]Func
}

// NewRegistry builds the full calculator table. Every scenario except
// General is bound; both tax scenarios share the two-regime computation.
func NewRegistry() *Registry {
	return &Registry{funcs: map[scenario.Type]Func{
		scenario.Retirement:      Retirement,
		scenario.Investment:      Investment,
		scenario.Debt:            Debt,
		scenario.Budgeting:       Budgeting,
		scenario.EstatePlanning:  EstatePlanning,
		scenario.Insurance:       Insurance,
		scenario.BusinessFinance: BusinessFinance,
		scenario.RealEstate:      RealEstate,
		scenario.TaxPlanning:     Tax,
		scenario.TaxCalculation:  Tax,
	}}
}

// Lookup returns the calculator for a scenario. The second return is false
// for scenarios without one (General).
func (r *Registry) Lookup(t scenario.Type) (Func, bool) {
	fn, ok := r.funcs[t]
	return fn, ok
}

// Calculate runs the calculator bound to t. Scenarios without a calculator
// return a nil Result and no error: the query proceeds without figures.
func (r *Registry) Calculate(t scenario.Type, in Input) (Result, error) {
	fn, ok := r.funcs[t]
	if !ok {
		return nil, nil
	}
	return fn(in)
}

// ---- typed parameter access -------------------------------------------------

// number coerces the supported numeric representations of an Input value.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// amount returns a required non-negative numeric parameter.
func (in Input) amount(key string) (float64, error) {
	v, ok := in[key]
	if !ok {
		return 0, &ValidationError{Field: key, Reason: "required parameter missing"}
	}
	n, ok := number(v)
	if !ok {
		return 0, &ValidationError{Field: key, Reason: "must be numeric"}
	}
	if n < 0 {
		return 0, &ValidationError{Field: key, Reason: "must be non-negative"}
	}
	return n, nil
}

// amountOr returns an optional non-negative numeric parameter, falling back
// to def when absent. Present-but-negative still fails validation.
func (in Input) amountOr(key string, def float64) (float64, error) {
	if _, ok := in[key]; !ok {
		return def, nil
	}
	return in.amount(key)
}

// age returns a required non-negative integer-valued parameter.
func (in Input) age(key string) (int, error) {
	n, err := in.amount(key)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ageOr returns an optional non-negative integer-valued parameter.
func (in Input) ageOr(key string, def int) (int, error) {
	if _, ok := in[key]; !ok {
		return def, nil
	}
	return in.age(key)
}

// str returns an optional categorical parameter, falling back to def.
func (in Input) str(key, def string) string {
	if v, ok := in[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// breakdown returns an optional map-of-amounts parameter (one nesting level,
// e.g. expense categories). Negative entries fail validation.
func (in Input) breakdown(key string) (map[string]float64, error) {
	v, ok := in[key]
	if !ok {
		return nil, nil
	}

	out := map[string]float64{}
	switch m := v.(type) {
	case map[string]float64:
		for k, n := range m {
			out[k] = n
		}
	case map[string]any:
		for k, raw := range m {
			n, ok := number(raw)
			if !ok {
				return nil, &ValidationError{Field: key + "." + k, Reason: "must be numeric"}
			}
			out[k] = n
		}
	default:
		return nil, &ValidationError{Field: key, Reason: "must be a map of amounts"}
	}

	for k, n := range out {
		if n < 0 {
			return nil, &ValidationError{Field: key + "." + k, Reason: "must be non-negative"}
		}
	}
	return out, nil
}

func sum(m map[string]float64) float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}

// ---- shared financial math --------------------------------------------------

// amortizedPayment computes the fixed monthly payment for a loan using the
// standard annuity formula payment = P*r*(1+r)^n / ((1+r)^n - 1), where r is
// the monthly rate and n the number of payments. A zero rate degenerates to
// straight-line principal repayment.
func amortizedPayment(principal, annualRatePct float64, years int) float64 {
	n := float64(years * 12)
	if n == 0 {
		return principal
	}
	r := annualRatePct / 100 / 12
	if r == 0 {
		return principal / n
	}
	growth := math.Pow(1+r, n)
	return principal * r * growth / (growth - 1)
}

// futureValue compounds a lump sum plus a monthly contribution annuity at an
// annual rate (as a fraction, not a percent) over the given years.
func futureValue(principal, monthlyContribution, annualRate float64, years int) float64 {
	fv := principal * math.Pow(1+annualRate, float64(years))
	yearly := monthlyContribution * 12
	if annualRate == 0 {
		return fv + yearly*float64(years)
	}
	return fv + yearly*((math.Pow(1+annualRate, float64(years))-1)/annualRate)
}
