// Package scenario classifies free-text personal-finance queries into a
// closed set of named scenarios and supplies the static advisory context
// associated with each one.
//
// Classification is a deterministic, case-insensitive keyword match over an
// explicit priority-ordered rule list. Keyword sets overlap across scenarios
// (for example "mortgage" appears under both debt and real estate); the rule
// that appears earlier in the list always wins, so ordering is part of the
// contract and must not be reshuffled casually.
package scenario

import "strings"

// Type identifies a financial scenario. Immutable once assigned to a query;
// derived purely from the query text.
type Type string

// The closed set of scenario types.
const (
	Retirement      Type = "retirement"
	Investment      Type = "investment"
	Debt            Type = "debt"
	Budgeting       Type = "budgeting"
	EstatePlanning  Type = "estate_planning"
	Insurance       Type = "insurance"
	BusinessFinance Type = "business_finance"
	RealEstate      Type = "real_estate"
	TaxPlanning     Type = "tax_planning"
	TaxCalculation  Type = "tax_calculation"
	General         Type = "general"
)

// rule pairs a scenario with its keyword set. Keywords are matched as
// lower-case substrings of the query.
type rule struct {
	scenario Type
	keywords []string
}

// rules is the priority-ordered classification table. First match wins.
//
// Ordering notes:
//   - Debt precedes real estate so that "mortgage" resolves to debt unless
//     accompanied by nothing else (both carry it).
//   - Tax calculation precedes tax planning: its keywords are the concrete
//     computation phrases ("income tax", "tax regime", "itr", slab-specific
//     sections), so calculation queries are not swallowed by the generic
//     "tax" keyword of the planning scenario.
var rules = []rule{
	{Retirement, []string{"retire", "retirement", "pension", "401k", "ira", "social security"}},
	{Investment, []string{"invest", "portfolio", "stocks", "bonds", "market", "returns"}},
	{Debt, []string{"debt", "loan", "mortgage", "credit", "repayment", "emi"}},
	{Budgeting, []string{"budget", "spending", "expenses", "cash flow", "savings rate"}},
	{EstatePlanning, []string{"estate", "inheritance", "beneficiary", "trust", "bequest"}},
	{TaxCalculation, []string{
		"income tax", "tax regime", "tax slab", "itr", "tax filing",
		"capital gains", "section 80c", "section 80d", "section 24",
		"surcharge", "cess", "hra", "take-home", "take home",
	}},
	{TaxPlanning, []string{"tax", "deduction", "write-off", "tax credit", "filing"}},
	{Insurance, []string{"insurance", "coverage", "policy", "premium", "claim"}},
	{BusinessFinance, []string{"business", "company", "revenue", "profit", "startup"}},
	{RealEstate, []string{"property", "real estate", "rent", "housing", "rental"}},
}

// Classify maps a free-text query to a scenario type. It is pure and
// idempotent: the same query always yields the same type. Queries that match
// no rule fall back to General.
func Classify(query string) Type {
	q := strings.ToLower(query)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r.scenario
			}
		}
	}
	return General
}

// All returns every scenario type in classifier priority order, General last.
// Useful for building closed dispatch tables at construction time.
func All() []Type {
	out := make([]Type, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.scenario)
	}
	return append(out, General)
}

// IsTax reports whether t is one of the tax scenarios. Both share the same
// two-regime liability computation downstream.
func IsTax(t Type) bool {
	return t == TaxPlanning || t == TaxCalculation
}
