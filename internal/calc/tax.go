package calc

// Indian income-tax computation, FY 2023-24 schedules. Both the tax_planning
// and tax_calculation scenarios dispatch here; the result always carries both
// regimes so the advisor can compare them.

// slab is one progressive bracket: income above From up to To is taxed at
// Rate percent. To == 0 marks the open-ended top bracket.
type slab struct {
	From, To float64
	Rate     float64
}

var oldRegimeSlabs = []slab{
	{0, 250000, 0},
	{250000, 500000, 5},
	{500000, 1000000, 20},
	{1000000, 0, 30},
}

var newRegimeSlabs = []slab{
	{0, 300000, 0},
	{300000, 600000, 5},
	{600000, 900000, 10},
	{900000, 1200000, 15},
	{1200000, 1500000, 20},
	{1500000, 0, 30},
}

// surchargeTiers lists income thresholds and the surcharge percentage applied
// to the base tax above each. Income exactly at a threshold stays in the
// lower tier.
var surchargeTiers = []struct {
	Above float64
	Rate  float64
}{
	{50000000, 37},
	{20000000, 25},
	{10000000, 15},
	{5000000, 10},
}

const (
	standardDeduction = 50000.0
	section80CCap     = 150000.0
	cessRate          = 4.0 // health and education cess, percent of tax + surcharge
)

// Tax computes liability under both regimes from income, deductions and
// investments, applies the stepped surcharge schedule, and derives effective
// rate, monthly liability and take-home pay.
func Tax(in Input) (Result, error) {
	annualIncome, err := in.amount("annual_income")
	if err != nil {
		return nil, err
	}
	if annualIncome == 0 {
		return nil, &DomainError{Reason: "annual income must be positive"}
	}

	regime := in.str("tax_regime", "new")
	if regime != "old" && regime != "new" {
		return nil, &ValidationError{Field: "tax_regime", Reason: `must be "old" or "new"`}
	}

	deductions, err := in.breakdown("deductions")
	if err != nil {
		return nil, err
	}
	investments, err := in.breakdown("investments")
	if err != nil {
		return nil, err
	}

	// Old regime honors Chapter VI-A deductions (capped); the new regime
	// allows only the standard deduction.
	claimable := sum(deductions) + sum(investments)
	if claimable > section80CCap {
		claimable = section80CCap
	}

	oldRegime := regimeResult(annualIncome, annualIncome-standardDeduction-claimable, oldRegimeSlabs)
	newRegime := regimeResult(annualIncome, annualIncome-standardDeduction, newRegimeSlabs)

	recommended := "new"
	if oldRegime["total_tax"].(float64) < newRegime["total_tax"].(float64) {
		recommended = "old"
	}

	return Result{
		"old_regime":               oldRegime,
		"new_regime":               newRegime,
		"selected_regime":          regime,
		"recommended_regime":       recommended,
		"regime_difference":        absDiff(oldRegime["total_tax"].(float64), newRegime["total_tax"].(float64)),
		"tax_saving_opportunities": taxSavings(annualIncome, claimable),
	}, nil
}

// regimeResult computes the full liability breakdown for one regime.
func regimeResult(income, taxable float64, slabs []slab) map[string]any {
	if taxable < 0 {
		taxable = 0
	}
	base := slabTax(taxable, slabs)
	surcharge := surchargeOn(income, base)
	cess := (base + surcharge) * cessRate / 100
	total := base + surcharge + cess

	return map[string]any{
		"taxable_income":        taxable,
		"tax_before_cess":       base,
		"surcharge":             surcharge,
		"cess":                  cess,
		"total_tax":             total,
		"effective_tax_rate":    total / income * 100,
		"monthly_tax_liability": total / 12,
		"take_home_monthly":     (income - total) / 12,
	}
}

// slabTax applies the progressive bracket schedule to taxable income.
func slabTax(taxable float64, slabs []slab) float64 {
	tax := 0.0
	for _, s := range slabs {
		if taxable <= s.From {
			break
		}
		upper := taxable
		if s.To > 0 && upper > s.To {
			upper = s.To
		}
		tax += (upper - s.From) * s.Rate / 100
	}
	return tax
}

// surchargeOn returns the surcharge for a given total income and base tax.
// Income exactly at a tier threshold yields the lower tier (zero at exactly
// 50 lakh).
func surchargeOn(income, tax float64) float64 {
	for _, tier := range surchargeTiers {
		if income > tier.Above {
			return tax * tier.Rate / 100
		}
	}
	return 0
}

// taxSavings lists unused tax-saving headroom.
func taxSavings(income, claimed float64) []string {
	var out []string
	if claimed < section80CCap {
		out = append(out, "Section 80C headroom remaining: invest up to the 1.5 lakh cap (PPF, ELSS, EPF)")
	}
	if income > 1000000 {
		out = append(out, "Compare both regimes yearly; high deductions can favor the old regime")
	}
	out = append(out, "Health insurance premiums qualify under Section 80D in the old regime")
	return out
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
