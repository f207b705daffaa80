package calc

import "math"

// Base premium rates. Life is per 1000 of coverage per month, health is a
// flat monthly base, disability a fraction of covered income.
const (
	lifeBaseRatePer1000 = 0.1
	healthBasePremium   = 400.0
	disabilityRate      = 0.03
	finalExpenses       = 15000.0
)

// riskFactors adjusts premiums by declared medical history.
var riskFactors = map[string]float64{
	"standard":  1.0,
	"high_risk": 1.5,
	"low_risk":  0.8,
}

// Insurance computes the life-insurance coverage gap (income-replacement
// years + debt + per-dependent education cost + final expenses − existing
// coverage − savings), disability income-replacement targets, and premium
// estimates via age/risk multipliers on base rates.
func Insurance(in Input) (Result, error) {
	annualIncome, err := in.amount("annual_income")
	if err != nil {
		return nil, err
	}
	age, err := in.age("age")
	if err != nil {
		return nil, err
	}
	dependents, err := in.ageOr("dependents", 0)
	if err != nil {
		return nil, err
	}
	yearsIncomeNeeded, err := in.amountOr("years_income_needed", 20)
	if err != nil {
		return nil, err
	}
	currentSavings, err := in.amountOr("current_savings", 0)
	if err != nil {
		return nil, err
	}
	totalDebt, err := in.amountOr("total_debt", 0)
	if err != nil {
		return nil, err
	}
	educationNeeds, err := in.amountOr("education_needs", 0)
	if err != nil {
		return nil, err
	}
	existing, err := in.breakdown("existing_coverage")
	if err != nil {
		return nil, err
	}

	history := in.str("medical_history", "standard")
	riskFactor, ok := riskFactors[history]
	if !ok {
		return nil, &ValidationError{Field: "medical_history", Reason: "must be standard, high_risk or low_risk"}
	}

	incomeReplacement := annualIncome * yearsIncomeNeeded
	education := float64(dependents) * educationNeeds
	totalLifeNeeds := incomeReplacement + totalDebt + education + finalExpenses - currentSavings
	lifeGap := math.Max(0, totalLifeNeeds-existing["life"])

	// 60% income replacement until age 65.
	shortTermDisability := annualIncome * 0.60
	longTermDisability := shortTermDisability * math.Max(float64(65-age), 0)
	eliminationPeriod := "90 days"
	if age >= 50 {
		eliminationPeriod = "180 days"
	}

	criticalIllness := math.Max(annualIncome*2, 50000)
	ageFactor := math.Max(1, float64(age-30)*0.05+1)

	return Result{
		"life_insurance": map[string]any{
			"total_needs":      totalLifeNeeds,
			"current_coverage": existing["life"],
			"coverage_gap":     lifeGap,
			"breakdown": map[string]any{
				"income_replacement": incomeReplacement,
				"debt_coverage":      totalDebt,
				"education_needs":    education,
				"final_expenses":     finalExpenses,
			},
			"recommended_term": math.Min(float64(80-age), 30),
		},
		"disability_insurance": map[string]any{
			"short_term_needs":   shortTermDisability,
			"long_term_needs":    longTermDisability,
			"current_coverage":   existing["disability"],
			"coverage_gap":       math.Max(0, shortTermDisability-existing["disability"]),
			"elimination_period": eliminationPeriod,
		},
		"critical_illness": map[string]any{
			"recommended_coverage": criticalIllness,
			"current_coverage":     existing["critical_illness"],
			"coverage_gap":         math.Max(0, criticalIllness-existing["critical_illness"]),
		},
		"premium_estimates": map[string]any{
			"life":       totalLifeNeeds / 1000 * lifeBaseRatePer1000 * ageFactor * riskFactor,
			"disability": shortTermDisability * disabilityRate * ageFactor,
			"health":     healthBasePremium * ageFactor * riskFactor * (1 + float64(dependents)*0.5),
		},
	}, nil
}
