package calc

import "math"

// Retirement computes years-to-target, the inflation-adjusted real return,
// the future value of current savings plus ongoing contributions compounded
// at the real rate, and a year-by-year projection of the portfolio.
func Retirement(in Input) (Result, error) {
	currentAge, err := in.age("current_age")
	if err != nil {
		return nil, err
	}
	retirementAge, err := in.age("retirement_age")
	if err != nil {
		return nil, err
	}
	currentSavings, err := in.amount("current_savings")
	if err != nil {
		return nil, err
	}
	monthlyContribution, err := in.amount("monthly_contribution")
	if err != nil {
		return nil, err
	}
	expectedReturn, err := in.amountOr("expected_return", 7.0)
	if err != nil {
		return nil, err
	}
	inflationRate, err := in.amountOr("inflation_rate", 3.0)
	if err != nil {
		return nil, err
	}
	desiredIncome, err := in.amountOr("desired_retirement_income", 0)
	if err != nil {
		return nil, err
	}

	if retirementAge < currentAge {
		return nil, &DomainError{Reason: "retirement age precedes current age"}
	}

	years := retirementAge - currentAge
	realReturn := (1+expectedReturn/100)/(1+inflationRate/100) - 1

	totalContributions := monthlyContribution * 12 * float64(years)
	total := futureValue(currentSavings, monthlyContribution, realReturn, years)

	invested := currentSavings + totalContributions
	growthMultiple := 0.0
	if invested > 0 {
		growthMultiple = total / invested
	}

	return Result{
		"timing": map[string]any{
			"current_age":         float64(currentAge),
			"retirement_age":      float64(retirementAge),
			"years_to_retirement": float64(years),
		},
		"savings_analysis": map[string]any{
			"current_savings":      currentSavings,
			"monthly_contribution": monthlyContribution,
			"total_contributions":  totalContributions,
			"future_value":         total,
		},
		"financial_metrics": map[string]any{
			"real_return_rate":          realReturn * 100,
			"inflation_adjusted_return": expectedReturn - inflationRate,
			"savings_growth_multiple":   growthMultiple,
		},
		// 4% withdrawal rule: 25 years of monthly drawdown.
		"monthly_retirement_income": total / (25 * 12),
		"yearly_projection":         retirementProjection(currentSavings, monthlyContribution, years, realReturn),
		"retirement_readiness":      retirementReadiness(total, desiredIncome),
	}, nil
}

// retirementProjection builds one row per year: opening balance,
// contributions, growth and closing balance, compounding at the real rate.
func retirementProjection(opening, monthlyContribution float64, years int, realReturn float64) []Row {
	rows := make([]Row, 0, years)
	balance := opening
	for year := 1; year <= years; year++ {
		contributions := monthlyContribution * 12
		growth := (balance + contributions) * realReturn
		closing := balance + contributions + growth
		rows = append(rows, Row{
			"year":            float64(year),
			"opening_balance": balance,
			"contributions":   contributions,
			"growth":          growth,
			"closing_balance": closing,
		})
		balance = closing
	}
	return rows
}

// retirementReadiness labels the projected corpus against the income target.
// Without a target the label reports the corpus only.
func retirementReadiness(corpus, desiredAnnualIncome float64) map[string]any {
	out := map[string]any{"projected_corpus": corpus}
	if desiredAnnualIncome <= 0 {
		out["status"] = "no income target provided"
		return out
	}

	// 4% rule again: the corpus needed to sustain the desired income.
	required := desiredAnnualIncome * 25
	out["required_corpus"] = required
	ratio := corpus / required
	out["funding_ratio"] = math.Round(ratio*100) / 100

	switch {
	case ratio >= 1:
		out["status"] = "on track"
	case ratio >= 0.75:
		out["status"] = "nearly there"
	default:
		out["status"] = "behind target"
	}
	return out
}
