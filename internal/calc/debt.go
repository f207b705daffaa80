package calc

import "math"

const maxPayoffMonths = 1200

// Debt runs an amortizing payoff analysis: months to debt freedom, total
// interest, and what an extra monthly payment would save.
func Debt(in Input) (Result, error) {
	balance, err := in.amount("total_debt")
	if err != nil {
		return nil, err
	}
	ratePct, err := in.amountOr("interest_rate", 0)
	if err != nil {
		return nil, err
	}
	payment, err := in.amount("monthly_payment")
	if err != nil {
		return nil, err
	}
	extra, err := in.amountOr("extra_payment", 0)
	if err != nil {
		return nil, err
	}
	income, err := in.amountOr("monthly_income", 0)
	if err != nil {
		return nil, err
	}

	if balance == 0 {
		return nil, &DomainError{Reason: "total debt must be positive"}
	}
	monthlyRate := ratePct / 100 / 12
	if payment <= balance*monthlyRate {
		return nil, &DomainError{Reason: "monthly payment does not cover interest; balance never shrinks"}
	}

	base := amortize(balance, monthlyRate, payment)
	accelerated := base
	if extra > 0 {
		accelerated = amortize(balance, monthlyRate, payment+extra)
	}

	debtToIncome := 0.0
	if income > 0 {
		debtToIncome = payment / income * 100
	}

	health := "Healthy"
	var recs []string
	switch {
	case debtToIncome > 40:
		health = "Needs Attention"
	case debtToIncome > 30 || base.months > 120:
		health = "Could Improve"
	}
	if debtToIncome > 40 {
		recs = append(recs, "Debt payments exceed 40% of income; prioritize repayment before new commitments")
	}
	if ratePct > 15 {
		recs = append(recs, "High interest rate; look into consolidation or balance transfer")
	}
	if extra > 0 && accelerated.months < base.months {
		recs = append(recs, "The extra payment shortens the payoff and cuts total interest")
	}
	if len(recs) == 0 {
		recs = append(recs, "Payoff is on track; avoid adding new debt until the balance clears")
	}

	result := Result{
		"debt_summary": map[string]any{
			"total_debt":      balance,
			"interest_rate":   ratePct,
			"monthly_payment": payment,
			"debt_to_income":  debtToIncome,
		},
		"payoff_analysis": map[string]any{
			"months_to_freedom": float64(base.months),
			"years_to_freedom":  float64(base.months) / 12,
			"total_interest":    base.totalInterest,
			"total_paid":        base.totalPaid,
		},
		"health_indicators": map[string]any{
			"health": health,
		},
		"recommendations": recs,
	}
	if extra > 0 {
		result["accelerated_payoff"] = map[string]any{
			"extra_payment":     extra,
			"months_to_freedom": float64(accelerated.months),
			"interest_saved":    base.totalInterest - accelerated.totalInterest,
			"months_saved":      float64(base.months - accelerated.months),
		}
	}
	return result, nil
}

type payoff struct {
	months        int
	totalInterest float64
	totalPaid     float64
}

func amortize(balance, monthlyRate, payment float64) payoff {
	var p payoff
	for balance > 0 && p.months < maxPayoffMonths {
		interest := balance * monthlyRate
		due := math.Min(payment, balance+interest)
		balance += interest - due
		p.totalInterest += interest
		p.totalPaid += due
		p.months++
	}
	return p
}
