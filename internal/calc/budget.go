package calc

// Expense category groupings for the 50/30/20 analysis.
var (
	needsCategories = map[string]bool{
		"housing": true, "utilities": true, "food": true,
		"healthcare": true, "insurance": true, "transport": true,
	}
	wantsCategories = map[string]bool{
		"entertainment": true, "shopping": true, "dining": true, "travel": true,
	}
)

// Budgeting assesses annual income against itemized expenses: monthly
// breakdowns, 50/30/20 ratios, a qualitative health label and textual
// recommendations. Expenses exceeding income is a domain error.
func Budgeting(in Input) (Result, error) {
	income, err := in.amount("income")
	if err != nil {
		return nil, err
	}
	expenses, err := in.breakdown("expenses")
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		return nil, &ValidationError{Field: "expenses", Reason: "required parameter missing"}
	}
	savingsGoal, err := in.amountOr("savings_goal", 0)
	if err != nil {
		return nil, err
	}

	if income == 0 {
		return nil, &DomainError{Reason: "income must be positive"}
	}
	totalExpenses := sum(expenses)
	if totalExpenses > income {
		return nil, &DomainError{Reason: "total expenses exceed income"}
	}

	needs, wants := 0.0, 0.0
	for category, amount := range expenses {
		switch {
		case needsCategories[category]:
			needs += amount
		case wantsCategories[category]:
			wants += amount
		}
	}
	savings := income - totalExpenses

	needsRatio := needs / income * 100
	wantsRatio := wants / income * 100
	savingsRatio := savings / income * 100

	monthly := map[string]any{}
	for category, amount := range expenses {
		monthly[category] = amount / 12
	}

	return Result{
		"income_analysis": map[string]any{
			"annual_income":     income,
			"monthly_income":    income / 12,
			"total_expenses":    totalExpenses,
			"monthly_expenses":  totalExpenses / 12,
			"savings_potential": savings,
		},
		"expense_breakdown": toAnyMap(expenses),
		"monthly_breakdown": monthly,
		"rule_analysis": map[string]any{
			"needs_ratio":   needsRatio,
			"wants_ratio":   wantsRatio,
			"savings_ratio": savingsRatio,
		},
		"health_indicators": map[string]any{
			"expense_to_income": totalExpenses / income * 100,
			"savings_to_income": savingsRatio,
			"health":            budgetHealth(needsRatio, savingsRatio),
			"meets_50_30_20":    boolLabel(needsRatio <= 50 && wantsRatio <= 30 && savingsRatio >= 20),
		},
		"recommendations": budgetRecommendations(needsRatio, wantsRatio, savingsRatio, savings, savingsGoal),
	}, nil
}

func budgetHealth(needsRatio, savingsRatio float64) string {
	switch {
	case needsRatio > 60 || savingsRatio < 5:
		return "Needs Attention"
	case savingsRatio < 20:
		return "Could Improve"
	default:
		return "Healthy"
	}
}

func budgetRecommendations(needsRatio, wantsRatio, savingsRatio, savings, goal float64) []string {
	var recs []string
	if needsRatio > 50 {
		recs = append(recs, "Essential expenses exceed half of income; look for fixed-cost reductions")
	}
	if wantsRatio > 30 {
		recs = append(recs, "Discretionary spending is above the 30% guideline")
	}
	if savingsRatio < 20 {
		recs = append(recs, "Raise the savings rate toward 20% of income")
	}
	if goal > 0 && savings < goal {
		recs = append(recs, "Current surplus does not meet the stated savings goal")
	}
	if len(recs) == 0 {
		recs = append(recs, "Budget is balanced; consider channeling surplus into investments")
	}
	return recs
}

func boolLabel(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func toAnyMap(m map[string]float64) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
