package calc

// BusinessFinance is a ratio-based health assessment of a small business:
// margin, expense and debt-service ratios against fixed thresholds, a
// qualitative label and recommendations.
func BusinessFinance(in Input) (Result, error) {
	revenue, err := in.amount("annual_revenue")
	if err != nil {
		return nil, err
	}
	expenses, err := in.amount("operating_expenses")
	if err != nil {
		return nil, err
	}
	debtPayments, err := in.amountOr("debt_payments", 0)
	if err != nil {
		return nil, err
	}
	cashReserve, err := in.amountOr("cash_reserve", 0)
	if err != nil {
		return nil, err
	}

	if revenue == 0 {
		return nil, &DomainError{Reason: "annual revenue must be positive"}
	}
	if expenses > revenue {
		return nil, &DomainError{Reason: "operating expenses exceed revenue"}
	}

	grossProfit := revenue - expenses
	netProfit := grossProfit - debtPayments
	profitMargin := netProfit / revenue * 100
	expenseRatio := expenses / revenue * 100
	debtServiceRatio := debtPayments / revenue * 100
	monthlyBurn := (expenses + debtPayments) / 12
	runwayMonths := 0.0
	if monthlyBurn > 0 {
		runwayMonths = cashReserve / monthlyBurn
	}

	health := "Healthy"
	var recs []string
	switch {
	case profitMargin < 5 || debtServiceRatio > 30:
		health = "Needs Attention"
	case profitMargin < 15 || runwayMonths < 3:
		health = "Could Improve"
	}
	if profitMargin < 15 {
		recs = append(recs, "Profit margin is thin; review pricing and recurring costs")
	}
	if debtServiceRatio > 30 {
		recs = append(recs, "Debt service consumes over 30% of revenue; consider restructuring")
	}
	if runwayMonths < 3 {
		recs = append(recs, "Cash reserve covers under three months of outflow; build a buffer")
	}
	if len(recs) == 0 {
		recs = append(recs, "Ratios look sound; plan reinvestment of surplus")
	}

	return Result{
		"profitability": map[string]any{
			"annual_revenue": revenue,
			"gross_profit":   grossProfit,
			"net_profit":     netProfit,
			"profit_margin":  profitMargin,
		},
		"ratios": map[string]any{
			"expense_ratio":      expenseRatio,
			"debt_service_ratio": debtServiceRatio,
			"runway_months":      runwayMonths,
		},
		"health_indicators": map[string]any{
			"health": health,
		},
		"recommendations": recs,
	}, nil
}
