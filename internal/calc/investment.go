package calc

// riskProfile maps a risk label to its expected return, volatility and bond
// allocation. The table is fixed; unknown labels fail validation.
type riskProfile struct {
	ExpectedReturn float64 // percent per year
	Volatility     float64 // percent
	BondAllocation float64 // percent of portfolio
}

var riskProfiles = map[string]riskProfile{
	"conservative": {ExpectedReturn: 6.0, Volatility: 8.0, BondAllocation: 70},
	"moderate":     {ExpectedReturn: 8.0, Volatility: 12.0, BondAllocation: 40},
	"aggressive":   {ExpectedReturn: 10.0, Volatility: 16.0, BondAllocation: 20},
}

// riskFreeRate is the assumed risk-free percentage used in the Sharpe-style
// risk-adjusted metric.
const riskFreeRate = 3.0

// Investment projects portfolio growth under a risk-profile lookup and
// derives risk-adjusted metrics plus a yearly projection.
func Investment(in Input) (Result, error) {
	portfolioValue, err := in.amount("portfolio_value")
	if err != nil {
		return nil, err
	}
	monthlyContribution, err := in.amount("monthly_contribution")
	if err != nil {
		return nil, err
	}
	horizon, err := in.age("time_horizon")
	if err != nil {
		return nil, err
	}
	targetAmount, err := in.amountOr("target_amount", 0)
	if err != nil {
		return nil, err
	}

	label := in.str("risk_profile", "moderate")
	profile, ok := riskProfiles[label]
	if !ok {
		return nil, &ValidationError{Field: "risk_profile", Reason: "must be conservative, moderate or aggressive"}
	}

	rate := profile.ExpectedReturn / 100
	fv := futureValue(portfolioValue, monthlyContribution, rate, horizon)
	contributions := monthlyContribution * 12 * float64(horizon)

	return Result{
		"current_analysis": map[string]any{
			"portfolio_value":      portfolioValue,
			"monthly_contribution": monthlyContribution,
			"time_horizon":         float64(horizon),
			"risk_profile":         label,
		},
		"projected_returns": map[string]any{
			"expected_return":     profile.ExpectedReturn,
			"expected_volatility": profile.Volatility,
			"future_value":        fv,
			"total_contributions": contributions,
			"investment_gain":     fv - portfolioValue - contributions,
		},
		"portfolio_metrics": map[string]any{
			"sharpe_ratio":         (profile.ExpectedReturn - riskFreeRate) / profile.Volatility,
			"risk_adjusted_return": profile.ExpectedReturn / profile.Volatility,
			"recommended_allocation": map[string]any{
				"stocks": 100 - profile.BondAllocation,
				"bonds":  profile.BondAllocation,
			},
		},
		"goal_analysis":     investmentGoal(fv, targetAmount),
		"yearly_projection": investmentProjection(portfolioValue, monthlyContribution, rate, horizon),
	}, nil
}

func investmentGoal(projected, target float64) map[string]any {
	if target <= 0 {
		return map[string]any{"status": "no target amount provided"}
	}
	out := map[string]any{
		"target_amount":   target,
		"projected_value": projected,
		"shortfall":       0.0,
	}
	if projected >= target {
		out["status"] = "target met"
	} else {
		out["status"] = "shortfall"
		out["shortfall"] = target - projected
	}
	return out
}

func investmentProjection(opening, monthlyContribution, rate float64, years int) []Row {
	rows := make([]Row, 0, years)
	value := opening
	for year := 1; year <= years; year++ {
		contributions := monthlyContribution * 12
		growth := (value + contributions) * rate
		value = value + contributions + growth
		rows = append(rows, Row{
			"year":          float64(year),
			"contributions": contributions,
			"growth":        growth,
			"value":         value,
		})
	}
	return rows
}
