package calc

import "math"

// RealEstate analyzes a financed property purchase: mortgage payment via the
// annuity formula, operating-cost ratios, cap rate, cash-on-cash return and
// a year-by-year equity buildup table (amortizing the loan 12 months at a
// time against an appreciating property value).
func RealEstate(in Input) (Result, error) {
	propertyValue, err := in.amount("property_value")
	if err != nil {
		return nil, err
	}
	downPayment, err := in.amount("down_payment")
	if err != nil {
		return nil, err
	}
	interestRate, err := in.amount("interest_rate")
	if err != nil {
		return nil, err
	}
	termYears, err := in.age("term_years")
	if err != nil {
		return nil, err
	}
	rentalIncome, err := in.amountOr("rental_income", 0)
	if err != nil {
		return nil, err
	}
	propertyTaxRate, err := in.amountOr("property_tax_rate", 1.0)
	if err != nil {
		return nil, err
	}
	maintenanceRate, err := in.amountOr("maintenance_rate", 1.0)
	if err != nil {
		return nil, err
	}
	appreciationRate, err := in.amountOr("appreciation_rate", 3.0)
	if err != nil {
		return nil, err
	}
	vacancyRate, err := in.amountOr("vacancy_rate", 8.0)
	if err != nil {
		return nil, err
	}
	insuranceCost, err := in.amountOr("insurance_cost", 0)
	if err != nil {
		return nil, err
	}

	if propertyValue == 0 {
		return nil, &DomainError{Reason: "property value must be positive"}
	}
	if downPayment > propertyValue {
		return nil, &DomainError{Reason: "down payment exceeds property value"}
	}
	if termYears == 0 {
		return nil, &ValidationError{Field: "term_years", Reason: "must be positive"}
	}

	loanAmount := propertyValue - downPayment
	monthlyPayment := amortizedPayment(loanAmount, interestRate, termYears)

	annualPropertyTax := propertyValue * propertyTaxRate / 100
	annualMaintenance := propertyValue * maintenanceRate / 100
	annualOperating := annualPropertyTax + annualMaintenance + insuranceCost
	monthlyOperating := annualOperating / 12

	effectiveRent := rentalIncome * (1 - vacancyRate/100)
	noi := effectiveRent*12 - annualOperating
	monthlyCashFlow := effectiveRent - monthlyPayment - monthlyOperating

	capRate := noi / propertyValue * 100
	cashOnCash := 0.0
	if downPayment > 0 {
		cashOnCash = monthlyCashFlow * 12 / downPayment * 100
	}
	operatingRatio := 0.0
	if rentalIncome > 0 {
		operatingRatio = annualOperating / (effectiveRent * 12) * 100
	}

	return Result{
		"property_metrics": map[string]any{
			"property_value":          propertyValue,
			"loan_amount":             loanAmount,
			"down_payment":            downPayment,
			"down_payment_percentage": downPayment / propertyValue * 100,
		},
		"monthly_costs": map[string]any{
			"mortgage_payment":   monthlyPayment,
			"property_tax":       annualPropertyTax / 12,
			"maintenance":        annualMaintenance / 12,
			"insurance":          insuranceCost / 12,
			"total_monthly_cost": monthlyPayment + monthlyOperating,
		},
		"investment_metrics": map[string]any{
			"cap_rate":             capRate,
			"cash_on_cash_return":  cashOnCash,
			"net_operating_income": noi,
			"monthly_cash_flow":    monthlyCashFlow,
		},
		"rental_analysis": map[string]any{
			"gross_rental_income":      rentalIncome * 12,
			"vacancy_loss":             rentalIncome * vacancyRate / 100 * 12,
			"effective_rental_income":  effectiveRent * 12,
			"operating_expenses_ratio": operatingRatio,
		},
		"equity_buildup": equityBuildup(loanAmount, interestRate, termYears, propertyValue, appreciationRate),
		"roi_analysis": map[string]any{
			"appreciation_return": propertyValue*math.Pow(1+appreciationRate/100, float64(termYears)) - propertyValue,
			"cash_flow_return":    monthlyCashFlow * 12 * float64(termYears),
		},
	}, nil
}

// equityBuildup amortizes the loan month by month while the property
// appreciates yearly, emitting one row per year including year zero.
func equityBuildup(loanAmount, ratePct float64, years int, initialValue, appreciationPct float64) []Row {
	monthlyRate := ratePct / 100 / 12
	payment := amortizedPayment(loanAmount, ratePct, years)

	rows := make([]Row, 0, years+1)
	balance := loanAmount
	for year := 0; year <= years; year++ {
		value := initialValue * math.Pow(1+appreciationPct/100, float64(year))
		rows = append(rows, Row{
			"year":           float64(year),
			"property_value": value,
			"loan_balance":   math.Max(balance, 0),
			"equity":         value - math.Max(balance, 0),
		})

		for month := 0; month < 12 && balance > 0; month++ {
			interest := balance * monthlyRate
			balance -= payment - interest
		}
	}
	return rows
}
