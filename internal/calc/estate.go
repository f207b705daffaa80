package calc

// Simplified estate-tax model: a flat rate above a fixed exemption.
const (
	estateTaxExemption = 12920000.0
	estateTaxRate      = 40.0 // percent above the exemption
)

// EstatePlanning nets assets against liabilities, estimates estate tax and
// the per-beneficiary distribution, and labels overall estate health.
func EstatePlanning(in Input) (Result, error) {
	assets, err := in.breakdown("assets")
	if err != nil {
		return nil, err
	}
	if assets == nil {
		return nil, &ValidationError{Field: "assets", Reason: "required parameter missing"}
	}
	liabilities, err := in.breakdown("liabilities")
	if err != nil {
		return nil, err
	}
	beneficiaries, err := in.ageOr("beneficiaries", 0)
	if err != nil {
		return nil, err
	}

	totalAssets := sum(assets)
	totalLiabilities := sum(liabilities)
	netEstate := totalAssets - totalLiabilities

	tax := 0.0
	if netEstate > estateTaxExemption {
		tax = (netEstate - estateTaxExemption) * estateTaxRate / 100
	}

	perBeneficiary := 0.0
	if beneficiaries > 0 {
		perBeneficiary = (netEstate - tax) / float64(beneficiaries)
	}

	debtRatio := 0.0
	if totalAssets > 0 {
		debtRatio = totalLiabilities / totalAssets * 100
	}

	health := "Healthy"
	var recs []string
	switch {
	case netEstate <= 0:
		health = "Needs Attention"
		recs = append(recs, "Liabilities exceed assets; prioritize debt reduction before legacy planning")
	case debtRatio > 40:
		health = "Could Improve"
		recs = append(recs, "Debt ratio above 40% of assets erodes the distributable estate")
	}
	if tax > 0 {
		recs = append(recs, "Net estate exceeds the exemption; consider trusts or staged gifting")
	}
	if beneficiaries == 0 {
		recs = append(recs, "No beneficiaries declared; ensure wills and nominations are in place")
	}
	if len(recs) == 0 {
		recs = append(recs, "Keep beneficiary designations and directives current")
	}

	return Result{
		"total_assets":           totalAssets,
		"total_liabilities":      totalLiabilities,
		"net_estate":             netEstate,
		"estate_tax":             tax,
		"per_beneficiary_amount": perBeneficiary,
		"asset_breakdown":        toAnyMap(assets),
		"liability_breakdown":    toAnyMap(liabilities),
		"health_indicators": map[string]any{
			"debt_ratio": debtRatio,
			"health":     health,
		},
		"recommendations": recs,
	}, nil
}
