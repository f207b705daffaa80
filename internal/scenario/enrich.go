package scenario

// enrichments maps each scenario to the static domain-knowledge text that
// steers the completion backend. The texts are advisory checklists, not user
// facing copy; the prompt assembler places them in the scenario-context
// section verbatim.
var enrichments = map[Type]string{
	Retirement: `Consider retirement planning factors:
- Current age and timeline to retirement
- Existing savings and contribution rate
- Expected returns and inflation
- Risk tolerance and asset mix
- Pension and social security benefits
- Healthcare costs in retirement`,

	Investment: `Consider investment factors:
- Risk tolerance and goals
- Time horizon
- Asset allocation and diversification
- Market conditions
- Tax implications of gains`,

	Debt: `Consider debt management factors:
- Outstanding balances and interest rates
- Minimum payments and payoff timelines
- Consolidation and refinancing options
- Credit score impact
- Avalanche versus snowball repayment strategies`,

	Budgeting: `Consider budgeting factors:
- Income sources and stability
- Essential versus discretionary spending
- Savings goals and emergency fund
- Debt obligations
- The 50/30/20 guideline`,

	EstatePlanning: `Consider estate planning factors:
- Asset inventory and liabilities
- Beneficiary designations
- Wills and trusts
- Estate tax exposure
- Healthcare directives and power of attorney`,

	Insurance: `Consider insurance planning factors:
- Coverage types needed (life, disability, health, critical illness)
- Income replacement requirements
- Premium costs versus coverage gaps
- Dependents and outstanding debt
- Existing policies and riders`,

	BusinessFinance: `Consider business financial factors:
- Revenue streams and seasonality
- Operating costs and margins
- Cash flow management
- Business structure and tax treatment
- Growth and financing plans`,

	RealEstate: `Consider real estate factors:
- Property value and financing terms
- Mortgage amortization
- Rental income and vacancy risk
- Maintenance, tax and insurance carrying costs
- Appreciation and equity buildup`,

	TaxPlanning: `Consider tax planning factors:
- Income sources and applicable brackets
- Deductions and credits
- Tax-advantaged investment options
- Retirement account strategies
- Timing of income and expenses`,

	TaxCalculation: `Consider the following tax calculation factors:
- Income sources (salary, business, investments, rent)
- Deductions (Section 80C, 80D) and exemptions (HRA, LTA)
- Old versus new regime slab rates
- Surcharge tiers above 50 lakh and health and education cess
- Rebates under Section 87A
- Home loan interest under Section 24
- Effective rate, monthly liability and take-home pay`,
}

// generalEnrichment is the fallback for scenarios without a dedicated entry.
const generalEnrichment = "General financial planning considerations: income, spending, savings, risk and long-term goals."

// Enhance returns the static advisory context for a scenario. Pure lookup;
// unmapped scenarios (including General) get a generic fallback. No failure
// modes.
func Enhance(t Type) string {
	if text, ok := enrichments[t]; ok {
		return text
	}
	return generalEnrichment
}
