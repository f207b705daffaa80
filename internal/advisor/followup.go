package advisor

import (
	"fmt"
	"strings"

	"github.com/paisewise/paisewise/internal/calc"
	"github.com/paisewise/paisewise/internal/scenario"
)

// followUpTable maps each scenario to its stock follow-up suggestions.
var followUpTable = map[scenario.Type][]string{
	scenario.Retirement: {
		"Would you like to explore how changing your retirement age affects these calculations?",
		"Should we analyze different investment risk levels for your retirement portfolio?",
		"Would you like to see how inflation might impact your retirement savings?",
	},
	scenario.Investment: {
		"Would you like to see how different asset allocations might affect your returns?",
		"Should we analyze the tax implications of these investments?",
		"Would you like to explore different investment timeframes?",
	},
	scenario.Debt: {
		"Would you like to see how accelerated payments would affect your debt payoff timeline?",
		"Should we compare different debt repayment strategies?",
		"Would you like to analyze debt consolidation options?",
	},
	scenario.Budgeting: {
		"Would you like suggestions for reducing any specific expense category?",
		"Should we set a monthly savings target and track against it?",
		"Would you like to see how the 50/30/20 rule applies to your budget?",
	},
	scenario.EstatePlanning: {
		"Would you like to explore different trust options?",
		"Should we analyze the tax implications of your estate plan?",
		"Would you like to review beneficiary designation strategies?",
	},
	scenario.Insurance: {
		"Would you like to compare different insurance coverage levels?",
		"Should we analyze how your insurance needs might change over time?",
		"Would you like to explore other types of insurance coverage?",
	},
	scenario.BusinessFinance: {
		"Would you like a deeper look at your expense or debt-service ratios?",
		"Should we model how revenue growth would change these figures?",
		"Would you like to plan a cash reserve target for your business?",
	},
	scenario.RealEstate: {
		"Would you like to compare renting out versus selling the property?",
		"Should we look at how a larger down payment changes the numbers?",
		"Would you like to see the equity buildup over a longer term?",
	},
	scenario.TaxPlanning: {
		"Would you like to explore potential tax deductions you might be eligible for?",
		"Should we analyze different tax-advantaged investment options?",
		"Would you like to see how changes in income might affect your tax situation?",
	},
	scenario.TaxCalculation: {
		"Would you like to explore potential tax deductions you might be eligible for?",
		"Should we analyze different tax-advantaged investment options?",
		"Would you like to see how changes in income might affect your tax situation?",
	},
}

var genericFollowUps = []string{
	"Would you like more detailed analysis?",
	"Should we explore specific aspects of this topic?",
	"Would you like to see additional calculations?",
}

// followUpQuestions builds the suggestion list for a response: the
// scenario's stock questions plus calculation-aware extras, capped at 3.
func followUpQuestions(t scenario.Type, result calc.Result) []string {
	base, ok := followUpTable[t]
	if !ok {
		base = genericFollowUps
	}
	questions := make([]string, 0, len(base)+2)
	questions = append(questions, base...)

	if hasKeyContaining(result, "total") {
		questions = append(questions,
			fmt.Sprintf("Would you like to see a breakdown of the %s calculations?", t))
	}
	if hasKeyContaining(result, "projection") {
		questions = append(questions,
			"Would you like to explore different projection scenarios?")
	}

	if len(questions) > 3 {
		questions = questions[:3]
	}
	return questions
}

// hasKeyContaining reports whether any top-level or second-level key of the
// result contains the substring.
func hasKeyContaining(result calc.Result, substr string) bool {
	for key, value := range result {
		if strings.Contains(key, substr) {
			return true
		}
		if nested, ok := value.(map[string]any); ok {
			for k := range nested {
				if strings.Contains(k, substr) {
					return true
				}
			}
		}
	}
	return false
}
