package advisor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paisewise/paisewise/internal/calc"
)

// formatCalculations renders a calculation result as the plain-text block
// fed to the prompt. Amounts are prefixed with the rupee sign; nested maps
// become indented sub-sections; projections are summarized by length, not
// expanded row by row.
func formatCalculations(result calc.Result) string {
	if len(result) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Financial Analysis:\n")
	for _, key := range sortedKeys(result) {
		writeValue(&b, key, result[key], "")
	}
	return b.String()
}

func writeValue(b *strings.Builder, key string, value any, indent string) {
	switch v := value.(type) {
	case float64:
		fmt.Fprintf(b, "%s%s: %s\n", indent, key, formatAmount(v))
	case int:
		fmt.Fprintf(b, "%s%s: %d\n", indent, key, v)
	case string:
		fmt.Fprintf(b, "%s%s: %s\n", indent, key, v)
	case map[string]any:
		fmt.Fprintf(b, "%s%s:\n", indent, key)
		for _, k := range sortedAnyKeys(v) {
			writeValue(b, k, v[k], indent+"  ")
		}
	case []calc.Row:
		fmt.Fprintf(b, "%s%s: projection over %d periods\n", indent, key, len(v))
	case []string:
		fmt.Fprintf(b, "%s%s:\n", indent, key)
		for _, item := range v {
			fmt.Fprintf(b, "%s  - %s\n", indent, item)
		}
	default:
		fmt.Fprintf(b, "%s%s: %v\n", indent, key, v)
	}
}

// formatAmount renders a number as a rupee amount with thousands separators
// and two decimals. Ratios and rates share the format; the key gives the
// reader the unit.
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := "₹" + strings.Join(groups, ",") + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

func sortedKeys(m calc.Result) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedAnyKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
