package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paisewise/paisewise/internal/calc"
)

// parseParams converts repeated --param key=value flags into calculator
// input. Numeric values become float64, everything else stays a string.
func parseParams(pairs []string) (calc.Input, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(calc.Input, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed parameter %q, want key=value", pair)
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			params[key] = f
		} else {
			params[key] = value
		}
	}
	return params, nil
}
