// Package report writes a PDF summary of one advisory query: header,
// question and answer, calculation tables, charts and recommendations.
// Amounts use an "INR" prefix because the core PDF fonts cannot encode the
// rupee sign.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/paisewise/paisewise/internal/calc"
	"github.com/paisewise/paisewise/internal/log"
	"github.com/paisewise/paisewise/internal/scenario"
)

// Generator writes reports into Dir, creating it on demand.
type Generator struct {
	Dir    string
	logger log.Logger

	// now is swapped in tests for stable filenames.
	now func() time.Time
}

// NewGenerator builds a Generator writing into dir.
func NewGenerator(dir string, logger log.Logger) *Generator {
	return &Generator{Dir: dir, logger: logger, now: time.Now}
}

// Generate writes the PDF and returns its path.
func (g *Generator) Generate(t scenario.Type, question, answer string, result calc.Result, charts map[string][]byte) (string, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	g.addHeader(pdf, t)
	g.addSummary(pdf, question, answer)

	if len(result) > 0 {
		pdf.AddPage()
		g.addCalculations(pdf, result)
	}
	if len(charts) > 0 {
		pdf.AddPage()
		g.addCharts(pdf, charts)
	}
	if recs, ok := result["recommendations"].([]string); ok && len(recs) > 0 {
		pdf.AddPage()
		g.addRecommendations(pdf, recs)
	}

	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	filename := fmt.Sprintf("financial_report_%s_%s.pdf", t, g.now().Format("20060102_150405"))
	path := filepath.Join(g.Dir, filename)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	g.logger.Debug("report written", "path", path, "scenario", t)
	return path, nil
}

func (g *Generator) addHeader(pdf *fpdf.Fpdf, t scenario.Type) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Financial Analysis Report - %s", title(string(t))), "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 10, "Generated on: "+g.now().Format("2006-01-02 15:04:05"), "", 1, "", false, 0, "")
	pdf.Ln(10)
}

func (g *Generator) addSummary(pdf *fpdf.Fpdf, question, answer string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Query Summary", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 8, "Question: "+question, "", "", false)
	pdf.Ln(5)
	pdf.MultiCell(0, 8, "Analysis: "+answer, "", "", false)
}

func (g *Generator) addCalculations(pdf *fpdf.Fpdf, result calc.Result) {
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Detailed Calculations", "", 1, "", false, 0, "")
	pdf.Ln(5)

	for _, category := range sortedKeys(result) {
		switch values := result[category].(type) {
		case map[string]any:
			pdf.SetFont("Arial", "B", 12)
			pdf.CellFormat(0, 10, title(category), "", 1, "", false, 0, "")
			pdf.SetFont("Arial", "", 12)
			for _, key := range sortedAnyKeys(values) {
				pdf.CellFormat(0, 8, fmt.Sprintf("%s: %s", title(key), cellValue(values[key])), "", 1, "", false, 0, "")
			}
			pdf.Ln(5)
		case float64:
			pdf.SetFont("Arial", "", 12)
			pdf.CellFormat(0, 8, fmt.Sprintf("%s: %s", title(category), inr(values)), "", 1, "", false, 0, "")
		case []calc.Row:
			pdf.SetFont("Arial", "", 12)
			pdf.CellFormat(0, 8, fmt.Sprintf("%s: projection over %d periods", title(category), len(values)), "", 1, "", false, 0, "")
		}
	}
}

func (g *Generator) addCharts(pdf *fpdf.Fpdf, charts map[string][]byte) {
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Visual Analysis", "", 1, "", false, 0, "")

	names := make([]string, 0, len(charts))
	for name := range charts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, strings.NewReader(string(charts[name])))
		pdf.ImageOptions(name, 10, pdf.GetY(), 190, 0, true, opts, 0, "")
		pdf.Ln(10)
	}
}

func (g *Generator) addRecommendations(pdf *fpdf.Fpdf, recs []string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Recommendations", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	for i, rec := range recs {
		pdf.MultiCell(0, 8, fmt.Sprintf("%d. %s", i+1, rec), "", "", false)
	}
	pdf.Ln(5)
}

func cellValue(v any) string {
	switch n := v.(type) {
	case float64:
		return inr(n)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// inr formats an amount with thousands separators and an INR prefix.
func inr(v float64) string {
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
	out := "INR " + strings.Join(groups, ",") + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// title turns a snake_case key into a display heading.
func title(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
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
