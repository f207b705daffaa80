package advisor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/paisewise/paisewise/internal/memory"
	"github.com/paisewise/paisewise/internal/rag"
	"github.com/paisewise/paisewise/internal/scenario"
)

const systemInstruction = `You are an expert financial advisor with deep knowledge of personal finance in India.
Use the reference passages, the computed figures and the conversation so far to answer the question.
When providing your response:
1. Directly answer the question
2. Reference specific calculations when available
3. Explain key financial concepts clearly
4. Provide practical, actionable recommendations
5. Highlight potential risks and considerations`

// Assembler builds the completion prompt. Section order is fixed so the
// backend sees a stable layout: instruction, scenario context, calculations,
// reference passages, recent history, question.
type Assembler struct {
	// MaxTokens bounds the estimated size of the assembled prompt. When the
	// full prompt exceeds it, oldest history turns are dropped first, then
	// the least-similar passages. The question and calculation text are
	// never truncated.
	MaxTokens int
	// HistoryTurns is how many recent turns are offered to the prompt
	// before any budget trimming.
	HistoryTurns int
}

// DefaultAssembler returns the assembler profile for an 8K-context model.
func DefaultAssembler() *Assembler {
	return &Assembler{MaxTokens: 6000, HistoryTurns: 4}
}

// Assemble builds the prompt for one query.
func (a *Assembler) Assemble(
	question string,
	t scenario.Type,
	enrichment string,
	calcText string,
	passages []rag.Passage,
	turns []memory.Turn,
) string {
	if n := a.HistoryTurns; len(turns) > n {
		turns = turns[len(turns)-n:]
	}

	fixed := a.render(question, t, enrichment, calcText, nil, nil)
	budget := a.MaxTokens - estimateTokens(fixed)

	// Passages are ordered best first; keep from the front.
	kept := 0
	remaining := budget
	for _, p := range passages {
		cost := estimateTokens(p.Content)
		if remaining < cost {
			break
		}
		kept++
		remaining -= cost
	}
	passages = passages[:kept]

	// Whatever budget the passages left goes to history, newest turns first.
	prompt := a.render(question, t, enrichment, calcText, passages, turns)
	for len(turns) > 0 && estimateTokens(prompt) > a.MaxTokens {
		turns = turns[1:]
		prompt = a.render(question, t, enrichment, calcText, passages, turns)
	}
	// History alone was not enough; shed passages, least similar first.
	for len(passages) > 0 && estimateTokens(prompt) > a.MaxTokens {
		passages = passages[:len(passages)-1]
		prompt = a.render(question, t, enrichment, calcText, passages, turns)
	}
	return prompt
}

func (a *Assembler) render(
	question string,
	t scenario.Type,
	enrichment string,
	calcText string,
	passages []rag.Passage,
	turns []memory.Turn,
) string {
	var b strings.Builder
	b.WriteString(systemInstruction)
	b.WriteString("\n\n")

	b.WriteString("Scenario Analysis\n")
	b.WriteString("-----------------\n")
	fmt.Fprintf(&b, "Type: %s\n", t)
	b.WriteString(enrichment)
	b.WriteString("\n\n")

	b.WriteString("Financial Calculations\n")
	b.WriteString("----------------------\n")
	if calcText != "" {
		b.WriteString(calcText)
	} else {
		b.WriteString("No specific calculations available for this query.")
	}
	b.WriteString("\n\n")

	if len(passages) > 0 {
		b.WriteString("Reference Passages\n")
		b.WriteString("------------------\n")
		for i, p := range passages {
			fmt.Fprintf(&b, "[%d] (%s) %s\n", i+1, p.Source, p.Content)
		}
		b.WriteString("\n")
	}

	if len(turns) > 0 {
		b.WriteString("Recent Conversation\n")
		b.WriteString("-------------------\n")
		for _, turn := range turns {
			label := "Q"
			if turn.Role == memory.RoleAssistant {
				label = "A"
			}
			fmt.Fprintf(&b, "%s: %s\n", label, turn.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s\n", question)
	return b.String()
}

// estimateTokens provides a rough token count: rune count divided by 2, a
// conservative estimate across scripts.
func estimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 2
}
