package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paisewise/paisewise/internal/advisor"
	"github.com/paisewise/paisewise/internal/calc"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive advisory session",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	session := a.Sessions.Create()

	fmt.Fprintln(out, "PaiseWise: ask about tax, retirement, investments, insurance, and more.")
	fmt.Fprintln(out, "Type 'reset' to clear the conversation, 'exit' to quit.")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())

		switch question {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Goodbye.")
			return nil
		case "reset":
			session.Reset()
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}

		resp, err := a.Engine.Query(ctx, session, question, nil)
		if err != nil {
			printQueryError(out, err)
			continue
		}

		fmt.Fprintln(out)
		printResponse(cmd, resp)
		fmt.Fprintln(out)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// printQueryError keeps the session alive on recoverable failures, showing
// input problems as guidance rather than stack traces.
func printQueryError(out io.Writer, err error) {
	var validationErr *calc.ValidationError
	var domainErr *calc.DomainError
	switch {
	case errors.As(err, &validationErr):
		fmt.Fprintf(out, "Check your inputs: %v\n", validationErr)
	case errors.As(err, &domainErr):
		fmt.Fprintf(out, "That doesn't add up: %v\n", domainErr)
	case errors.Is(err, advisor.ErrSessionBusy):
		fmt.Fprintln(out, "Still working on the previous question.")
	default:
		fmt.Fprintf(out, "Something went wrong: %v\n", err)
	}
}
