package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paisewise/paisewise/internal/advisor"
)

var askParams []string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot financial question",
	Long: `Ask answers a single question and exits. Calculator inputs can be
supplied with repeated --param flags:

  paisewise ask --param annual_income=1500000 "How much tax do I owe?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringArrayVar(&askParams, "param", nil, "calculator input as key=value (repeatable)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	params, err := parseParams(askParams)
	if err != nil {
		return err
	}

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	session := a.Sessions.Create()
	question := strings.Join(args, " ")

	resp, err := a.Engine.Query(ctx, session, question, params)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	printResponse(cmd, resp)
	return nil
}

// printResponse writes the answer, its sources, and any artifacts.
func printResponse(cmd *cobra.Command, resp *advisor.Response) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, resp.Answer)

	if len(resp.Sources) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Sources:")
		for _, s := range resp.Sources {
			fmt.Fprintf(out, "  - %s (similarity %.2f)\n", s.Name, s.Similarity)
		}
	}

	if len(resp.FollowUps) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "You might also ask:")
		for _, q := range resp.FollowUps {
			fmt.Fprintf(out, "  - %s\n", q)
		}
	}

	if resp.Report.Status == advisor.ArtifactGenerated {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Report saved to %s\n", resp.Report.Path)
	}
}
