package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// newAskCmd creates the ask subcommand.
func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a phone question",
		Long: `Ask answers a question against the current catalog, exactly as POST /ask does.

Examples:
  phone-advisor-cli ask "Specs of Galaxy S23 Ultra"
  phone-advisor-cli ask "Compare Galaxy S23 Ultra and S22 Ultra for photography"
  phone-advisor-cli ask "Which Samsung phone has the best battery under $1000?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(30 * time.Second)
			defer cancel()

			question := strings.Join(args, " ")

			svc, err := openServices(ctx, false)
			if err != nil {
				return err
			}
			defer svc.Close()

			snap, err := svc.Catalog.Current()
			if err != nil {
				return err
			}

			sp := ui.NewSpinner("Thinking...")
			sp.Start()
			start := time.Now()
			ans, err := svc.Router.Answer(ctx, snap, question)
			sp.Stop()
			if err != nil {
				return fmt.Errorf("answer: %w", err)
			}

			if outputJSON {
				printJSON(map[string]any{
					"question": question,
					"intent":   ans.Intent,
					"answer":   ans.Text,
					"cached":   ans.Cached,
				})
				return nil
			}

			fmt.Println(strings.TrimRight(ans.Text, "\n"))
			if verbose {
				ui.Info("intent=%s catalog=v%d latency=%s", ans.Intent, snap.Version(), FormatDuration(time.Since(start)))
			}
			return nil
		},
	}

	return cmd
}
