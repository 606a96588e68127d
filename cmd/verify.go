package cmd

import (
	"github.com/spf13/cobra"

	"gestctl/internal/app"
)

var verifyBaseURL string

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [document-id]",
		Short: "Check that a document is visible in GestAgent",
		Long: `Verify looks one document up through the dashboard stats, the documents
list and direct access, and scores the four checks. Without an argument the
configured document id is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			o := app.Overrides{BaseURL: verifyBaseURL}
			if len(args) == 1 {
				o.DocumentID = args[0]
			}
			return runSuite(ctx, cmd.OutOrStdout(), "verify", o)
		},
	}

	cmd.Flags().StringVar(&verifyBaseURL, "base-url", "", "Base URL of the GestAgent service (default from config)")
	return cmd
}

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}
