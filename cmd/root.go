package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"gestctl/internal/color"
	"gestctl/pkg/logging"
)

var (
	logLevel        string
	lightBackground bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gestctl",
	Short: "Smoke-test a GestAgent document processing service",
	Long: `gestctl runs end-to-end smoke suites against a GestAgent service over
HTTP: capability server actions, the real invoice workflow from upload to
SAGE export, and document verification. Each suite prints a timestamped log
and a graded scorecard, and the exit code tells CI whether it passed.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. unknown suite, unreachable service)
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		color.Initialize(!lightBackground)
	},
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gestctl version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config, info)")
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return logging.Levels(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.PersistentFlags().BoolVar(&lightBackground, "light-background", false, "Use colours suited to a light terminal background")

	rootCmd.AddCommand(newVersionCmd())
}
