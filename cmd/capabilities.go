package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"gestctl/internal/app"
	"gestctl/internal/color"
	"gestctl/internal/gestagent"
)

var capabilitiesBaseURL string

func newCapabilitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "List the capability servers and actions a GestAgent service offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			cfg, err := loadConfig(app.Overrides{BaseURL: capabilitiesBaseURL}, "mcp")
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			a, err := app.NewApplication(cfg, log)
			if err != nil {
				return err
			}

			catalog, err := a.Capabilities(ctx)
			if err != nil {
				return err
			}

			printCatalog(cmd.OutOrStdout(), catalog)
			return nil
		},
	}

	cmd.Flags().StringVar(&capabilitiesBaseURL, "base-url", "", "Base URL of the capability service (default from config)")
	return cmd
}

func printCatalog(out io.Writer, catalog gestagent.CapabilityCatalog) {
	names := make([]string, 0, len(catalog.Servers))
	for name := range catalog.Servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		srv := catalog.Servers[name]
		fmt.Fprintf(out, "%s  %s\n", color.Render(color.TitleStyle, name), color.Render(color.MutedStyle, srv.Description))
		fmt.Fprintf(out, "  %s\n", strings.Join(srv.Actions, ", "))
	}
}

func init() {
	rootCmd.AddCommand(newCapabilitiesCmd())
}
