package cmd

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"gestctl/internal/app"
	"gestctl/internal/color"
	"gestctl/internal/mockserver"
)

var (
	mockHost         string
	mockPort         int
	mockLatency      time.Duration
	mockNoExtraction bool
	mockSeed         []string
)

func newMockServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve an in-memory GestAgent API for local dry runs",
		Long: `mock-server starts an in-memory GestAgent API that answers every endpoint
the suites call. Run it on port 3003 for the mcp suite or 3001 for the
document suites, then point 'gestctl test' at it.

  gestctl mock-server --port 3001 --seed 0685005c-998b-4bbd-89b3-e20c0a50351a`,
		Args: cobra.NoArgs,
		RunE: runMockServer,
	}

	cmd.Flags().StringVar(&mockHost, "host", "", "Interface to listen on (default from config)")
	cmd.Flags().IntVar(&mockPort, "port", 0, "Port to listen on (default from config)")
	cmd.Flags().DurationVar(&mockLatency, "latency", 0, "Delay added to every request")
	cmd.Flags().BoolVar(&mockNoExtraction, "no-extraction", false, "Finish uploads without AI extraction data")
	cmd.Flags().StringSliceVar(&mockSeed, "seed", nil, "Document ids that exist from the start")
	return cmd
}

func runMockServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(app.Overrides{}, "")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	ms := cfg.MockServer
	if mockHost != "" {
		ms.Host = mockHost
	}
	if mockPort != 0 {
		ms.Port = mockPort
	}
	if mockLatency != 0 {
		ms.Latency = mockLatency
	}
	if mockNoExtraction {
		ms.NoExtraction = true
	}

	log, err := newLogger(cfg.LogLevel, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	srv := mockserver.New(log, mockserver.Options{
		Latency:      ms.Latency,
		NoExtraction: ms.NoExtraction,
		Seed:         mockSeed,
	})
	if err := srv.Start(net.JoinHostPort(ms.Host, strconv.Itoa(ms.Port))); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.Render(color.TitleStyle, srv.URL()), color.Render(color.MutedStyle, "(Ctrl+C to stop)"))

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

func init() {
	rootCmd.AddCommand(newMockServerCmd())
}
