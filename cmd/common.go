package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"gestctl/internal/app"
	"gestctl/internal/color"
	"gestctl/internal/config"
	"gestctl/pkg/logging"
)

// exit is replaced in tests
var exit = os.Exit

// loadConfig layers the config files and the command-line overrides.
func loadConfig(o app.Overrides, suite string) (config.GestctlConfig, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.GestctlConfig{}, err
	}
	if logLevel != "" {
		o.LogLevel = logLevel
	}
	return o.Apply(cfg, suite), nil
}

func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl, out), nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// runSuite runs one suite with log lines on out and exits non-zero when the
// scorecard does not pass.
func runSuite(ctx context.Context, out io.Writer, suite string, o app.Overrides, opts ...app.Option) error {
	cfg, err := loadConfig(o, suite)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := newLogger(cfg.LogLevel, out)
	if err != nil {
		return err
	}

	opts = append([]app.Option{app.WithVerdictStyler(color.StyleVerdict)}, opts...)
	a, err := app.NewApplication(cfg, log, opts...)
	if err != nil {
		return err
	}

	outcome, err := a.RunSuite(ctx, suite, log)
	if err != nil {
		return err
	}

	if code := outcome.ExitCode(); code != 0 {
		exit(code)
	}
	return nil
}
