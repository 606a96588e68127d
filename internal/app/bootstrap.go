// Package app wires configuration, the scenario catalogue, the runner and
// report publishing into the operations the commands and the agent expose.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"gestctl/internal/config"
	"gestctl/internal/gestagent"
	"gestctl/internal/scenarios"
	"gestctl/internal/smoketest"
	"gestctl/internal/upload"
)

// reportingSuites write a JSON report after the scorecard
var reportingSuites = map[string]bool{"real-data": true}

// ReportUploader publishes a written report and returns its location.
type ReportUploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// Outcome is the result of one suite run.
type Outcome struct {
	Suite          smoketest.Suite
	Result         *smoketest.RunResult
	ReportPath     string
	ReportLocation string
}

// ExitCode is 0 when the scorecard reaches the passing threshold.
func (o *Outcome) ExitCode() int {
	return o.Result.Scorecard.ExitCode()
}

// Application runs smoke suites with a resolved configuration.
type Application struct {
	cfg        config.GestctlConfig
	log        logrus.FieldLogger
	runnerOpts []smoketest.RunnerOption
	now        func() time.Time
	uploader   ReportUploader
	printOpts  []smoketest.PrintOption
}

// Option configures an Application.
type Option func(*Application)

// WithRunnerOptions passes options to every runner the application creates.
func WithRunnerOptions(opts ...smoketest.RunnerOption) Option {
	return func(a *Application) { a.runnerOpts = append(a.runnerOpts, opts...) }
}

// WithClock sets the clock used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Application) { a.now = now }
}

// WithVerdictStyler styles the scorecard verdict line.
func WithVerdictStyler(style smoketest.VerdictStyler) Option {
	return func(a *Application) {
		a.printOpts = append(a.printOpts, smoketest.WithVerdictStyler(style))
	}
}

// WithUploader replaces the uploader built from the S3 configuration.
func WithUploader(u ReportUploader) Option {
	return func(a *Application) { a.uploader = u }
}

// NewApplication creates an application. An S3 uploader is built when a
// report bucket is configured and none was supplied.
func NewApplication(cfg config.GestctlConfig, log logrus.FieldLogger, opts ...Option) (*Application, error) {
	a := &Application{
		cfg: cfg,
		log: log,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.uploader == nil && cfg.Report.S3.Enabled() {
		u, err := upload.NewS3Uploader(log, cfg.Report.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create report uploader: %w", err)
		}
		a.uploader = u
	}

	return a, nil
}

// Config returns the resolved configuration.
func (a *Application) Config() config.GestctlConfig {
	return a.cfg
}

// RunSuite runs the named suite, prints its scorecard to log and publishes
// the report for suites that produce one. Report problems are logged and do
// not change the outcome.
func (a *Application) RunSuite(ctx context.Context, name string, log logrus.FieldLogger) (*Outcome, error) {
	suite, err := scenarios.Build(name, SuiteOptions(a.cfg))
	if err != nil {
		return nil, err
	}

	baseURL := SuiteBaseURL(a.cfg, name)
	client := gestagent.NewClient(baseURL, gestagent.WithLogger(log))
	runner := smoketest.NewRunner(client, log, a.runnerOpts...)

	log.Infof("🚀 Running %s suite against %s", name, baseURL)
	result := runner.Run(ctx, suite)
	smoketest.PrintScorecard(log, suite, result.Scorecard, a.printOpts...)

	outcome := &Outcome{Suite: suite, Result: result}
	if reportingSuites[name] {
		a.publishReport(ctx, log, outcome)
	}

	return outcome, nil
}

func (a *Application) publishReport(ctx context.Context, log logrus.FieldLogger, outcome *Outcome) {
	path, err := smoketest.WriteJSONReport(a.cfg.Report.Dir, outcome.Result, a.now())
	if err != nil {
		log.WithError(err).Error("❌ Could not save the test report")
		return
	}
	outcome.ReportPath = path
	log.Infof("📄 Detailed report saved: %s", path)

	if a.uploader == nil {
		return
	}

	loc, err := a.uploader.Upload(ctx, path)
	if err != nil {
		log.WithError(err).Warn("⚠️ Report upload failed")
		return
	}
	outcome.ReportLocation = loc
	log.Infof("☁️ Report uploaded: %s", loc)
}

// Capabilities fetches the capability catalogue from the mcp base URL.
func (a *Application) Capabilities(ctx context.Context) (gestagent.CapabilityCatalog, error) {
	client := gestagent.NewClient(SuiteBaseURL(a.cfg, "mcp"), gestagent.WithLogger(a.log))

	resp, err := client.Do(ctx, gestagent.Capabilities())
	if err != nil {
		return gestagent.CapabilityCatalog{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return gestagent.CapabilityCatalog{}, fmt.Errorf("capability listing returned HTTP %d", resp.StatusCode)
	}

	var catalog gestagent.CapabilityCatalog
	if err := gestagent.DecodeBody(resp, &catalog); err != nil {
		return gestagent.CapabilityCatalog{}, fmt.Errorf("decoding capability listing: %w", err)
	}
	return catalog, nil
}
