package smoketest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ReportFilePrefix names JSON reports written after a run.
const ReportFilePrefix = "real_data_test_report_"

var (
	heavyRule = strings.Repeat("=", 60)
	lightRule = strings.Repeat("-", 60)
)

// VerdictStyler decorates the verdict line for its grade.
type VerdictStyler func(grade Grade, verdict string) string

// PrintOption customises PrintScorecard
type PrintOption func(*printOptions)

type printOptions struct {
	styleVerdict VerdictStyler
}

// WithVerdictStyler renders the verdict through style.
func WithVerdictStyler(style VerdictStyler) PrintOption {
	return func(o *printOptions) { o.styleVerdict = style }
}

// PrintScorecard logs the scorecard block: heading, one line per scenario,
// the score summary and the verdict for the grade.
func PrintScorecard(log logrus.FieldLogger, suite Suite, card *Scorecard, opts ...PrintOption) {
	var o printOptions
	for _, opt := range opts {
		opt(&o)
	}

	log.Info(heavyRule)
	log.Infof("📊 %s", suite.Heading)
	log.Info(heavyRule)

	for _, line := range card.Lines(suite.NameWidth) {
		log.Info(line)
	}

	log.Info(lightRule)
	log.Info(card.Summary(suite.ScoreLabel))

	grade := card.Grade()
	verdict, ok := suite.Verdicts[grade]
	if !ok {
		verdict = string(grade)
	}
	if o.styleVerdict != nil {
		verdict = o.styleVerdict(grade, verdict)
	}
	log.Info(verdict)
}

// ReportSummary is the summary block of a JSON report
type ReportSummary struct {
	TotalTests  int   `json:"total_tests"`
	PassedTests int   `json:"passed_tests"`
	FailedTests int   `json:"failed_tests"`
	Status      Grade `json:"status"`
}

// Report is the JSON document written after a run
type Report struct {
	Timestamp       string        `json:"timestamp"`
	TestResults     *Scorecard    `json:"test_results"`
	SuccessRate     float64       `json:"success_rate"`
	DocumentsTested []string      `json:"documents_tested"`
	Summary         ReportSummary `json:"summary"`
}

// NewReport builds the report for a finished run.
func NewReport(result *RunResult, now time.Time) Report {
	card := result.Scorecard
	if card == nil {
		card = NewScorecard()
	}

	docs := result.Documents
	if docs == nil {
		docs = []string{}
	}

	return Report{
		Timestamp:       now.Format("2006-01-02T15:04:05.000000"),
		TestResults:     card,
		SuccessRate:     card.Percentage(),
		DocumentsTested: docs,
		Summary: ReportSummary{
			TotalTests:  card.Total(),
			PassedTests: card.Passed(),
			FailedTests: card.Failed(),
			Status:      card.Grade(),
		},
	}
}

// ReportFileName returns real_data_test_report_<YYYYMMDD_HHMMSS>.json.
func ReportFileName(now time.Time) string {
	return ReportFilePrefix + now.Format("20060102_150405") + ".json"
}

// WriteJSONReport writes the report for result into dir and returns its path.
func WriteJSONReport(dir string, result *RunResult, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	data, err := json.MarshalIndent(NewReport(result, now), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling report: %w", err)
	}

	path := filepath.Join(dir, ReportFileName(now))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	return path, nil
}
