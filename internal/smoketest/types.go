package smoketest

import (
	"context"
	"time"

	"gestctl/internal/gestagent"
)

// TestResult represents the result of a step or scenario
type TestResult string

const (
	// ResultPassed indicates the step met its expectation
	ResultPassed TestResult = "PASSED"
	// ResultFailed indicates the step ran and did not meet its expectation
	ResultFailed TestResult = "FAILED"
	// ResultSkipped indicates the step was not attempted
	ResultSkipped TestResult = "SKIPPED"
	// ResultError indicates the request never got a response
	ResultError TestResult = "ERROR"
)

// Policy decides whether a step's failure fails its scenario.
type Policy int

const (
	// Required steps fail their scenario when they do not pass.
	Required Policy = iota
	// Optional steps are verification enrichment: a failure is logged as a
	// warning and a missing dependency means the step is not attempted.
	Optional
)

func (p Policy) String() string {
	if p == Optional {
		return "optional"
	}
	return "required"
}

// Vars holds values captured from earlier responses, keyed by name.
type Vars map[string]string

// Has reports whether name was captured with a non-empty value.
func (v Vars) Has(name string) bool {
	return v[name] != ""
}

// Step defines a single step within a scenario
type Step struct {
	// Name is shown in log lines and results
	Name string
	// Policy defaults to Required
	Policy Policy
	// Requires lists captured values that must exist before the step runs
	Requires []string
	// Delay is slept before the step, to let the service settle
	Delay time.Duration
	// Request builds the HTTP call from the captured values
	Request func(vars Vars) (gestagent.Request, error)
	// Action replaces Request for steps that do local work instead of a call
	Action func(ctx context.Context, vars Vars) (Vars, error)
	// Expect returns nil when the response is acceptable
	Expect Expectation
	// Match checks the response against earlier captured values
	Match func(resp *gestagent.Response, vars Vars) error
	// Capture extracts values for later steps. Empty values are dropped.
	Capture func(resp *gestagent.Response, vars Vars) Vars
	// Detail returns extra lines logged after a passing step. resp is nil
	// for actions.
	Detail func(resp *gestagent.Response, vars Vars) []string
	// Tracks names a captured value that identifies a created document
	Tracks string
}

// Scenario is one named entry on the scorecard
type Scenario struct {
	// Name is the scorecard key, e.g. "n8n_workflows"
	Name string
	// Title is logged when the scenario starts
	Title string
	// Steps run in order
	Steps []Step
	// Probe replaces Steps for latency measurements
	Probe *PerformanceProbe
}

// Suite is an ordered set of scenarios sharing captured values
type Suite struct {
	// Name identifies the suite on the command line and in reports
	Name string
	// Heading is printed above the scorecard
	Heading string
	// ScoreLabel prefixes the passed/total line
	ScoreLabel string
	// NameWidth is the display width of the scenario column
	NameWidth int
	// Verdicts holds the grade line for each band
	Verdicts map[Grade]string
	// Vars seeds the captured values before the first scenario
	Vars Vars
	// Scenarios run in order
	Scenarios []Scenario
}

// StepResult represents the result of a single step
type StepResult struct {
	Step       string        `json:"step"`
	Policy     string        `json:"policy"`
	Result     TestResult    `json:"result"`
	Soft       bool          `json:"soft,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	Captured   Vars          `json:"captured,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
	Error      string        `json:"error,omitempty"`
}

// ElapsedMillis returns the elapsed time in milliseconds.
func (r StepResult) ElapsedMillis() float64 {
	return float64(r.Elapsed) / float64(time.Millisecond)
}

// ScenarioResult represents the result of a single scenario
type ScenarioResult struct {
	Name        string        `json:"name"`
	Passed      bool          `json:"passed"`
	StartTime   time.Time     `json:"start_time"`
	Duration    time.Duration `json:"duration"`
	StepResults []StepResult  `json:"step_results"`
	Performance *PerfStats    `json:"performance,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// RunResult is everything a suite run produced. It is owned by the caller.
type RunResult struct {
	Suite           string           `json:"suite"`
	BaseURL         string           `json:"base_url"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         time.Time        `json:"end_time"`
	Duration        time.Duration    `json:"duration"`
	ScenarioResults []ScenarioResult `json:"scenario_results"`
	Scorecard       *Scorecard       `json:"scorecard"`
	Documents       []string         `json:"documents"`
}
