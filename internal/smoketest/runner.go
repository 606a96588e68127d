package smoketest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"gestctl/internal/gestagent"
)

// Doer issues a request against the service. *gestagent.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req gestagent.Request) (*gestagent.Response, error)
	BaseURL() string
}

// Runner executes suites sequentially against one service
type Runner struct {
	client Doer
	log    logrus.FieldLogger
	sleep  func(ctx context.Context, d time.Duration) error
	now    func() time.Time
}

// RunnerOption customises a Runner
type RunnerOption func(*Runner)

// WithSleep replaces the settle-delay sleep. Tests use it to skip delays.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) RunnerOption {
	return func(r *Runner) {
		r.sleep = sleep
	}
}

// WithClock replaces time.Now for result timestamps.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a runner that logs through log
func NewRunner(client Doer, log logrus.FieldLogger, opts ...RunnerOption) *Runner {
	r := &Runner{
		client: client,
		log:    log,
		sleep:  sleepContext,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoSleep is a sleep that returns immediately unless ctx is done.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Run executes every scenario of suite in order. Captured values are shared
// across the suite. The returned result and its frozen scorecard belong to
// the caller.
func (r *Runner) Run(ctx context.Context, suite Suite) *RunResult {
	result := &RunResult{
		Suite:           suite.Name,
		BaseURL:         r.client.BaseURL(),
		StartTime:       r.now(),
		ScenarioResults: make([]ScenarioResult, 0, len(suite.Scenarios)),
		Scorecard:       NewScorecard(),
		Documents:       []string{},
	}

	vars := Vars{}
	for k, v := range suite.Vars {
		vars[k] = v
	}

	for _, scenario := range suite.Scenarios {
		scenarioResult := r.RunScenario(ctx, scenario, vars)
		result.ScenarioResults = append(result.ScenarioResults, scenarioResult)
		_ = result.Scorecard.Record(scenario.Name, scenarioResult.Passed)

		for i, step := range scenario.Steps {
			if step.Tracks == "" || i >= len(scenarioResult.StepResults) {
				continue
			}
			if id := scenarioResult.StepResults[i].Captured[step.Tracks]; id != "" {
				result.Documents = append(result.Documents, id)
			}
		}
	}

	result.Scorecard.Freeze()
	result.EndTime = r.now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	return result
}

// RunScenario executes one scenario, merging captured values into vars.
// Every step gets a result: steps after a failed required step are skipped.
func (r *Runner) RunScenario(ctx context.Context, scenario Scenario, vars Vars) ScenarioResult {
	result := ScenarioResult{
		Name:      scenario.Name,
		StartTime: r.now(),
		Passed:    true,
	}

	if scenario.Title != "" {
		r.log.Info(scenario.Title)
	}

	if scenario.Probe != nil {
		stats, err := r.RunProbe(ctx, *scenario.Probe)
		result.Performance = &stats
		result.Passed = err == nil && stats.Passed
		if err != nil {
			result.Error = err.Error()
		}
		result.Duration = r.now().Sub(result.StartTime)
		return result
	}

	aborted := ""
	for _, step := range scenario.Steps {
		if aborted != "" {
			result.StepResults = append(result.StepResults, StepResult{
				Step:   step.Name,
				Policy: step.Policy.String(),
				Result: ResultSkipped,
				Error:  fmt.Sprintf("not attempted after %s failed", aborted),
			})
			continue
		}

		stepResult := r.RunStep(ctx, step, vars)
		result.StepResults = append(result.StepResults, stepResult)

		for k, v := range stepResult.Captured {
			vars[k] = v
		}

		if step.Policy == Required && (stepResult.Result == ResultFailed || stepResult.Result == ResultError) {
			result.Passed = false
			result.Error = fmt.Sprintf("%s: %s", step.Name, stepResult.Error)
			aborted = step.Name
		}
	}

	result.Duration = r.now().Sub(result.StartTime)
	return result
}

// RunStep executes a single step and logs its outcome. It never panics: a
// panicking callback is reported as ERROR.
func (r *Runner) RunStep(ctx context.Context, step Step, vars Vars) StepResult {
	result, detail := r.execute(ctx, step, vars)

	result.Soft = step.Policy == Optional && (result.Result == ResultFailed || result.Result == ResultError)
	r.logStep(result)

	for _, line := range detail {
		r.log.Info(line)
	}

	return result
}

func (r *Runner) execute(ctx context.Context, step Step, vars Vars) (result StepResult, detail []string) {
	result = StepResult{Step: step.Name, Policy: step.Policy.String()}

	defer func() {
		if p := recover(); p != nil {
			result.Result = ResultError
			result.Error = fmt.Sprintf("panic: %v", p)
			result.Captured = nil
			detail = nil
		}
	}()

	for _, name := range step.Requires {
		if vars.Has(name) {
			continue
		}
		if step.Policy == Optional {
			result.Result = ResultSkipped
			result.Error = fmt.Sprintf("no %s available", name)
		} else {
			result.Result = ResultFailed
			result.Error = fmt.Sprintf("missing required value %s", name)
		}
		return result, nil
	}

	if step.Delay > 0 {
		r.log.Debugf("Waiting %v before %s", step.Delay, step.Name)
		if err := r.sleep(ctx, step.Delay); err != nil {
			result.Result = ResultError
			result.Error = err.Error()
			return result, nil
		}
	}

	if step.Action != nil {
		start := time.Now()
		captured, err := step.Action(ctx, vars)
		result.Elapsed = time.Since(start)
		if err != nil {
			result.Result = ResultFailed
			result.Error = err.Error()
			return result, nil
		}
		result.Captured = nonEmpty(captured)
		result.Result = ResultPassed
		return result, details(step, nil, vars, result.Captured)
	}

	if step.Request == nil {
		result.Result = ResultError
		result.Error = "step has neither a request nor an action"
		return result, nil
	}

	req, err := step.Request(vars)
	if err != nil {
		result.Result = ResultFailed
		result.Error = err.Error()
		return result, nil
	}

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		var te *gestagent.TransportError
		if errors.As(err, &te) {
			result.Error = fmt.Sprintf("request failed: %v", te.Err)
		} else {
			result.Error = err.Error()
		}
		result.Result = ResultError
		return result, nil
	}

	result.StatusCode = resp.StatusCode
	result.Elapsed = resp.Elapsed

	if step.Expect != nil {
		if err := step.Expect(resp); err != nil {
			result.Result = ResultFailed
			result.Error = err.Error()
			return result, nil
		}
	}

	if step.Match != nil {
		if err := step.Match(resp, vars); err != nil {
			result.Result = ResultFailed
			result.Error = err.Error()
			return result, nil
		}
	}

	if step.Capture != nil {
		result.Captured = nonEmpty(step.Capture(resp, vars))
	}
	result.Result = ResultPassed

	return result, details(step, resp, vars, result.Captured)
}

// details renders the step's detail lines over vars plus the new captures.
func details(step Step, resp *gestagent.Response, vars, captured Vars) []string {
	if step.Detail == nil {
		return nil
	}

	merged := Vars{}
	for k, v := range vars {
		merged[k] = v
	}
	for k, v := range captured {
		merged[k] = v
	}

	return step.Detail(resp, merged)
}

// RunProbe issues the probe request sequentially, logging each call. A call
// with an unexpected status is still sampled; a transport failure ends the
// probe.
func (r *Runner) RunProbe(ctx context.Context, probe PerformanceProbe) (PerfStats, error) {
	count := probe.count()
	sample := make(PerformanceSample, 0, count)

	for i := 1; i <= count; i++ {
		resp, err := r.client.Do(ctx, probe.Request)
		if err != nil {
			r.log.Errorf("❌ Request %d/%d failed: %v", i, count, err)
			return sample.Stats(probe.threshold()), fmt.Errorf("request %d/%d: %w", i, count, err)
		}

		sample = append(sample, resp.Elapsed)

		if resp.StatusCode == 200 {
			r.log.Infof("✅ Request %d/%d completed in %.1fms", i, count, millis(resp.Elapsed))
		} else {
			r.log.Warnf("❌ Request %d/%d failed: HTTP %d", i, count, resp.StatusCode)
		}
	}

	stats := sample.Stats(probe.threshold())
	r.log.Info("📊 Performance Results:")
	r.log.Infof("   Average response time: %.1fms", stats.MeanMs)
	r.log.Infof("   Fastest response: %.1fms", stats.MinMs)
	r.log.Infof("   Slowest response: %.1fms", stats.MaxMs)

	return stats, nil
}

func (r *Runner) logStep(result StepResult) {
	switch {
	case result.Result == ResultPassed:
		if result.StatusCode != 0 {
			r.log.Infof("✅ %s (HTTP %d, %.1fms)", result.Step, result.StatusCode, result.ElapsedMillis())
		} else {
			r.log.Infof("✅ %s", result.Step)
		}
	case result.Result == ResultSkipped:
		r.log.Warnf("⏭️ %s not attempted: %s", result.Step, result.Error)
	case result.Soft:
		r.log.Warnf("⚠️ %s: %s", result.Step, result.Error)
	default:
		r.log.Errorf("❌ %s: %s", result.Step, result.Error)
	}
}

func nonEmpty(vars Vars) Vars {
	if len(vars) == 0 {
		return nil
	}

	out := Vars{}
	for k, v := range vars {
		if v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
