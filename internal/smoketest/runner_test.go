package smoketest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestctl/internal/gestagent"
	"gestctl/pkg/logging"
)

// fakeDoer replays canned responses in order and records every request.
type fakeDoer struct {
	responses []*gestagent.Response
	requests  []gestagent.Request
	err       error
}

func (f *fakeDoer) Do(_ context.Context, req gestagent.Request) (*gestagent.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, fmt.Errorf("no canned response for %s %s", req.Method, req.Path)
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *fakeDoer) BaseURL() string {
	return "http://gestagent.test"
}

func jsonResponse(t *testing.T, status int, body string) *gestagent.Response {
	t.Helper()

	var decoded interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))

	return &gestagent.Response{StatusCode: status, Body: decoded, Raw: []byte(body), Elapsed: time.Millisecond}
}

func newTestRunner(doer Doer) *Runner {
	return NewRunner(doer, logging.Discard(), WithSleep(NoSleep))
}

func triggerStep() Step {
	return Step{
		Name: "trigger workflow",
		Request: func(Vars) (gestagent.Request, error) {
			return gestagent.Execute("n8n", "trigger-workflow", nil), nil
		},
		Expect: ExpectSuccess(),
		Capture: func(resp *gestagent.Response, _ Vars) Vars {
			var out gestagent.ExecuteResponse
			_ = gestagent.DecodeBody(resp, &out)
			return Vars{"executionId": out.Data.ExecutionID}
		},
	}
}

func statusStep() Step {
	return Step{
		Name:     "workflow status",
		Policy:   Optional,
		Requires: []string{"executionId"},
		Delay:    time.Second,
		Request: func(v Vars) (gestagent.Request, error) {
			return gestagent.Execute("n8n", "get-workflow-status", map[string]interface{}{
				"executionId": v["executionId"],
			}), nil
		},
		Expect: ExpectSuccess(),
	}
}

func TestRunScenario_ChainsCapturedValue(t *testing.T) {
	doer := &fakeDoer{responses: []*gestagent.Response{
		jsonResponse(t, http.StatusOK, `{"success":true,"data":{"executionId":"abc"}}`),
		jsonResponse(t, http.StatusOK, `{"success":true,"data":{"status":"completed"}}`),
	}}

	vars := Vars{}
	result := newTestRunner(doer).RunScenario(context.Background(), Scenario{
		Name:  "n8n_workflows",
		Steps: []Step{triggerStep(), statusStep()},
	}, vars)

	assert.True(t, result.Passed)
	require.Len(t, result.StepResults, 2)
	assert.Equal(t, ResultPassed, result.StepResults[0].Result)
	assert.Equal(t, ResultPassed, result.StepResults[1].Result)
	assert.Equal(t, "abc", vars["executionId"])

	require.Len(t, doer.requests, 2)
	call, ok := doer.requests[1].JSON.(gestagent.ExecuteCall)
	require.True(t, ok)
	assert.Equal(t, "abc", call.Params["executionId"])
}

func TestRunScenario_MissingIDSkipsOptionalStep(t *testing.T) {
	doer := &fakeDoer{responses: []*gestagent.Response{
		jsonResponse(t, http.StatusOK, `{"success":true,"data":{}}`),
	}}

	result := newTestRunner(doer).RunScenario(context.Background(), Scenario{
		Name:  "n8n_workflows",
		Steps: []Step{triggerStep(), statusStep()},
	}, Vars{})

	assert.True(t, result.Passed, "a skipped optional step must not fail the scenario")
	require.Len(t, result.StepResults, 2)
	assert.Equal(t, ResultSkipped, result.StepResults[1].Result)
	assert.False(t, result.StepResults[1].Soft)
	assert.Len(t, doer.requests, 1, "skipped step must not send a request")
}

func TestRunScenario_MissingValueFailsRequiredStep(t *testing.T) {
	step := statusStep()
	step.Policy = Required

	result := newTestRunner(&fakeDoer{}).RunScenario(context.Background(), Scenario{
		Name:  "document_verification",
		Steps: []Step{step},
	}, Vars{})

	assert.False(t, result.Passed)
	require.Len(t, result.StepResults, 1)
	assert.Equal(t, ResultFailed, result.StepResults[0].Result)
	assert.Contains(t, result.Error, "executionId")
}

func TestRunScenario_RequiredFailureSkipsRest(t *testing.T) {
	doer := &fakeDoer{responses: []*gestagent.Response{
		jsonResponse(t, http.StatusInternalServerError, `{"error":"boom"}`),
	}}

	result := newTestRunner(doer).RunScenario(context.Background(), Scenario{
		Name:  "n8n_workflows",
		Steps: []Step{triggerStep(), statusStep()},
	}, Vars{})

	assert.False(t, result.Passed)
	require.Len(t, result.StepResults, 2)
	assert.Equal(t, ResultFailed, result.StepResults[0].Result)
	assert.Equal(t, "HTTP 500", result.StepResults[0].Error)
	assert.Equal(t, 500, result.StepResults[0].StatusCode)
	assert.Equal(t, ResultSkipped, result.StepResults[1].Result)
	assert.Len(t, doer.requests, 1)
}

func TestRunScenario_OptionalFailureIsSoft(t *testing.T) {
	doer := &fakeDoer{responses: []*gestagent.Response{
		jsonResponse(t, http.StatusOK, `{"success":true,"data":{"executionId":"abc"}}`),
		jsonResponse(t, http.StatusOK, `{"success":false,"error":"not found"}`),
	}}

	result := newTestRunner(doer).RunScenario(context.Background(), Scenario{
		Name:  "n8n_workflows",
		Steps: []Step{triggerStep(), statusStep()},
	}, Vars{})

	assert.True(t, result.Passed)
	require.Len(t, result.StepResults, 2)
	assert.Equal(t, ResultFailed, result.StepResults[1].Result)
	assert.True(t, result.StepResults[1].Soft)
	assert.Equal(t, "not found", result.StepResults[1].Error)
}

func TestRunStep_TransportErrorIsError(t *testing.T) {
	doer := &fakeDoer{err: &gestagent.TransportError{
		Method: http.MethodPost,
		URL:    "http://gestagent.test/api/mcp/execute",
		Err:    errors.New("connection refused"),
	}}

	result := newTestRunner(doer).RunStep(context.Background(), triggerStep(), Vars{})

	assert.Equal(t, ResultError, result.Result)
	assert.Contains(t, result.Error, "connection refused")
	assert.False(t, result.Soft)
}

func TestRunStep_PanicIsContained(t *testing.T) {
	doer := &fakeDoer{responses: []*gestagent.Response{
		jsonResponse(t, http.StatusOK, `{"success":true}`),
	}}

	step := Step{
		Name: "explodes",
		Request: func(Vars) (gestagent.Request, error) {
			return gestagent.Stats(), nil
		},
		Expect: func(*gestagent.Response) error {
			panic("unexpected shape")
		},
	}

	var result StepResult
	require.NotPanics(t, func() {
		result = newTestRunner(doer).RunStep(context.Background(), step, Vars{})
	})
	assert.Equal(t, ResultError, result.Result)
	assert.Contains(t, result.Error, "unexpected shape")
}

func TestRunStep_ActionCapturesValues(t *testing.T) {
	step := Step{
		Name: "create file",
		Action: func(_ context.Context, v Vars) (Vars, error) {
			return Vars{"file": "/tmp/x.pdf", "empty": ""}, nil
		},
	}

	result := newTestRunner(&fakeDoer{}).RunStep(context.Background(), step, Vars{})

	assert.Equal(t, ResultPassed, result.Result)
	assert.Equal(t, Vars{"file": "/tmp/x.pdf"}, result.Captured)
}

func TestRunStep_CancelledDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	step := statusStep()
	result := NewRunner(&fakeDoer{}, logging.Discard()).RunStep(ctx, step, Vars{"executionId": "abc"})

	assert.Equal(t, ResultError, result.Result)
	assert.True(t, result.Soft)
}

func TestErrorExpectationShapes(t *testing.T) {
	tests := []struct {
		name   string
		expect Expectation
		status int
		body   string
		pass   bool
	}{
		{name: "unknown server rejected", expect: ExpectRejected(), status: 400, body: `{"error":"unknown server"}`, pass: true},
		{name: "rejection without message", expect: ExpectRejected(), status: 400, body: `{}`, pass: false},
		{name: "rejection with wrong status", expect: ExpectRejected(), status: 500, body: `{"error":"unknown server"}`, pass: false},
		{name: "unknown action structured failure", expect: ExpectStructuredFailure(), status: 200, body: `{"success":false,"error":"unknown action"}`, pass: true},
		{name: "structured failure without error", expect: ExpectStructuredFailure(), status: 200, body: `{"success":false}`, pass: false},
		{name: "unexpected success", expect: ExpectStructuredFailure(), status: 200, body: `{"success":true,"error":"x"}`, pass: false},
		{name: "structured failure with empty object error", expect: ExpectStructuredFailure(), status: 200, body: `{"success":false,"error":{}}`, pass: false},
		{name: "structured failure with false error", expect: ExpectStructuredFailure(), status: 200, body: `{"success":false,"error":false}`, pass: false},
		{name: "structured failure with empty list error", expect: ExpectStructuredFailure(), status: 200, body: `{"success":false,"error":[]}`, pass: false},
		{name: "rejection with empty object error", expect: ExpectRejected(), status: 400, body: `{"error":{}}`, pass: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &fakeDoer{responses: []*gestagent.Response{jsonResponse(t, tt.status, tt.body)}}
			step := Step{
				Name: tt.name,
				Request: func(Vars) (gestagent.Request, error) {
					return gestagent.Execute("desktop-commander", "non-existent-action", nil), nil
				},
				Expect: tt.expect,
			}

			result := newTestRunner(doer).RunStep(context.Background(), step, Vars{})
			assert.Equal(t, tt.pass, result.Result == ResultPassed, result.Error)
		})
	}
}

func TestRunProbe_Stats(t *testing.T) {
	var responses []*gestagent.Response
	for _, ms := range []int{100, 150, 120, 110, 130} {
		resp := jsonResponse(t, http.StatusOK, `{"success":true}`)
		resp.Elapsed = time.Duration(ms) * time.Millisecond
		responses = append(responses, resp)
	}
	responses[2].StatusCode = http.StatusServiceUnavailable

	doer := &fakeDoer{responses: responses}
	stats, err := newTestRunner(doer).RunProbe(context.Background(), PerformanceProbe{
		Request: gestagent.Execute("desktop-commander", "capture-screen", nil),
	})
	require.NoError(t, err)

	assert.Len(t, doer.requests, 5)
	assert.Equal(t, 5, stats.Count, "non-200 calls are still sampled")
	assert.InDelta(t, 122.0, stats.MeanMs, 0.001)
	assert.InDelta(t, 100.0, stats.MinMs, 0.001)
	assert.InDelta(t, 150.0, stats.MaxMs, 0.001)
	assert.True(t, stats.Passed)
}

func TestRunScenario_ProbeFailsOnTransportError(t *testing.T) {
	doer := &fakeDoer{err: errors.New("connection refused")}

	result := newTestRunner(doer).RunScenario(context.Background(), Scenario{
		Name:  "performance",
		Probe: &PerformanceProbe{Request: gestagent.Stats()},
	}, Vars{})

	assert.False(t, result.Passed)
	require.NotNil(t, result.Performance)
	assert.Equal(t, 0, result.Performance.Count)
	assert.Len(t, doer.requests, 1)
}

func TestRun_TracksDocumentsAndFreezes(t *testing.T) {
	doer := &fakeDoer{responses: []*gestagent.Response{
		jsonResponse(t, http.StatusOK, `{"success":true,"jobId":"job-1"}`),
		jsonResponse(t, http.StatusOK, `{"success":false,"error":"nope"}`),
	}}

	upload := Step{
		Name: "upload",
		Request: func(Vars) (gestagent.Request, error) {
			return gestagent.Upload(gestagent.FilePart{Name: "a.pdf", Data: []byte("%PDF")}, "factura"), nil
		},
		Expect: ExpectSuccess(),
		Capture: func(resp *gestagent.Response, _ Vars) Vars {
			var up gestagent.UploadResponse
			_ = gestagent.DecodeBody(resp, &up)
			return Vars{"jobId": up.JobID}
		},
		Tracks: "jobId",
	}
	list := Step{
		Name:     "list",
		Requires: []string{"jobId"},
		Request: func(Vars) (gestagent.Request, error) {
			return gestagent.ListDocuments(), nil
		},
		Expect: ExpectSuccess(),
	}

	result := newTestRunner(doer).Run(context.Background(), Suite{
		Name: "real-data",
		Scenarios: []Scenario{
			{Name: "document_upload", Steps: []Step{upload}},
			{Name: "document_verification", Steps: []Step{list}},
		},
	})

	assert.Equal(t, "real-data", result.Suite)
	assert.Equal(t, "http://gestagent.test", result.BaseURL)
	assert.Equal(t, []string{"job-1"}, result.Documents)
	assert.Equal(t, []ScoreEntry{
		{Name: "document_upload", Passed: true},
		{Name: "document_verification", Passed: false},
	}, result.Scorecard.Entries())
	assert.True(t, result.Scorecard.Frozen())
	assert.ErrorIs(t, result.Scorecard.Record("late", true), ErrScorecardFrozen)
}

func TestAll(t *testing.T) {
	requireID := func(resp *gestagent.Response) error {
		if obj, ok := resp.Object(); !ok || obj["id"] == nil {
			return errors.New("no id")
		}
		return nil
	}

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "all satisfied", status: http.StatusOK, body: `{"id":"a"}`},
		{name: "first fails first", status: http.StatusNotFound, body: `{}`, wantErr: "HTTP 404"},
		{name: "second fails", status: http.StatusOK, body: `{}`, wantErr: "no id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := All(ExpectStatus(http.StatusOK), requireID)(jsonResponse(t, tt.status, tt.body))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.NoError(t, All()(jsonResponse(t, http.StatusTeapot, `{}`)))
}
