package scenarios

import (
	"fmt"
	"time"

	"gestctl/internal/gestagent"
	"gestctl/internal/smoketest"
)

// MCP suite defaults
const (
	MCPBaseURL         = "http://localhost:3003"
	DefaultStatusDelay = time.Second
	agenciaTributaria  = "https://sede.agenciatributaria.gob.es"
)

// MCPOptions tune the capability suite
type MCPOptions struct {
	// StatusDelay is waited before polling a triggered workflow
	StatusDelay time.Duration
}

func executeData(resp *gestagent.Response) gestagent.ExecuteData {
	var out gestagent.ExecuteResponse
	_ = gestagent.DecodeBody(resp, &out)
	return out.Data
}

func execute(server, action string, params map[string]interface{}) func(smoketest.Vars) (gestagent.Request, error) {
	return func(smoketest.Vars) (gestagent.Request, error) {
		return gestagent.Execute(server, action, params), nil
	}
}

// MCPSuite exercises the simulated capability servers.
func MCPSuite(opts MCPOptions) smoketest.Suite {
	statusDelay := opts.StatusDelay
	if statusDelay < 0 {
		statusDelay = 0
	}

	captureScreen := gestagent.Execute("desktop-commander", "capture-screen", nil)

	return smoketest.Suite{
		Name:       "mcp",
		Heading:    "ADVANCED MCP TEST RESULTS",
		ScoreLabel: "MCP INTEGRATION SCORE",
		NameWidth:  20,
		Verdicts: map[smoketest.Grade]string{
			smoketest.GradeExcellent: "🏆 EXCELLENT - MCP integration is fully functional!",
			smoketest.GradeGood:      "👍 GOOD - MCP integration is working well",
			smoketest.GradeWarning:   "⚠️ WARNING - MCP integration has some issues",
			smoketest.GradeCritical:  "🚨 CRITICAL - MCP integration needs attention",
		},
		Scenarios: []smoketest.Scenario{
			{
				Name:  "desktop_commander",
				Title: "🖥️ Testing MCP Desktop Commander...",
				Steps: []smoketest.Step{{
					Name:    "Desktop capture",
					Request: execute("desktop-commander", "capture-screen", nil),
					Expect:  smoketest.ExpectSuccess(),
					Detail: func(resp *gestagent.Response, _ smoketest.Vars) []string {
						return []string{"📸 Screenshot saved to: " + gestagent.OrNA(executeData(resp).Screenshot)}
					},
				}},
			},
			{
				Name:  "n8n_workflows",
				Title: "🔄 Testing MCP n8n Workflows...",
				Steps: []smoketest.Step{
					{
						Name: "n8n workflow trigger",
						Request: execute("n8n", "trigger-workflow", map[string]interface{}{
							"workflowId": "process-invoices",
							"data": map[string]interface{}{
								"documentType": "invoice",
								"priority":     "high",
							},
						}),
						Expect: smoketest.ExpectSuccess(),
						Capture: func(resp *gestagent.Response, _ smoketest.Vars) smoketest.Vars {
							return smoketest.Vars{"executionId": executeData(resp).ExecutionID}
						},
						Detail: func(_ *gestagent.Response, v smoketest.Vars) []string {
							return []string{"🔄 Workflow execution ID: " + gestagent.OrNA(v["executionId"])}
						},
					},
					{
						Name:     "n8n workflow status",
						Policy:   smoketest.Optional,
						Requires: []string{"executionId"},
						Delay:    statusDelay,
						Request: func(v smoketest.Vars) (gestagent.Request, error) {
							return gestagent.Execute("n8n", "get-workflow-status", map[string]interface{}{
								"executionId": v["executionId"],
							}), nil
						},
						Expect: smoketest.ExpectSuccess(),
						Detail: func(resp *gestagent.Response, _ smoketest.Vars) []string {
							status := executeData(resp).Status
							if status == "" {
								status = "unknown"
							}
							return []string{"📊 Workflow status: " + status}
						},
					},
				},
			},
			{
				Name:  "playwright_automation",
				Title: "🌐 Testing MCP Playwright Automation...",
				Steps: []smoketest.Step{
					{
						Name:    "Playwright navigation",
						Request: execute("playwright", "navigate", map[string]interface{}{"url": agenciaTributaria}),
						Expect:  smoketest.ExpectSuccess(),
						Detail: func(resp *gestagent.Response, _ smoketest.Vars) []string {
							return []string{"🌐 Navigated to: " + gestagent.OrNA(executeData(resp).URL)}
						},
					},
					{
						Name:   "Playwright table extraction",
						Policy: smoketest.Optional,
						Request: execute("playwright", "extract-table", map[string]interface{}{
							"url":      agenciaTributaria,
							"selector": "table.data-table",
						}),
						Expect: smoketest.ExpectSuccess(),
						Detail: func(resp *gestagent.Response, _ smoketest.Vars) []string {
							return []string{fmt.Sprintf("📊 Extracted table with %d rows", len(executeData(resp).Table))}
						},
					},
				},
			},
			{
				Name:  "portal_integration",
				Title: "🏢 Testing MCP Portal Integration...",
				Steps: []smoketest.Step{
					{
						Name: "Portal download",
						Request: func(smoketest.Vars) (gestagent.Request, error) {
							return gestagent.Portal(gestagent.PortalCall{
								Portal:       "hacienda",
								Credentials:  gestagent.Credentials{Username: "test_user", Password: "test_pass"},
								DocumentType: "modelo303",
							}), nil
						},
						Expect: smoketest.ExpectSuccess(),
						Capture: func(resp *gestagent.Response, _ smoketest.Vars) smoketest.Vars {
							var out gestagent.PortalResponse
							_ = gestagent.DecodeBody(resp, &out)
							return smoketest.Vars{"portalDocumentId": out.Data.DocumentID}
						},
						Detail: func(_ *gestagent.Response, v smoketest.Vars) []string {
							return []string{"📄 Created document: " + gestagent.OrNA(v["portalDocumentId"])}
						},
					},
					{
						Name:     "Document processing",
						Policy:   smoketest.Optional,
						Requires: []string{"portalDocumentId"},
						Request: func(v smoketest.Vars) (gestagent.Request, error) {
							return gestagent.ProcessDocument(v["portalDocumentId"]), nil
						},
						Expect: smoketest.ExpectSuccess(),
					},
				},
			},
			{
				Name:  "workflow_creation",
				Title: "⚙️ Testing MCP Workflow Creation...",
				Steps: []smoketest.Step{{
					Name: "Workflow creation",
					Request: execute("n8n", "create-workflow", map[string]interface{}{
						"name": "Advanced Invoice Processing",
						"nodes": []map[string]string{
							{"type": "webhook", "name": "Document Received"},
							{"type": "ocr", "name": "Extract Text"},
							{"type": "ai", "name": "Process with AI"},
							{"type": "validate", "name": "Validate Invoice"},
							{"type": "accounting", "name": "Create Accounting Entry"},
							{"type": "notification", "name": "Notify Completion"},
						},
					}),
					Expect: smoketest.ExpectSuccess(),
					Detail: func(resp *gestagent.Response, _ smoketest.Vars) []string {
						return []string{"🔧 Created workflow: " + gestagent.OrNA(executeData(resp).WorkflowID)}
					},
				}},
			},
			{
				Name:  "performance",
				Title: "⚡ Testing MCP Performance...",
				Probe: &smoketest.PerformanceProbe{
					Request:   captureScreen,
					Count:     smoketest.DefaultProbeCount,
					Threshold: smoketest.DefaultProbeThreshold,
				},
			},
			{
				Name:  "error_handling",
				Title: "🚨 Testing MCP Error Handling...",
				Steps: []smoketest.Step{
					{
						Name:    "Invalid server error handling",
						Request: execute("non-existent-server", "test-action", nil),
						Expect:  smoketest.ExpectRejected(),
					},
					{
						Name:    "Invalid action error handling",
						Request: execute("desktop-commander", "non-existent-action", nil),
						Expect:  smoketest.ExpectStructuredFailure(),
					},
				},
			},
		},
	}
}
