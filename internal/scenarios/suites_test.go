package scenarios

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestctl/internal/gestagent"
	"gestctl/internal/mockserver"
	"gestctl/internal/smoketest"
	"gestctl/pkg/logging"
)

func startMock(t *testing.T, opts mockserver.Options) string {
	t.Helper()

	srv := httptest.NewServer(mockserver.New(logging.Discard(), opts).Handler())
	t.Cleanup(srv.Close)

	return srv.URL
}

func runSuite(t *testing.T, baseURL string, suite smoketest.Suite) (*smoketest.RunResult, string) {
	t.Helper()

	var buf bytes.Buffer
	log := logging.New(logging.LevelInfo, &buf)

	client := gestagent.NewClient(baseURL, gestagent.WithLogger(logging.Discard()))
	runner := smoketest.NewRunner(client, log, smoketest.WithSleep(smoketest.NoSleep))

	return runner.Run(context.Background(), suite), buf.String()
}

func entryNames(card *smoketest.Scorecard) []string {
	var names []string
	for _, e := range card.Entries() {
		names = append(names, e.Name)
	}
	return names
}

func TestMCPSuite_AgainstMock(t *testing.T) {
	url := startMock(t, mockserver.Options{})

	result, out := runSuite(t, url, MCPSuite(MCPOptions{StatusDelay: DefaultStatusDelay}))

	assert.Equal(t, []string{
		"desktop_commander",
		"n8n_workflows",
		"playwright_automation",
		"portal_integration",
		"workflow_creation",
		"performance",
		"error_handling",
	}, entryNames(result.Scorecard))

	for _, sr := range result.ScenarioResults {
		assert.True(t, sr.Passed, "%s: %s", sr.Name, sr.Error)
	}
	assert.Equal(t, 7, result.Scorecard.Passed())
	assert.Equal(t, smoketest.GradeExcellent, result.Scorecard.Grade())
	assert.Equal(t, 0, result.Scorecard.ExitCode())

	assert.Contains(t, out, "📸 Screenshot saved to: /tmp/screenshot.png")
	assert.Contains(t, out, "🔄 Workflow execution ID: exec-")
	assert.Contains(t, out, "📊 Workflow status: completed")
	assert.Contains(t, out, "📊 Extracted table with 2 rows")
	assert.Contains(t, out, "Average response time:")

	perf := result.ScenarioResults[5]
	require.NotNil(t, perf.Performance)
	assert.Equal(t, 5, perf.Performance.Count)
}

func TestMCPSuite_Idempotent(t *testing.T) {
	url := startMock(t, mockserver.Options{})
	suite := MCPSuite(MCPOptions{})

	first, _ := runSuite(t, url, suite)
	second, _ := runSuite(t, url, suite)

	assert.Equal(t, first.Scorecard.Entries(), second.Scorecard.Entries())
	assert.Equal(t, first.Scorecard.Grade(), second.Scorecard.Grade())
}

func TestRealDataSuite_AgainstMock(t *testing.T) {
	url := startMock(t, mockserver.Options{})
	workDir := filepath.Join(t.TempDir(), "docs")

	result, out := runSuite(t, url, RealDataSuite(RealDataOptions{WorkDir: workDir}))

	assert.Equal(t, []string{
		"document_creation",
		"document_upload",
		"document_verification",
		"ai_extraction",
		"sage_export",
	}, entryNames(result.Scorecard))
	assert.Equal(t, 5, result.Scorecard.Passed())
	require.Len(t, result.Documents, 1)

	data, err := os.ReadFile(filepath.Join(workDir, InvoiceFileName))
	require.NoError(t, err)
	assert.Equal(t, InvoicePDF(), data)

	assert.Contains(t, out, "🧾 Invoice Number: INV-2025-001")
	assert.Contains(t, out, "💰 Total: 3388")
	assert.Contains(t, out, "📝 Entries exported: 1")
	assert.Contains(t, out, "📄 Total documents: 1")
}

func TestRealDataSuite_NoExtraction(t *testing.T) {
	url := startMock(t, mockserver.Options{NoExtraction: true})

	result, out := runSuite(t, url, RealDataSuite(RealDataOptions{WorkDir: t.TempDir()}))

	passed, ok := result.Scorecard.Result("ai_extraction")
	require.True(t, ok)
	assert.False(t, passed)

	verified, _ := result.Scorecard.Result("document_verification")
	assert.True(t, verified)

	assert.InDelta(t, 80.0, result.Scorecard.Percentage(), 1e-9)
	assert.Equal(t, smoketest.GradeGood, result.Scorecard.Grade())
	assert.Contains(t, out, "⚠️ Document found but no processed data available")
}

func TestRealDataSuite_ServiceDown(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	result, _ := runSuite(t, url, RealDataSuite(RealDataOptions{WorkDir: t.TempDir()}))

	created, _ := result.Scorecard.Result("document_creation")
	assert.True(t, created)
	assert.Equal(t, 1, result.Scorecard.Passed())
	assert.Equal(t, smoketest.GradeCritical, result.Scorecard.Grade())
	assert.Equal(t, 1, result.Scorecard.ExitCode())
	assert.Empty(t, result.Documents)

	upload := result.ScenarioResults[1].StepResults[0]
	assert.Equal(t, smoketest.ResultError, upload.Result)
}

func TestVerifySuite(t *testing.T) {
	tests := []struct {
		name     string
		seed     []string
		id       string
		passed   int
		notFound bool
	}{
		{name: "seeded document", seed: []string{"doc-1"}, id: "doc-1", passed: 4},
		{name: "unknown document", id: "doc-1", passed: 3, notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := startMock(t, mockserver.Options{Seed: tt.seed})

			result, out := runSuite(t, url, VerifySuite(VerifyOptions{DocumentID: tt.id}))

			assert.Equal(t, []string{"dashboard_stats", "documents_list", "document_found", "document_access"}, entryNames(result.Scorecard))
			assert.Equal(t, tt.passed, result.Scorecard.Passed())

			found, _ := result.Scorecard.Result("document_found")
			assert.Equal(t, !tt.notFound, found)
			assert.Contains(t, out, "Status: 401")
		})
	}
}

func TestVerifySuite_DefaultID(t *testing.T) {
	suite := VerifySuite(VerifyOptions{})
	assert.Equal(t, DefaultVerifyDocumentID, suite.Vars[varDocumentID])
}

func TestBuild(t *testing.T) {
	assert.Equal(t, []string{"mcp", "real-data", "verify"}, Names())

	suite, err := Build("mcp", Options{})
	require.NoError(t, err)
	assert.Equal(t, "mcp", suite.Name)
	assert.Equal(t, MCPBaseURL, DefaultURL("mcp"))
	assert.Equal(t, DocumentsBaseURL, DefaultURL("real-data"))

	_, err = Build("nope", Options{})
	assert.Error(t, err)

	infos := List()
	require.Len(t, infos, 3)
	assert.Equal(t, 7, infos[0].Scenarios)
	assert.Equal(t, 5, infos[1].Scenarios)
	assert.Equal(t, 4, infos[2].Scenarios)
}

func TestInvoiceFixture(t *testing.T) {
	pdf := string(InvoicePDF())
	assert.True(t, strings.HasPrefix(pdf, "%PDF-1.4"))
	assert.True(t, strings.HasSuffix(pdf, "%%EOF"))
	assert.Contains(t, pdf, "(Numero: INV-2025-001) Tj")
}

func TestVerifySuite_ListWithoutDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case gestagent.PathDashboardStats:
			_, _ = w.Write([]byte(`{"data":{"totalDocuments":0,"completedDocuments":0}}`))
		case gestagent.PathDocumentsList:
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"Authentication required"}`))
		}
	}))
	t.Cleanup(srv.Close)

	result, _ := runSuite(t, srv.URL, VerifySuite(VerifyOptions{DocumentID: "doc-1"}))

	listed, _ := result.Scorecard.Result("documents_list")
	assert.False(t, listed)
	assert.Equal(t, "response has no documents list", result.ScenarioResults[1].StepResults[0].Error)
	assert.Equal(t, 2, result.Scorecard.Passed())
}
