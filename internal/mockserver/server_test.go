package mockserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestctl/internal/gestagent"
	"gestctl/pkg/logging"
)

func newTestClient(t *testing.T, opts Options) *gestagent.Client {
	t.Helper()

	srv := httptest.NewServer(New(logging.Discard(), opts).Handler())
	t.Cleanup(srv.Close)

	return gestagent.NewClient(srv.URL, gestagent.WithLogger(logging.Discard()))
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
}

func TestExecute(t *testing.T) {
	c := newTestClient(t, Options{Now: fixedNow})
	ctx := context.Background()

	tests := []struct {
		name    string
		server  string
		action  string
		params  map[string]interface{}
		status  int
		success bool
		check   func(t *testing.T, data gestagent.ExecuteData)
	}{
		{
			name: "capture screen", server: "desktop-commander", action: "capture-screen",
			status: http.StatusOK, success: true,
			check: func(t *testing.T, data gestagent.ExecuteData) {
				assert.Equal(t, "/tmp/screenshot.png", data.Screenshot)
			},
		},
		{
			name: "trigger workflow", server: "n8n", action: "trigger-workflow",
			params: map[string]interface{}{"workflowId": "process-invoices"},
			status: http.StatusOK, success: true,
			check: func(t *testing.T, data gestagent.ExecuteData) {
				assert.Equal(t, "exec-1749556800000", data.ExecutionID)
				assert.Equal(t, "running", data.Status)
			},
		},
		{
			name: "workflow status echoes id", server: "n8n", action: "get-workflow-status",
			params: map[string]interface{}{"executionId": "abc"},
			status: http.StatusOK, success: true,
			check: func(t *testing.T, data gestagent.ExecuteData) {
				assert.Equal(t, "abc", data.ExecutionID)
				assert.Equal(t, "completed", data.Status)
			},
		},
		{
			name: "extract table", server: "playwright", action: "extract-table",
			status: http.StatusOK, success: true,
			check: func(t *testing.T, data gestagent.ExecuteData) {
				assert.Len(t, data.Table, 2)
			},
		},
		{name: "unknown server", server: "non-existent-server", action: "test-action", status: http.StatusBadRequest},
		{name: "unknown action", server: "desktop-commander", action: "non-existent-action", status: http.StatusOK},
		{name: "missing action", server: "n8n", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := c.Do(ctx, gestagent.Execute(tt.server, tt.action, tt.params))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var out gestagent.ExecuteResponse
			require.NoError(t, gestagent.DecodeBody(resp, &out))
			assert.Equal(t, tt.success, out.Success)

			if tt.success {
				tt.check(t, out.Data)
			} else {
				assert.True(t, out.HasError(), "failures carry an error message")
			}
		})
	}
}

func TestCapabilities(t *testing.T) {
	c := newTestClient(t, Options{})

	resp, err := c.Do(context.Background(), gestagent.Capabilities())
	require.NoError(t, err)

	var cat gestagent.CapabilityCatalog
	require.NoError(t, gestagent.DecodeBody(resp, &cat))
	require.Contains(t, cat.Servers, "n8n")
	assert.Equal(t, []string{"trigger-workflow", "get-workflow-status", "create-workflow"}, cat.Servers["n8n"].Actions)
	assert.Len(t, cat.Servers, 3)
}

func TestPortalThenProcess(t *testing.T) {
	c := newTestClient(t, Options{})
	ctx := context.Background()

	resp, err := c.Do(ctx, gestagent.Portal(gestagent.PortalCall{
		Portal:       "hacienda",
		Credentials:  gestagent.Credentials{Username: "test_user", Password: "test_pass"},
		DocumentType: "modelo303",
	}))
	require.NoError(t, err)

	var portal gestagent.PortalResponse
	require.NoError(t, gestagent.DecodeBody(resp, &portal))
	require.True(t, portal.Success)
	require.NotEmpty(t, portal.Data.DocumentID)

	resp, err = c.Do(ctx, gestagent.ProcessDocument(portal.Data.DocumentID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = c.Do(ctx, gestagent.ProcessDocument("missing"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = c.Do(ctx, gestagent.Portal(gestagent.PortalCall{Portal: "unknown"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadListExportStats(t *testing.T) {
	c := newTestClient(t, Options{})
	ctx := context.Background()

	resp, err := c.Do(ctx, gestagent.Upload(gestagent.FilePart{
		Name: "test_invoice_real.pdf", MIMEType: "application/pdf", Data: []byte("%PDF-1.4"),
	}, "factura"))
	require.NoError(t, err)

	var up gestagent.UploadResponse
	require.NoError(t, gestagent.DecodeBody(resp, &up))
	require.True(t, up.Success)
	require.NotEmpty(t, up.JobID)

	resp, err = c.Do(ctx, gestagent.ListDocuments())
	require.NoError(t, err)

	var list gestagent.DocumentList
	require.NoError(t, gestagent.DecodeBody(resp, &list))
	doc, ok := list.Find(up.JobID)
	require.True(t, ok)
	assert.Equal(t, "factura", doc.DocumentType)
	assert.True(t, doc.HasExtraction())

	inv, err := doc.Invoice()
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-001", inv.InvoiceNumber)
	assert.Equal(t, "3388", inv.Totals.Total)

	resp, err = c.Do(ctx, gestagent.ExportSageAll())
	require.NoError(t, err)

	var summary gestagent.SageExportSummary
	require.NoError(t, gestagent.DecodeBody(resp, &summary))
	assert.Equal(t, "sage", summary.Format)
	assert.Equal(t, "1", summary.TotalDocuments)

	resp, err = c.Do(ctx, gestagent.ExportSage(gestagent.SageExportCall{
		DocumentIDs:  []string{up.JobID},
		ExportFormat: "sage",
		ExportType:   "accounting_entries",
	}))
	require.NoError(t, err)

	var export gestagent.SageExportResponse
	require.NoError(t, gestagent.DecodeBody(resp, &export))
	assert.True(t, export.Success)
	assert.Equal(t, 1, export.Data.EntriesCount)
	assert.Contains(t, export.Data.ExportFile, "sage_export_")

	resp, err = c.Do(ctx, gestagent.Stats())
	require.NoError(t, err)

	var stats gestagent.DashboardStats
	require.NoError(t, gestagent.DecodeBody(resp, &stats))
	assert.Equal(t, 1, stats.Data.TotalDocuments)
	assert.Equal(t, 1, stats.Data.CompletedDocuments)
}

func TestUploadWithoutExtraction(t *testing.T) {
	c := newTestClient(t, Options{NoExtraction: true})
	ctx := context.Background()

	resp, err := c.Do(ctx, gestagent.Upload(gestagent.FilePart{Name: "a.pdf", Data: []byte("%PDF")}, "factura"))
	require.NoError(t, err)

	var up gestagent.UploadResponse
	require.NoError(t, gestagent.DecodeBody(resp, &up))

	resp, err = c.Do(ctx, gestagent.ListDocuments())
	require.NoError(t, err)

	var list gestagent.DocumentList
	require.NoError(t, gestagent.DecodeBody(resp, &list))
	doc, ok := list.Find(up.JobID)
	require.True(t, ok)
	assert.False(t, doc.HasExtraction())
}

func TestGetDocumentRequiresAuth(t *testing.T) {
	c := newTestClient(t, Options{Seed: []string{"doc-1"}})

	resp, err := c.Do(context.Background(), gestagent.GetDocument("doc-1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var env gestagent.Envelope
	require.NoError(t, gestagent.DecodeBody(resp, &env))
	assert.Equal(t, "Authentication required", env.ErrorText())
}

func TestStartStop(t *testing.T) {
	srv := New(logging.Discard(), Options{Latency: 5 * time.Millisecond})
	require.NoError(t, srv.Start("127.0.0.1:0"))
	require.NotEmpty(t, srv.URL())

	c := gestagent.NewClient(srv.URL(), gestagent.WithLogger(logging.Discard()))
	resp, err := c.Do(context.Background(), gestagent.Stats())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.GreaterOrEqual(t, resp.Elapsed, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
}
