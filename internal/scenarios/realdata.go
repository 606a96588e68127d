package scenarios

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gestctl/internal/gestagent"
	"gestctl/internal/smoketest"
)

// Real-data suite defaults
const (
	DocumentsBaseURL    = "http://localhost:3001"
	DefaultIndexDelay   = 2 * time.Second
	DefaultDocumentType = "factura"
)

// DefaultWorkDir is where the invoice fixture is written.
var DefaultWorkDir = filepath.Join(os.TempDir(), "gestagent_test_docs")

// RealDataOptions tune the document workflow suite
type RealDataOptions struct {
	// WorkDir receives the invoice fixture
	WorkDir string
	// IndexDelay is waited before looking the upload up in the list
	IndexDelay time.Duration
	// DocumentType is sent with the upload
	DocumentType string
	// ExportRange bounds the targeted SAGE export
	ExportRange gestagent.DateRange
}

func (o RealDataOptions) withDefaults() RealDataOptions {
	if o.WorkDir == "" {
		o.WorkDir = DefaultWorkDir
	}
	if o.IndexDelay < 0 {
		o.IndexDelay = 0
	}
	if o.DocumentType == "" {
		o.DocumentType = DefaultDocumentType
	}
	if o.ExportRange.Start == "" && o.ExportRange.End == "" {
		o.ExportRange = gestagent.DateRange{Start: "2025-06-01", End: "2025-06-30"}
	}
	return o
}

// Captured value names shared by the real-data scenarios
const (
	varInvoiceFile = "invoiceFile"
	varJobID       = "jobId"
	varExtracted   = "extracted"
)

func findUploaded(resp *gestagent.Response, vars smoketest.Vars) (gestagent.Document, int, error) {
	var list gestagent.DocumentList
	if err := gestagent.DecodeBody(resp, &list); err != nil {
		return gestagent.Document{}, 0, err
	}

	doc, ok := list.Find(vars[varJobID])
	if !ok {
		return gestagent.Document{}, len(list.Documents), errors.New("uploaded document not found in the list")
	}
	return doc, len(list.Documents), nil
}

func invoiceLines(doc gestagent.Document) []string {
	inv, err := doc.Invoice()
	if err != nil {
		return []string{fmt.Sprintf("⚠️ Extraction data unreadable: %v", err)}
	}

	return []string{
		"✅ Mistral AI extraction completed and visible",
		"🏢 Supplier: " + gestagent.OrNA(inv.Supplier.Name),
		"🧾 Invoice Number: " + gestagent.OrNA(inv.InvoiceNumber),
		"📅 Date: " + gestagent.OrNA(inv.IssueDate),
		"💰 Total: " + gestagent.OrNA(inv.Totals.Total),
		"💸 Tax: " + gestagent.OrNA(inv.Totals.TotalTaxAmount),
	}
}

// RealDataSuite uploads a real invoice and follows it through listing,
// extraction and SAGE export.
func RealDataSuite(opts RealDataOptions) smoketest.Suite {
	opts = opts.withDefaults()

	return smoketest.Suite{
		Name:       "real-data",
		Heading:    "REAL DATA TEST RESULTS",
		ScoreLabel: "REAL DATA TEST SCORE",
		NameWidth:  25,
		Verdicts: map[smoketest.Grade]string{
			smoketest.GradeExcellent: "🏆 EXCELLENT - Real data processing is working perfectly!",
			smoketest.GradeGood:      "👍 GOOD - Real data processing is working well",
			smoketest.GradeWarning:   "⚠️ WARNING - Real data processing has some issues",
			smoketest.GradeCritical:  "🚨 CRITICAL - Real data processing needs attention",
		},
		Scenarios: []smoketest.Scenario{
			{
				Name:  "document_creation",
				Title: "📋 Step 1: Creating test invoice document...",
				Steps: []smoketest.Step{{
					Name: "Test invoice PDF",
					Action: func(_ context.Context, _ smoketest.Vars) (smoketest.Vars, error) {
						path, err := WriteInvoice(opts.WorkDir)
						if err != nil {
							return nil, err
						}
						return smoketest.Vars{varInvoiceFile: path}, nil
					},
					Detail: func(_ *gestagent.Response, v smoketest.Vars) []string {
						return []string{"📄 Test PDF created: " + v[varInvoiceFile]}
					},
				}},
			},
			{
				Name:  "document_upload",
				Title: "📋 Step 2: Uploading document...",
				Steps: []smoketest.Step{{
					Name:     "Document upload",
					Requires: []string{varInvoiceFile},
					Request: func(v smoketest.Vars) (gestagent.Request, error) {
						path := v[varInvoiceFile]
						data, err := os.ReadFile(path)
						if err != nil {
							return gestagent.Request{}, fmt.Errorf("reading %s: %w", path, err)
						}
						return gestagent.Upload(gestagent.FilePart{
							Name:     filepath.Base(path),
							MIMEType: "application/pdf",
							Data:     data,
						}, opts.DocumentType), nil
					},
					Expect: smoketest.ExpectSuccess(),
					Match: func(resp *gestagent.Response, _ smoketest.Vars) error {
						var up gestagent.UploadResponse
						if err := gestagent.DecodeBody(resp, &up); err != nil {
							return err
						}
						if up.JobID == "" {
							return errors.New("upload response carries no jobId")
						}
						return nil
					},
					Capture: func(resp *gestagent.Response, _ smoketest.Vars) smoketest.Vars {
						var up gestagent.UploadResponse
						_ = gestagent.DecodeBody(resp, &up)
						return smoketest.Vars{varJobID: up.JobID}
					},
					Tracks: varJobID,
					Detail: func(_ *gestagent.Response, v smoketest.Vars) []string {
						return []string{"📤 Document uploaded successfully: " + v[varJobID]}
					},
				}},
			},
			{
				Name:  "document_verification",
				Title: "📋 Step 3: Verifying document and AI extraction...",
				Steps: []smoketest.Step{{
					Name:     "Documents list",
					Requires: []string{varJobID},
					Delay:    opts.IndexDelay,
					Request: func(smoketest.Vars) (gestagent.Request, error) {
						return gestagent.ListDocuments(), nil
					},
					Expect: smoketest.ExpectSuccess(),
					Match: func(resp *gestagent.Response, v smoketest.Vars) error {
						_, _, err := findUploaded(resp, v)
						return err
					},
					Capture: func(resp *gestagent.Response, v smoketest.Vars) smoketest.Vars {
						doc, _, err := findUploaded(resp, v)
						if err != nil || !doc.HasExtraction() {
							return nil
						}
						return smoketest.Vars{varExtracted: "true"}
					},
					Detail: func(resp *gestagent.Response, v smoketest.Vars) []string {
						doc, total, _ := findUploaded(resp, v)
						lines := []string{
							fmt.Sprintf("✅ Documents list retrieved: %d documents", total),
							"✅ Our uploaded document found in the list",
							"📋 Status: " + gestagent.OrNA(doc.Status),
							"📊 Document Type: " + gestagent.OrNA(doc.DocumentType),
						}
						if !doc.HasExtraction() {
							return append(lines, "⚠️ Document found but no processed data available")
						}
						return append(lines, invoiceLines(doc)...)
					},
				}},
			},
			{
				Name: "ai_extraction",
				Steps: []smoketest.Step{{
					Name:     "AI extraction data",
					Requires: []string{varJobID},
					Action: func(_ context.Context, v smoketest.Vars) (smoketest.Vars, error) {
						if !v.Has(varExtracted) {
							return nil, errors.New("document uploaded but no AI extraction data found")
						}
						return nil, nil
					},
					Detail: func(*gestagent.Response, smoketest.Vars) []string {
						return []string{"✅ Mistral AI extraction verified in document list"}
					},
				}},
			},
			{
				Name:  "sage_export",
				Title: "📋 Step 4: Testing SAGE export...",
				Steps: []smoketest.Step{
					{
						Name: "SAGE export",
						Request: func(smoketest.Vars) (gestagent.Request, error) {
							return gestagent.ExportSageAll(), nil
						},
						Expect: smoketest.ExpectSuccess(),
						Detail: func(resp *gestagent.Response, _ smoketest.Vars) []string {
							var out gestagent.SageExportSummary
							_ = gestagent.DecodeBody(resp, &out)
							return []string{
								"📊 Export format: " + gestagent.OrNA(out.Format),
								"📄 Total documents: " + gestagent.OrNA(out.TotalDocuments),
								"📅 Generated at: " + gestagent.OrNA(out.GeneratedAt),
							}
						},
					},
					{
						Name:     "SAGE export for uploaded document",
						Policy:   smoketest.Optional,
						Requires: []string{varJobID},
						Request: func(v smoketest.Vars) (gestagent.Request, error) {
							return gestagent.ExportSage(gestagent.SageExportCall{
								DocumentIDs:  []string{v[varJobID]},
								ExportFormat: "sage",
								ExportType:   "accounting_entries",
								DateRange:    opts.ExportRange,
							}), nil
						},
						Expect: smoketest.ExpectSuccess(),
						Detail: func(resp *gestagent.Response, _ smoketest.Vars) []string {
							var out gestagent.SageExportResponse
							_ = gestagent.DecodeBody(resp, &out)
							return []string{
								"📁 Export file: " + gestagent.OrNA(out.Data.ExportFile),
								fmt.Sprintf("📝 Entries exported: %d", out.Data.EntriesCount),
							}
						},
					},
				},
			},
		},
	}
}
