package gestagent

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// NotAvailable is shown in place of optional fields the service left out.
const NotAvailable = "N/A"

// OrNA returns s, or NotAvailable when s is empty.
func OrNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

// Envelope holds the fields every GestAgent JSON response may carry.
// Error is kept untyped because the service sometimes returns an object.
type Envelope struct {
	Success bool        `mapstructure:"success"`
	Error   interface{} `mapstructure:"error"`
}

// ErrorText renders the error field, or "" when it is absent, blank, false,
// or an empty object or list.
func (e Envelope) ErrorText() string {
	switch v := e.Error.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		if !v {
			return ""
		}
		return "true"
	case map[string]interface{}:
		if len(v) == 0 {
			return ""
		}
		return fmt.Sprintf("%v", v)
	case []interface{}:
		if len(v) == 0 {
			return ""
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// HasError reports whether the error field is present and non-empty.
func (e Envelope) HasError() bool {
	return e.ErrorText() != ""
}

// ErrorOr returns the error text, or fallback when there is none.
func (e Envelope) ErrorOr(fallback string) string {
	if msg := e.ErrorText(); msg != "" {
		return msg
	}
	return fallback
}

// ExecuteData is the union of the payloads returned by capability actions.
type ExecuteData struct {
	Screenshot  string        `mapstructure:"screenshot"`
	ExecutionID string        `mapstructure:"executionId"`
	WorkflowID  string        `mapstructure:"workflowId"`
	Status      string        `mapstructure:"status"`
	URL         string        `mapstructure:"url"`
	Table       []interface{} `mapstructure:"table"`
}

// ExecuteResponse is the body of POST /api/mcp/execute.
type ExecuteResponse struct {
	Envelope `mapstructure:",squash"`
	Data     ExecuteData `mapstructure:"data"`
}

// PortalResponse is the body of POST /api/mcp/portal.
type PortalResponse struct {
	Envelope `mapstructure:",squash"`
	Data     struct {
		DocumentID string `mapstructure:"documentId"`
		Portal     string `mapstructure:"portal"`
	} `mapstructure:"data"`
}

// UploadResponse is the body of POST /api/documents/upload.
type UploadResponse struct {
	Envelope `mapstructure:",squash"`
	JobID    string `mapstructure:"jobId"`
}

// Document is one entry of the documents list.
type Document struct {
	JobID         string      `mapstructure:"job_id"`
	Status        string      `mapstructure:"status"`
	DocumentType  string      `mapstructure:"document_type"`
	ProcessedJSON interface{} `mapstructure:"processed_json"`
}

// HasExtraction reports whether processed_json carries any data.
func (d Document) HasExtraction() bool {
	switch v := d.ProcessedJSON.(type) {
	case nil:
		return false
	case map[string]interface{}:
		return len(v) > 0
	case []interface{}:
		return len(v) > 0
	case string:
		return v != ""
	default:
		return true
	}
}

// Invoice returns the extracted invoice. Array payloads yield their first element.
func (d Document) Invoice() (Invoice, error) {
	var inv Invoice

	payload := d.ProcessedJSON
	if list, ok := payload.([]interface{}); ok {
		if len(list) == 0 {
			return inv, nil
		}
		payload = list[0]
	}

	if payload == nil {
		return inv, nil
	}

	if err := Decode(payload, &inv); err != nil {
		return inv, fmt.Errorf("decoding processed_json: %w", err)
	}

	return inv, nil
}

// Invoice is the subset of the AI extraction the suites report on.
type Invoice struct {
	InvoiceNumber string `mapstructure:"invoice_number"`
	IssueDate     string `mapstructure:"issue_date"`
	Supplier      struct {
		Name string `mapstructure:"name"`
	} `mapstructure:"supplier"`
	Customer struct {
		Name string `mapstructure:"name"`
	} `mapstructure:"customer"`
	Totals struct {
		Total          string `mapstructure:"total"`
		TotalTaxAmount string `mapstructure:"total_tax_amount"`
	} `mapstructure:"totals"`
}

// DocumentList is the body of GET /api/documents/list.
type DocumentList struct {
	Envelope  `mapstructure:",squash"`
	Documents []Document `mapstructure:"documents"`
}

// Find returns the document with the given job id.
func (l DocumentList) Find(jobID string) (Document, bool) {
	for _, doc := range l.Documents {
		if doc.JobID == jobID {
			return doc, true
		}
	}
	return Document{}, false
}

// SageExportSummary is the body of GET /api/documents/export/sage.
type SageExportSummary struct {
	Envelope       `mapstructure:",squash"`
	Format         string `mapstructure:"format"`
	TotalDocuments string `mapstructure:"total_documents"`
	GeneratedAt    string `mapstructure:"generated_at"`
}

// SageExportResponse is the body of POST /api/exports/sage.
type SageExportResponse struct {
	Envelope `mapstructure:",squash"`
	Data     struct {
		ExportFile   string `mapstructure:"export_file"`
		EntriesCount int    `mapstructure:"entries_count"`
	} `mapstructure:"data"`
}

// DashboardStats is the body of GET /api/dashboard/stats.
type DashboardStats struct {
	Envelope `mapstructure:",squash"`
	Data     struct {
		TotalDocuments     int `mapstructure:"totalDocuments"`
		CompletedDocuments int `mapstructure:"completedDocuments"`
	} `mapstructure:"data"`
}

// CapabilityServer describes one capability server in the catalog.
type CapabilityServer struct {
	Description string   `mapstructure:"description"`
	Actions     []string `mapstructure:"actions"`
}

// CapabilityCatalog is the body of GET /api/mcp/execute.
type CapabilityCatalog struct {
	Servers map[string]CapabilityServer `mapstructure:"servers"`
}

// Decode maps a decoded JSON value onto out. Fields missing from the input
// keep their zero value; scalar types are converted leniently so that a
// number sent as a string, or the reverse, still decodes.
func Decode(input interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}

	return dec.Decode(input)
}

// DecodeBody decodes the response body onto out. Non-object bodies fail.
func DecodeBody(resp *Response, out interface{}) error {
	obj, ok := resp.Object()
	if !ok {
		return fmt.Errorf("expected a JSON object, got %q", resp.Snippet(80))
	}

	return Decode(obj, out)
}
