package gestagent

import (
	"net/http"
	"net/url"
)

// Endpoint paths exposed by GestAgent.
const (
	PathMCPExecute     = "/api/mcp/execute"
	PathMCPPortal      = "/api/mcp/portal"
	PathMCPDocument    = "/api/mcp/document"
	PathUpload         = "/api/documents/upload"
	PathDocumentsList  = "/api/documents/list"
	PathSageExportAll  = "/api/documents/export/sage"
	PathSageExport     = "/api/exports/sage"
	PathDashboardStats = "/api/dashboard/stats"
	pathDocumentPrefix = "/api/documents/"
)

// ExecuteCall is the body of a capability action.
type ExecuteCall struct {
	Server string                 `json:"server"`
	Action string                 `json:"action"`
	Params map[string]interface{} `json:"params"`
}

// Execute builds a capability action request. Nil params are sent as {}.
func Execute(server, action string, params map[string]interface{}) Request {
	if params == nil {
		params = map[string]interface{}{}
	}

	return Request{
		Method: http.MethodPost,
		Path:   PathMCPExecute,
		JSON:   ExecuteCall{Server: server, Action: action, Params: params},
	}
}

// Capabilities builds the capability catalog request.
func Capabilities() Request {
	return Request{Method: http.MethodGet, Path: PathMCPExecute}
}

// Credentials are the portal login fields.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PortalCall is the body of a portal download.
type PortalCall struct {
	Portal       string      `json:"portal"`
	Credentials  Credentials `json:"credentials"`
	DocumentType string      `json:"documentType"`
}

// Portal builds a portal download request.
func Portal(call PortalCall) Request {
	return Request{Method: http.MethodPost, Path: PathMCPPortal, JSON: call}
}

// ProcessDocument builds a document processing request.
func ProcessDocument(documentID string) Request {
	return Request{
		Method: http.MethodPost,
		Path:   PathMCPDocument,
		JSON:   map[string]string{"documentId": documentID},
	}
}

// Upload builds a multipart document upload.
func Upload(file FilePart, documentType string) Request {
	file.Field = "file"

	return Request{
		Method: http.MethodPost,
		Path:   PathUpload,
		File:   &file,
		Fields: map[string]string{"documentType": documentType},
	}
}

// ListDocuments builds the documents list request.
func ListDocuments() Request {
	return Request{Method: http.MethodGet, Path: PathDocumentsList}
}

// ExportSageAll builds the export-everything request.
func ExportSageAll() Request {
	return Request{Method: http.MethodGet, Path: PathSageExportAll}
}

// DateRange bounds an export, as YYYY-MM-DD strings.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SageExportCall is the body of a targeted SAGE export.
type SageExportCall struct {
	DocumentIDs  []string  `json:"document_ids"`
	ExportFormat string    `json:"export_format"`
	ExportType   string    `json:"export_type"`
	DateRange    DateRange `json:"date_range"`
}

// ExportSage builds a targeted SAGE export request.
func ExportSage(call SageExportCall) Request {
	return Request{Method: http.MethodPost, Path: PathSageExport, JSON: call}
}

// Stats builds the dashboard statistics request.
func Stats() Request {
	return Request{Method: http.MethodGet, Path: PathDashboardStats}
}

// GetDocument builds a direct document lookup.
func GetDocument(id string) Request {
	return Request{Method: http.MethodGet, Path: pathDocumentPrefix + url.PathEscape(id)}
}
