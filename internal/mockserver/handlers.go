package mockserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxUploadSize = 10 << 20

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, errorResponse{Error: fmt.Sprintf(format, args...)})
}

func decodeBody(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()

	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadSize)).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// --- capability servers ---

func (s *Server) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalog())
}

type executeRequest struct {
	Server string                 `json:"server"`
	Action string                 `json:"action"`
	Params map[string]interface{} `json:"params"`
}

// handleExecute answers malformed calls and unknown servers with 400, and
// unknown actions on a known server with 200 and success:false.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	if req.Server == "" || req.Action == "" {
		writeError(w, http.StatusBadRequest, "server and action are required")
		return
	}

	srv, ok := capabilityServers[req.Server]
	if !ok {
		writeError(w, http.StatusBadRequest, "MCP server %s not found", req.Server)
		return
	}

	action, ok := srv.actions[req.Action]
	if !ok {
		writeError(w, http.StatusOK, "Unknown %s action: %s", srv.label, req.Action)
		return
	}

	if req.Params == nil {
		req.Params = map[string]interface{}{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    action(req.Params, s.opts.Now()),
	})
}

type portalRequest struct {
	Portal      string `json:"portal"`
	Credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"credentials"`
	DocumentType string `json:"documentType"`
}

func (s *Server) handlePortal(w http.ResponseWriter, r *http.Request) {
	var req portalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	if !portals[req.Portal] {
		writeError(w, http.StatusBadRequest, "Unsupported portal: %s", req.Portal)
		return
	}

	if req.Credentials.Username == "" || req.Credentials.Password == "" {
		writeError(w, http.StatusBadRequest, "credentials are required")
		return
	}

	doc := s.store.add(&document{
		Status:       statusPending,
		DocumentType: req.DocumentType,
		Source:       "portal:" + req.Portal,
		CreatedAt:    s.opts.Now(),
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"documentId": doc.JobID,
			"portal":     req.Portal,
		},
	})
}

func (s *Server) handleProcessDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID string `json:"documentId"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	if req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, "documentId is required")
		return
	}

	if !s.store.setStatus(req.DocumentID, statusCompleted) {
		writeError(w, http.StatusNotFound, "Document %s not found", req.DocumentID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"documentId": req.DocumentID,
			"status":     statusCompleted,
		},
	})
}

// --- documents ---

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body: %v", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "file is empty")
		return
	}

	docType := r.FormValue("documentType")
	if docType == "" {
		docType = "factura"
	}

	var processed interface{} = map[string]interface{}{}
	if !s.opts.NoExtraction {
		processed = invoiceExtraction()
	}

	doc := s.store.add(&document{
		Status:        statusCompleted,
		DocumentType:  docType,
		FileName:      header.Filename,
		Source:        "upload",
		CreatedAt:     s.opts.Now(),
		ProcessedJSON: processed,
	})

	s.log.WithField("job_id", doc.JobID).WithField("file", header.Filename).Debug("Document uploaded")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"jobId":   doc.JobID,
	})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"documents": s.store.list(),
	})
}

// handleGetDocument mirrors the real service: direct access needs an
// Authorization header.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "" {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	doc, ok := s.store.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Document %s not found", id)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"document": doc,
	})
}

// --- exports & stats ---

func (s *Server) handleExportAll(w http.ResponseWriter, _ *http.Request) {
	docs := s.store.list()

	var b strings.Builder
	b.WriteString("job_id;document_type;status\n")
	for _, doc := range docs {
		fmt.Fprintf(&b, "%s;%s;%s\n", doc.JobID, doc.DocumentType, doc.Status)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"format":          "sage",
		"total_documents": len(docs),
		"data":            b.String(),
		"generated_at":    s.opts.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
	})
}

type exportRequest struct {
	DocumentIDs  []string `json:"document_ids"`
	ExportFormat string   `json:"export_format"`
	ExportType   string   `json:"export_type"`
	DateRange    struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"date_range"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	if len(req.DocumentIDs) == 0 {
		writeError(w, http.StatusBadRequest, "document_ids is required")
		return
	}

	if req.ExportFormat != "" && req.ExportFormat != "sage" {
		writeError(w, http.StatusBadRequest, "Unsupported export format: %s", req.ExportFormat)
		return
	}

	for _, id := range req.DocumentIDs {
		if _, ok := s.store.get(id); !ok {
			writeError(w, http.StatusOK, "Document %s not found", id)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"export_file":   fmt.Sprintf("sage_export_%s.csv", uuid.NewString()[:8]),
			"entries_count": len(req.DocumentIDs),
		},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	total, completed := s.store.stats()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"totalDocuments":     total,
			"completedDocuments": completed,
		},
	})
}
