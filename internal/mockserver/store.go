package mockserver

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type document struct {
	JobID         string      `json:"job_id"`
	Status        string      `json:"status"`
	DocumentType  string      `json:"document_type"`
	FileName      string      `json:"file_name,omitempty"`
	Source        string      `json:"source"`
	CreatedAt     time.Time   `json:"created_at"`
	ProcessedJSON interface{} `json:"processed_json"`
}

// store is the in-memory document table. It lives as long as the server.
type store struct {
	mu        sync.Mutex
	documents []*document
	byID      map[string]*document
}

func newStore() *store {
	return &store{byID: make(map[string]*document)}
}

func (s *store) add(doc *document) *document {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.JobID == "" {
		doc.JobID = uuid.NewString()
	}

	s.documents = append(s.documents, doc)
	s.byID[doc.JobID] = doc

	return doc
}

func (s *store) get(id string) (document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.byID[id]
	if !ok {
		return document{}, false
	}
	return *doc, true
}

func (s *store) setStatus(id, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.byID[id]
	if !ok {
		return false
	}
	doc.Status = status
	return true
}

func (s *store) list() []document {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]document, 0, len(s.documents))
	for _, doc := range s.documents {
		out = append(out, *doc)
	}
	return out
}

func (s *store) stats() (total, completed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.documents {
		total++
		if doc.Status == statusCompleted {
			completed++
		}
	}
	return total, completed
}

const (
	statusPending   = "pending"
	statusCompleted = "completed"
)

// invoiceExtraction is what the mock "AI" extracts from any uploaded invoice.
func invoiceExtraction() []interface{} {
	return []interface{}{
		map[string]interface{}{
			"invoice_number": "INV-2025-001",
			"issue_date":     "2025-06-10",
			"supplier": map[string]interface{}{
				"name":    "Tecnología Avanzada S.A.",
				"nif":     "A12345678",
				"address": "Calle Mayor 123, 28001 Madrid",
			},
			"customer": map[string]interface{}{
				"name": "Retail Solutions S.L.",
				"nif":  "E55667788",
			},
			"totals": map[string]interface{}{
				"subtotal":         2800.00,
				"total_tax_amount": 588.00,
				"total":            3388.00,
			},
		},
	}
}
