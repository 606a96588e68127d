package scenarios

import (
	"errors"
	"fmt"
	"net/http"

	"gestctl/internal/gestagent"
	"gestctl/internal/smoketest"
)

// DefaultVerifyDocumentID is the document the verification probe looks for
// when none is given.
const DefaultVerifyDocumentID = "0685005c-998b-4bbd-89b3-e20c0a50351a"

const varDocumentID = "documentId"

// VerifyOptions select the document to look for
type VerifyOptions struct {
	DocumentID string
}

// expectAccessAnswer accepts the document itself or a structured
// authentication refusal. Anything else means the route is broken.
func expectAccessAnswer(resp *gestagent.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		var env gestagent.Envelope
		if err := gestagent.DecodeBody(resp, &env); err != nil {
			return fmt.Errorf("HTTP %d without a JSON error: %w", resp.StatusCode, err)
		}
		if !env.HasError() {
			return fmt.Errorf("HTTP %d without an error message", resp.StatusCode)
		}
		return nil
	default:
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
}

// expectDocumentsArray requires a JSON object carrying a documents list.
func expectDocumentsArray(resp *gestagent.Response) error {
	obj, ok := resp.Object()
	if !ok {
		return errors.New("response is not a JSON object")
	}
	if _, ok := obj["documents"].([]interface{}); !ok {
		return errors.New("response has no documents list")
	}
	return nil
}

func decodeList(resp *gestagent.Response) gestagent.DocumentList {
	var list gestagent.DocumentList
	_ = gestagent.DecodeBody(resp, &list)
	return list
}

// VerifySuite checks that a document is visible through the dashboard,
// the documents list and direct access.
func VerifySuite(opts VerifyOptions) smoketest.Suite {
	id := opts.DocumentID
	if id == "" {
		id = DefaultVerifyDocumentID
	}

	listRequest := func(smoketest.Vars) (gestagent.Request, error) {
		return gestagent.ListDocuments(), nil
	}

	return smoketest.Suite{
		Name:       "verify",
		Heading:    "DOCUMENT VERIFICATION RESULTS",
		ScoreLabel: "VERIFICATION SCORE",
		NameWidth:  25,
		Verdicts: map[smoketest.Grade]string{
			smoketest.GradeExcellent: "🏆 EXCELLENT - Document is fully visible",
			smoketest.GradeGood:      "👍 GOOD - Document is visible",
			smoketest.GradeWarning:   "⚠️ WARNING - Document visibility has some issues",
			smoketest.GradeCritical:  "🚨 CRITICAL - Document could not be verified",
		},
		Vars: smoketest.Vars{varDocumentID: id},
		Scenarios: []smoketest.Scenario{
			{
				Name:  "dashboard_stats",
				Title: "📊 Dashboard Stats:",
				Steps: []smoketest.Step{{
					Name: "Dashboard stats",
					Request: func(smoketest.Vars) (gestagent.Request, error) {
						return gestagent.Stats(), nil
					},
					Expect: smoketest.ExpectStatus(http.StatusOK),
					Detail: func(resp *gestagent.Response, _ smoketest.Vars) []string {
						var stats gestagent.DashboardStats
						_ = gestagent.DecodeBody(resp, &stats)
						return []string{
							fmt.Sprintf("Total Documents: %d", stats.Data.TotalDocuments),
							fmt.Sprintf("Completed Documents: %d", stats.Data.CompletedDocuments),
						}
					},
				}},
			},
			{
				Name:  "documents_list",
				Title: "📋 Documents List:",
				Steps: []smoketest.Step{{
					Name:    "Documents list",
					Request: listRequest,
					Expect:  smoketest.All(smoketest.ExpectStatus(http.StatusOK), expectDocumentsArray),
					Detail: func(resp *gestagent.Response, _ smoketest.Vars) []string {
						list := decodeList(resp)
						lines := []string{fmt.Sprintf("Documents found: %d", len(list.Documents))}
						for _, doc := range list.Documents {
							lines = append(lines, fmt.Sprintf("  - %s: %s (%s)", doc.JobID, doc.Status, doc.DocumentType))
						}
						return lines
					},
				}},
			},
			{
				Name:  "document_found",
				Title: "🔍 Verifying document: " + id,
				Steps: []smoketest.Step{{
					Name:     "Document in list",
					Requires: []string{varDocumentID},
					Request:  listRequest,
					Expect:   smoketest.All(smoketest.ExpectStatus(http.StatusOK), expectDocumentsArray),
					Match: func(resp *gestagent.Response, v smoketest.Vars) error {
						if _, ok := decodeList(resp).Find(v[varDocumentID]); !ok {
							return errors.New("document not found in the list")
						}
						return nil
					},
					Detail: func(resp *gestagent.Response, v smoketest.Vars) []string {
						doc, _ := decodeList(resp).Find(v[varDocumentID])
						return []string{fmt.Sprintf("Status: %s (%s)", gestagent.OrNA(doc.Status), gestagent.OrNA(doc.DocumentType))}
					},
				}},
			},
			{
				Name:  "document_access",
				Title: "🔍 Direct Document Access:",
				Steps: []smoketest.Step{{
					Name:     "Direct document access",
					Requires: []string{varDocumentID},
					Request: func(v smoketest.Vars) (gestagent.Request, error) {
						return gestagent.GetDocument(v[varDocumentID]), nil
					},
					Expect: expectAccessAnswer,
					Detail: func(resp *gestagent.Response, _ smoketest.Vars) []string {
						lines := []string{fmt.Sprintf("Status: %d", resp.StatusCode)}
						if resp.StatusCode != http.StatusOK {
							lines = append(lines, "Error: "+resp.Snippet(200))
						}
						return lines
					},
				}},
			},
		},
	}
}
