package mockserver

import (
	"fmt"
	"time"
)

// actionFunc produces the data payload of a successful action.
type actionFunc func(params map[string]interface{}, now time.Time) map[string]interface{}

type capabilityServer struct {
	description string
	label       string
	actions     map[string]actionFunc
	order       []string
}

func stamp(now time.Time) int64 {
	return now.UnixMilli()
}

// capabilityServers are the simulated servers reachable through
// /api/mcp/execute. Unknown actions on these servers are a structured
// failure; unknown servers are a bad request.
var capabilityServers = map[string]*capabilityServer{
	"desktop-commander": {
		description: "Desktop automation: screen and window capture, text extraction",
		label:       "desktop",
		order:       []string{"capture-screen", "capture-window", "extract-text"},
		actions: map[string]actionFunc{
			"capture-screen": func(_ map[string]interface{}, now time.Time) map[string]interface{} {
				return map[string]interface{}{
					"screenshot": "/tmp/screenshot.png",
					"timestamp":  now.UTC().Format(time.RFC3339),
				}
			},
			"capture-window": func(p map[string]interface{}, _ time.Time) map[string]interface{} {
				return map[string]interface{}{
					"screenshot": fmt.Sprintf("/tmp/window-%v.png", p["windowId"]),
					"windowId":   p["windowId"],
				}
			},
			"extract-text": func(p map[string]interface{}, _ time.Time) map[string]interface{} {
				return map[string]interface{}{
					"text":   "Extracted text from desktop application",
					"source": p["source"],
				}
			},
		},
	},
	"n8n": {
		description: "Workflow orchestration: trigger, status and creation",
		label:       "n8n",
		order:       []string{"trigger-workflow", "get-workflow-status", "create-workflow"},
		actions: map[string]actionFunc{
			"trigger-workflow": func(p map[string]interface{}, now time.Time) map[string]interface{} {
				return map[string]interface{}{
					"workflowId":  p["workflowId"],
					"executionId": fmt.Sprintf("exec-%d", stamp(now)),
					"status":      "running",
				}
			},
			"get-workflow-status": func(p map[string]interface{}, _ time.Time) map[string]interface{} {
				return map[string]interface{}{
					"executionId": p["executionId"],
					"status":      "completed",
					"result":      map[string]interface{}{"processed": true},
				}
			},
			"create-workflow": func(p map[string]interface{}, now time.Time) map[string]interface{} {
				return map[string]interface{}{
					"workflowId": fmt.Sprintf("wf-%d", stamp(now)),
					"name":       p["name"],
					"nodes":      p["nodes"],
				}
			},
		},
	},
	"playwright": {
		description: "Browser automation: navigation, downloads, table extraction, portal login",
		label:       "playwright",
		order:       []string{"navigate", "download-document", "extract-table", "login"},
		actions: map[string]actionFunc{
			"navigate": func(p map[string]interface{}, _ time.Time) map[string]interface{} {
				return map[string]interface{}{
					"url":    p["url"],
					"status": "navigated",
				}
			},
			"download-document": func(p map[string]interface{}, now time.Time) map[string]interface{} {
				return map[string]interface{}{
					"url":      p["url"],
					"filePath": fmt.Sprintf("/tmp/downloaded-%d.pdf", stamp(now)),
					"size":     1024000,
				}
			},
			"extract-table": func(p map[string]interface{}, _ time.Time) map[string]interface{} {
				return map[string]interface{}{
					"table": []interface{}{
						[]string{"Header1", "Header2", "Header3"},
						[]string{"Data1", "Data2", "Data3"},
					},
					"source": p["url"],
				}
			},
			"login": func(p map[string]interface{}, now time.Time) map[string]interface{} {
				return map[string]interface{}{
					"portal":    p["portal"],
					"status":    "authenticated",
					"sessionId": fmt.Sprintf("session-%d", stamp(now)),
				}
			},
		},
	},
}

// portals accepted by /api/mcp/portal
var portals = map[string]bool{
	"hacienda":       true,
	"seg-social":     true,
	"bancosantander": true,
	"caixabank":      true,
}

// catalog renders the capability listing served on GET /api/mcp/execute.
func catalog() map[string]interface{} {
	servers := make(map[string]interface{}, len(capabilityServers))
	for name, srv := range capabilityServers {
		servers[name] = map[string]interface{}{
			"description": srv.description,
			"actions":     srv.order,
		}
	}
	return map[string]interface{}{"servers": servers}
}
