package api

import (
	"fmt"
	"net/http"

	"faultline/internal/auth"
	"faultline/internal/fault"
)

// buildOpenAPIDoc returns an OpenAPI 3.1 document covering the harness
// surface: the fixed endpoints plus one trigger path per registered fault.
func buildOpenAPIDoc(reg *fault.Registry) map[string]any {
	paths := map[string]any{
		"/healthz": map[string]any{
			"get": map[string]any{
				"operationId": "healthz",
				"summary":     "Liveness and harness state",
				"responses": map[string]any{
					"200": map[string]any{"description": "Harness status"},
				},
			},
		},
		"/faults": map[string]any{
			"get": map[string]any{
				"operationId": "listFaults",
				"summary":     "List fault labels, one per line",
				"responses": map[string]any{
					"200": map[string]any{"description": "Plain text label list"},
				},
				"security": []any{map[string]any{"BearerAuth": []string{}}},
			},
			"post": map[string]any{
				"operationId": "submitCommand",
				"summary":     "Submit raw command bytes",
				"requestBody": map[string]any{
					"required": true,
					"content": map[string]any{
						"text/plain": map[string]any{
							"schema": map[string]any{"type": "string", "maxLength": 31},
						},
					},
				},
				"responses": map[string]any{
					"202": map[string]any{"description": "Command accepted"},
					"403": map[string]any{"description": "Insufficient scope"},
					"413": map[string]any{"description": "Command exceeds capacity"},
					"503": map[string]any{"description": "Dispatch thread busy"},
				},
				"security": []any{map[string]any{"BearerAuth": []string{}}},
			},
		},
		"/catalog": map[string]any{
			"get": map[string]any{
				"operationId": "catalog",
				"summary":     "Fault catalog with summaries and crash signatures",
				"responses": map[string]any{
					"200": map[string]any{"description": "Catalog"},
				},
				"security": []any{map[string]any{"BearerAuth": []string{}}},
			},
		},
		"/journal": map[string]any{
			"get": map[string]any{
				"operationId": "journal",
				"summary":     "Recent journaled intents, newest first",
				"responses": map[string]any{
					"200": map[string]any{"description": "Intent list"},
				},
				"security": []any{map[string]any{"BearerAuth": []string{}}},
			},
		},
		"/journal/last": map[string]any{
			"get": map[string]any{
				"operationId": "journalLast",
				"summary":     "Most recent journaled intent",
				"responses": map[string]any{
					"200": map[string]any{"description": "Intent"},
					"404": map[string]any{"description": "Journal is empty"},
				},
				"security": []any{map[string]any{"BearerAuth": []string{}}},
			},
		},
		"/events": map[string]any{
			"get": map[string]any{
				"operationId": "events",
				"summary":     "Server-sent event stream of harness activity",
				"responses": map[string]any{
					"200": map[string]any{"description": "text/event-stream"},
				},
				"security": []any{map[string]any{"BearerAuth": []string{}}},
			},
		},
	}

	for _, label := range reg.List() {
		rec, ok := reg.Recipe(reg.Resolve(label))
		if !ok {
			continue
		}
		paths["/trigger/"+label] = buildTriggerPath(rec)
	}

	return map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":   "Faultline Harness",
			"version": "1.0",
		},
		"paths": paths,
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"BearerAuth": map[string]any{
					"type":   "http",
					"scheme": "bearer",
				},
			},
		},
	}
}

// buildTriggerPath builds the OpenAPI path item for a single fault label.
func buildTriggerPath(rec fault.Recipe) map[string]any {
	summary := rec.Summary
	if summary == "" {
		summary = fmt.Sprintf("Trigger %s", rec.Label)
	}

	return map[string]any{
		"post": map[string]any{
			"operationId": fmt.Sprintf("trigger__%s", rec.Label),
			"summary":     summary,
			"description": fmt.Sprintf("Requires scope %q or %q. Expected signature: %s",
				auth.ScopeTriggerAll, "trigger:"+rec.Label, rec.Signature),
			"tags": []string{"trigger"},
			"responses": map[string]any{
				"202": map[string]any{"description": "Fault armed"},
				"403": map[string]any{"description": "Insufficient scope"},
				"404": map[string]any{"description": "Unknown fault label"},
				"503": map[string]any{"description": "Dispatch thread busy"},
			},
			"security": []any{map[string]any{"BearerAuth": []string{}}},
		},
	}
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, buildOpenAPIDoc(s.registry))
}
