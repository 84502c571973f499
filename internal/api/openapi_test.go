package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"faultline/internal/fault"
)

func TestBuildOpenAPIDoc_FixedPaths(t *testing.T) {
	doc := buildOpenAPIDoc(fault.NewRegistry())

	if doc["openapi"] != "3.1.0" {
		t.Errorf("expected openapi 3.1.0, got %v", doc["openapi"])
	}

	paths := doc["paths"].(map[string]any)
	for _, p := range []string{"/healthz", "/faults", "/catalog", "/journal", "/journal/last", "/events"} {
		if _, ok := paths[p]; !ok {
			t.Errorf("expected path %s", p)
		}
	}
}

func TestBuildOpenAPIDoc_TriggerPathPerLabel(t *testing.T) {
	reg := fault.NewRegistry()
	doc := buildOpenAPIDoc(reg)
	paths := doc["paths"].(map[string]any)

	// 6 fixed paths plus one trigger path per registered fault.
	if len(paths) != 6+len(reg.List()) {
		t.Fatalf("expected %d paths, got %d", 6+len(reg.List()), len(paths))
	}

	panicPath, ok := paths["/trigger/PANIC"].(map[string]any)
	if !ok {
		t.Fatal("expected /trigger/PANIC path")
	}
	post := panicPath["post"].(map[string]any)
	if post["operationId"] != "trigger__PANIC" {
		t.Errorf("expected operationId trigger__PANIC, got %v", post["operationId"])
	}
	if post["summary"] == "" {
		t.Errorf("expected non-empty summary")
	}
	responses := post["responses"].(map[string]any)
	if _, ok := responses["202"]; !ok {
		t.Errorf("expected 202 response")
	}
}

func TestBuildOpenAPIDoc_SecurityScheme(t *testing.T) {
	doc := buildOpenAPIDoc(fault.NewRegistry())

	components, ok := doc["components"].(map[string]any)
	if !ok {
		t.Fatal("expected components")
	}
	schemes := components["securitySchemes"].(map[string]any)
	bearer := schemes["BearerAuth"].(map[string]any)
	if bearer["type"] != "http" || bearer["scheme"] != "bearer" {
		t.Errorf("unexpected BearerAuth scheme: %v", bearer)
	}
}

func TestHandleOpenAPI_NoAuth(t *testing.T) {
	server := newTestServer(newMockSubmitter(), &mockIntentReader{})

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rr := httptest.NewRecorder()
	server.setupRoutes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var doc map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&doc); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		t.Fatalf("expected paths map in openapi doc")
	}
	if _, ok := paths["/trigger/DEADLOCK"]; !ok {
		t.Fatalf("expected /trigger/DEADLOCK in openapi doc")
	}
}
