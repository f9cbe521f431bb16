package fakesim

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-logr/logr"
)

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestApplyNormalizesClusterScopedObjects(t *testing.T) {
	s := New(logr.Discard())
	rec := do(t, s, http.MethodPost, "/api/v1/simulators/sim1/nodes", `{"metadata":{"name":"n1","labels":{"zone":"a"}}}`)
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("apply: %d %q", rec.Code, rec.Body.String())
	}

	obj := s.Object("sim1", "nodes", "n1-sim1")
	if obj == nil {
		t.Fatalf("node not stored under suffixed name")
	}
	if obj.GetLabels()[SimulatorIDLabel] != "sim1" || obj.GetLabels()["zone"] != "a" {
		t.Fatalf("unexpected labels %v", obj.GetLabels())
	}
	if obj.GetUID() == "" || obj.GetResourceVersion() != "1" {
		t.Fatalf("missing server fields: %v", obj.Object["metadata"])
	}
	uid := obj.GetUID()

	do(t, s, http.MethodPost, "/api/v1/simulators/sim1/nodes", `{"metadata":{"name":"n1-sim1"}}`)
	obj = s.Object("sim1", "nodes", "n1-sim1")
	if obj.GetUID() != uid || obj.GetResourceVersion() != "2" {
		t.Fatalf("re-apply must keep uid and bump version: %v", obj.Object["metadata"])
	}
}

func TestApplyNamespacesPods(t *testing.T) {
	s := New(logr.Discard())
	do(t, s, http.MethodPost, "/api/v1/simulators/sim1/pods", `{"metadata":{"name":"p1","namespace":"x"},"spec":{}}`)
	obj := s.Object("sim1", "pods", "p1")
	if obj == nil || obj.GetNamespace() != "sim1" {
		t.Fatalf("pod not placed into simulator namespace: %v", obj)
	}
}

func TestApplyRejectsNamelessObjects(t *testing.T) {
	s := New(logr.Discard())
	rec := do(t, s, http.MethodPost, "/api/v1/simulators/sim1/pods", `{"spec":{}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/v1/simulators/sim1/pods", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestListOmitsTypeMeta(t *testing.T) {
	s := New(logr.Discard())
	do(t, s, http.MethodPost, "/api/v1/simulators/sim1/storageclasses", `{"metadata":{"name":"b"},"provisioner":""}`)
	do(t, s, http.MethodPost, "/api/v1/simulators/sim1/storageclasses", `{"metadata":{"name":"a"},"provisioner":""}`)
	do(t, s, http.MethodPost, "/api/v1/simulators/other/storageclasses", `{"metadata":{"name":"c"},"provisioner":""}`)

	rec := do(t, s, http.MethodGet, "/api/v1/simulators/sim1/storageclasses", "")
	var list struct {
		Kind  string                   `json:"kind"`
		Items []map[string]interface{} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Kind != "StorageClassList" || len(list.Items) != 2 {
		t.Fatalf("unexpected list %s", rec.Body.String())
	}
	if _, ok := list.Items[0]["kind"]; ok {
		t.Fatalf("list items must not carry kind")
	}
	name := list.Items[0]["metadata"].(map[string]interface{})["name"]
	if name != "a-sim1" {
		t.Fatalf("items not sorted by name: first is %v", name)
	}
}

func TestUnknownResourceAndMissingObject(t *testing.T) {
	s := New(logr.Discard())
	if rec := do(t, s, http.MethodGet, "/api/v1/simulators/sim1/secrets", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown resource, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/simulators/sim1/po", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("aliases must not be routable, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/simulators/sim1/pods/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing pod, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/api/v1/simulators/sim1/pods/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting missing pod, got %d", rec.Code)
	}
}

func TestDeleteNodeRemovesItsPods(t *testing.T) {
	s := New(logr.Discard())
	do(t, s, http.MethodPost, "/api/v1/simulators/sim1/nodes", `{"metadata":{"name":"n1"}}`)
	do(t, s, http.MethodPost, "/api/v1/simulators/sim1/pods", `{"metadata":{"name":"a"},"spec":{"nodeName":"n1-sim1"}}`)
	do(t, s, http.MethodPost, "/api/v1/simulators/sim1/pods", `{"metadata":{"name":"b"},"spec":{}}`)

	if rec := do(t, s, http.MethodDelete, "/api/v1/simulators/sim1/nodes/n1-sim1", ""); rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	if s.Object("sim1", "pods", "a") != nil {
		t.Fatalf("pod on deleted node survived")
	}
	if s.Object("sim1", "pods", "b") == nil {
		t.Fatalf("unscheduled pod was deleted")
	}
}

func TestFailureInjectionAndCounting(t *testing.T) {
	s := New(logr.Discard())
	s.Fail(http.MethodGet, "pods", http.StatusServiceUnavailable)
	if rec := do(t, s, http.MethodGet, "/api/v1/simulators/sim1/pods", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected injected failure, got %d", rec.Code)
	}
	s.Fail(http.MethodGet, "pods", 0)
	if rec := do(t, s, http.MethodGet, "/api/v1/simulators/sim1/pods", ""); rec.Code != http.StatusOK {
		t.Fatalf("failure not cleared, got %d", rec.Code)
	}
	if n := s.Requests(http.MethodGet, "pods"); n != 2 {
		t.Fatalf("expected 2 counted requests, got %d", n)
	}
	if n := s.Requests(http.MethodGet, "nodes"); n != 0 {
		t.Fatalf("nodes counted %d", n)
	}
}

func TestNamespacesAndSchedulerConfig(t *testing.T) {
	s := New(logr.Discard())
	rec := do(t, s, http.MethodPost, "/api/v1/namespaces", `{}`)
	var ns struct {
		Metadata struct {
			Name string `json:"name"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &ns); err != nil || ns.Metadata.Name == "" {
		t.Fatalf("unexpected namespace %q: %v", rec.Body.String(), err)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/namespaces/"+ns.Metadata.Name, ""); rec.Code != http.StatusOK {
		t.Fatalf("namespace not retrievable: %d", rec.Code)
	}
	if n := s.Requests(http.MethodPost, "namespaces"); n != 1 {
		t.Fatalf("namespace post counted %d", n)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/simulators/sim1/schedulerconfiguration", "")
	if !bytes.Contains(rec.Body.Bytes(), []byte("default-scheduler")) {
		t.Fatalf("expected default config, got %s", rec.Body.String())
	}
	do(t, s, http.MethodPost, "/api/v1/simulators/sim1/schedulerconfiguration", `{"profiles":[{"schedulerName":"custom"}]}`)
	rec = do(t, s, http.MethodGet, "/api/v1/simulators/sim1/schedulerconfiguration", "")
	if !bytes.Contains(rec.Body.Bytes(), []byte("custom")) {
		t.Fatalf("config not stored: %s", rec.Body.String())
	}
	if n := s.Requests(http.MethodGet, "schedulerconfiguration"); n != 2 {
		t.Fatalf("schedulerconfiguration counted %d", n)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := New(logr.Discard())
	do(t, s, http.MethodGet, "/api/v1/simulators/sim1/nodes", "")
	do(t, s, http.MethodGet, "/api/v1/simulators/sim1/nodes", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status %d", rec.Code)
	}
	want := `fakesim_requests_total{method="GET",resource="nodes"} 2`
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("missing %q in:\n%s", want, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `resource="/metrics"`) {
		t.Fatalf("metrics scrapes must not be counted")
	}
}
