package templates

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/sttts/simconsole/pkg/resources"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

const podYAML = `
apiVersion: v1
kind: Pod
metadata:
  name: pod-
  namespace: ignored
spec:
  containers:
  - name: pause
    image: registry.k8s.io/pause:3.5
`

func TestDefaultsWithoutEnv(t *testing.T) {
	tmpl, err := Load(lookupFrom(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	sc := tmpl.StorageClass()
	want := map[string]interface{}{"apiVersion": "storage.k8s.io/v1", "kind": "StorageClass", "provisioner": ""}
	if diff := cmp.Diff(want, sc.Object); diff != "" {
		t.Fatalf("unexpected storage class default (-want +got):\n%s", diff)
	}

	pod := tmpl.Pod("sim1")
	if pod.GetNamespace() != "" {
		t.Fatalf("default pod must not carry a namespace, got %q", pod.GetNamespace())
	}
	if pod.GetKind() != "Pod" || pod.GetAPIVersion() != "v1" {
		t.Fatalf("unexpected type meta %v", pod.Object)
	}
	for _, k := range resources.SimulatorKinds() {
		if tmpl.Configured(k) {
			t.Fatalf("%s reported as configured", k.Name)
		}
	}
}

func TestPodTemplateGetsSimulatorNamespace(t *testing.T) {
	tmpl, err := Load(lookupFrom(map[string]string{"POD_TEMPLATE": podYAML}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pod := tmpl.Pod("sim-7")
	if pod.GetNamespace() != "sim-7" || pod.GetName() != "pod-" {
		t.Fatalf("unexpected pod metadata %v", pod.Object["metadata"])
	}
	containers, _, _ := unstructured.NestedSlice(pod.Object, "spec", "containers")
	if len(containers) != 1 {
		t.Fatalf("unexpected containers %v", containers)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	tmpl, err := Load(lookupFrom(map[string]string{
		"NODE_TEMPLATE": "metadata:\n  name: node-\n  labels:\n    zone: a\n",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	first := tmpl.Node()
	first.SetLabels(map[string]string{"zone": "mutated"})
	first.SetName("changed")

	second := tmpl.Node()
	if second.GetName() != "node-" || second.GetLabels()["zone"] != "a" {
		t.Fatalf("template was mutated through a copy: %v", second.Object)
	}
	if second.GetKind() != "Node" {
		t.Fatalf("kind not filled in: %v", second.Object)
	}

	sc1 := tmpl.StorageClass()
	sc1.Object["provisioner"] = "x"
	if tmpl.StorageClass().Object["provisioner"] != "" {
		t.Fatalf("storage class default was mutated")
	}
}

func TestMalformedTemplateFails(t *testing.T) {
	for _, env := range []string{"PV_TEMPLATE", "PVC_TEMPLATE", "SC_TEMPLATE"} {
		if _, err := Load(lookupFrom(map[string]string{env: "metadata: [oops"})); err == nil {
			t.Fatalf("%s: expected parse error", env)
		}
	}
	if _, err := Load(lookupFrom(map[string]string{"PV_TEMPLATE": "- a\n- b\n"})); err == nil {
		t.Fatalf("expected error for a list template")
	}
}

func TestFor(t *testing.T) {
	tmpl, err := Load(lookupFrom(map[string]string{
		"PVC_TEMPLATE": "metadata:\n  name: claim\nspec:\n  accessModes: [ReadWriteOnce]\n",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, k := range resources.SimulatorKinds() {
		obj, err := tmpl.For(k, "sim1")
		if err != nil {
			t.Fatalf("For(%s): %v", k.Name, err)
		}
		if obj.GetKind() != k.Name {
			t.Fatalf("For(%s) returned %s", k.Name, obj.GetKind())
		}
	}
	pvc, _ := tmpl.For(resources.PersistentVolumeClaim, "sim1")
	if pvc.GetName() != "claim" {
		t.Fatalf("pvc template not used: %v", pvc.Object)
	}
	if _, err := tmpl.For(resources.Namespace, "sim1"); err == nil {
		t.Fatalf("namespaces have no template")
	}
}
