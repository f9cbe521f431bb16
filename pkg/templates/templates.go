// Package templates holds the starting objects offered when creating a new
// resource. They come from YAML in the environment; missing templates fall
// back to near-empty objects.
package templates

import (
	"fmt"
	"os"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	yaml "sigs.k8s.io/yaml"

	"github.com/sttts/simconsole/pkg/resources"
)

// EnvVars maps each kind to the environment variable holding its template.
var EnvVars = map[string]string{
	resources.Pod.Name:                   "POD_TEMPLATE",
	resources.Node.Name:                  "NODE_TEMPLATE",
	resources.PersistentVolume.Name:      "PV_TEMPLATE",
	resources.PersistentVolumeClaim.Name: "PVC_TEMPLATE",
	resources.StorageClass.Name:          "SC_TEMPLATE",
}

// Templates is immutable after Load; accessors hand out deep copies.
type Templates struct {
	byKind map[string]*unstructured.Unstructured
}

// FromEnv loads the templates from the process environment.
func FromEnv() (*Templates, error) {
	return Load(os.LookupEnv)
}

// Load parses every configured template. A malformed template is an error.
func Load(lookup func(string) (string, bool)) (*Templates, error) {
	t := &Templates{byKind: map[string]*unstructured.Unstructured{}}
	for _, k := range resources.SimulatorKinds() {
		env := EnvVars[k.Name]
		raw, ok := lookup(env)
		if !ok || raw == "" {
			continue
		}
		obj := map[string]interface{}{}
		if err := yaml.Unmarshal([]byte(raw), &obj); err != nil {
			return nil, fmt.Errorf("parse %s: %w", env, err)
		}
		if len(obj) == 0 {
			return nil, fmt.Errorf("parse %s: template is not an object", env)
		}
		t.byKind[k.Name] = &unstructured.Unstructured{Object: obj}
	}
	return t, nil
}

// Configured reports whether a template was provided for k.
func (t *Templates) Configured(k resources.Kind) bool {
	_, ok := t.byKind[k.Name]
	return ok
}

// Pod returns the pod template placed into the simulator's namespace.
func (t *Templates) Pod(simulatorID string) *unstructured.Unstructured {
	obj, ok := t.get(resources.Pod)
	if ok {
		obj.SetNamespace(simulatorID)
	}
	return obj
}

func (t *Templates) Node() *unstructured.Unstructured {
	obj, _ := t.get(resources.Node)
	return obj
}

func (t *Templates) PersistentVolume() *unstructured.Unstructured {
	obj, _ := t.get(resources.PersistentVolume)
	return obj
}

func (t *Templates) PersistentVolumeClaim() *unstructured.Unstructured {
	obj, _ := t.get(resources.PersistentVolumeClaim)
	return obj
}

// StorageClass defaults to an object with an empty provisioner, which the
// backend requires.
func (t *Templates) StorageClass() *unstructured.Unstructured {
	obj, ok := t.get(resources.StorageClass)
	if !ok {
		obj.Object["provisioner"] = ""
	}
	return obj
}

// For dispatches by kind.
func (t *Templates) For(k resources.Kind, simulatorID string) (*unstructured.Unstructured, error) {
	switch k.Name {
	case resources.Pod.Name:
		return t.Pod(simulatorID), nil
	case resources.Node.Name:
		return t.Node(), nil
	case resources.PersistentVolume.Name:
		return t.PersistentVolume(), nil
	case resources.PersistentVolumeClaim.Name:
		return t.PersistentVolumeClaim(), nil
	case resources.StorageClass.Name:
		return t.StorageClass(), nil
	}
	return nil, fmt.Errorf("no template for kind %s", k.Name)
}

func (t *Templates) get(k resources.Kind) (*unstructured.Unstructured, bool) {
	if tmpl, ok := t.byKind[k.Name]; ok {
		obj := tmpl.DeepCopy()
		if obj.GetAPIVersion() == "" {
			obj.SetAPIVersion(k.APIVersion())
		}
		if obj.GetKind() == "" {
			obj.SetKind(k.Name)
		}
		return obj, true
	}
	obj := &unstructured.Unstructured{Object: map[string]interface{}{}}
	obj.SetAPIVersion(k.APIVersion())
	obj.SetKind(k.Name)
	return obj, false
}
