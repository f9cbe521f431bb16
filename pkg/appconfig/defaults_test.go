package appconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	yaml "sigs.k8s.io/yaml"
)

// TestConfigDefaultsYAMLMatchesCode reads config-default.yaml from the repo root
// and compares it with the in-code defaults returned by Default().
func TestConfigDefaultsYAMLMatchesCode(t *testing.T) {
	wd, _ := os.Getwd()
	dir := wd
	var path string
	for i := 0; i < 6; i++ {
		p := filepath.Join(dir, "config-default.yaml")
		if _, err := os.Stat(p); err == nil {
			path = p
			break
		}
		dir = filepath.Dir(dir)
	}
	if path == "" {
		t.Skip("config-default.yaml not found; skipping defaults sync test")
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read defaults yaml: %v", err)
	}
	fromYAML := &Config{}
	if err := yaml.UnmarshalStrict(data, fromYAML); err != nil {
		t.Fatalf("unmarshal defaults yaml: %v", err)
	}
	if diff := cmp.Diff(Default(), fromYAML); diff != "" {
		t.Fatalf("config-default.yaml out of sync with Default() (-code +yaml):\n%s", diff)
	}
}
