package console

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	yaml "sigs.k8s.io/yaml"
)

type detailMode int

const (
	detailYAML detailMode = iota
	detailTree
)

func (m detailMode) String() string {
	if m == detailTree {
		return "tree"
	}
	return "yaml"
}

// renderYAML returns obj as YAML, highlighted with the chroma style theme.
// Unknown themes fall back to chroma's default style; highlighting failures
// fall back to plain text.
func renderYAML(obj *unstructured.Unstructured, theme string) ([]string, error) {
	data, err := yaml.Marshal(obj.Object)
	if err != nil {
		return nil, err
	}
	src := strings.TrimRight(string(data), "\n")
	if theme == "" || styles.Get(theme) == styles.Fallback {
		theme = "dracula"
	}
	var b strings.Builder
	if err := quick.Highlight(&b, src, "yaml", "terminal256", theme); err != nil {
		return strings.Split(src, "\n"), nil
	}
	return strings.Split(strings.TrimRight(b.String(), "\n"), "\n"), nil
}

// fit cuts or pads lines to exactly width x height cells, starting at
// line offset. Escape sequences survive truncation.
func fit(lines []string, offset, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	offset = min(max(0, offset), max(0, len(lines)-1))
	out := make([]string, height)
	for i := range out {
		ln := ""
		if offset+i < len(lines) {
			ln = lines[offset+i]
		}
		if w := ansi.StringWidth(ln); w > width {
			ln = ansi.Truncate(ln, width, "…")
		} else {
			ln += strings.Repeat(" ", width-w)
		}
		out[i] = ln
	}
	return strings.Join(out, "\n")
}
