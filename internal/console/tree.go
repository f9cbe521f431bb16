package console

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TreeNode is one entry of the tree rendering of an object.
type TreeNode struct {
	ID       string
	Name     string
	Children []TreeNode
}

// TreeNodes turns a decoded JSON value into tree entries. Maps and slices
// become inner nodes named by their key; scalars become "key: value"
// leaves. Map keys are sorted.
func TreeNodes(v interface{}) []TreeNode {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		nodes := make([]TreeNode, 0, len(keys))
		for _, k := range keys {
			nodes = append(nodes, treeNode(k, t[k]))
		}
		return nodes
	case []interface{}:
		nodes := make([]TreeNode, 0, len(t))
		for i, e := range t {
			nodes = append(nodes, treeNode(strconv.Itoa(i), e))
		}
		return nodes
	}
	return nil
}

func treeNode(key string, v interface{}) TreeNode {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return TreeNode{ID: key, Name: key, Children: TreeNodes(v)}
	case nil:
		return TreeNode{ID: key, Name: key}
	}
	return TreeNode{ID: key, Name: fmt.Sprintf("%s: %v", key, v)}
}

// renderTree flattens nodes into indented lines.
func renderTree(nodes []TreeNode) []string {
	var lines []string
	var walk func(nodes []TreeNode, depth int)
	walk = func(nodes []TreeNode, depth int) {
		for _, n := range nodes {
			marker := "  "
			if len(n.Children) > 0 {
				marker = "▾ "
			}
			lines = append(lines, strings.Repeat("  ", depth)+marker+n.Name)
			walk(n.Children, depth+1)
		}
	}
	walk(nodes, 0)
	return lines
}
