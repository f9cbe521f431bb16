package store

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Unscheduled is the index key for pods without an assigned node.
const Unscheduled = "unscheduled"

// PodIndex groups pods by spec.nodeName. It is immutable once built.
type PodIndex struct {
	keys    []string
	buckets map[string][]*unstructured.Unstructured
}

// BuildPodIndex groups pods by assigned node. The Unscheduled bucket always
// exists and comes first; node buckets follow in first-seen order and pods
// keep their list order. Pods without a spec object are left out.
func BuildPodIndex(pods []*unstructured.Unstructured) *PodIndex {
	idx := &PodIndex{
		keys:    []string{Unscheduled},
		buckets: map[string][]*unstructured.Unstructured{Unscheduled: {}},
	}
	for _, p := range pods {
		if p == nil {
			continue
		}
		spec, ok := p.Object["spec"].(map[string]interface{})
		if !ok {
			continue
		}
		node, _ := spec["nodeName"].(string)
		if node == "" {
			node = Unscheduled
		}
		if _, exists := idx.buckets[node]; !exists {
			idx.keys = append(idx.keys, node)
		}
		idx.buckets[node] = append(idx.buckets[node], p)
	}
	return idx
}

// Keys returns the bucket keys, Unscheduled first.
func (i *PodIndex) Keys() []string {
	out := make([]string, len(i.keys))
	copy(out, i.keys)
	return out
}

// Pods returns the pods bucketed under key.
func (i *PodIndex) Pods(key string) []*unstructured.Unstructured {
	b := i.buckets[key]
	out := make([]*unstructured.Unstructured, len(b))
	copy(out, b)
	return out
}

// Len returns the number of indexed pods.
func (i *PodIndex) Len() int {
	n := 0
	for _, b := range i.buckets {
		n += len(b)
	}
	return n
}

// Map returns the grouping as a plain map of pod names, handy for output.
func (i *PodIndex) Map() map[string][]string {
	out := make(map[string][]string, len(i.buckets))
	for k, b := range i.buckets {
		names := make([]string, 0, len(b))
		for _, p := range b {
			names = append(names, p.GetName())
		}
		out[k] = names
	}
	return out
}
