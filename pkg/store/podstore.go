package store

import (
	"sync/atomic"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// PodStore is a Store of pods with a node index derived from every cache
// replacement.
type PodStore struct {
	*Store[*unstructured.Unstructured]
	index atomic.Pointer[PodIndex]
}

// NewPodStore creates a pod store whose index starts with an empty
// Unscheduled bucket.
func NewPodStore(kind string, c Client[*unstructured.Unstructured], opts ...Option[*unstructured.Unstructured]) *PodStore {
	p := &PodStore{}
	opts = append(opts, OnReplace(func(items []*unstructured.Unstructured) {
		p.index.Store(BuildPodIndex(items))
	}))
	p.Store = New(kind, c, opts...)
	return p
}

// Index returns the node index of the latest snapshot.
func (p *PodStore) Index() *PodIndex { return p.index.Load() }

// Count returns the number of indexed pods.
func (p *PodStore) Count() int { return p.Index().Len() }
