package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/sttts/simconsole/pkg/resources"
)

// Object is the resource representation shared by all simulator stores.
type Object = *unstructured.Unstructured

// Set bundles one independent store per simulator-scoped kind.
type Set struct {
	Nodes                  *Store[Object]
	Pods                   *PodStore
	PersistentVolumes      *Store[Object]
	PersistentVolumeClaims *Store[Object]
	StorageClasses         *Store[Object]
}

// NewSet builds the stores, asking clientFor for each kind's API client.
func NewSet(log logr.Logger, clientFor func(resources.Kind) Client[Object]) *Set {
	mk := func(k resources.Kind) *Store[Object] {
		return New(k.Short, clientFor(k), WithLogger[Object](log.WithName("store")))
	}
	return &Set{
		Nodes:                  mk(resources.Node),
		Pods:                   NewPodStore(resources.Pod.Short, clientFor(resources.Pod), WithLogger[Object](log.WithName("store"))),
		PersistentVolumes:      mk(resources.PersistentVolume),
		PersistentVolumeClaims: mk(resources.PersistentVolumeClaim),
		StorageClasses:         mk(resources.StorageClass),
	}
}

// For returns the generic store of kind. The pod store is returned through
// its embedded Store.
func (s *Set) For(k resources.Kind) (*Store[Object], error) {
	switch k.Name {
	case resources.Node.Name:
		return s.Nodes, nil
	case resources.Pod.Name:
		return s.Pods.Store, nil
	case resources.PersistentVolume.Name:
		return s.PersistentVolumes, nil
	case resources.PersistentVolumeClaim.Name:
		return s.PersistentVolumeClaims, nil
	case resources.StorageClass.Name:
		return s.StorageClasses, nil
	}
	return nil, fmt.Errorf("no store for kind %s", k.Name)
}

// ListAll refreshes every store. Stores are independent: a failing kind does
// not keep the others from refreshing, and all failures are returned joined.
func (s *Set) ListAll(ctx context.Context, simulatorID string) error {
	var errs []error
	for _, k := range resources.SimulatorKinds() {
		st, err := s.For(k)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := st.List(ctx, simulatorID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
