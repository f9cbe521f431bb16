package simclient

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/rest"

	"github.com/sttts/simconsole/pkg/resources"
)

// NamespaceClient serves /api/v1/namespaces. Namespaces are not scoped by
// simulator.
type NamespaceClient struct {
	rest rest.Interface
}

// Apply creates or updates a namespace and returns the backend's copy.
func (c *NamespaceClient) Apply(ctx context.Context, ns *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	if ns == nil {
		return nil, fmt.Errorf("apply namespace: nil object")
	}
	ns = ns.DeepCopy()
	ns.SetAPIVersion(resources.Namespace.APIVersion())
	ns.SetKind(resources.Namespace.Name)
	data, err := post(ctx, c.rest, ns, resources.Namespace.Resource)
	if err != nil {
		return nil, err
	}
	return decodeObject(data, resources.Namespace)
}

// Get returns the named namespace.
func (c *NamespaceClient) Get(ctx context.Context, name string) (*unstructured.Unstructured, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := get(ctx, c.rest, resources.Namespace.Resource, name)
	if err != nil {
		return nil, err
	}
	obj, err := decodeObject(data, resources.Namespace)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("empty namespace response for %q", name)
	}
	return obj, nil
}

// NewNamespace returns a minimal namespace object.
func NewNamespace(name string) *unstructured.Unstructured {
	ns := &unstructured.Unstructured{}
	ns.SetAPIVersion(resources.Namespace.APIVersion())
	ns.SetKind(resources.Namespace.Name)
	ns.SetName(name)
	return ns
}
