package simclient

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/rest"

	"github.com/sttts/simconsole/pkg/resources"
	"github.com/sttts/simconsole/pkg/store"
)

// ResourceClient serves one simulator-scoped kind under
// /api/v1/simulators/{id}/{resource}.
type ResourceClient struct {
	rest rest.Interface
	kind resources.Kind
}

var _ store.Client[*unstructured.Unstructured] = &ResourceClient{}

// Kind returns the kind this client serves.
func (c *ResourceClient) Kind() resources.Kind { return c.kind }

func (c *ResourceClient) segments(simulatorID string, name ...string) ([]string, error) {
	if err := validName(simulatorID); err != nil {
		return nil, fmt.Errorf("simulator id: %w", err)
	}
	return append([]string{"simulators", simulatorID, c.kind.Resource}, name...), nil
}

// List returns every object of the kind in the simulator.
func (c *ResourceClient) List(ctx context.Context, simulatorID string) ([]*unstructured.Unstructured, error) {
	seg, err := c.segments(simulatorID)
	if err != nil {
		return nil, err
	}
	data, err := get(ctx, c.rest, seg...)
	if err != nil {
		return nil, err
	}
	return decodeList(data, c.kind)
}

// Get returns the named object.
func (c *ResourceClient) Get(ctx context.Context, name, simulatorID string) (*unstructured.Unstructured, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	seg, err := c.segments(simulatorID, name)
	if err != nil {
		return nil, err
	}
	data, err := get(ctx, c.rest, seg...)
	if err != nil {
		return nil, err
	}
	obj, err := decodeObject(data, c.kind)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("empty %s response for %q", c.kind.Name, name)
	}
	return obj, nil
}

// Apply creates or updates obj; the backend decides by name. The returned
// object is nil when the backend answers without a body.
func (c *ResourceClient) Apply(ctx context.Context, obj *unstructured.Unstructured, simulatorID string) (*unstructured.Unstructured, error) {
	if obj == nil {
		return nil, fmt.Errorf("apply %s: nil object", c.kind.Name)
	}
	seg, err := c.segments(simulatorID)
	if err != nil {
		return nil, err
	}
	obj = obj.DeepCopy()
	if obj.GetAPIVersion() == "" {
		obj.SetAPIVersion(c.kind.APIVersion())
	}
	if obj.GetKind() == "" {
		obj.SetKind(c.kind.Name)
	}
	data, err := post(ctx, c.rest, obj, seg...)
	if err != nil {
		return nil, err
	}
	return decodeObject(data, c.kind)
}

// Delete removes the named object.
func (c *ResourceClient) Delete(ctx context.Context, name, simulatorID string) error {
	if err := validName(name); err != nil {
		return err
	}
	seg, err := c.segments(simulatorID, name)
	if err != nil {
		return err
	}
	_, err = c.rest.Delete().AbsPath(append([]string{APIPrefix}, seg...)...).DoRaw(ctx)
	return err
}
