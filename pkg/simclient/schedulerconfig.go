package simclient

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/rest"

	"github.com/sttts/simconsole/pkg/resources"
)

// schedulerConfigKind only labels decode errors and fills type meta.
var schedulerConfigKind = resources.Kind{
	Name:     "KubeSchedulerConfiguration",
	Resource: "schedulerconfiguration",
	GVK:      schema.GroupVersionKind{Group: "kubescheduler.config.k8s.io", Version: "v1beta2", Kind: "KubeSchedulerConfiguration"},
}

// SchedulerConfigClient reads and replaces the scheduler configuration of a
// simulator. The configuration is kept opaque.
type SchedulerConfigClient struct {
	rest rest.Interface
}

// Get returns the active scheduler configuration.
func (c *SchedulerConfigClient) Get(ctx context.Context, simulatorID string) (*unstructured.Unstructured, error) {
	if err := validName(simulatorID); err != nil {
		return nil, fmt.Errorf("simulator id: %w", err)
	}
	data, err := get(ctx, c.rest, "simulators", simulatorID, schedulerConfigKind.Resource)
	if err != nil {
		return nil, err
	}
	obj, err := decodeObject(data, schedulerConfigKind)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("empty scheduler configuration for simulator %q", simulatorID)
	}
	return obj, nil
}

// Apply replaces the scheduler configuration. The returned object is nil
// when the backend answers without a body.
func (c *SchedulerConfigClient) Apply(ctx context.Context, cfg *unstructured.Unstructured, simulatorID string) (*unstructured.Unstructured, error) {
	if cfg == nil {
		return nil, fmt.Errorf("apply scheduler configuration: nil object")
	}
	if err := validName(simulatorID); err != nil {
		return nil, fmt.Errorf("simulator id: %w", err)
	}
	data, err := post(ctx, c.rest, cfg, "simulators", simulatorID, schedulerConfigKind.Resource)
	if err != nil {
		return nil, err
	}
	return decodeObject(data, schedulerConfigKind)
}
