package store

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Funcs adapts plain functions to Client. Unset functions fail with an
// error naming the missing operation.
type Funcs[T client.Object] struct {
	ListFunc   func(ctx context.Context, simulatorID string) ([]T, error)
	GetFunc    func(ctx context.Context, name, simulatorID string) (T, error)
	ApplyFunc  func(ctx context.Context, obj T, simulatorID string) (T, error)
	DeleteFunc func(ctx context.Context, name, simulatorID string) error
}

var _ Client[client.Object] = Funcs[client.Object]{}

func (f Funcs[T]) List(ctx context.Context, simulatorID string) ([]T, error) {
	if f.ListFunc == nil {
		return nil, fmt.Errorf("list not supported")
	}
	return f.ListFunc(ctx, simulatorID)
}

func (f Funcs[T]) Get(ctx context.Context, name, simulatorID string) (T, error) {
	if f.GetFunc == nil {
		var zero T
		return zero, fmt.Errorf("get not supported")
	}
	return f.GetFunc(ctx, name, simulatorID)
}

func (f Funcs[T]) Apply(ctx context.Context, obj T, simulatorID string) (T, error) {
	if f.ApplyFunc == nil {
		var zero T
		return zero, fmt.Errorf("apply not supported")
	}
	return f.ApplyFunc(ctx, obj, simulatorID)
}

func (f Funcs[T]) Delete(ctx context.Context, name, simulatorID string) error {
	if f.DeleteFunc == nil {
		return fmt.Errorf("delete not supported")
	}
	return f.DeleteFunc(ctx, name, simulatorID)
}
