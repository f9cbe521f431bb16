// Package store keeps client-side snapshots of simulator resource collections
// together with the single item a user is currently editing.
//
// Every mutation goes through the backend: Apply and Delete are always
// followed by a fresh List, and the cache is only ever replaced by a List
// response. The apply response body is never trusted as cache state because
// the backend may default or normalize fields.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Client is the resource API of one kind, scoped by simulator id.
type Client[T client.Object] interface {
	List(ctx context.Context, simulatorID string) ([]T, error)
	Get(ctx context.Context, name, simulatorID string) (T, error)
	Apply(ctx context.Context, obj T, simulatorID string) (T, error)
	Delete(ctx context.Context, name, simulatorID string) error
}

// Selection is the item open for editing.
type Selection[T client.Object] struct {
	// IsNew is true when Item has never been applied to the backend.
	IsNew        bool
	Item         T
	ResourceKind string
}

// Store caches one resource collection and tracks the current selection.
// It is safe for concurrent use; concurrent mutating actions are not
// coordinated and the last List to complete determines the cache.
type Store[T client.Object] struct {
	kind   string
	client Client[T]
	log    logr.Logger

	mu       sync.RWMutex
	items    []T
	selected *Selection[T]
	onCommit []func(items []T)

	changed chan struct{}
}

// Option configures a Store.
type Option[T client.Object] func(*Store[T])

// WithLogger sets the logger actions are reported to.
func WithLogger[T client.Object](log logr.Logger) Option[T] {
	return func(s *Store[T]) { s.log = log }
}

// OnReplace registers a derived view. fn runs synchronously whenever the
// cache is replaced, before readers can observe the new snapshot.
func OnReplace[T client.Object](fn func(items []T)) Option[T] {
	return func(s *Store[T]) { s.onCommit = append(s.onCommit, fn) }
}

// New creates an empty store for kind backed by c.
func New[T client.Object](kind string, c Client[T], opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		kind:    kind,
		client:  c,
		log:     logr.Discard(),
		changed: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithValues("kind", kind)
	for _, fn := range s.onCommit {
		fn(nil)
	}
	return s
}

// Kind returns the short resource label the store was created for.
func (s *Store[T]) Kind() string { return s.kind }

// Items returns the latest committed snapshot.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Count returns the number of cached items.
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Selected returns a copy of the current selection, or nil.
func (s *Store[T]) Selected() *Selection[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	sel := *s.selected
	return &sel
}

// Changed returns a channel that receives a value after each committed
// change of the cache or the selection. Signals coalesce: a pending signal
// already stands for all changes since the last receive.
func (s *Store[T]) Changed() <-chan struct{} { return s.changed }

func (s *Store[T]) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// List replaces the cache with the backend's collection. On error the cache
// is left untouched.
func (s *Store[T]) List(ctx context.Context, simulatorID string) error {
	items, err := s.client.List(ctx, simulatorID)
	if err != nil {
		s.log.Error(err, "list failed", "simulator", simulatorID)
		return fmt.Errorf("list %s: %w", s.kind, err)
	}
	items = slices.Clone(items)

	s.mu.Lock()
	s.items = items
	for _, fn := range s.onCommit {
		fn(items)
	}
	s.mu.Unlock()

	s.log.V(1).Info("cache replaced", "simulator", simulatorID, "count", len(items))
	s.notify()
	return nil
}

// Get fetches a single object by name. The cache is not touched.
func (s *Store[T]) Get(ctx context.Context, name, simulatorID string) (T, error) {
	obj, err := s.client.Get(ctx, name, simulatorID)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("get %s %q: %w", s.kind, name, err)
	}
	return obj, nil
}

// Apply creates or updates obj and then re-lists. When the write fails the
// cache is not refreshed.
func (s *Store[T]) Apply(ctx context.Context, obj T, simulatorID string) error {
	if isNil(obj) {
		return fmt.Errorf("apply %s: nil object", s.kind)
	}
	if _, err := s.client.Apply(ctx, obj, simulatorID); err != nil {
		s.log.Error(err, "apply failed", "name", obj.GetName(), "simulator", simulatorID)
		return fmt.Errorf("apply %s %q: %w", s.kind, obj.GetName(), err)
	}
	s.log.V(1).Info("applied", "name", obj.GetName(), "simulator", simulatorID)
	return s.List(ctx, simulatorID)
}

// Delete removes the named object and then re-lists. When the delete fails
// the cache is not refreshed.
func (s *Store[T]) Delete(ctx context.Context, name, simulatorID string) error {
	if err := s.client.Delete(ctx, name, simulatorID); err != nil {
		s.log.Error(err, "delete failed", "name", name, "simulator", simulatorID)
		return fmt.Errorf("delete %s %q: %w", s.kind, name, err)
	}
	s.log.V(1).Info("deleted", "name", name, "simulator", simulatorID)
	return s.List(ctx, simulatorID)
}

// Select makes a deep copy of obj the current selection, so edits to the
// selected item never reach the cache. A nil obj is ignored; use
// ResetSelected to clear.
func (s *Store[T]) Select(obj T, isNew bool) {
	if isNil(obj) {
		return
	}
	item := obj.DeepCopyObject().(T)
	s.mu.Lock()
	s.selected = &Selection[T]{IsNew: isNew, Item: item, ResourceKind: s.kind}
	s.mu.Unlock()
	s.notify()
}

// ResetSelected clears the selection.
func (s *Store[T]) ResetSelected() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
	s.notify()
}

// RefreshSelected re-fetches the selected item by name, keeping IsNew. It
// does nothing without a selection, for new items, and for unnamed items.
// If the selection is replaced while the fetch is in flight, the fetched
// copy is dropped.
func (s *Store[T]) RefreshSelected(ctx context.Context, simulatorID string) error {
	s.mu.RLock()
	sel := s.selected
	s.mu.RUnlock()
	if sel == nil || sel.IsNew || isNil(sel.Item) || sel.Item.GetName() == "" {
		return nil
	}

	obj, err := s.Get(ctx, sel.Item.GetName(), simulatorID)
	if err != nil {
		return err
	}
	if isNil(obj) {
		return fmt.Errorf("get %s %q: empty response", s.kind, sel.Item.GetName())
	}

	s.mu.Lock()
	if s.selected != sel {
		s.mu.Unlock()
		s.log.V(1).Info("selection changed during refresh", "name", sel.Item.GetName())
		return nil
	}
	s.selected = &Selection[T]{IsNew: sel.IsNew, Item: obj, ResourceKind: sel.ResourceKind}
	s.mu.Unlock()
	s.notify()
	return nil
}

func isNil[T client.Object](obj T) bool {
	var zero T
	return any(obj) == any(zero)
}
