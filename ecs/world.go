package ecs

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
)

// ErrStaleEntity is returned when an operation receives an entity handle
// whose version no longer matches the live entity at that index (or that was
// never created). Stale handles are never dereferenced.
var ErrStaleEntity = errors.New("ecs: stale entity handle")

// World owns entity identities and per-type component storage, and publishes
// lifecycle notifications on its event bus. It is the single source of truth
// for entity liveness.
//
// World is not safe for concurrent use. All mutation is expected to happen on
// one goroutine; notification handlers run synchronously inside the
// triggering operation.
type World struct {
	registry *ComponentRegistry
	bus      *EventBus

	versions []uint32
	alive    []bool
	free     []uint32
	stores   map[reflect.Type]iComponentStore
}

// NewWorld creates a new world using the given component registry.
// Component types may still be registered after the world is created, as
// long as registration precedes the first assignment of that type.
func NewWorld(registry *ComponentRegistry) *World {
	return &World{
		registry: registry,
		bus:      NewEventBus(),
		stores:   make(map[reflect.Type]iComponentStore),
	}
}

// Registry returns the component registry this world was created with.
func (w *World) Registry() *ComponentRegistry {
	return w.registry
}

// Events returns the world's event bus. Lifecycle notifications
// (ComponentAdded, ComponentRemoved, EntityDestroyed) are published here,
// alongside any application events.
func (w *World) Events() *EventBus {
	return w.bus
}

// CreateEntity allocates a new entity. Destroyed indices are recycled with an
// incremented version.
func (w *World) CreateEntity() Entity {
	var index uint32
	if n := len(w.free); n > 0 {
		index = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		index = uint32(len(w.versions))
		w.versions = append(w.versions, 1)
		w.alive = append(w.alive, false)
	}
	w.alive[index] = true
	return Entity{Index: index, Version: w.versions[index]}
}

// Alive reports whether the handle names a live entity. A handle with a
// mismatched version is stale and reports false.
func (w *World) Alive(e Entity) bool {
	if int(e.Index) >= len(w.versions) {
		return false
	}
	return w.alive[e.Index] && w.versions[e.Index] == e.Version
}

// DestroyEntity destroys a live entity. The EntityDestroyed notification is
// published first, while the entity's components are still readable; then
// all components are dropped and the index recycled with a bumped version.
//
// Destroying a stale handle is a no-op. A notification handler error is
// returned, but the destruction itself still completes.
func (w *World) DestroyEntity(e Entity) error {
	if !w.Alive(e) {
		return nil
	}

	err := Publish(w.bus, EntityDestroyed{Entity: e})

	for _, store := range w.stores {
		store.Delete(e.Index)
	}
	w.alive[e.Index] = false
	w.versions[e.Index]++
	w.free = append(w.free, e.Index)

	return err
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	count := 0
	for _, a := range w.alive {
		if a {
			count++
		}
	}
	return count
}

// store returns the component store for t, creating it on first use.
// Panics if the component type was never registered, mirroring assignment of
// an unknown type as a programming error rather than a runtime condition.
func (w *World) store(t reflect.Type) iComponentStore {
	if st, ok := w.stores[t]; ok {
		return st
	}
	factory := w.registry.getFactory(t)
	if factory == nil {
		panic("component type " + t.String() + " not registered")
	}
	st := factory()
	w.stores[t] = st
	return st
}

// Assign stores a component of type T for the entity, replacing any existing
// one, and publishes ComponentAdded[T] synchronously before returning. The
// returned pointer points into the world's storage.
//
// An error from a notification handler is returned to the caller; the
// component itself remains assigned.
func Assign[T any](w *World, e Entity, component T) (*T, error) {
	if !w.Alive(e) {
		return nil, fmt.Errorf("assign %s to %s: %w", reflect.TypeFor[T]().String(), e, ErrStaleEntity)
	}
	ptr := w.store(reflect.TypeFor[T]()).Set(e.Index, component).(*T)
	if err := Publish(w.bus, ComponentAdded[T]{Entity: e, Component: ptr}); err != nil {
		return ptr, err
	}
	return ptr, nil
}

// Get returns a pointer to the entity's component of type T, or nil if the
// handle is stale or the component is absent.
func Get[T any](w *World, e Entity) *T {
	if !w.Alive(e) {
		return nil
	}
	st, ok := w.stores[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	ptr := st.Get(e.Index)
	if ptr == nil {
		return nil
	}
	return ptr.(*T)
}

// Has reports whether the entity is live and has a component of type T.
func Has[T any](w *World, e Entity) bool {
	if !w.Alive(e) {
		return false
	}
	st, ok := w.stores[reflect.TypeFor[T]()]
	return ok && st.Has(e.Index)
}

// Remove drops the entity's component of type T and publishes
// ComponentRemoved[T]. Removing an absent component is a no-op.
func Remove[T any](w *World, e Entity) error {
	if !w.Alive(e) {
		return nil
	}
	st, ok := w.stores[reflect.TypeFor[T]()]
	if !ok || !st.Has(e.Index) {
		return nil
	}
	st.Delete(e.Index)
	return Publish(w.bus, ComponentRemoved[T]{Entity: e})
}

// Iter returns an iterator over all live entities holding a component of
// type T, in ascending index order. The order is consistent between calls as
// long as no entities are created or destroyed in between.
func Iter[T any](w *World) iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		st, ok := w.stores[reflect.TypeFor[T]()]
		if !ok {
			return
		}
		for index := range st.Iter() {
			if !w.alive[index] {
				continue
			}
			e := Entity{Index: index, Version: w.versions[index]}
			if !yield(e, st.Get(index).(*T)) {
				return
			}
		}
	}
}
