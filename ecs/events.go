package ecs

// Lifecycle notifications published by the World on its event bus. They are
// delivered synchronously at the point of the triggering operation, in
// emission order.

// ComponentAdded is published after a component of type T has been stored for
// an entity. Component points into the World's storage and stays valid until
// the component is removed or the entity destroyed.
type ComponentAdded[T any] struct {
	Entity    Entity
	Component *T
}

// ComponentRemoved is published after a component of type T has been removed
// from an entity. The component data is already gone when handlers run.
type ComponentRemoved[T any] struct {
	Entity Entity
}

// EntityDestroyed is published when an entity is destroyed, before its
// components are dropped and its index recycled. Handlers may still read the
// entity's components; after the last handler returns the handle is stale.
type EntityDestroyed struct {
	Entity Entity
}
