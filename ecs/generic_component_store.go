package ecs

import (
	"iter"
	"reflect"
)

// ComponentRegistry manages component type registration for an ECS instance.
// Each World has its own ComponentRegistry, allowing multiple independent
// ECS instances to coexist without interference.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStore
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStore),
	}
}

// RegisterComponent registers a new component type with the given registry.
// This must be called for each component type before it can be assigned.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	r.factories[t] = func() iComponentStore {
		return &genericComponentStore[T]{}
	}
}

// getFactory returns the factory function for a given component type.
// Returns nil if the type is not registered.
func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStore {
	return r.factories[t]
}

const genericBlockSize = 64

// genericComponentStore stores components of type T in fixed-size blocks,
// addressed directly by entity index. Entity indices are recycled by the
// World, so the occupied range stays dense.
type genericComponentStore[T any] struct {
	blocks [][genericBlockSize]T
	filled [][genericBlockSize]bool
	count  int
	high   uint32 // one past the highest index ever set
}

// Set stores a component at the given entity index, overwriting any previous
// value, and returns a pointer to the stored component.
func (cs *genericComponentStore[T]) Set(index uint32, item any) any {
	var concrete T
	if ptr, ok := item.(*T); ok {
		concrete = *ptr
	} else if val, ok := item.(T); ok {
		concrete = val
	} else {
		return nil // Invalid type
	}

	blockIdx := int(index) / genericBlockSize
	slotIdx := int(index) % genericBlockSize

	for blockIdx >= len(cs.blocks) {
		cs.blocks = append(cs.blocks, [genericBlockSize]T{})
		cs.filled = append(cs.filled, [genericBlockSize]bool{})
	}

	if !cs.filled[blockIdx][slotIdx] {
		cs.filled[blockIdx][slotIdx] = true
		cs.count++
	}
	cs.blocks[blockIdx][slotIdx] = concrete

	if index+1 > cs.high {
		cs.high = index + 1
	}
	return &cs.blocks[blockIdx][slotIdx]
}

// Get returns a pointer to the component at the given entity index, or nil.
func (cs *genericComponentStore[T]) Get(index uint32) any {
	blockIdx := int(index) / genericBlockSize
	slotIdx := int(index) % genericBlockSize

	if blockIdx >= len(cs.blocks) {
		return nil
	}
	if !cs.filled[blockIdx][slotIdx] {
		return nil
	}
	return &cs.blocks[blockIdx][slotIdx]
}

// Delete marks the slot at the given entity index as empty.
func (cs *genericComponentStore[T]) Delete(index uint32) {
	blockIdx := int(index) / genericBlockSize
	slotIdx := int(index) % genericBlockSize

	if blockIdx >= len(cs.blocks) {
		return
	}
	if cs.filled[blockIdx][slotIdx] {
		cs.filled[blockIdx][slotIdx] = false
		var zero T
		cs.blocks[blockIdx][slotIdx] = zero // Zero out the value
		cs.count--
	}
}

// Has checks if a component exists at the given entity index.
func (cs *genericComponentStore[T]) Has(index uint32) bool {
	blockIdx := int(index) / genericBlockSize
	slotIdx := int(index) % genericBlockSize

	if blockIdx >= len(cs.blocks) {
		return false
	}
	return cs.filled[blockIdx][slotIdx]
}

// Len returns the number of stored components.
func (cs *genericComponentStore[T]) Len() int {
	return cs.count
}

// Iter yields the occupied entity indices in ascending order.
func (cs *genericComponentStore[T]) Iter() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for i := uint32(0); i < cs.high; i++ {
			blockIdx := int(i) / genericBlockSize
			slotIdx := int(i) % genericBlockSize

			if blockIdx >= len(cs.filled) {
				return
			}
			if cs.filled[blockIdx][slotIdx] {
				if !yield(i) {
					return
				}
			}
		}
	}
}
