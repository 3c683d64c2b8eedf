package ecs

import "iter"

// iComponentStore is an interface for a type-erased component store keyed by
// entity index.
type iComponentStore interface {
	Set(index uint32, item any) any
	Get(index uint32) any
	Has(index uint32) bool
	Delete(index uint32)
	Len() int
	Iter() iter.Seq[uint32]
}
