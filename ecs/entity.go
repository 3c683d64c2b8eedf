package ecs

import "fmt"

// Entity identifies a live entity by index and version. Indices are recycled
// when entities are destroyed; the version is incremented on every recycle so
// that a handle held across a destruction compares unequal to the entity that
// now occupies the same index.
type Entity struct {
	Index   uint32
	Version uint32
}

// ID packs the entity identity into a single uint64 (index in the upper
// 32 bits, version in the lower 32 bits). Useful as a map key or log field.
func (e Entity) ID() uint64 {
	return uint64(e.Index)<<32 | uint64(e.Version)
}

// IsZero reports whether e is the zero Entity. The zero value never names a
// live entity: versions start at 1.
func (e Entity) IsZero() bool {
	return e == Entity{}
}

func (e Entity) String() string {
	return fmt.Sprintf("<Entity %d.%d>", e.Index, e.Version)
}
