package ecs

import "sort"

// WorldStats provides a snapshot of world occupancy.
type WorldStats struct {
	EntityCount    int
	ComponentCount int
	Components     []ComponentTypeStats
}

// ComponentTypeStats provides per-component-type occupancy.
type ComponentTypeStats struct {
	Type  string
	Count int
}

// CollectStats walks the world's stores and returns occupancy statistics.
// Component breakdown entries are sorted by type name for stable output.
func (w *World) CollectStats() *WorldStats {
	stats := &WorldStats{
		EntityCount: w.EntityCount(),
	}

	for t, store := range w.stores {
		n := store.Len()
		stats.ComponentCount += n
		stats.Components = append(stats.Components, ComponentTypeStats{
			Type:  t.String(),
			Count: n,
		})
	}

	sort.Slice(stats.Components, func(i, j int) bool {
		return stats.Components[i].Type < stats.Components[j].Type
	})

	return stats
}
