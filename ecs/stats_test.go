package ecs_test

import (
	"testing"

	"github.com/plus3/marionette/ecs"
)

func TestWorldStats(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())

	stats := world.CollectStats()
	if stats.EntityCount != 0 {
		t.Errorf("expected 0 entities, got %d", stats.EntityCount)
	}
	if stats.ComponentCount != 0 {
		t.Errorf("expected 0 components, got %d", stats.ComponentCount)
	}

	for i := 0; i < 3; i++ {
		e := world.CreateEntity()
		if _, err := ecs.Assign(world, e, Position{}); err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			if _, err := ecs.Assign(world, e, Velocity{}); err != nil {
				t.Fatal(err)
			}
		}
	}

	stats = world.CollectStats()
	if stats.EntityCount != 3 {
		t.Errorf("expected 3 entities, got %d", stats.EntityCount)
	}
	if stats.ComponentCount != 4 {
		t.Errorf("expected 4 components, got %d", stats.ComponentCount)
	}
	if len(stats.Components) != 2 {
		t.Fatalf("expected 2 component breakdown entries, got %d", len(stats.Components))
	}
	// Sorted by type name: ecs_test.Position before ecs_test.Velocity.
	if stats.Components[0].Count != 3 || stats.Components[1].Count != 1 {
		t.Errorf("unexpected breakdown: %+v", stats.Components)
	}
}
