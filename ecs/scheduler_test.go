package ecs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plus3/marionette/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type movementSystem struct {
	frames int
}

func (s *movementSystem) Update(w *ecs.World, dt float64) error {
	s.frames++
	for _, pos := range ecs.Iter[Position](w) {
		pos.X += float32(dt)
	}
	return nil
}

type countingSystem struct {
	calls int
	fail  error
}

func (s *countingSystem) Update(*ecs.World, float64) error {
	s.calls++
	return s.fail
}

func TestSchedulerRunsSystemsInOrder(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())
	scheduler := ecs.NewScheduler(world)

	first := &countingSystem{}
	second := &countingSystem{}
	scheduler.Register(first)
	scheduler.Register(second)

	require.NoError(t, scheduler.Once(0.016))
	require.NoError(t, scheduler.Once(0.016))

	assert.Equal(t, 2, first.calls)
	assert.Equal(t, 2, second.calls)
}

func TestSchedulerStopsOnSystemError(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())
	scheduler := ecs.NewScheduler(world)

	boom := errors.New("boom")
	failing := &countingSystem{fail: boom}
	after := &countingSystem{}
	scheduler.Register(failing)
	scheduler.Register(after)

	err := scheduler.Once(0.016)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 0, after.calls, "later system ran after a failure")
}

func TestSchedulerMutatesWorld(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())
	e := world.CreateEntity()
	_, err := ecs.Assign(world, e, Position{X: 0})
	require.NoError(t, err)

	scheduler := ecs.NewScheduler(world)
	scheduler.Register(&movementSystem{})

	require.NoError(t, scheduler.Once(1.0))
	assert.Equal(t, float32(1.0), ecs.Get[Position](world, e).X)
}

func TestSchedulerStats(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())
	scheduler := ecs.NewScheduler(world)
	scheduler.Register(&countingSystem{})

	require.NoError(t, scheduler.Once(0.016))
	require.NoError(t, scheduler.Once(0.016))

	stats := scheduler.GetStats()
	assert.Equal(t, 1, stats.SystemCount)
	assert.Equal(t, int64(2), stats.TotalExecutions)
	require.Len(t, stats.Systems, 1)
	assert.Equal(t, "countingSystem", stats.Systems[0].Name)
	assert.Equal(t, int64(2), stats.Systems[0].ExecutionCount)
	assert.GreaterOrEqual(t, stats.Systems[0].MaxDuration, stats.Systems[0].MinDuration)
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	world := ecs.NewWorld(newTestRegistry())
	scheduler := ecs.NewScheduler(world)
	system := &countingSystem{}
	scheduler.Register(system)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := scheduler.Run(ctx, time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, system.calls, 0)
}
