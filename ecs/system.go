package ecs

// System represents a behavior that operates on the world once per tick.
// User-defined systems implement this interface and can keep state fields
// that persist between frames. An error aborts the remainder of the frame
// and is returned from Scheduler.Once.
type System interface {
	Update(w *World, dt float64) error
}
