package scripting

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/plus3/marionette/ecs"
)

//go:embed library.js
var librarySource string

// libraryProgram compiles the embedded base library exactly once per
// process, no matter how many Systems exist. Compiled goja programs are
// immutable and shared safely across runtimes.
var libraryProgram = sync.OnceValue(func() *goja.Program {
	return goja.MustCompile(LibraryName+"/library.js", librarySource, true)
})

// libraryLoader instantiates the "marionette" module in a runtime: it runs
// the compiled base library and hands it this System's host API.
func (s *System) libraryLoader(vm *goja.Runtime, module *goja.Object) {
	setup, err := vm.RunProgram(libraryProgram())
	if err != nil {
		panic(fmt.Errorf("scripting: base library failed to load: %w", err))
	}
	fn, ok := goja.AssertFunction(setup)
	if !ok {
		panic("scripting: base library is not a setup function")
	}
	exports, err := fn(goja.Undefined(), vm.ToValue(&hostAPI{s: s}))
	if err != nil {
		panic(fmt.Errorf("scripting: base library setup failed: %w", err))
	}
	module.Set("exports", exports)
}

// hostAPI is the native surface handed to the base library. Method names
// reach script code uncapitalized (configure, destroy, emit, ...). Errors
// returned here surface as JavaScript exceptions in the calling script.
type hostAPI struct {
	s *System
}

// Configure creates a new native entity and attaches the calling script
// object as its Script component, already realized. This is the inverse
// construction path: from the bridge's perspective the resulting object is
// indistinguishable from one realized from native code.
func (h *hostAPI) Configure(obj *goja.Object) (ecs.Entity, error) {
	e := h.s.world.CreateEntity()
	if _, err := ecs.Assign(h.s.world, e, Wrap(obj)); err != nil {
		return ecs.Entity{}, err
	}
	return e, nil
}

// Destroy forwards to native entity destruction.
func (h *hostAPI) Destroy(e ecs.Entity) error {
	return h.s.world.DestroyEntity(e)
}

// Emit publishes the named native event, built from positional arguments.
func (h *hostAPI) Emit(name string, args ...goja.Value) error {
	binding, ok := h.s.events[name]
	if !ok {
		return fmt.Errorf("scripting: event %q is not exposed", name)
	}
	return binding.emit(args)
}

// GetComponent returns a live reference to the entity's component, or null.
func (h *hostAPI) GetComponent(name string, e ecs.Entity) (any, error) {
	binding, ok := h.s.components[name]
	if !ok {
		return nil, fmt.Errorf("scripting: component %q is not exposed", name)
	}
	return binding.get(e), nil
}

// AssignComponent constructs the named component from positional arguments
// and assigns it to the entity.
func (h *hostAPI) AssignComponent(name string, e ecs.Entity, args ...goja.Value) error {
	binding, ok := h.s.components[name]
	if !ok {
		return fmt.Errorf("scripting: component %q is not exposed", name)
	}
	return binding.assign(e, args)
}

// HasComponent reports whether the entity holds the named component.
func (h *hostAPI) HasComponent(name string, e ecs.Entity) (bool, error) {
	binding, ok := h.s.components[name]
	if !ok {
		return false, fmt.Errorf("scripting: component %q is not exposed", name)
	}
	return binding.has(e), nil
}
