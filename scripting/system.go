package scripting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"go.uber.org/zap"

	"github.com/plus3/marionette/ecs"
)

// LibraryName is the require() path of the script-side base library.
const LibraryName = "marionette"

var (
	// ErrClassNotFound is returned when a module resolves but does not
	// export the configured class.
	ErrClassNotFound = errors.New("scripting: class not found in module")

	// ErrNotAnEntityClass is returned when the resolved class does not
	// descend from the Entity base class (it lacks the fromRawEntity
	// factory).
	ErrNotAnEntityClass = errors.New("scripting: class does not extend Entity")
)

// SourceLoader resolves a script path to its source. The default loader
// reads from the filesystem; tests and embedders can supply their own.
type SourceLoader = require.SourceLoader

// ModuleUnavailableError is the loader error for a path that does not exist.
// Aliased so in-memory loaders don't need to import goja_nodejs directly.
var ModuleUnavailableError = require.ModuleFileDoesNotExistError

// Option configures a System.
type Option func(*System)

// WithSearchPaths configures the directories searched when resolving a
// Script's module path.
func WithSearchPaths(paths ...string) Option {
	return func(s *System) {
		s.paths = append(s.paths, paths...)
	}
}

// WithSourceLoader replaces the filesystem source loader. Search paths are
// still applied; only the reads go through the custom loader.
func WithSourceLoader(loader SourceLoader) Option {
	return func(s *System) {
		s.loader = loader
	}
}

// WithLogger sets the logger backing the default stdout/stderr callbacks.
func WithLogger(logger *zap.Logger) Option {
	return func(s *System) {
		s.log = logger
	}
}

// System is the bridge between the ECS world and the embedded JavaScript
// runtime. It owns the per-entity script object lifecycle: objects are
// constructed lazily when a Script component is observed, registered with
// every eligible event proxy, driven by Advance each tick, and unregistered
// when the entity is destroyed.
//
// A System, its world and the scripts it runs share one logical thread.
// Script code re-enters the bridge only through its own call sites
// (realization, delivery, Advance, the script-side construction path);
// nothing here is safe for concurrent use.
type System struct {
	world    *ecs.World
	vm       *goja.Runtime
	registry *require.Registry
	req      *require.RequireModule

	proxies    []Proxy
	components map[string]componentBinding
	events     map[string]eventBinding

	paths  []string
	loader SourceLoader

	log            *zap.Logger
	stdout, stderr LoggerFunc
}

// NewSystem creates a bridge for the given world, registers the Script
// component type, installs the script-side base library and console
// redirection, and subscribes to the world's lifecycle notifications.
func NewSystem(world *ecs.World, opts ...Option) *System {
	s := &System{
		world:      world,
		components: make(map[string]componentBinding),
		events:     make(map[string]eventBinding),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.stdout = func(line string) { s.log.Info(line) }
	s.stderr = func(line string) { s.log.Error(line) }

	ecs.RegisterComponent[Script](world.Registry())

	regOpts := []require.Option{require.WithGlobalFolders(s.paths...)}
	if s.loader != nil {
		regOpts = append(regOpts, require.WithLoader(s.loader))
	}
	s.registry = require.NewRegistry(regOpts...)
	s.registry.RegisterNativeModule(LibraryName, s.libraryLoader)
	s.registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(printer{s}))

	s.vm = goja.New()
	s.vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
	s.req = s.registry.Enable(s.vm)
	console.Enable(s.vm)

	ecs.Subscribe(world.Events(), s.onScriptAdded)
	ecs.Subscribe(world.Events(), s.onScriptRemoved)
	ecs.Subscribe(world.Events(), s.onEntityDestroyed)

	return s
}

// Require resolves and evaluates a script module through the bridge's
// loader and search paths, returning its exports. Mostly useful for calling
// into script code that is not attached to any entity.
func (s *System) Require(path string) (goja.Value, error) {
	return s.req.Require(path)
}

// World returns the world this bridge is attached to.
func (s *System) World() *ecs.World {
	return s.world
}

// Runtime returns the underlying JavaScript runtime. Useful for inspecting
// script objects in tests and tools; must not be used concurrently with the
// bridge.
func (s *System) Runtime() *goja.Runtime {
	return s.vm
}

// LogTo sets line-based callbacks for the scripts' standard output and
// error streams. console.log is routed to stdout, console.warn and
// console.error to stderr; unhandled script errors print their traceback to
// stderr before propagating.
func (s *System) LogTo(stdout, stderr LoggerFunc) {
	s.stdout = stdout
	s.stderr = stderr
}

// Advance invokes update(dt) on every realized scripted entity, in store
// order. The first failing update aborts the remainder of the pass; its
// traceback is written to the error stream and the error returned.
func (s *System) Advance(dt float64) error {
	for e, sc := range ecs.Iter[Script](s.world) {
		if sc.Object == nil {
			continue
		}
		fn, ok := goja.AssertFunction(sc.Object.Get("update"))
		if !ok {
			continue
		}
		if _, err := fn(sc.Object, s.vm.ToValue(dt)); err != nil {
			s.reportScriptError(err)
			return fmt.Errorf("update %s: %w", e, err)
		}
	}
	return nil
}

// Update implements ecs.System, so the bridge can be driven by a Scheduler.
func (s *System) Update(_ *ecs.World, dt float64) error {
	return s.Advance(dt)
}

// Deliver invokes the named handler method on the entity's script object,
// passing the event payload. Entities that are stale, unrealized, or whose
// object no longer exposes the method are skipped without error; a handler
// failure has its traceback written to the error stream and is returned.
//
// Custom proxies call this from their Receive implementations.
func (s *System) Deliver(e ecs.Entity, method string, event any) error {
	sc := ecs.Get[Script](s.world, e)
	if sc == nil || sc.Object == nil {
		return nil
	}
	fn, ok := goja.AssertFunction(sc.Object.Get(method))
	if !ok {
		return nil
	}
	if _, err := fn(sc.Object, s.vm.ToValue(event)); err != nil {
		s.reportScriptError(err)
		return fmt.Errorf("deliver %s to %s: %w", method, e, err)
	}
	return nil
}

// onScriptAdded realizes a Script component observed for the first time and
// registers the entity with every eligible proxy. Realization runs
// synchronously inside the component-added notification, so it completes
// before control returns to whoever assigned the component, and always
// precedes any delivery or Advance call targeting the entity.
func (s *System) onScriptAdded(ev ecs.ComponentAdded[Script]) error {
	sc := ev.Component
	if sc.Object == nil {
		if err := s.realize(ev.Entity, sc); err != nil {
			s.reportScriptError(err)
			return err
		}
	}
	for _, proxy := range s.proxies {
		if proxy.CanDeliver(sc.Object) {
			proxy.Register(ev.Entity)
		}
	}
	return nil
}

// realize resolves the module and class and invokes the class's
// fromRawEntity factory with the entity identity and the captured
// constructor arguments. Any failure is fatal and propagates to the caller
// that triggered the assignment; nothing is retried.
func (s *System) realize(e ecs.Entity, sc *Script) error {
	ns, err := s.req.Require(sc.Module)
	if err != nil {
		return fmt.Errorf("resolve module %q: %w", sc.Module, err)
	}
	classVal := ns.ToObject(s.vm).Get(sc.Class)
	if classVal == nil || goja.IsUndefined(classVal) || goja.IsNull(classVal) {
		return fmt.Errorf("resolve %q in module %q: %w", sc.Class, sc.Module, ErrClassNotFound)
	}
	factory, ok := goja.AssertFunction(classVal.ToObject(s.vm).Get("fromRawEntity"))
	if !ok {
		return fmt.Errorf("class %q in module %q: %w", sc.Class, sc.Module, ErrNotAnEntityClass)
	}

	args := make([]goja.Value, 0, len(sc.Args)+1)
	args = append(args, s.vm.ToValue(e))
	for _, a := range sc.Args {
		args = append(args, s.vm.ToValue(a))
	}

	obj, err := factory(classVal, args...)
	if err != nil {
		return fmt.Errorf("construct %s.%s for %s: %w", sc.Module, sc.Class, e, err)
	}
	sc.Object = obj.ToObject(s.vm)
	return nil
}

func (s *System) onScriptRemoved(ev ecs.ComponentRemoved[Script]) error {
	s.unregisterAll(ev.Entity)
	return nil
}

func (s *System) onEntityDestroyed(ev ecs.EntityDestroyed) error {
	s.unregisterAll(ev.Entity)
	return nil
}

func (s *System) unregisterAll(e ecs.Entity) {
	for _, proxy := range s.proxies {
		proxy.Unregister(e)
	}
}

// reportScriptError writes a script failure to the error stream, line by
// line, including the JavaScript traceback when one is available.
func (s *System) reportScriptError(err error) {
	var ex *goja.Exception
	text := err.Error()
	if errors.As(err, &ex) {
		text = ex.String()
	}
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		s.stderr(line)
	}
}
