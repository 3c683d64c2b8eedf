package scripting

import (
	"fmt"
	"reflect"

	"github.com/dop251/goja"

	"github.com/plus3/marionette/ecs"
)

type componentBinding struct {
	assign func(e ecs.Entity, args []goja.Value) error
	get    func(e ecs.Entity) any
	has    func(e ecs.Entity) bool
}

type eventBinding struct {
	emit func(args []goja.Value) error
}

// ExposeComponent makes the native component type T available to scripts
// under the given name. Scripts construct it with positional arguments
// mapped to T's struct fields in declaration order (missing arguments leave
// fields zero), and read it as a live reference: field writes from script
// code land directly in the world's component storage.
func ExposeComponent[T any](s *System, name string) {
	s.components[name] = componentBinding{
		assign: func(e ecs.Entity, args []goja.Value) error {
			var component T
			if err := positionalFields(s.vm, &component, args); err != nil {
				return fmt.Errorf("component %s: %w", name, err)
			}
			_, err := ecs.Assign(s.world, e, component)
			return err
		},
		get: func(e ecs.Entity) any {
			if ptr := ecs.Get[T](s.world, e); ptr != nil {
				return ptr
			}
			return nil
		},
		has: func(e ecs.Entity) bool {
			return ecs.Has[T](s.world, e)
		},
	}
}

// ExposeEvent associates the native event type T with a script-side payload
// class of the given name. Scripts build the payload with positional
// arguments mapped to T's struct fields in declaration order and publish it
// with the library's emit() function; the event reaches native subscribers
// and proxies exactly like one published from Go.
func ExposeEvent[T any](s *System, name string) {
	s.events[name] = eventBinding{
		emit: func(args []goja.Value) error {
			var event T
			if err := positionalFields(s.vm, &event, args); err != nil {
				return fmt.Errorf("event %s: %w", name, err)
			}
			return ecs.Publish(s.world.Events(), event)
		},
	}
}

// positionalFields fills the struct behind target from script values, one
// exported field per argument, in declaration order.
func positionalFields(vm *goja.Runtime, target any, args []goja.Value) error {
	v := reflect.ValueOf(target).Elem()
	t := v.Type()
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("%s is not a struct type", t)
	}
	if len(args) > t.NumField() {
		return fmt.Errorf("%d constructor arguments for %s (max %d)", len(args), t, t.NumField())
	}
	for i, arg := range args {
		field := v.Field(i)
		if !field.CanSet() {
			return fmt.Errorf("field %s.%s is not settable", t, t.Field(i).Name)
		}
		if err := vm.ExportTo(arg, field.Addr().Interface()); err != nil {
			return fmt.Errorf("argument %d for %s: %w", i, t, err)
		}
	}
	return nil
}
