// Package scripting bridges the ecs package with an embedded JavaScript
// engine (goja), so that behavior can be attached to individual entities
// as scripts without recompiling native code.
//
// The bridge differs in design from the native side in the following ways:
//
//   - Scripted entities contain logic and can receive events.
//   - Systems and component types can not be defined in scripts; scripts
//     only attach behavior to entities through the Script component.
package scripting

import "github.com/dop251/goja"

// Script is the component that attaches scripted behavior to an entity.
//
// A Script is constructed one of two ways: from native code with a module
// path, class name and constructor arguments, to be lazily realized into a
// script object by the System; or by wrapping an already-constructed script
// object (the path taken when the object was created from script code).
// Exactly one of the two holds for any instance.
type Script struct {
	// Module is the require() path of the script module, resolved against
	// the System's search paths.
	Module string
	// Class is the exported symbol within the module. It must extend the
	// Entity base class of the "marionette" script library.
	Class string
	// Args are the constructor arguments captured at assignment time and
	// forwarded positionally at realization.
	Args []any

	// Object is the live script-side instance. It is nil until the System
	// observes the component and realizes it; nothing is validated before
	// then.
	Object *goja.Object
}

// NewScript creates a Script to be lazily realized from module, class and
// constructor arguments. The module and class are not resolved here; an
// unresolvable reference fails at realization time.
func NewScript(module, class string, args ...any) Script {
	return Script{Module: module, Class: class, Args: args}
}

// Wrap creates a Script around an existing script object. The component is
// already realized; the System skips construction and only wires proxies.
func Wrap(obj *goja.Object) Script {
	return Script{Object: obj}
}

// Realized reports whether the script object has been constructed.
func (sc *Script) Realized() bool {
	return sc.Object != nil
}
