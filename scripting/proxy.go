package scripting

import (
	"iter"

	"github.com/dop251/goja"
	"github.com/kamstrup/intmap"

	"github.com/plus3/marionette/ecs"
)

// Proxy routes a native event type to the script objects of eligible
// entities. The System tests eligibility once, at realization time, and
// calls Register/Unregister as entities come and go; the proxy performs the
// actual delivery when its subscribed event fires.
type Proxy interface {
	// CanDeliver reports whether the script object is eligible to receive
	// this proxy's events. It is evaluated once per entity, at realization.
	CanDeliver(obj *goja.Object) bool
	// Register adds an entity to the delivery list. Registering an already
	// registered entity is a no-op; the list never holds duplicates.
	Register(e ecs.Entity)
	// Unregister removes an entity from the delivery list. Unregistering an
	// absent entity is a no-op.
	Unregister(e ecs.Entity)
}

// Receiver is a Proxy that receives events of type E from the event bus.
// Custom proxies implement Receive to filter against the event payload at
// delivery time, beyond the coarser CanDeliver eligibility test.
type Receiver[E any] interface {
	Proxy
	Receive(event E) error
}

// EventProxy is the embeddable base for proxies. Its CanDeliver tests for
// the presence of the configured handler method on the script object, and it
// maintains the ordered, duplicate-free registration list on behalf of the
// System.
type EventProxy struct {
	handler  string
	entities []ecs.Entity
	index    *intmap.Map[uint64, int]
}

// NewEventProxy creates a proxy base. The default CanDeliver implementation
// tests for the existence of a method named handlerName on the script object.
func NewEventProxy(handlerName string) *EventProxy {
	return &EventProxy{
		handler: handlerName,
		index:   intmap.New[uint64, int](16),
	}
}

// HandlerName returns the configured handler method name.
func (p *EventProxy) HandlerName() string {
	return p.handler
}

// CanDeliver reports whether the script object exposes the handler method.
func (p *EventProxy) CanDeliver(obj *goja.Object) bool {
	return obj != nil && hasMethod(obj, p.handler)
}

// Register adds an entity receiver. Called by the System at realization.
func (p *EventProxy) Register(e ecs.Entity) {
	key := e.ID()
	if _, ok := p.index.Get(key); ok {
		return
	}
	p.index.Put(key, len(p.entities))
	p.entities = append(p.entities, e)
}

// Unregister removes an entity receiver. Called by the System on entity
// destruction and Script component removal.
func (p *EventProxy) Unregister(e ecs.Entity) {
	key := e.ID()
	pos, ok := p.index.Get(key)
	if !ok {
		return
	}
	p.index.Del(key)
	p.entities = append(p.entities[:pos], p.entities[pos+1:]...)
	for i := pos; i < len(p.entities); i++ {
		p.index.Put(p.entities[i].ID(), i)
	}
}

// Len returns the number of registered entities.
func (p *EventProxy) Len() int {
	return len(p.entities)
}

// Receivers returns an iterator over the registered entities in registration
// order. It iterates a snapshot, so handlers may destroy entities (and
// thereby unregister them) during delivery.
func (p *EventProxy) Receivers() iter.Seq[ecs.Entity] {
	snapshot := make([]ecs.Entity, len(p.entities))
	copy(snapshot, p.entities)
	return func(yield func(ecs.Entity) bool) {
		for _, e := range snapshot {
			if !yield(e) {
				return
			}
		}
	}
}

// BroadcastProxy delivers events of type E to every registered entity
// unconditionally. Entities whose script object no longer exposes the
// handler method are skipped.
type BroadcastProxy[E any] struct {
	*EventProxy
	sys *System
}

// Receive implements Receiver. The first delivery error aborts the remainder
// of the pass.
func (p *BroadcastProxy[E]) Receive(event E) error {
	for e := range p.Receivers() {
		if err := p.sys.Deliver(e, p.HandlerName(), event); err != nil {
			return err
		}
	}
	return nil
}

// AddEventProxy subscribes the proxy to events of type E on the world's bus
// and records it with the System, so entities realized or destroyed from now
// on are registered and unregistered with it.
func AddEventProxy[E any](s *System, proxy Receiver[E]) {
	s.proxies = append(s.proxies, proxy)
	ecs.Subscribe(s.world.Events(), proxy.Receive)
}

// AddBroadcastProxy is the convenience form of AddEventProxy: it attaches a
// BroadcastProxy that delivers events of type E to every scripted entity
// exposing a method named handlerName.
func AddBroadcastProxy[E any](s *System, handlerName string) *BroadcastProxy[E] {
	proxy := &BroadcastProxy[E]{
		EventProxy: NewEventProxy(handlerName),
		sys:        s,
	}
	AddEventProxy[E](s, proxy)
	return proxy
}

func hasMethod(obj *goja.Object, name string) bool {
	v := obj.Get(name)
	if v == nil {
		return false
	}
	_, ok := goja.AssertFunction(v)
	return ok
}
