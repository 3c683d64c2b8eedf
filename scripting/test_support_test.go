package scripting_test

import (
	"testing"

	"github.com/plus3/marionette/ecs"
	"github.com/plus3/marionette/scripting"
)

// Native component and event types shared by the bridge tests.
type Position struct {
	X, Y float32
}

type Direction struct {
	X, Y float32
}

type Collision struct {
	A, B ecs.Entity
}

type Tick struct {
	Frame int
}

// Script sources served from memory; keys follow the loader's search-path
// probing ("scripts" is the configured search path).
var testScripts = map[string]string{
	"scripts/update_test.js": `
const { Entity } = require('marionette');

class UpdateTest extends Entity {
    constructor() {
        super();
        this.updated = false;
        this.lastDT = 0;
    }

    update(dt) {
        this.updated = true;
        this.lastDT = dt;
    }
}

module.exports = { UpdateTest };
`,

	"scripts/assign_test.js": `
const { Entity, Component } = require('marionette');

class AssignTest extends Entity {
    readPosition() {
        return [this.position.x, this.position.y];
    }

    moveTo(x, y) {
        this.position.x = x;
        this.position.y = y;
    }
}
AssignTest.components = { position: Component('Position', 1, 2) };

module.exports = { AssignTest };
`,

	"scripts/constructor_test.js": `
const { Entity, Component } = require('marionette');

class ConstructorTest extends Entity {
    constructor(x, y) {
        super();
        this.position.x = x;
        this.position.y = y;
    }
}
ConstructorTest.components = { position: Component('Position') };

module.exports = { ConstructorTest };
`,

	"scripts/event_test.js": `
const { Entity } = require('marionette');

class EventTest extends Entity {
    constructor() {
        super();
        this.collided = false;
    }

    onCollision(ev) {
        this.collided = true;
    }
}

module.exports = { EventTest };
`,

	"scripts/tick_test.js": `
const { Entity } = require('marionette');

class WithTick extends Entity {
    constructor() {
        super();
        this.ticks = 0;
    }

    onTick(ev) {
        this.ticks++;
        this.lastFrame = ev.frame;
    }
}

class WithoutTick extends Entity {
    constructor() {
        super();
        this.ticks = 0;
    }
}

module.exports = { WithTick, WithoutTick };
`,

	"scripts/deep_subclass_test.js": `
const { Entity, Component } = require('marionette');

class Base extends Entity {}
Base.components = { position: Component('Position', 5, 6) };

class Middle extends Base {}
Middle.components = { direction: Component('Direction', 1, 0) };

class Deep extends Middle {
    describe() {
        return [this.position.x, this.position.y, this.direction.x, this.direction.y];
    }
}

module.exports = { Base, Middle, Deep };
`,

	"scripts/create_test.js": `
const { Entity } = require('marionette');

class Spawned extends Entity {
    constructor() {
        super();
        this.updated = false;
    }

    update(dt) {
        this.updated = true;
    }
}

function createOne() {
    return new Spawned();
}

module.exports = { Spawned, createOne };
`,

	"scripts/emit_test.js": `
const m = require('marionette');

const Collision = m.event('Collision');

function collide(a, b) {
    m.emit(Collision(a, b));
}

module.exports = { collide };
`,

	"scripts/failing_test.js": `
const { Entity } = require('marionette');

class ThrowsInConstructor extends Entity {
    constructor() {
        super();
        throw new Error('constructor exploded');
    }
}

class ThrowsInUpdate extends Entity {
    update(dt) {
        throw new Error('update exploded');
    }
}

class ThrowsInHandler extends Entity {
    onCollision(ev) {
        throw new Error('handler exploded');
    }
}

module.exports = { ThrowsInConstructor, ThrowsInUpdate, ThrowsInHandler };
`,

	"scripts/console_test.js": `
const { Entity } = require('marionette');

class Chatty extends Entity {
    update(dt) {
        console.log('tick', dt);
        console.error('grumble');
    }
}

module.exports = { Chatty };
`,

	"scripts/destroy_test.js": `
const { Entity } = require('marionette');

class SelfDestruct extends Entity {
    constructor() {
        super();
        this.updates = 0;
    }

    update(dt) {
        this.updates++;
        this.destroy();
    }
}

module.exports = { SelfDestruct };
`,
}

func memLoader(files map[string]string) scripting.SourceLoader {
	return func(path string) ([]byte, error) {
		if src, ok := files[path]; ok {
			return []byte(src), nil
		}
		return nil, scripting.ModuleUnavailableError
	}
}

// newTestSystem builds a world and bridge with the shared test scripts,
// component and event exposures.
func newTestSystem(t *testing.T) (*ecs.World, *scripting.System) {
	t.Helper()

	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Direction](registry)
	world := ecs.NewWorld(registry)

	sys := scripting.NewSystem(world,
		scripting.WithSearchPaths("scripts"),
		scripting.WithSourceLoader(memLoader(testScripts)),
	)

	scripting.ExposeComponent[Position](sys, "Position")
	scripting.ExposeComponent[Direction](sys, "Direction")
	scripting.ExposeEvent[Collision](sys, "Collision")
	scripting.ExposeEvent[Tick](sys, "Tick")

	return world, sys
}

// collisionProxy delivers a collision only to the two participants,
// re-examining the event payload at delivery time.
type collisionProxy struct {
	*scripting.EventProxy
	sys *scripting.System
}

func newCollisionProxy(sys *scripting.System) *collisionProxy {
	return &collisionProxy{
		EventProxy: scripting.NewEventProxy("onCollision"),
		sys:        sys,
	}
}

func (p *collisionProxy) Receive(ev Collision) error {
	for e := range p.Receivers() {
		if e == ev.A || e == ev.B {
			if err := p.sys.Deliver(e, p.HandlerName(), ev); err != nil {
				return err
			}
		}
	}
	return nil
}
