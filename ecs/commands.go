package ecs

import (
	"go.uber.org/multierr"
)

// Commands provides a buffer for deferred ECS operations that are executed at the end of a frame.
// Systems iterate their entity sets while they run, so structural changes are queued here instead.
type Commands struct {
	creates  []func(Entity)
	destroys []Entity
	adds     []entityCommand
	removes  []entityCommand
	defers   []func()
}

// NewCommands returns an empty command buffer.
func NewCommands() *Commands {
	return newCommands()
}

func newCommands() *Commands {
	return &Commands{}
}

type entityCommand struct {
	entity Entity
	apply  func(*Coordinator) error
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Create queues an entity creation. setup runs with the new entity once it
// exists and may add components to it directly.
func (c *Commands) Create(setup func(Entity)) {
	c.creates = append(c.creates, setup)
}

// Destroy queues an entity destruction.
func (c *Commands) Destroy(e Entity) {
	c.destroys = append(c.destroys, e)
}

// QueueAdd queues attaching value to e.
func QueueAdd[T any](c *Commands, e Entity, value T) {
	c.adds = append(c.adds, entityCommand{
		entity: e,
		apply: func(co *Coordinator) error {
			return AddComponent(co, e, value)
		},
	})
}

// QueueRemove queues detaching the T component from e.
func QueueRemove[T any](c *Commands, e Entity) {
	c.removes = append(c.removes, entityCommand{
		entity: e,
		apply: func(co *Coordinator) error {
			return RemoveComponent[T](co, e)
		},
	})
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.creates) + len(c.destroys) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies every queued operation to co and resets the buffer. Destroys
// run first, then removes, adds, creates and deferred functions. Adds and
// removes that target an entity destroyed in the same flush are dropped.
// A failing operation does not stop the flush; all failures are returned
// together.
func (c *Commands) Flush(co *Coordinator) error {
	var errs error
	destroyed := make(map[Entity]struct{}, len(c.destroys))

	for _, e := range c.destroys {
		if _, ok := destroyed[e]; ok {
			continue
		}
		errs = multierr.Append(errs, co.DestroyEntity(e))
		destroyed[e] = struct{}{}
	}

	for _, cmd := range c.removes {
		if _, ok := destroyed[cmd.entity]; !ok {
			errs = multierr.Append(errs, cmd.apply(co))
		}
	}

	for _, cmd := range c.adds {
		if _, ok := destroyed[cmd.entity]; !ok {
			errs = multierr.Append(errs, cmd.apply(co))
		}
	}

	for _, setup := range c.creates {
		e, err := co.CreateEntity()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if setup != nil {
			setup(e)
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	clear(c.creates)
	clear(c.adds)
	clear(c.removes)
	clear(c.defers)
	c.creates = c.creates[:0]
	c.destroys = c.destroys[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
	return errs
}
