package ecs

import (
	"fmt"
	"iter"
	"reflect"

	"go.uber.org/zap"
)

// Coordinator is the entry point to an ECS world. It owns the entity
// registry, the component directory and the system directory and keeps them
// consistent: every mutation updates the entity's signature, the component
// stores and system membership together.
//
// A Coordinator is not safe for concurrent use. Callers must serialize
// access, for example by driving it from a single game loop goroutine.
type Coordinator struct {
	log        *zap.Logger
	entities   *EntityRegistry
	components *ComponentDirectory
	systems    *SystemDirectory
}

type options struct {
	log         *zap.Logger
	maxEntities int
}

// Option configures a Coordinator.
type Option func(*options)

// WithLogger sets the logger used by the Coordinator and its managers.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithMaxEntities lowers the number of simultaneously live entities below
// MaxEntities.
func WithMaxEntities(n int) Option {
	return func(o *options) {
		o.maxEntities = n
	}
}

// NewCoordinator creates an empty world.
func NewCoordinator(opts ...Option) *Coordinator {
	o := options{maxEntities: MaxEntities}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	capacity := max(1, min(o.maxEntities, MaxEntities))

	c := &Coordinator{
		log:        o.log,
		entities:   NewEntityRegistry(capacity, o.log.Named("entities")),
		components: NewComponentDirectory(capacity, o.log.Named("components")),
		systems:    NewSystemDirectory(o.log.Named("systems")),
	}
	c.log.Debug("coordinator created", zap.Int("max_entities", capacity))
	return c
}

// CreateEntity returns a fresh entity with an empty signature.
func (c *Coordinator) CreateEntity() (Entity, error) {
	return c.entities.Create()
}

// DestroyEntity frees e and removes it from every component store and every
// system.
func (c *Coordinator) DestroyEntity(e Entity) error {
	if err := c.entities.Destroy(e); err != nil {
		return err
	}
	c.components.EntityDestroyed(e)
	c.systems.EntityDestroyed(e)

	c.log.Debug("coordinator destroyed entity", zap.Uint32("entity", uint32(e)))
	return nil
}

// IsAlive reports whether e is currently alive.
func (c *Coordinator) IsAlive(e Entity) bool {
	return c.entities.IsAlive(e)
}

// LiveEntities returns the number of live entities.
func (c *Coordinator) LiveEntities() int {
	return c.entities.Len()
}

// Entities iterates the live entities in no particular order. Entities must
// not be created or destroyed during iteration.
func (c *Coordinator) Entities() iter.Seq[Entity] {
	return c.entities.Live()
}

// SignatureOf returns the current signature of e.
func (c *Coordinator) SignatureOf(e Entity) (Signature, error) {
	if err := c.checkAlive(e); err != nil {
		return 0, err
	}
	return c.entities.Signature(e)
}

// Systems iterates the registered systems in registration order.
func (c *Coordinator) Systems() iter.Seq[System] {
	return c.systems.Systems()
}

// ComponentTypes returns every registered component type in slot order.
func (c *Coordinator) ComponentTypes() []reflect.Type {
	return c.components.Types()
}

// ComponentAt returns the component of e registered under slot, or nil if e
// does not hold one. The value is a pointer to the stored component.
func (c *Coordinator) ComponentAt(e Entity, slot ComponentType) any {
	return c.components.componentAt(slot, e)
}

func (c *Coordinator) checkAlive(e Entity) error {
	if !c.entities.IsAlive(e) {
		if int(e) >= c.entities.Capacity() {
			return fmt.Errorf("%w: entity %d exceeds the maximum of %d entities", ErrInvalidEntity, e, c.entities.Capacity())
		}
		return fmt.Errorf("%w: entity %d is not alive", ErrInvalidEntity, e)
	}
	return nil
}

// applySignature persists sig for e and recomputes its system membership.
func (c *Coordinator) applySignature(e Entity, sig Signature) error {
	if err := c.entities.SetSignature(e, sig); err != nil {
		return err
	}
	c.systems.EntitySignatureChanged(e, sig)
	return nil
}

// RegisterComponent assigns a slot to T. Registering the same type twice
// returns the same slot.
func RegisterComponent[T any](c *Coordinator) (ComponentType, error) {
	return registerComponent[T](c.components)
}

// GetComponentType returns the slot of T.
func GetComponentType[T any](c *Coordinator) (ComponentType, error) {
	return componentTypeOf[T](c.components)
}

// AddComponent attaches value to e, registering T on first use. The call
// fails without side effects if e is not alive or already holds a T.
func AddComponent[T any](c *Coordinator, e Entity, value T) error {
	if err := c.checkAlive(e); err != nil {
		return err
	}
	sig, _ := c.entities.Signature(e)

	slot, err := addComponent(c.components, e, value)
	if err != nil {
		return err
	}
	if err := c.applySignature(e, sig.Set(slot)); err != nil {
		return err
	}

	c.log.Debug("coordinator added component",
		zap.Stringer("component", reflect.TypeFor[T]()),
		zap.Uint32("entity", uint32(e)))
	return nil
}

// RemoveComponent detaches the T component from e. The call fails without
// side effects if e is not alive or holds no T.
func RemoveComponent[T any](c *Coordinator, e Entity) error {
	if err := c.checkAlive(e); err != nil {
		return err
	}
	sig, _ := c.entities.Signature(e)

	slot, err := removeComponent[T](c.components, e)
	if err != nil {
		return err
	}
	if err := c.applySignature(e, sig.Clear(slot)); err != nil {
		return err
	}

	c.log.Debug("coordinator removed component",
		zap.Stringer("component", reflect.TypeFor[T]()),
		zap.Uint32("entity", uint32(e)))
	return nil
}

// HasComponent reports whether e holds a T. It never fails: unknown types,
// out of range ids and dead entities all answer false.
func HasComponent[T any](c *Coordinator, e Entity) bool {
	slot, err := componentTypeOf[T](c.components)
	if err != nil || !c.entities.IsAlive(e) {
		return false
	}
	sig, err := c.entities.Signature(e)
	return err == nil && sig.Has(slot)
}

// GetComponent returns a pointer to the T component of e. The pointer
// aliases the packed store and must not be kept across calls that add or
// remove T components on any entity.
func GetComponent[T any](c *Coordinator, e Entity) (*T, error) {
	return getComponent[T](c.components, e)
}

// ComponentStoreOf returns the packed store for T, for systems that iterate
// raw component sequences.
func ComponentStoreOf[T any](c *Coordinator) (*ComponentStore[T], error) {
	return typedStore[T](c.components)
}

// Require returns sig with the bit of T set, registering T if needed.
func Require[T any](c *Coordinator, sig Signature) (Signature, error) {
	slot, err := componentTypeOf[T](c.components)
	if err != nil {
		if slot, err = registerComponent[T](c.components); err != nil {
			return sig, err
		}
	}
	return sig.Set(slot), nil
}

// RegisterSystem registers a pre-built system. Each concrete system type can
// be registered once.
func RegisterSystem[S System](c *Coordinator, sys S) (S, error) {
	return registerSystem(c.systems, sys)
}

// RegisterNewSystem constructs a zero-value S and registers it.
func RegisterNewSystem[S any, P systemPtr[S]](c *Coordinator) (P, error) {
	return registerNewSystem[S, P](c.systems)
}

// GetSystem returns the registered instance of S.
func GetSystem[S System](c *Coordinator) (S, error) {
	return getSystem[S](c.systems)
}

// SystemSignature returns the required signature of S.
func SystemSignature[S System](c *Coordinator) (Signature, error) {
	return systemSignature[S](c.systems)
}

// SetSystemSignature sets the components S requires and rebuilds its entity
// set from the entities alive right now.
func SetSystemSignature[S System](c *Coordinator, sig Signature) error {
	rec, err := setSystemSignature[S](c.systems, sig)
	if err != nil {
		return err
	}
	c.systems.resync(rec, c.entities)

	c.log.Debug("coordinator persisted system signature",
		zap.String("system", rec.name),
		zap.Stringer("signature", sig))
	return nil
}
