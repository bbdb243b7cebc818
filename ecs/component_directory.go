package ecs

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// ComponentDirectory owns one ComponentStore per registered component type
// and maps every type to its ComponentType slot. Each Coordinator has its own
// directory, so independent worlds never share slots.
type ComponentDirectory struct {
	log      *zap.Logger
	capacity int

	slots  map[reflect.Type]ComponentType
	stores []iComponentStore // indexed by slot
}

// NewComponentDirectory creates an empty directory whose stores hold up to
// capacity components each.
func NewComponentDirectory(capacity int, log *zap.Logger) *ComponentDirectory {
	if log == nil {
		log = zap.NewNop()
	}
	return &ComponentDirectory{
		log:      log,
		capacity: capacity,
		slots:    make(map[reflect.Type]ComponentType),
		stores:   make([]iComponentStore, 0, MaxComponents),
	}
}

// registerComponent assigns the next free slot to T and creates its store.
// Registering T again is a no-op that returns the existing slot.
func registerComponent[T any](d *ComponentDirectory) (ComponentType, error) {
	t := reflect.TypeFor[T]()
	if slot, ok := d.slots[t]; ok {
		d.log.Warn("component already registered, consider relying on AddComponent instead",
			zap.Stringer("component", t),
			zap.Uint8("slot", uint8(slot)))
		return slot, nil
	}
	if len(d.stores) >= MaxComponents {
		return 0, fmt.Errorf("%w: cannot register %s, %d component types in use", ErrCapacityExceeded, t, MaxComponents)
	}

	slot := ComponentType(len(d.stores))
	d.slots[t] = slot
	d.stores = append(d.stores, newComponentStore[T](d.capacity, d.log))

	d.log.Debug("component directory registered component",
		zap.Stringer("component", t),
		zap.Uint8("slot", uint8(slot)))
	return slot, nil
}

// componentTypeOf returns the slot assigned to T.
func componentTypeOf[T any](d *ComponentDirectory) (ComponentType, error) {
	t := reflect.TypeFor[T]()
	slot, ok := d.slots[t]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnregisteredType, t)
	}
	return slot, nil
}

// typedStore returns the store for T.
func typedStore[T any](d *ComponentDirectory) (*ComponentStore[T], error) {
	slot, err := componentTypeOf[T](d)
	if err != nil {
		return nil, err
	}
	return d.stores[slot].(*ComponentStore[T]), nil
}

// addComponent inserts value for e, registering T first if it is unknown.
// It returns the slot of T.
func addComponent[T any](d *ComponentDirectory, e Entity, value T) (ComponentType, error) {
	if _, ok := d.slots[reflect.TypeFor[T]()]; !ok {
		d.log.Info("component was not registered before use, registering now",
			zap.Stringer("component", reflect.TypeFor[T]()),
			zap.Uint32("entity", uint32(e)))
		if _, err := registerComponent[T](d); err != nil {
			return 0, err
		}
	}

	slot, cs, err := storeWithSlot[T](d)
	if err != nil {
		return 0, err
	}
	if err := cs.Insert(e, value); err != nil {
		return 0, err
	}
	return slot, nil
}

// removeComponent removes the T component of e and returns the slot of T.
func removeComponent[T any](d *ComponentDirectory, e Entity) (ComponentType, error) {
	slot, cs, err := storeWithSlot[T](d)
	if err != nil {
		return 0, err
	}
	if err := cs.Remove(e); err != nil {
		return 0, err
	}
	return slot, nil
}

// getComponent returns a pointer to the T component of e. See
// ComponentStore.Get for how long the pointer stays valid.
func getComponent[T any](d *ComponentDirectory, e Entity) (*T, error) {
	cs, err := typedStore[T](d)
	if err != nil {
		return nil, err
	}
	return cs.Get(e)
}

// EntityDestroyed tells every store that e is gone.
func (d *ComponentDirectory) EntityDestroyed(e Entity) {
	for _, store := range d.stores {
		store.EntityDestroyed(e)
	}
	d.log.Debug("component directory removed entity from all stores", zap.Uint32("entity", uint32(e)))
}

// Len returns the number of registered component types.
func (d *ComponentDirectory) Len() int {
	return len(d.stores)
}

// Types returns the registered component types in slot order.
func (d *ComponentDirectory) Types() []reflect.Type {
	types := make([]reflect.Type, len(d.stores))
	for i, store := range d.stores {
		types[i] = store.Type()
	}
	return types
}

// SlotOf returns the slot registered for t.
func (d *ComponentDirectory) SlotOf(t reflect.Type) (ComponentType, bool) {
	slot, ok := d.slots[t]
	return slot, ok
}

// componentAt returns the component stored for e in the given slot as an
// untyped *T, or nil.
func (d *ComponentDirectory) componentAt(slot ComponentType, e Entity) any {
	if int(slot) >= len(d.stores) {
		return nil
	}
	return d.stores[slot].GetAny(e)
}

func storeWithSlot[T any](d *ComponentDirectory) (ComponentType, *ComponentStore[T], error) {
	slot, err := componentTypeOf[T](d)
	if err != nil {
		return 0, nil, err
	}
	return slot, d.stores[slot].(*ComponentStore[T]), nil
}
