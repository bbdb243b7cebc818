package ecs

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// ComponentStore keeps every component of type T in one packed slice.
// Occupied slots are always [0, Len()); removal moves the last value into
// the hole so the slice never has gaps.
type ComponentStore[T any] struct {
	log      *zap.Logger
	typ      reflect.Type
	capacity int

	values        []T
	entityToIndex *intmap.Map[Entity, int]
	indexToEntity []Entity
}

func newComponentStore[T any](capacity int, log *zap.Logger) *ComponentStore[T] {
	return &ComponentStore[T]{
		log:           log,
		typ:           reflect.TypeFor[T](),
		capacity:      capacity,
		values:        make([]T, 0, min(capacity, 64)),
		entityToIndex: intmap.New[Entity, int](min(capacity, 64)),
		indexToEntity: make([]Entity, 0, min(capacity, 64)),
	}
}

// Insert appends value for e at the end of the packed slice.
func (cs *ComponentStore[T]) Insert(e Entity, value T) error {
	if cs.entityToIndex.Has(e) {
		return fmt.Errorf("%w: entity %d already has %s", ErrDuplicateComponent, e, cs.typ)
	}
	if len(cs.values) >= cs.capacity {
		return fmt.Errorf("%w: %s store holds %d components", ErrCapacityExceeded, cs.typ, cs.capacity)
	}

	cs.entityToIndex.Put(e, len(cs.values))
	cs.indexToEntity = append(cs.indexToEntity, e)
	cs.values = append(cs.values, value)

	cs.log.Debug("component store inserted component",
		zap.Stringer("component", cs.typ),
		zap.Uint32("entity", uint32(e)))
	return nil
}

// Remove deletes the component of e by overwriting its slot with the last
// value and shrinking the slice by one.
func (cs *ComponentStore[T]) Remove(e Entity) error {
	idx, ok := cs.entityToIndex.Get(e)
	if !ok {
		return fmt.Errorf("%w: entity %d has no %s", ErrComponentNotFound, e, cs.typ)
	}

	last := len(cs.values) - 1
	lastEntity := cs.indexToEntity[last]

	cs.values[idx] = cs.values[last]
	cs.indexToEntity[idx] = lastEntity
	cs.entityToIndex.Put(lastEntity, idx)

	var zero T
	cs.values[last] = zero
	cs.values = cs.values[:last]
	cs.indexToEntity = cs.indexToEntity[:last]
	cs.entityToIndex.Del(e)

	cs.log.Debug("component store removed component",
		zap.Stringer("component", cs.typ),
		zap.Uint32("entity", uint32(e)),
		zap.Uint32("moved", uint32(lastEntity)))
	return nil
}

// Get returns a pointer into the packed slice. The pointer is only valid
// until the next Insert or Remove on this store: a removal may move another
// entity's value into the slot, and an insert may reallocate the slice.
func (cs *ComponentStore[T]) Get(e Entity) (*T, error) {
	idx, ok := cs.entityToIndex.Get(e)
	if !ok {
		return nil, fmt.Errorf("%w: entity %d has no %s", ErrComponentNotFound, e, cs.typ)
	}
	return &cs.values[idx], nil
}

func (cs *ComponentStore[T]) lookup(e Entity) (*T, bool) {
	idx, ok := cs.entityToIndex.Get(e)
	if !ok {
		return nil, false
	}
	return &cs.values[idx], true
}

func (cs *ComponentStore[T]) Has(e Entity) bool {
	return cs.entityToIndex.Has(e)
}

func (cs *ComponentStore[T]) Len() int {
	return len(cs.values)
}

func (cs *ComponentStore[T]) Type() reflect.Type {
	return cs.typ
}

// Values returns the packed component slice. Index i belongs to Entities()[i].
func (cs *ComponentStore[T]) Values() []T {
	return cs.values
}

// Entities returns the owner of every packed slot.
func (cs *ComponentStore[T]) Entities() []Entity {
	return cs.indexToEntity
}

// All iterates every (entity, component) pair in packed order.
func (cs *ComponentStore[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i := range cs.values {
			if !yield(cs.indexToEntity[i], &cs.values[i]) {
				return
			}
		}
	}
}

// GetAny returns the component of e as a *T boxed in an interface, or nil.
func (cs *ComponentStore[T]) GetAny(e Entity) any {
	ptr, ok := cs.lookup(e)
	if !ok {
		return nil
	}
	return ptr
}

// EntityDestroyed removes the component of e if it has one. Every store
// receives this call for every destroyed entity.
func (cs *ComponentStore[T]) EntityDestroyed(e Entity) {
	if !cs.entityToIndex.Has(e) {
		return
	}
	_ = cs.Remove(e)
}
