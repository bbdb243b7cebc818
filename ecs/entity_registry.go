package ecs

import (
	"fmt"
	"iter"

	"go.uber.org/zap"
)

// EntityRegistry owns the pool of entity ids and the signature of every
// entity. Free ids are handed out first-in first-out, so a destroyed id goes
// to the back of the queue.
type EntityRegistry struct {
	log *zap.Logger

	// free is a ring buffer of available ids.
	free      []Entity
	freeHead  int
	freeCount int

	signatures []Signature
	live       *EntitySet
}

// NewEntityRegistry creates a registry for up to capacity live entities.
// capacity is clamped to [1, MaxEntities].
func NewEntityRegistry(capacity int, log *zap.Logger) *EntityRegistry {
	capacity = max(1, min(capacity, MaxEntities))
	if log == nil {
		log = zap.NewNop()
	}

	r := &EntityRegistry{
		log:        log,
		free:       make([]Entity, capacity),
		freeCount:  capacity,
		signatures: make([]Signature, capacity),
		live:       NewEntitySet(capacity),
	}
	for i := range r.free {
		r.free[i] = Entity(i)
	}

	log.Debug("entity registry pre-allocated entities", zap.Int("capacity", capacity))
	return r
}

// Create takes the next available id off the free queue.
func (r *EntityRegistry) Create() (Entity, error) {
	if r.freeCount == 0 {
		return 0, fmt.Errorf("%w: all %d entities are alive", ErrCapacityExceeded, len(r.free))
	}

	e := r.free[r.freeHead]
	r.freeHead = (r.freeHead + 1) % len(r.free)
	r.freeCount--

	r.signatures[e] = 0
	r.live.Insert(e)

	r.log.Debug("entity registry created entity", zap.Uint32("entity", uint32(e)))
	return e, nil
}

// Destroy resets the entity's signature and returns its id to the back of the
// free queue. Destroying an entity that is not alive fails with
// ErrInvalidEntity.
func (r *EntityRegistry) Destroy(e Entity) error {
	if err := r.checkBounds(e); err != nil {
		return err
	}
	if !r.live.Remove(e) {
		return fmt.Errorf("%w: entity %d is not alive", ErrInvalidEntity, e)
	}

	r.signatures[e] = 0
	tail := (r.freeHead + r.freeCount) % len(r.free)
	r.free[tail] = e
	r.freeCount++

	r.log.Debug("entity registry destroyed entity", zap.Uint32("entity", uint32(e)))
	return nil
}

// SetSignature stores the signature for e.
func (r *EntityRegistry) SetSignature(e Entity, sig Signature) error {
	if err := r.checkBounds(e); err != nil {
		return err
	}
	r.signatures[e] = sig

	r.log.Debug("entity registry persisted signature",
		zap.Uint32("entity", uint32(e)),
		zap.Stringer("signature", sig))
	return nil
}

// Signature returns the stored signature for e.
func (r *EntityRegistry) Signature(e Entity) (Signature, error) {
	if err := r.checkBounds(e); err != nil {
		return 0, err
	}
	return r.signatures[e], nil
}

// IsAlive reports whether e has been created and not yet destroyed.
func (r *EntityRegistry) IsAlive(e Entity) bool {
	return r.live.Contains(e)
}

// Len returns the number of live entities.
func (r *EntityRegistry) Len() int {
	return r.live.Len()
}

func (r *EntityRegistry) Capacity() int {
	return len(r.free)
}

// Live iterates the live entities in no particular order.
func (r *EntityRegistry) Live() iter.Seq[Entity] {
	return r.live.All()
}

func (r *EntityRegistry) checkBounds(e Entity) error {
	if int(e) >= len(r.signatures) {
		return fmt.Errorf("%w: entity %d exceeds the maximum of %d entities", ErrInvalidEntity, e, len(r.signatures))
	}
	return nil
}
