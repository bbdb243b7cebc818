package ecs

const (
	// MaxEntities is the number of entities that can be alive at the same time.
	MaxEntities = 65535

	// MaxComponents is the number of distinct component types a Coordinator
	// can register. It is also the width of a Signature.
	MaxComponents = 64
)

// Entity is an opaque handle for a bundle of components. Ids are unique among
// live entities and are reused after the entity is destroyed.
type Entity uint32

// ComponentType is the slot assigned to a component type on registration.
// Slots are handed out sequentially from 0 and are never reused.
type ComponentType uint8
