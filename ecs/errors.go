package ecs

import "errors"

var (
	// ErrCapacityExceeded is returned when no entity ids or component slots
	// remain. Destroying entities makes ids available again.
	ErrCapacityExceeded = errors.New("ecs: capacity exceeded")

	// ErrInvalidEntity is returned for entity ids outside the valid range and
	// for operations on entities that are not alive.
	ErrInvalidEntity = errors.New("ecs: invalid entity")

	// ErrDuplicateComponent is returned when attaching a component type an
	// entity already holds.
	ErrDuplicateComponent = errors.New("ecs: duplicate component")

	ErrComponentNotFound  = errors.New("ecs: component not found")
	ErrUnregisteredType   = errors.New("ecs: unregistered component type")
	ErrUnregisteredSystem = errors.New("ecs: unregistered system")

	// ErrAlreadyRegistered is returned when a system type is registered twice.
	ErrAlreadyRegistered = errors.New("ecs: system already registered")
)
