package ecs

import "reflect"

// iComponentStore is the type-erased view of a ComponentStore used by the
// ComponentDirectory to fan out entity destruction and by inspectors.
type iComponentStore interface {
	EntityDestroyed(e Entity)
	Has(e Entity) bool
	Len() int
	Type() reflect.Type
	GetAny(e Entity) any
}
