package ecs

import "iter"

// Each iterates the entities of set together with their A component.
// Entities without an A are skipped. Pointers follow the same validity rules
// as GetComponent.
func Each[A any](c *Coordinator, set *EntitySet) iter.Seq2[Entity, *A] {
	return func(yield func(Entity, *A) bool) {
		storeA, err := typedStore[A](c.components)
		if err != nil {
			return
		}
		for e := range set.All() {
			a, ok := storeA.lookup(e)
			if !ok {
				continue
			}
			if !yield(e, a) {
				return
			}
		}
	}
}

// Pair holds pointers to two components of the same entity.
type Pair[A, B any] struct {
	First  *A
	Second *B
}

// Each2 iterates the entities of set that hold both an A and a B.
func Each2[A, B any](c *Coordinator, set *EntitySet) iter.Seq2[Entity, Pair[A, B]] {
	return func(yield func(Entity, Pair[A, B]) bool) {
		storeA, err := typedStore[A](c.components)
		if err != nil {
			return
		}
		storeB, err := typedStore[B](c.components)
		if err != nil {
			return
		}
		for e := range set.All() {
			a, ok := storeA.lookup(e)
			if !ok {
				continue
			}
			b, ok := storeB.lookup(e)
			if !ok {
				continue
			}
			if !yield(e, Pair[A, B]{First: a, Second: b}) {
				return
			}
		}
	}
}
