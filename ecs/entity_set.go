package ecs

import (
	"iter"
	"slices"

	"github.com/kamstrup/intmap"
)

// EntitySet is an unordered set of entities with O(1) insert, remove and
// membership checks. Members are kept packed so iteration touches no holes.
type EntitySet struct {
	dense []Entity
	index *intmap.Map[Entity, int]
}

// NewEntitySet creates an empty set sized for capacity members.
func NewEntitySet(capacity int) *EntitySet {
	return &EntitySet{
		dense: make([]Entity, 0, capacity),
		index: intmap.New[Entity, int](capacity),
	}
}

// Insert adds e to the set. It reports false if e was already a member.
func (s *EntitySet) Insert(e Entity) bool {
	if s.index.Has(e) {
		return false
	}
	s.index.Put(e, len(s.dense))
	s.dense = append(s.dense, e)
	return true
}

// Remove deletes e from the set. It reports false if e was not a member.
func (s *EntitySet) Remove(e Entity) bool {
	idx, ok := s.index.Get(e)
	if !ok {
		return false
	}

	last := len(s.dense) - 1
	moved := s.dense[last]
	s.dense[idx] = moved
	s.index.Put(moved, idx)

	s.dense = s.dense[:last]
	s.index.Del(e)
	return true
}

func (s *EntitySet) Contains(e Entity) bool {
	return s.index.Has(e)
}

func (s *EntitySet) Len() int {
	return len(s.dense)
}

// All iterates the members in storage order. The set must not be modified
// during iteration; queue changes through Commands instead.
func (s *EntitySet) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, e := range s.dense {
			if !yield(e) {
				return
			}
		}
	}
}

// Slice returns the members as a new slice in ascending order.
func (s *EntitySet) Slice() []Entity {
	out := slices.Clone(s.dense)
	slices.Sort(out)
	return out
}

// Clear removes every member.
func (s *EntitySet) Clear() {
	s.dense = s.dense[:0]
	s.index.Clear()
}
