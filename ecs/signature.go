package ecs

import (
	"iter"
	"math/bits"
	"strconv"
	"strings"
)

// Signature is a bitset with one bit per component type. On an entity it
// records which components are present; on a system it records which
// components are required.
type Signature uint64

// NewSignature returns a signature with the bits for the given slots set.
func NewSignature(types ...ComponentType) Signature {
	var s Signature
	for _, t := range types {
		s = s.Set(t)
	}
	return s
}

// Set returns a copy of s with the bit for t set.
func (s Signature) Set(t ComponentType) Signature {
	return s | 1<<(t%MaxComponents)
}

// Clear returns a copy of s with the bit for t cleared.
func (s Signature) Clear(t ComponentType) Signature {
	return s &^ (1 << (t % MaxComponents))
}

// Has reports whether the bit for t is set.
func (s Signature) Has(t ComponentType) bool {
	return s&(1<<(t%MaxComponents)) != 0
}

// Contains reports whether every bit set in other is also set in s.
func (s Signature) Contains(other Signature) bool {
	return s&other == other
}

func (s Signature) IsEmpty() bool {
	return s == 0
}

// Count returns the number of set bits.
func (s Signature) Count() int {
	return bits.OnesCount64(uint64(s))
}

// Types iterates the set slots in ascending order.
func (s Signature) Types() iter.Seq[ComponentType] {
	return func(yield func(ComponentType) bool) {
		rest := uint64(s)
		for rest != 0 {
			t := bits.TrailingZeros64(rest)
			if !yield(ComponentType(t)) {
				return
			}
			rest &= rest - 1
		}
	}
}

// String renders the signature as a fixed-width binary string, most
// significant bit first.
func (s Signature) String() string {
	raw := strconv.FormatUint(uint64(s), 2)
	return strings.Repeat("0", MaxComponents-len(raw)) + raw
}
