// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package model

import "math/bits"

// Outcome is the result of every load in one execution: bit i is the
// value read by the load with ID i.
type Outcome uint16

// With returns o with load id set to v.
func (o Outcome) With(id uint8, v uint8) Outcome {
	if v != 0 {
		return o | 1<<id
	}
	return o &^ (1 << id)
}

// Value returns the value read by load id.
func (o Outcome) Value(id uint8) uint8 {
	return uint8(o>>id) & 1
}

// OutcomeSet is a set of outcomes.
type OutcomeSet struct {
	bits [(1<<MaxLoads + 63) / 64]uint64
}

// Add adds o to s.
func (s *OutcomeSet) Add(o Outcome) {
	s.bits[o/64] |= 1 << (o % 64)
}

// Has reports whether o is in s.
func (s *OutcomeSet) Has(o Outcome) bool {
	return s.bits[o/64]&(1<<(o%64)) != 0
}

// Len returns the number of outcomes in s.
func (s *OutcomeSet) Len() int {
	n := 0
	for _, w := range s.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Contains reports whether every outcome in s2 is in s.
func (s *OutcomeSet) Contains(s2 *OutcomeSet) bool {
	for i, w := range s.bits {
		if s2.bits[i]&^w != 0 {
			return false
		}
	}
	return true
}

// AddAll adds every outcome in s2 to s.
func (s *OutcomeSet) AddAll(s2 *OutcomeSet) {
	for i, w := range s2.bits {
		s.bits[i] |= w
	}
}

// Outcomes returns the members of s in ascending order.
func (s *OutcomeSet) Outcomes() []Outcome {
	out := make([]Outcome, 0, s.Len())
	for i, w := range s.bits {
		for w != 0 {
			off := bits.TrailingZeros64(w)
			out = append(out, Outcome(i*64+off))
			w &= w - 1
		}
	}
	return out
}
