// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering

import "code.hybscloud.com/atomix"

// Loc names a shared location.
type Loc uint8

const (
	// LocX is the flag owned by writer 0 (store-buffering engine).
	LocX Loc = iota
	// LocY is the flag owned by writer 1.
	LocY
	// LocR1 is writer 0's view of y.
	LocR1
	// LocR2 is writer 1's view of x.
	LocR2
	// LocCount is the counter owned by the incrementer (propagation engine).
	LocCount
	// LocA is the snapshotter's first write.
	LocA
	// LocB is the snapshotter's second write.
	LocB

	numLocs
)

var locNames = [numLocs]string{"x", "y", "r1", "r2", "count", "a", "b"}

func (l Loc) String() string {
	if l < numLocs {
		return locNames[l]
	}
	return "invalid"
}

// hwWord is one location on its own cache line.
type hwWord struct {
	_ pad
	v atomix.Uint64
	_ padShort
}

// Load is a relaxed load: the compiler may not elide or tear it, and
// nothing orders it against other words.
func (w *hwWord) Load() uint64 { return w.v.LoadRelaxed() }

// Store is a relaxed store.
func (w *hwWord) Store(v uint64) { w.v.StoreRelaxed(v) }

// Add is an acquire-release increment.
func (w *hwWord) Add(delta uint64) uint64 { return w.v.AddAcqRel(delta) }

// hwMemory is the shared memory of a hardware run.
type hwMemory struct {
	words [numLocs]hwWord
}

// NewMemory returns zeroed hardware memory with every location on a
// separate cache line.
func NewMemory() Memory {
	return &hwMemory{}
}

func (m *hwMemory) Word(loc Loc) Word {
	return &m.words[loc]
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
