// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering

import "context"

// Word is one shared memory location of an engine.
//
// Load and Store add no ordering of their own: any ordering between
// accesses to different words comes from the Barrier. Add is an atomic
// read-modify-write returning the new value; only the propagation
// engine's counter uses it.
type Word interface {
	Load() uint64
	Store(v uint64)
	Add(delta uint64) uint64
}

// Memory hands out the shared locations an engine runs against.
//
// Each Loc maps to exactly one Word for the lifetime of the Memory.
// Every location has a single writing role by construction.
type Memory interface {
	Word(loc Loc) Word
}

// Barrier is the ordering point the roles cross between their two
// accesses. It is the variable under test.
type Barrier interface {
	// Full orders all earlier accesses before all later ones.
	Full()
	// Write orders earlier stores before later stores.
	Write()
	// Read orders earlier loads before later loads.
	Read()
	// Kind reports which implementation this is.
	Kind() BarrierKind
}

// Gate is a signaling primitive with acquire/release semantics.
//
// Release gates are binary: at most one pending signal. The completion
// gate counts up to two pending signals. Signaling past the limit is an
// invariant violation and panics.
type Gate interface {
	// Signal releases one waiter, or records a pending signal.
	Signal()
	// Wait blocks until a signal is available and consumes it.
	// It returns ctx.Err() if ctx is done first.
	Wait(ctx context.Context) error
	// TryWait consumes a pending signal without blocking.
	// Returns ErrWouldBlock if none is pending.
	TryWait() error
}

// Thread is what a Host runs: one persistent task per core identity.
//
// The Host asks ShouldRun before every invocation and calls Run while it
// holds. The Host guarantees each identity stays on its own core for the
// lifetime of the registration; the litmus result is meaningless
// otherwise.
type Thread interface {
	Name() string
	ShouldRun(cpu uint) bool
	Run(ctx context.Context, cpu uint) error
}

// Background is implemented by threads that own work outside the
// per-core roles. The Host runs it alongside the per-core tasks.
type Background interface {
	Background(ctx context.Context) error
}
