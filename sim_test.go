// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering_test

import (
	"context"
	"sync"

	"code.hybscloud.com/ordering"
)

// =============================================================================
// Simulated Memory
// =============================================================================

// simMemory is a memory model with explicit store buffers. A store to a
// delayed location stays pending until a flush; every other access is
// immediately visible. All accesses are serialized, so with no delayed
// locations simMemory is sequentially consistent.
type simMemory struct {
	mu       sync.Mutex
	visible  [8]uint64
	pending  [8]uint64
	buffered [8]bool
	delayed  [8]bool
	accesses int
	stores   map[ordering.Loc][]uint64
}

func newSimMemory(delayed ...ordering.Loc) *simMemory {
	m := &simMemory{stores: make(map[ordering.Loc][]uint64)}
	for _, loc := range delayed {
		m.delayed[loc] = true
	}
	return m
}

func (m *simMemory) Word(loc ordering.Loc) ordering.Word {
	return &simWord{m: m, loc: loc}
}

// flush makes every pending store visible.
func (m *simMemory) flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.pending {
		if m.buffered[i] {
			m.visible[i] = m.pending[i]
			m.buffered[i] = false
		}
	}
}

// peek returns the visible value of loc without counting an access.
func (m *simMemory) peek(loc ordering.Loc) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible[loc]
}

func (m *simMemory) accessCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accesses
}

func (m *simMemory) storesTo(loc ordering.Loc) []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint64(nil), m.stores[loc]...)
}

type simWord struct {
	m   *simMemory
	loc ordering.Loc
}

func (w *simWord) Load() uint64 {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	w.m.accesses++
	return w.m.visible[w.loc]
}

func (w *simWord) Store(v uint64) {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	w.m.accesses++
	w.m.stores[w.loc] = append(w.m.stores[w.loc], v)
	if w.m.delayed[w.loc] {
		w.m.pending[w.loc] = v
		w.m.buffered[w.loc] = true
		return
	}
	w.m.visible[w.loc] = v
}

func (w *simWord) Add(delta uint64) uint64 {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	w.m.accesses++
	w.m.visible[w.loc] += delta
	return w.m.visible[w.loc]
}

// =============================================================================
// Simulated Barriers
// =============================================================================

// drainBarrier drains the store buffers, like a hardware fence.
type drainBarrier struct{ m *simMemory }

func (b drainBarrier) Full()                      { b.m.flush() }
func (b drainBarrier) Write()                     { b.m.flush() }
func (b drainBarrier) Read()                      {}
func (b drainBarrier) Kind() ordering.BarrierKind { return ordering.CPUBarrier }

// leakyBarrier orders nothing, like a compiler-only fence.
type leakyBarrier struct{}

func (leakyBarrier) Full()                      {}
func (leakyBarrier) Write()                     {}
func (leakyBarrier) Read()                      {}
func (leakyBarrier) Kind() ordering.BarrierKind { return ordering.CompilerBarrier }

// =============================================================================
// Instrumented Gates
// =============================================================================

// gateLog wraps every gate an engine creates. Gates are numbered in
// creation order: the store-buffering engine creates gateX, gateY, then
// the completion gate.
type gateLog struct {
	mu    sync.Mutex
	gates []*countingGate

	// Release gates flush m's store buffers when signaled.
	m *simMemory
	// onRelease runs in the waiter right after a release gate opens.
	onRelease func(index int)
}

func (l *gateLog) newGate(limit int64) ordering.Gate {
	l.mu.Lock()
	defer l.mu.Unlock()
	g := &countingGate{
		Gate:  ordering.NewGate(limit),
		log:   l,
		index: len(l.gates),
		limit: limit,
	}
	l.gates = append(l.gates, g)
	return g
}

func (l *gateLog) gate(i int) *countingGate {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gates[i]
}

type countingGate struct {
	ordering.Gate
	log   *gateLog
	index int
	limit int64

	mu       sync.Mutex
	signals  int
	acquired int
}

func (g *countingGate) Signal() {
	if g.log.m != nil && g.limit == 1 {
		g.log.m.flush()
	}
	g.mu.Lock()
	g.signals++
	g.mu.Unlock()
	g.Gate.Signal()
}

func (g *countingGate) Wait(ctx context.Context) error {
	if err := g.Gate.Wait(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	g.acquired++
	g.mu.Unlock()
	if g.limit == 1 && g.log.onRelease != nil {
		g.log.onRelease(g.index)
	}
	return nil
}

func (g *countingGate) counts() (signals, acquired int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.signals, g.acquired
}
