// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package model

// TSO models x86 total store order as an abstract machine: each thread
// has a FIFO store buffer that drains to memory at arbitrary points,
// and a load sees its own thread's buffered stores first.
//
// See Sewell et al., "x86-TSO: A Rigorous and Usable Programmer's Model
// for x86 Multiprocessors", CACM 2010.
type TSO struct{}

func (TSO) String() string {
	return "TSO"
}

func (TSO) Eval(p *Prog) OutcomeSet {
	mustValidate(p)
	var out OutcomeSet
	tsoRec(p, &out, tsoState{})
	return out
}

type storeBuffer struct {
	overlay uint8 // locations with a buffered store
	buf     [MaxOps]uint8
	h, t    uint8
}

func (sb *storeBuffer) empty() bool {
	return sb.h == sb.t
}

type tsoState struct {
	mem     uint8
	sb      [MaxThreads]storeBuffer
	pcs     [MaxThreads]uint8
	outcome Outcome
}

func tsoRec(p *Prog, out *OutcomeSet, s tsoState) {
	// Pick an op to execute next.
	any := false
	for tid, ops := range p.Threads {
		pc := s.pcs[tid]
		if int(pc) >= len(ops) {
			continue
		}
		any = true
		op := ops[pc]
		ns := s
		sb := &ns.sb[tid]
		switch op.Type {
		case OpLoad:
			// Combining memory and the overlay simulates store
			// buffer forwarding.
			v := ((ns.mem | sb.overlay) >> op.Var) & 1
			ns.outcome = ns.outcome.With(op.ID, v)
		case OpStore:
			sb.overlay |= 1 << op.Var
			sb.buf[sb.t] = op.Var
			sb.t++
		case OpFence:
			// Only a full fence constrains TSO: it waits for the
			// buffer to drain.
			if op.Fence == FenceFull && !sb.empty() {
				continue
			}
		}
		ns.pcs[tid]++
		tsoRec(p, out, ns)
	}
	if !any {
		// This execution is done. Stores still buffered cannot
		// change any load result.
		out.Add(s.outcome)
		return
	}

	// Pick a store buffer to drain one entry of.
	for tid := range p.Threads {
		if s.sb[tid].empty() {
			continue
		}
		ns := s
		sb := &ns.sb[tid]
		ns.mem |= 1 << sb.buf[sb.h]
		sb.h++
		tsoRec(p, out, ns)
	}
}
