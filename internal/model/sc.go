// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package model

// SC models every access as sequentially consistent: one total order
// over all loads and stores that respects each thread's program order.
type SC struct{}

func (SC) String() string {
	return "SC"
}

func (SC) Eval(p *Prog) OutcomeSet {
	mustValidate(p)
	var out OutcomeSet
	scRec(p, &out, scState{})
	return out
}

// scState is the state of a program at a single point of an execution.
type scState struct {
	mem     uint8 // bit v is the value of location v
	pcs     [MaxThreads]uint8
	outcome Outcome
}

func scRec(p *Prog, out *OutcomeSet, s scState) {
	// Pick an op to execute next.
	any := false
	for tid, ops := range p.Threads {
		pc := s.pcs[tid]
		if int(pc) >= len(ops) {
			continue
		}
		any = true
		ns := s
		op := ops[pc]
		switch op.Type {
		case OpStore:
			ns.mem |= 1 << op.Var
		case OpLoad:
			ns.outcome = ns.outcome.With(op.ID, (s.mem>>op.Var)&1)
		}
		ns.pcs[tid]++
		scRec(p, out, ns)
	}
	if !any {
		// This execution is done.
		out.Add(s.outcome)
	}
}
