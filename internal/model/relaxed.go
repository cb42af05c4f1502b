// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package model

// Relaxed lets each thread execute its ops out of program order: an op
// may run once every earlier op it must follow has run. Accesses to the
// same location keep their order; accesses to different locations keep
// it only across a fence that covers both. Stores become visible to
// every thread when they execute.
type Relaxed struct{}

func (Relaxed) String() string {
	return "Relaxed"
}

func (Relaxed) Eval(p *Prog) OutcomeSet {
	mustValidate(p)
	var out OutcomeSet
	relaxedRec(p, &out, relaxedState{})
	return out
}

type relaxedState struct {
	mem     uint8
	done    [MaxThreads]uint8 // bit i: op i has executed
	outcome Outcome
}

func relaxedRec(p *Prog, out *OutcomeSet, s relaxedState) {
	any := false
	for tid, ops := range p.Threads {
		for i, op := range ops {
			if !ready(ops, s.done[tid], i) {
				continue
			}
			any = true
			ns := s
			switch op.Type {
			case OpStore:
				ns.mem |= 1 << op.Var
			case OpLoad:
				ns.outcome = ns.outcome.With(op.ID, (s.mem>>op.Var)&1)
			}
			ns.done[tid] |= 1 << i
			relaxedRec(p, out, ns)
		}
	}
	if !any {
		out.Add(s.outcome)
	}
}

// ready reports whether op i can execute given the ops already done.
func ready(ops []Op, done uint8, i int) bool {
	if done&(1<<i) != 0 {
		return false
	}
	for j := range i {
		if done&(1<<j) == 0 && mustPrecede(ops[j], ops[i]) {
			return false
		}
	}
	return true
}

// mustPrecede reports whether earlier op a must execute before later op b.
func mustPrecede(a, b Op) bool {
	switch {
	case a.Type == OpFence && b.Type == OpFence:
		return true
	case a.Type == OpFence:
		return covers(a.Fence, b.Type)
	case b.Type == OpFence:
		return covers(b.Fence, a.Type)
	default:
		return a.Var == b.Var
	}
}

// covers reports whether a fence of kind k orders accesses of type t.
func covers(k FenceKind, t OpType) bool {
	switch k {
	case FenceWrite:
		return t == OpStore
	case FenceRead:
		return t == OpLoad
	default:
		return true
	}
}
