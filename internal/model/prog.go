// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"
	"strings"
)

const (
	// MaxThreads is the most threads a program may have.
	MaxThreads = 3
	// MaxOps is the most ops a thread may have.
	MaxOps = 8
	// MaxLoads is the most loads a program may have.
	MaxLoads = 8
	// MaxVars is the most shared locations a program may use.
	MaxVars = 8
)

// OpType is the kind of an Op.
type OpType uint8

const (
	// OpStore writes 1 to Var.
	OpStore OpType = iota
	// OpLoad reads Var into load ID.
	OpLoad
	// OpFence orders accesses around it according to Fence.
	OpFence
)

// FenceKind is what a fence orders.
type FenceKind uint8

const (
	// FenceFull orders every earlier access before every later one.
	FenceFull FenceKind = iota
	// FenceWrite orders earlier stores before later stores.
	FenceWrite
	// FenceRead orders earlier loads before later loads.
	FenceRead
)

func (k FenceKind) String() string {
	switch k {
	case FenceFull:
		return "mb"
	case FenceWrite:
		return "wmb"
	case FenceRead:
		return "rmb"
	default:
		return "?"
	}
}

// Op is one instruction of a thread.
type Op struct {
	Type  OpType
	Var   uint8
	ID    uint8 // OpLoad: index of the load's result bit
	Fence FenceKind
}

// Prog is a litmus program: threads of ops over shared locations that
// all start at 0. Every store writes 1.
type Prog struct {
	Name    string
	Vars    []string // location names, indexed by Op.Var
	Loads   []string // register names, indexed by Op.ID
	Threads [][]Op

	// Witness is the outcome sequential consistency forbids, the one a
	// detector reports.
	Witness Outcome
}

// Store returns an op storing 1 to v.
func Store(v uint8) Op { return Op{Type: OpStore, Var: v} }

// Load returns an op loading v into register id.
func Load(v, id uint8) Op { return Op{Type: OpLoad, Var: v, ID: id} }

// Fence returns a fence op of kind k.
func Fence(k FenceKind) Op { return Op{Type: OpFence, Fence: k} }

// Validate reports whether p fits the enumerator's limits and every op
// refers to a declared location and register.
func (p *Prog) Validate() error {
	if len(p.Threads) == 0 || len(p.Threads) > MaxThreads {
		return fmt.Errorf("model: %s: %d threads, want 1..%d", p.Name, len(p.Threads), MaxThreads)
	}
	if len(p.Vars) > MaxVars || len(p.Loads) > MaxLoads {
		return fmt.Errorf("model: %s: too many locations or loads", p.Name)
	}
	seen := make([]bool, len(p.Loads))
	for tid, ops := range p.Threads {
		if len(ops) > MaxOps {
			return fmt.Errorf("model: %s: thread %d has %d ops, max %d", p.Name, tid, len(ops), MaxOps)
		}
		for _, op := range ops {
			switch op.Type {
			case OpStore, OpLoad:
				if int(op.Var) >= len(p.Vars) {
					return fmt.Errorf("model: %s: thread %d: undeclared location %d", p.Name, tid, op.Var)
				}
			}
			if op.Type == OpLoad {
				if int(op.ID) >= len(p.Loads) || seen[op.ID] {
					return fmt.Errorf("model: %s: thread %d: bad load id %d", p.Name, tid, op.ID)
				}
				seen[op.ID] = true
			}
		}
	}
	return nil
}

// String renders p as columns, one per thread.
func (p *Prog) String() string {
	var b strings.Builder
	rows := 0
	for _, ops := range p.Threads {
		rows = max(rows, len(ops))
	}
	for tid := range p.Threads {
		fmt.Fprintf(&b, "%-12s", fmt.Sprintf("T%d", tid))
	}
	b.WriteByte('\n')
	for i := range rows {
		for _, ops := range p.Threads {
			cell := ""
			if i < len(ops) {
				cell = p.opString(ops[i])
			}
			fmt.Fprintf(&b, "%-12s", cell)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *Prog) opString(op Op) string {
	switch op.Type {
	case OpStore:
		return p.Vars[op.Var] + " = 1"
	case OpLoad:
		return p.Loads[op.ID] + " = " + p.Vars[op.Var]
	default:
		return op.Fence.String() + "()"
	}
}

// Format renders o with p's register names, e.g. "r1=0 r2=0".
func (p *Prog) Format(o Outcome) string {
	parts := make([]string, len(p.Loads))
	for i, name := range p.Loads {
		parts[i] = fmt.Sprintf("%s=%d", name, o.Value(uint8(i)))
	}
	return strings.Join(parts, " ")
}

// SB is the store-buffering program. Fenced places a full fence between
// each thread's store and load. The witness of reordering is r1=0 r2=0.
func SB(fenced bool) *Prog {
	const x, y = 0, 1
	const r1, r2 = 0, 1
	t0 := []Op{Store(x), Load(y, r1)}
	t1 := []Op{Store(y), Load(x, r2)}
	if fenced {
		t0 = []Op{Store(x), Fence(FenceFull), Load(y, r1)}
		t1 = []Op{Store(y), Fence(FenceFull), Load(x, r2)}
	}
	return &Prog{
		Name:    "SB",
		Vars:    []string{"x", "y"},
		Loads:   []string{"r1", "r2"},
		Threads: [][]Op{t0, t1},
		Witness: SBWitness,
	}
}

// SBWitness is the SB outcome impossible under sequential consistency.
const SBWitness Outcome = 0 // r1=0 r2=0

// MP is the message-passing program behind the propagation engine: the
// writer stores a then b, the reader loads b then a. Fenced places a
// write fence between the stores and a read fence between the loads.
// The witness of reordering is b seen new and a seen old.
func MP(fenced bool) *Prog {
	const a, b = 0, 1
	const d, c = 0, 1
	t0 := []Op{Store(a), Store(b)}
	t1 := []Op{Load(b, d), Load(a, c)}
	if fenced {
		t0 = []Op{Store(a), Fence(FenceWrite), Store(b)}
		t1 = []Op{Load(b, d), Fence(FenceRead), Load(a, c)}
	}
	return &Prog{
		Name:    "MP",
		Vars:    []string{"a", "b"},
		Loads:   []string{"b", "a"},
		Threads: [][]Op{t0, t1},
		Witness: MPWitness,
	}
}

// MPWitness is the MP outcome impossible under sequential consistency.
const MPWitness Outcome = 1 // b=1 a=0
