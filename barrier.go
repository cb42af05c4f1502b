// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering

import (
	"code.hybscloud.com/atomix"

	"code.hybscloud.com/ordering/internal/asm"
)

// BarrierKind selects the Barrier implementation.
type BarrierKind uint8

const (
	// CompilerBarrier stops the Go compiler from moving memory accesses
	// across the barrier and emits no fence. The hardware is free to
	// reorder around it.
	CompilerBarrier BarrierKind = iota
	// CPUBarrier emits the architecture's fences through atomix barriers.
	CPUBarrier
)

func (k BarrierKind) String() string {
	switch k {
	case CompilerBarrier:
		return "compiler"
	case CPUBarrier:
		return "cpu"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k BarrierKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseBarrierKind maps "cpu" and "compiler" to their BarrierKind.
func ParseBarrierKind(s string) (BarrierKind, bool) {
	switch s {
	case "compiler":
		return CompilerBarrier, true
	case "cpu":
		return CPUBarrier, true
	default:
		return 0, false
	}
}

// NewBarrier returns the Barrier for kind.
// Unknown kinds get the compiler barrier.
func NewBarrier(kind BarrierKind) Barrier {
	if kind == CPUBarrier {
		return cpuBarrier{}
	}
	return compilerBarrier{}
}

type cpuBarrier struct{}

func (cpuBarrier) Full()             { atomix.BarrierAcqRel() }
func (cpuBarrier) Write()            { atomix.BarrierRelease() }
func (cpuBarrier) Read()             { atomix.BarrierAcquire() }
func (cpuBarrier) Kind() BarrierKind { return CPUBarrier }

type compilerBarrier struct{}

func (compilerBarrier) Full()             { asm.CompilerFence() }
func (compilerBarrier) Write()            { asm.CompilerFence() }
func (compilerBarrier) Read()             { asm.CompilerFence() }
func (compilerBarrier) Kind() BarrierKind { return CompilerBarrier }
