// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering

import "context"

// storeBuffering is the SB litmus engine.
//
//	writer-x      writer-y      watcher
//	                            x, y = 0, 0
//	                            signal gateX, gateY
//	wait gateX    wait gateY
//	x = 1         y = 1
//	Full()        Full()
//	r1 = y        r2 = x
//	signal end    signal end
//	                            wait end; wait end
//	                            r1 == 0 && r2 == 0 → reordered
//
// Under sequential consistency one of the stores precedes the other
// writer's load, so at least one of r1, r2 is 1. Both reading 0 is a
// store delayed past, or a load hoisted above, the barrier.
type storeBuffering struct {
	x, y   Word
	r1, r2 Word

	gateX, gateY Gate // binary: one release per trial per writer
	end          Gate // counting: drained twice per trial

	barrier Barrier
	judge   *judge
}

func newStoreBuffering(mem Memory, b Barrier, newGate func(limit int64) Gate, j *judge) *storeBuffering {
	return &storeBuffering{
		x:       mem.Word(LocX),
		y:       mem.Word(LocY),
		r1:      mem.Word(LocR1),
		r2:      mem.Word(LocR2),
		gateX:   newGate(1),
		gateY:   newGate(1),
		end:     newGate(2),
		barrier: b,
		judge:   j,
	}
}

// role0 is writer-x: owns x and r1.
func (e *storeBuffering) role0(ctx context.Context) error {
	return e.write(ctx, e.gateX, e.x, e.y, e.r1)
}

// role1 is writer-y: owns y and r2.
func (e *storeBuffering) role1(ctx context.Context) error {
	return e.write(ctx, e.gateY, e.y, e.x, e.r2)
}

// write runs one trial of a writer. The store, barrier and load are the
// only accesses between the gate and the completion signal.
func (e *storeBuffering) write(ctx context.Context, gate Gate, own, other, result Word) error {
	if err := gate.Wait(ctx); err != nil {
		return err
	}
	own.Store(1)
	e.barrier.Full()
	result.Store(other.Load())
	e.end.Signal()
	return nil
}

// role2 is the watcher: it owns x and y between trials and judges each
// trial once both writers have signaled.
func (e *storeBuffering) role2(ctx context.Context) error {
	e.x.Store(0)
	e.y.Store(0)

	e.gateX.Signal()
	e.gateY.Signal()

	for range 2 {
		if err := e.end.Wait(ctx); err != nil {
			return err
		}
	}

	r1, r2 := e.r1.Load(), e.r2.Load()
	return e.judge.judge(r1 == 0 && r2 == 0, Detection{R1: r1, R2: r2})
}
