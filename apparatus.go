// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering

import (
	"context"

	"code.hybscloud.com/atomix"
)

// engine is the role set of one litmus engine.
type engine interface {
	role0(ctx context.Context) error
	role1(ctx context.Context) error
	role2(ctx context.Context) error
}

// Apparatus is one litmus apparatus: an engine, its shared memory,
// gates, barrier and counters.
//
// Apparatus implements Thread. Register it on a Host that binds core
// identities 0, 1 and 2 to three distinct cores; the Host calls Run for
// each identity repeatedly. All state is owned by the Apparatus, so
// several may coexist in one process.
type Apparatus struct {
	kind    EngineKind
	barrier Barrier
	eng     engine
	judge   *judge
	rep     reporter
}

// Name returns the thread name, e.g. "ordering/sb".
func (a *Apparatus) Name() string {
	return "ordering/" + a.kind.String()
}

// Engine reports which engine the apparatus runs.
func (a *Apparatus) Engine() EngineKind {
	return a.kind
}

// Barrier reports which barrier the roles cross.
func (a *Apparatus) Barrier() BarrierKind {
	return a.barrier.Kind()
}

// ShouldRun reports whether the apparatus owns core identity cpu.
// It holds for 0, 1 and 2, always, and never for anything else.
func (a *Apparatus) ShouldRun(cpu uint) bool {
	_, ok := RoleOf(cpu)
	return ok
}

// Run implements Thread by dispatching one invocation of cpu's role.
func (a *Apparatus) Run(ctx context.Context, cpu uint) error {
	return a.Dispatch(ctx, cpu)
}

// Dispatch runs one invocation of the role bound to core identity cpu.
// Identities the apparatus does not own are declined: no state changes
// and nil is returned.
//
// For the store-buffering engine one invocation is one trial of that
// role; writers block on their release gate and the watcher on the
// completion gate. Blocking honors ctx.
func (a *Apparatus) Dispatch(ctx context.Context, cpu uint) error {
	r, ok := RoleOf(cpu)
	if !ok {
		return nil
	}
	switch r {
	case Role0:
		return a.eng.role0(ctx)
	case Role1:
		return a.eng.role1(ctx)
	case Role2:
		return a.eng.role2(ctx)
	}
	return nil
}

// Stats returns a snapshot of the counters. Safe to call concurrently
// with the roles.
func (a *Apparatus) Stats() Stats {
	return Stats{
		Engine:     a.kind,
		Barrier:    a.barrier.Kind(),
		Trials:     a.judge.trials.LoadAcquire(),
		Detections: a.judge.detected.LoadAcquire(),
		Dropped:    a.rep.ring.drops(),
	}
}

// Background drains queued detections to the logger until ctx is done.
// It implements Background so a Host runs it next to the roles.
func (a *Apparatus) Background(ctx context.Context) error {
	return a.rep.run(ctx)
}

// Flush logs every queued detection and returns how many it logged.
// Must not run concurrently with Background.
func (a *Apparatus) Flush() int {
	return a.rep.drain()
}

// judge counts judgments and publishes detections. Only the judging role
// writes it.
type judge struct {
	kind     EngineKind
	limit    uint64
	trials   atomix.Uint64
	detected atomix.Uint64
	ring     *detectionRing
}

// judge records one judgment. If reordered, d is completed and queued
// for the reporter. Returns ErrTrialsDone once the budget is spent.
func (j *judge) judge(reordered bool, d Detection) error {
	trial := j.trials.AddAcqRel(1)
	if reordered {
		d.Engine = j.kind
		d.Trial = trial
		d.Count = j.detected.AddAcqRel(1)
		j.ring.publish(&d)
	}
	if j.limit != 0 && trial >= j.limit {
		return ErrTrialsDone
	}
	return nil
}
