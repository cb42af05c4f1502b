// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ordering provides litmus tests that detect memory reordering
// on multiprocessor hardware.
//
// An apparatus pins three cooperating roles to three cores and runs a
// classic litmus pattern over and over. It reports every trial whose
// outcome is impossible under sequential consistency:
//
//   - Store buffering (SB): two writers each store their own flag, cross
//     a barrier, and load the other's flag. Both loading 0 means a store
//     was delayed past the barrier or a load hoisted above it.
//   - Propagation: an incrementer bumps a counter, a snapshotter writes
//     one snapshot to a then b with a barrier between, and a consumer
//     reads b then a with a barrier between. Finding b ahead of a means
//     the second store became visible first.
//
// The barrier is the variable under test. CPUBarrier emits the
// architecture's fence; CompilerBarrier only stops the Go compiler from
// moving the accesses. Expect no detections with the former and, on
// hardware that reorders, some with the latter.
//
// # Quick Start
//
//	a := ordering.New().StoreBuffering().CompilerBarrier().Trials(1_000_000).Build()
//	h := ordering.NewHost(ordering.HostConfig{CPUs: []int{0, 1, 2}})
//	if err := h.Register(ctx, a); err != nil {
//	    return err // pinning failed; nothing ran
//	}
//	err := h.Wait()
//	fmt.Println(a.Stats())
//
// # Build Tags
//
// Defaults follow two build tags, so a plain build reproduces the
// classic configuration and the Builder can still override both:
//
//	ordering_rmo          DefaultEngine  = Propagation (else StoreBuffering)
//	ordering_cpu_barrier  DefaultBarrier = CPUBarrier  (else CompilerBarrier)
//
// # Core Affinity
//
// Each role must stay on its own core for the whole run. Host locks every
// task to an OS thread and pins it with sched_setaffinity(2). A Host that
// cannot pin fails Register; there is no unpinned fallback outside
// tests.
//
// # Roles and Gates
//
// Core identities 0, 1 and 2 map to Role0, Role1 and Role2; any other
// identity is declined. In the SB engine Role2 is the watcher: it resets
// both flags, signals each writer's release gate once, drains the
// completion gate twice, then judges. A writer passes its gate once per
// release. The watcher never starts a trial before both writers have
// signaled the previous one.
//
// Detections are queued on a single-producer single-consumer ring and
// logged by a reporter running beside the roles, so logging never
// stretches a trial.
package ordering
