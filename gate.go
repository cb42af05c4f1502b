// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering

import (
	"context"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
	"golang.org/x/sync/semaphore"
)

// NewGate returns a blocking gate that tolerates up to limit pending
// signals. The gate starts unsignaled.
//
// Panics if limit < 1.
func NewGate(limit int64) Gate {
	if limit < 1 {
		panic("ordering: gate limit must be >= 1")
	}
	s := semaphore.NewWeighted(limit)
	// Hold every unit so the first Wait blocks until a Signal.
	if !s.TryAcquire(limit) {
		panic("ordering: fresh semaphore not acquirable")
	}
	return &semaGate{sem: s}
}

// semaGate is a Gate on a weighted semaphore. Signal releases one held
// unit; releasing more than limit panics in the semaphore itself.
type semaGate struct {
	sem *semaphore.Weighted
}

func (g *semaGate) Signal() {
	g.sem.Release(1)
}

func (g *semaGate) Wait(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

func (g *semaGate) TryWait() error {
	if g.sem.TryAcquire(1) {
		return nil
	}
	return ErrWouldBlock
}

// spinCheckEvery is how many empty polls a spinning waiter makes
// between context checks.
const spinCheckEvery = 1 << 10

// NewSpinGate returns a gate whose waiter busy-polls instead of parking.
// The waiter never leaves its core, so wake-up latency is a few cache
// misses rather than a scheduler round trip.
//
// Panics if limit < 1.
func NewSpinGate(limit int64) Gate {
	if limit < 1 {
		panic("ordering: gate limit must be >= 1")
	}
	return &spinGate{limit: uint64(limit)}
}

type spinGate struct {
	_       pad
	pending atomix.Uint64
	_       padShort
	limit   uint64
}

func (g *spinGate) Signal() {
	if g.pending.AddAcqRel(1) > g.limit {
		panic("ordering: gate signaled past its limit")
	}
}

func (g *spinGate) TryWait() error {
	for {
		n := g.pending.LoadAcquire()
		if n == 0 {
			return ErrWouldBlock
		}
		if g.pending.CompareAndSwapAcqRel(n, n-1) {
			return nil
		}
	}
}

func (g *spinGate) Wait(ctx context.Context) error {
	sw := spin.Wait{}
	for i := 1; ; i++ {
		err := g.TryWait()
		if !IsWouldBlock(err) {
			return err
		}
		if i%spinCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		sw.Once()
	}
}
