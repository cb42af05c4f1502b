// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering

import (
	"context"
	"log/slog"

	"code.hybscloud.com/iox"
)

// Detection is the witness of one reordered trial.
type Detection struct {
	Engine EngineKind
	// Trial is the 1-based judgment index at which it was seen.
	Trial uint64
	// Count is the running detection count including this one.
	Count uint64

	// R1 and R2 are the writers' views (store-buffering engine).
	R1, R2 uint64
	// A and B are the consumer's reads (propagation engine).
	A, B uint64
}

// attrs returns the witness values of the engine that produced d.
func (d Detection) attrs() []slog.Attr {
	if d.Engine == Propagation {
		return []slog.Attr{
			slog.Uint64("a", d.A),
			slog.Uint64("b", d.B),
		}
	}
	return []slog.Attr{
		slog.Uint64("detected", d.Count),
		slog.Uint64("r1", d.R1),
		slog.Uint64("r2", d.R2),
		slog.Uint64("trial", d.Trial),
	}
}

// Stats is a snapshot of an apparatus's counters.
type Stats struct {
	Engine  EngineKind  `json:"engine"`
	Barrier BarrierKind `json:"barrier"`
	// Trials counts judgments: SB trials or propagation observations.
	Trials     uint64 `json:"trials"`
	Detections uint64 `json:"detections"`
	// Dropped counts detections not logged because the ring was full.
	Dropped uint64 `json:"dropped"`
}

// reporter drains detections off the measurement path and logs them.
type reporter struct {
	ring   *detectionRing
	logger *slog.Logger
	hook   func(Detection)
}

// emit writes one record per detection (consumer only).
func (r *reporter) emit(d Detection) {
	r.logger.LogAttrs(context.Background(), slog.LevelInfo, "reorders detected", d.attrs()...)
	if r.hook != nil {
		r.hook(d)
	}
}

// drain emits every queued detection and reports how many it emitted.
func (r *reporter) drain() int {
	n := 0
	for {
		d, err := r.ring.next()
		if err != nil {
			return n
		}
		r.emit(d)
		n++
	}
}

// run drains until ctx is done, then drains once more so nothing queued
// before teardown is lost.
func (r *reporter) run(ctx context.Context) error {
	backoff := iox.Backoff{}
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return nil
		default:
		}
		if r.drain() > 0 {
			backoff.Reset()
			continue
		}
		backoff.Wait()
	}
}
