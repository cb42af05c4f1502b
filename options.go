// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering

import "log/slog"

// DefaultRingSize is the number of detections queued for the reporter
// before new ones are dropped.
const DefaultRingSize = 1024

// Options configures apparatus creation.
type Options struct {
	// Engine and barrier choice (build-tag defaults)
	engine  EngineKind
	barrier BarrierKind

	// Gate flavor
	spin bool

	// Stop after this many judgments; 0 runs until cancelled
	trials uint64

	// Reporting
	ringSize    int
	logger      *slog.Logger
	onDetection func(Detection)

	// Strategy overrides
	memory      Memory
	barrierImpl Barrier
	newGate     func(limit int64) Gate
}

// Builder creates an Apparatus with fluent configuration.
//
// Every choice is resolved once by Build and injected into the roles;
// nothing is consulted per trial.
//
// Example:
//
//	// SB detector with hardware fences, 10,000 trials
//	a := ordering.New().StoreBuffering().CPUBarrier().Trials(10000).Build()
//
//	// Propagation detector with the build-tag barrier
//	a := ordering.New().Propagation().Build()
type Builder struct {
	opts Options
}

// New creates a builder with DefaultEngine and DefaultBarrier.
func New() *Builder {
	return &Builder{opts: Options{
		engine:   DefaultEngine,
		barrier:  DefaultBarrier,
		ringSize: DefaultRingSize,
	}}
}

// StoreBuffering selects the SB engine: two writers and a watcher.
func (b *Builder) StoreBuffering() *Builder {
	b.opts.engine = StoreBuffering
	return b
}

// Propagation selects the write-propagation engine.
func (b *Builder) Propagation() *Builder {
	b.opts.engine = Propagation
	return b
}

// Engine selects the engine by kind.
func (b *Builder) Engine(kind EngineKind) *Builder {
	b.opts.engine = kind
	return b
}

// CPUBarrier makes the roles cross hardware fences.
func (b *Builder) CPUBarrier() *Builder {
	b.opts.barrier = CPUBarrier
	return b
}

// CompilerBarrier makes the roles cross compiler-only fences.
func (b *Builder) CompilerBarrier() *Builder {
	b.opts.barrier = CompilerBarrier
	return b
}

// Barrier selects the barrier by kind.
func (b *Builder) Barrier(kind BarrierKind) *Builder {
	b.opts.barrier = kind
	return b
}

// SpinGates makes waiters busy-poll their gates instead of parking.
//
// Trade-off: each role burns its core while waiting, but writers leave
// their gates within nanoseconds of each other, which widens the window
// in which a reorder can be observed.
func (b *Builder) SpinGates() *Builder {
	b.opts.spin = true
	return b
}

// Trials stops the apparatus after n judgments: the judging role returns
// ErrTrialsDone from its n-th invocation. Zero means no limit.
func (b *Builder) Trials(n uint64) *Builder {
	b.opts.trials = n
	return b
}

// RingSize sets how many detections may wait for the reporter.
// Rounds up to the next power of 2.
//
// Panics if n < 2.
func (b *Builder) RingSize(n int) *Builder {
	if n < 2 {
		panic("ordering: ring size must be >= 2")
	}
	b.opts.ringSize = n
	return b
}

// Logger sets the destination of detection records.
// Defaults to slog.Default().
func (b *Builder) Logger(l *slog.Logger) *Builder {
	b.opts.logger = l
	return b
}

// OnDetection registers fn to receive every reported detection, after it
// is logged. fn runs on the reporter, never on a role.
func (b *Builder) OnDetection(fn func(Detection)) *Builder {
	b.opts.onDetection = fn
	return b
}

// WithMemory replaces the hardware memory. Used to run the roles against
// a simulated memory model.
func (b *Builder) WithMemory(m Memory) *Builder {
	b.opts.memory = m
	return b
}

// WithBarrier replaces the barrier implementation. The configured
// BarrierKind is ignored.
func (b *Builder) WithBarrier(bar Barrier) *Builder {
	b.opts.barrierImpl = bar
	return b
}

// WithGates replaces the gate constructor. fn receives the number of
// pending signals the gate must tolerate.
func (b *Builder) WithGates(fn func(limit int64) Gate) *Builder {
	b.opts.newGate = fn
	return b
}

// Build creates the Apparatus.
//
// Strategy selection:
//
//	Memory:  WithMemory, else NewMemory()
//	Barrier: WithBarrier, else NewBarrier(kind)
//	Gates:   WithGates, else NewSpinGate if SpinGates, else NewGate
func (b *Builder) Build() *Apparatus {
	o := b.opts
	if o.engine != Propagation {
		o.engine = StoreBuffering
	}

	mem := o.memory
	if mem == nil {
		mem = NewMemory()
	}
	bar := o.barrierImpl
	if bar == nil {
		bar = NewBarrier(o.barrier)
	}
	newGate := o.newGate
	switch {
	case newGate != nil:
	case o.spin:
		newGate = NewSpinGate
	default:
		newGate = NewGate
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	j := &judge{
		kind:  o.engine,
		limit: o.trials,
		ring:  newDetectionRing(o.ringSize),
	}

	a := &Apparatus{
		kind:    o.engine,
		barrier: bar,
		judge:   j,
		rep: reporter{
			ring:   j.ring,
			logger: logger.With(slog.String("engine", o.engine.String()), slog.String("barrier", bar.Kind().String())),
			hook:   o.onDetection,
		},
	}
	if o.engine == Propagation {
		a.eng = newPropagation(mem, bar, j)
	} else {
		a.eng = newStoreBuffering(mem, bar, newGate, j)
	}
	return a
}
