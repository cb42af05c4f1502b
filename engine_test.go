// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/ordering"
)

// runHosted registers a on a Host with three unpinned tasks and waits
// for the trial budget to run out.
func runHosted(t *testing.T, a *ordering.Apparatus) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h := ordering.NewHost(ordering.HostConfig{CPUs: []int{0, 1, 2}, NoPin: true})
	if err := h.Register(ctx, a); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := h.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatalf("trials did not finish: %v", ctx.Err())
	}
	if err := h.Unregister(); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// =============================================================================
// Dispatcher
// =============================================================================

func TestDispatchDeclinesUnknownIdentity(t *testing.T) {
	for _, kind := range []ordering.EngineKind{ordering.StoreBuffering, ordering.Propagation} {
		mem := newSimMemory()
		a := ordering.New().Engine(kind).WithMemory(mem).Logger(discardLogger()).Build()
		for _, cpu := range []uint{3, 4, 64, ^uint(0)} {
			if a.ShouldRun(cpu) {
				t.Fatalf("%s: ShouldRun(%d): got true, want false", kind, cpu)
			}
			if err := a.Dispatch(context.Background(), cpu); err != nil {
				t.Fatalf("%s: Dispatch(%d): %v", kind, cpu, err)
			}
		}
		if n := mem.accessCount(); n != 0 {
			t.Fatalf("%s: memory accesses: got %d, want 0", kind, n)
		}
		if s := a.Stats(); s.Trials != 0 || s.Detections != 0 {
			t.Fatalf("%s: stats changed: %+v", kind, s)
		}
		if n := a.Flush(); n != 0 {
			t.Fatalf("%s: Flush: got %d records, want 0", kind, n)
		}
	}
}

func TestShouldRunOwnedIdentities(t *testing.T) {
	a := ordering.New().Build()
	for cpu := range uint(ordering.NumRoles) {
		if !a.ShouldRun(cpu) {
			t.Fatalf("ShouldRun(%d): got false, want true", cpu)
		}
	}
}

// =============================================================================
// Store Buffering
// =============================================================================

// With a leaky barrier and store buffers that never drain, each
// writer's store stays invisible past its own load, so every trial
// observes r1 == r2 == 0.
func TestStoreBufferingDetectsLeakyBarrier(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	mem := newSimMemory(ordering.LocX, ordering.LocY)
	a := ordering.New().StoreBuffering().
		WithMemory(mem).WithBarrier(leakyBarrier{}).
		Logger(logger).Build()

	ctx := context.Background()
	const trials = 3
	for i := range trials {
		done := make(chan error, 1)
		go func() { done <- a.Dispatch(ctx, 2) }()
		if err := a.Dispatch(ctx, 0); err != nil {
			t.Fatalf("trial %d: writer-x: %v", i, err)
		}
		if err := a.Dispatch(ctx, 1); err != nil {
			t.Fatalf("trial %d: writer-y: %v", i, err)
		}
		if err := <-done; err != nil {
			t.Fatalf("trial %d: watcher: %v", i, err)
		}
	}

	s := a.Stats()
	if s.Trials != trials || s.Detections != trials {
		t.Fatalf("Stats: got trials=%d detections=%d, want %d and %d", s.Trials, s.Detections, trials, trials)
	}
	if n := a.Flush(); n != trials {
		t.Fatalf("Flush: got %d records, want %d", n, trials)
	}
	out := logBuf.String()
	if c := strings.Count(out, `msg="reorders detected"`); c != trials {
		t.Fatalf("log records: got %d, want %d\n%s", c, trials, out)
	}
	if !strings.Contains(out, "detected=3 r1=0 r2=0 trial=3") {
		t.Fatalf("last record missing:\n%s", out)
	}
	if !strings.Contains(out, "engine=sb barrier=compiler") {
		t.Fatalf("engine attrs missing:\n%s", out)
	}
}

// With a draining barrier no trial can observe both zeros, however the
// writers interleave.
func TestStoreBufferingDrainingBarrier(t *testing.T) {
	const trials = 5
	mem := newSimMemory(ordering.LocX, ordering.LocY)
	gates := &gateLog{m: mem}
	a := ordering.New().StoreBuffering().
		WithMemory(mem).WithBarrier(drainBarrier{mem}).WithGates(gates.newGate).
		Trials(trials).Logger(discardLogger()).Build()

	runHosted(t, a)

	s := a.Stats()
	if s.Trials != trials {
		t.Fatalf("Trials: got %d, want %d", s.Trials, trials)
	}
	if s.Detections != 0 {
		t.Fatalf("Detections: got %d, want 0", s.Detections)
	}
	r1, r2 := mem.storesTo(ordering.LocR1), mem.storesTo(ordering.LocR2)
	if len(r1) != trials || len(r2) != trials {
		t.Fatalf("result stores: got %d and %d, want %d each", len(r1), len(r2), trials)
	}
	for i := range trials {
		if r1[i] > 1 || r2[i] > 1 || (r1[i] == 0 && r2[i] == 0) {
			t.Fatalf("trial %d: outcome (%d, %d) outside {(1,0), (0,1), (1,1)}", i, r1[i], r2[i])
		}
	}
}

// On a sequentially consistent memory the forbidden outcome never occurs.
func TestStoreBufferingSequentialConsistency(t *testing.T) {
	trials := uint64(10000)
	if testing.Short() {
		trials = 1000
	}
	mem := newSimMemory()
	a := ordering.New().StoreBuffering().
		WithMemory(mem).WithBarrier(leakyBarrier{}).
		Trials(trials).Logger(discardLogger()).Build()

	runHosted(t, a)

	s := a.Stats()
	if s.Trials != trials || s.Detections != 0 {
		t.Fatalf("Stats: got trials=%d detections=%d, want %d and 0", s.Trials, s.Detections, trials)
	}
}

// Both writers are released only after the watcher's zeroing stores,
// and each gate is signaled and consumed exactly once per trial.
func TestStoreBufferingTrialProtocol(t *testing.T) {
	const trials = 200
	mem := newSimMemory(ordering.LocX, ordering.LocY)
	owned := [2]ordering.Loc{ordering.LocX, ordering.LocY}

	var mu sync.Mutex
	var stale []string
	gates := &gateLog{m: mem}
	gates.onRelease = func(index int) {
		if v := mem.peek(owned[index]); v != 0 {
			mu.Lock()
			stale = append(stale, owned[index].String())
			mu.Unlock()
		}
	}

	a := ordering.New().StoreBuffering().
		WithMemory(mem).WithBarrier(drainBarrier{mem}).WithGates(gates.newGate).
		Trials(trials).Logger(discardLogger()).Build()

	runHosted(t, a)

	if len(stale) != 0 {
		t.Fatalf("writers released with stale flags: %v", stale)
	}
	for i, want := range []int{trials, trials, 2 * trials} {
		signals, acquired := gates.gate(i).counts()
		if signals != want || acquired != want {
			t.Fatalf("gate %d: got %d signals and %d acquisitions, want %d each", i, signals, acquired, want)
		}
	}
}

// The watcher judges only after both writers have signaled completion.
func TestStoreBufferingJudgesAfterBothWriters(t *testing.T) {
	a := ordering.New().StoreBuffering().
		WithMemory(newSimMemory()).WithBarrier(leakyBarrier{}).
		Logger(discardLogger()).Build()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.Dispatch(ctx, 2) }()

	if err := a.Dispatch(ctx, 0); err != nil {
		t.Fatalf("writer-x: %v", err)
	}
	select {
	case err := <-done:
		t.Fatalf("watcher returned after one writer: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	if got := a.Stats().Trials; got != 0 {
		t.Fatalf("Trials after one writer: got %d, want 0", got)
	}

	if err := a.Dispatch(ctx, 1); err != nil {
		t.Fatalf("writer-y: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("watcher: %v", err)
	}
	if got := a.Stats().Trials; got != 1 {
		t.Fatalf("Trials after both writers: got %d, want 1", got)
	}
}

func TestStoreBufferingWriterHonorsContext(t *testing.T) {
	a := ordering.New().StoreBuffering().WithMemory(newSimMemory()).Logger(discardLogger()).Build()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.Dispatch(ctx, 0); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("writer on unsignaled gate: got %v, want DeadlineExceeded", err)
	}
}

// =============================================================================
// Propagation
// =============================================================================

// a stays buffered past the store to b, so the consumer sees b ahead.
func TestPropagationDetectsLeakyBarrier(t *testing.T) {
	var logBuf bytes.Buffer
	mem := newSimMemory(ordering.LocA)
	var got []ordering.Detection
	a := ordering.New().Propagation().
		WithMemory(mem).WithBarrier(leakyBarrier{}).
		Logger(slog.New(slog.NewTextHandler(&logBuf, nil))).
		OnDetection(func(d ordering.Detection) { got = append(got, d) }).
		Build()

	ctx := context.Background()
	for range 3 {
		if err := a.Dispatch(ctx, 0); err != nil {
			t.Fatalf("incrementer: %v", err)
		}
	}
	if err := a.Dispatch(ctx, 1); err != nil {
		t.Fatalf("snapshotter: %v", err)
	}
	if err := a.Dispatch(ctx, 2); err != nil {
		t.Fatalf("consumer: %v", err)
	}

	if n := a.Flush(); n != 1 {
		t.Fatalf("Flush: got %d records, want 1", n)
	}
	if len(got) != 1 {
		t.Fatalf("OnDetection: got %d calls, want 1", len(got))
	}
	d := got[0]
	if d.Engine != ordering.Propagation || d.A != 0 || d.B != 3 {
		t.Fatalf("Detection: got %+v, want a=0 b=3", d)
	}
	if !strings.Contains(logBuf.String(), "reorders detected") || !strings.Contains(logBuf.String(), "a=0 b=3") {
		t.Fatalf("log record missing:\n%s", logBuf.String())
	}
}

// Without reordering the snapshot pair only ever shows a caught up with b.
func TestPropagationDrainingBarrier(t *testing.T) {
	const trials = 20000
	mem := newSimMemory(ordering.LocA)
	a := ordering.New().Propagation().
		WithMemory(mem).WithBarrier(drainBarrier{mem}).
		Trials(trials).Logger(discardLogger()).Build()

	runHosted(t, a)

	s := a.Stats()
	if s.Trials != trials || s.Detections != 0 {
		t.Fatalf("Stats: got trials=%d detections=%d, want %d and 0", s.Trials, s.Detections, trials)
	}
	if av, bv := mem.peek(ordering.LocA), mem.peek(ordering.LocB); av < bv {
		t.Fatalf("final a=%d behind b=%d", av, bv)
	}
}

// Snapshots are published in counter order.
func TestPropagationSnapshotsMonotonic(t *testing.T) {
	mem := newSimMemory()
	a := ordering.New().Propagation().WithMemory(mem).Logger(discardLogger()).Build()
	ctx := context.Background()
	for i := range 50 {
		for range i % 3 {
			_ = a.Dispatch(ctx, 0)
		}
		_ = a.Dispatch(ctx, 1)
	}
	for _, loc := range []ordering.Loc{ordering.LocA, ordering.LocB} {
		vs := mem.storesTo(loc)
		for i := 1; i < len(vs); i++ {
			if vs[i] < vs[i-1] {
				t.Fatalf("%s: store %d went back from %d to %d", loc, i, vs[i-1], vs[i])
			}
		}
	}
}

// =============================================================================
// Hardware
// =============================================================================

func TestHardwareCPUBarrierNoDetections(t *testing.T) {
	if ordering.RaceEnabled {
		t.Skip("roles race on purpose")
	}
	if testing.Short() {
		t.Skip("hardware run")
	}
	for _, kind := range []ordering.EngineKind{ordering.StoreBuffering, ordering.Propagation} {
		a := ordering.New().Engine(kind).CPUBarrier().Trials(2000).Logger(discardLogger()).Build()
		runHosted(t, a)
		s := a.Stats()
		if s.Trials != 2000 {
			t.Fatalf("%s: Trials: got %d, want 2000", kind, s.Trials)
		}
		if s.Detections != 0 {
			t.Fatalf("%s: Detections with hardware fences: got %d, want 0", kind, s.Detections)
		}
	}
}

func TestHardwareCompilerBarrierRuns(t *testing.T) {
	if ordering.RaceEnabled {
		t.Skip("roles race on purpose")
	}
	if testing.Short() {
		t.Skip("hardware run")
	}
	var mu sync.Mutex
	hooked := uint64(0)
	a := ordering.New().StoreBuffering().CompilerBarrier().SpinGates().Trials(2000).
		Logger(discardLogger()).
		OnDetection(func(ordering.Detection) {
			mu.Lock()
			hooked++
			mu.Unlock()
		}).Build()
	runHosted(t, a)

	s := a.Stats()
	if s.Trials != 2000 {
		t.Fatalf("Trials: got %d, want 2000", s.Trials)
	}
	// Whether the hardware reorders is up to the machine; every
	// detection must be either reported or counted as dropped.
	if hooked+s.Dropped != s.Detections {
		t.Fatalf("reported %d + dropped %d != detected %d", hooked, s.Dropped, s.Detections)
	}
}
