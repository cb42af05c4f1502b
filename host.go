// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"code.hybscloud.com/iox"
	"golang.org/x/sync/errgroup"
)

// HostConfig configures a Host.
type HostConfig struct {
	// CPUs binds core identity i to CPUs[i]. One persistent task is
	// created per entry; identities the Thread declines are polled and
	// parked. Empty means the first NumRoles CPUs of the process mask.
	CPUs []int

	// NoPin skips thread pinning. Only meaningful for tests: without
	// pinning the roles may share a core and observe nothing.
	NoPin bool

	// Logger receives lifecycle records at Debug level.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// Host runs one persistent task per core identity, each locked to its
// own OS thread and pinned to its core for the whole registration.
//
// Before every invocation a task asks Thread.ShouldRun; while it holds
// the task calls Thread.Run, otherwise it parks with backoff and asks
// again. A Thread that also implements Background gets one more task
// for it.
type Host struct {
	cfg    HostConfig
	logger *slog.Logger

	mu     sync.Mutex
	thread Thread
	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewHost creates a Host. Nothing runs until Register.
func NewHost(cfg HostConfig) *Host {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{cfg: cfg, logger: logger}
}

// CPUs resolves the identity-to-core binding the Host will use.
func (h *Host) CPUs() ([]int, error) {
	cpus := h.cfg.CPUs
	if len(cpus) == 0 {
		online, err := OnlineCPUs()
		if err != nil {
			return nil, err
		}
		cpus = online[:min(len(online), NumRoles)]
	}
	if len(cpus) < NumRoles {
		return nil, fmt.Errorf("%w: have %v", ErrTooFewCPUs, cpus)
	}
	seen := make(map[int]bool, len(cpus))
	for _, cpu := range cpus {
		if seen[cpu] {
			return nil, fmt.Errorf("%w: cpu %d bound twice", ErrTooFewCPUs, cpu)
		}
		seen[cpu] = true
	}
	return append([]int(nil), cpus...), nil
}

// Register starts t's tasks. It returns once every task is pinned, or
// with the first pinning failure after stopping the tasks already
// started; in that case no role of t has run. Tasks run until ctx is
// done, Unregister is called, or Run returns an error.
func (h *Host) Register(ctx context.Context, t Thread) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.thread != nil {
		return ErrRegistered
	}

	cpus, err := h.CPUs()
	if err != nil {
		return fmt.Errorf("ordering: register %s: %w", t.Name(), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	ready := make(chan error, len(cpus))
	start := make(chan struct{})
	for id, cpu := range cpus {
		g.Go(func() error {
			return h.task(gctx, t, uint(id), cpu, ready, start)
		})
	}
	// No task runs a role until every identity is pinned, so a failed
	// Register leaves t untouched.
	for range cpus {
		if err := <-ready; err != nil {
			cancel()
			_ = g.Wait()
			return fmt.Errorf("ordering: register %s: %w", t.Name(), err)
		}
	}
	close(start)
	if bg, ok := t.(Background); ok {
		g.Go(func() error {
			return bg.Background(gctx)
		})
	}

	h.logger.Debug("registered", slog.String("thread", t.Name()), slog.Any("cpus", cpus))
	h.thread, h.cancel, h.group = t, cancel, g
	return nil
}

// Wait blocks until the registered tasks stop on their own and returns
// the first error. ErrTrialsDone and cancellation are clean stops.
func (h *Host) Wait() error {
	h.mu.Lock()
	g := h.group
	h.mu.Unlock()
	if g == nil {
		return ErrNotRegistered
	}
	return cleanStop(g.Wait())
}

// Unregister stops the tasks, waits for them, and returns the first
// error. Tasks blocked on a gate are released through their context.
func (h *Host) Unregister() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.thread == nil {
		return ErrNotRegistered
	}
	h.cancel()
	err := cleanStop(h.group.Wait())
	h.logger.Debug("unregistered", slog.String("thread", h.thread.Name()))
	h.thread, h.cancel, h.group = nil, nil, nil
	return err
}

// task is the persistent task for core identity id.
func (h *Host) task(ctx context.Context, t Thread, id uint, cpu int, ready chan<- error, start <-chan struct{}) error {
	// Never unlocked: the pinned thread exits with the goroutine
	// instead of returning to the scheduler with a narrowed mask.
	runtime.LockOSThread()
	if !h.cfg.NoPin {
		if err := PinCurrentThread(cpu); err != nil {
			ready <- fmt.Errorf("identity %d: %w", id, err)
			return nil
		}
	}
	ready <- nil
	select {
	case <-start:
	case <-ctx.Done():
		return nil
	}
	h.logger.Debug("task pinned", slog.String("thread", t.Name()), slog.Uint64("identity", uint64(id)), slog.Int("cpu", cpu))

	backoff := iox.Backoff{}
	for ctx.Err() == nil {
		if !t.ShouldRun(id) {
			backoff.Wait()
			continue
		}
		backoff.Reset()
		if err := t.Run(ctx, id); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		}
	}
	return nil
}

func cleanStop(err error) error {
	if errors.Is(err, ErrTrialsDone) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
