// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"code.hybscloud.com/ordering"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Engine   string
	Barrier  string
	CPUs     []int
	Trials   uint64
	Duration time.Duration
	Spin     bool
	RingSize int
	NoPin    bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a reorder detector",
		Long: `Run a reorder detector on three cores.

Each role runs on its own pinned core until the trial budget is spent,
the duration elapses, or the process is interrupted. Every detection is
logged to stderr; a summary is printed to stdout on exit.

Example:
  ordering run --engine sb --barrier compiler --trials 1000000
  ordering run --engine rmo --barrier cpu --cpus 2,4,6 --duration 30s`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetector(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Engine, "engine", ordering.DefaultEngine.String(), "detector (sb|rmo)")
	cmd.Flags().StringVar(&opts.Barrier, "barrier", ordering.DefaultBarrier.String(), "barrier between accesses (cpu|compiler)")
	cmd.Flags().IntSliceVar(&opts.CPUs, "cpus", nil, "cores for roles 0,1,2 (default: first three of the affinity mask)")
	cmd.Flags().Uint64Var(&opts.Trials, "trials", 0, "stop after this many judgments (0: no limit)")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 0, "stop after this long (0: no limit)")
	cmd.Flags().BoolVar(&opts.Spin, "spin", false, "busy-poll gates instead of parking")
	cmd.Flags().IntVar(&opts.RingSize, "ring", ordering.DefaultRingSize, "detections queued for logging before drops")
	cmd.Flags().BoolVar(&opts.NoPin, "no-pin", false, "do not pin roles to cores (results are unreliable)")

	return cmd
}

// RunSummary is the result of a detector run.
type RunSummary struct {
	ordering.Stats
	CPUs    []int         `json:"cpus"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

func (s RunSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "engine:     %s\n", s.Engine)
	fmt.Fprintf(&b, "barrier:    %s\n", s.Barrier)
	fmt.Fprintf(&b, "cpus:       %v\n", s.CPUs)
	fmt.Fprintf(&b, "trials:     %d\n", s.Trials)
	fmt.Fprintf(&b, "detections: %d\n", s.Detections)
	if s.Dropped != 0 {
		fmt.Fprintf(&b, "dropped:    %d\n", s.Dropped)
	}
	fmt.Fprintf(&b, "elapsed:    %s", s.Elapsed.Round(time.Millisecond))
	return b.String()
}

func runDetector(opts *RunOptions, cmd *cobra.Command) error {
	engine, ok := ordering.ParseEngineKind(opts.Engine)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid engine %q: must be sb or rmo", opts.Engine))
	}
	barrier, ok := ordering.ParseBarrierKind(opts.Barrier)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid barrier %q: must be cpu or compiler", opts.Barrier))
	}
	if opts.RingSize < 2 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid ring size %d: must be >= 2", opts.RingSize))
	}
	if opts.Duration < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid duration %s", opts.Duration))
	}

	logger := opts.newLogger(cmd.ErrOrStderr())

	b := ordering.New().
		Engine(engine).
		Barrier(barrier).
		Trials(opts.Trials).
		RingSize(opts.RingSize).
		Logger(logger)
	if opts.Spin {
		b.SpinGates()
	}
	a := b.Build()

	// Use command's context if available (for testing)
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	h := ordering.NewHost(ordering.HostConfig{CPUs: opts.CPUs, NoPin: opts.NoPin, Logger: logger})
	cpus, err := h.CPUs()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to bind cores", err)
	}

	start := time.Now()
	if err := h.Register(ctx, a); err != nil {
		return WrapExitError(ExitFailure, "failed to register detector", err)
	}
	logger.Info("detector started",
		slog.String("engine", engine.String()),
		slog.String("barrier", barrier.String()),
		slog.Any("cpus", cpus),
	)

	runErr := h.Wait()
	if err := h.Unregister(); err != nil && runErr == nil {
		runErr = err
	}
	elapsed := time.Since(start)

	summary := RunSummary{Stats: a.Stats(), CPUs: cpus, Elapsed: elapsed}
	logger.Info("detector stopped",
		slog.Uint64("trials", summary.Trials),
		slog.Uint64("detections", summary.Detections),
	)
	if runErr != nil {
		return WrapExitError(ExitFailure, "detector failed", runErr)
	}
	return opts.formatter(cmd).Success(summary)
}
