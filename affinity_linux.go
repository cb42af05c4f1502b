// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package ordering

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// maxCPUs is CPU_SETSIZE.
const maxCPUs = 1024

// PinCurrentThread binds the calling OS thread to cpu.
//
// The caller must hold runtime.LockOSThread, otherwise the goroutine may
// migrate to another thread and the binding applies to whoever runs on
// this one next.
func PinCurrentThread(cpu int) error {
	if cpu < 0 || cpu >= maxCPUs {
		return fmt.Errorf("ordering: cpu %d out of range", cpu)
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("ordering: sched_setaffinity cpu %d: %w", cpu, err)
	}
	return nil
}

// OnlineCPUs returns the CPUs in the process's affinity mask, ascending.
func OnlineCPUs() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("ordering: sched_getaffinity: %w", err)
	}
	n := set.Count()
	cpus := make([]int, 0, n)
	for cpu := 0; cpu < maxCPUs && len(cpus) < n; cpu++ {
		if set.IsSet(cpu) {
			cpus = append(cpus, cpu)
		}
	}
	return cpus, nil
}
