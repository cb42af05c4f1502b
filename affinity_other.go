// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package ordering

import (
	"errors"
	"fmt"
	"runtime"
)

// PinCurrentThread is unsupported off Linux. A Host configured to pin
// fails to register.
func PinCurrentThread(cpu int) error {
	return fmt.Errorf("ordering: pin cpu %d on %s: %w", cpu, runtime.GOOS, errors.ErrUnsupported)
}

// OnlineCPUs returns 0..runtime.NumCPU()-1.
func OnlineCPUs() ([]int, error) {
	cpus := make([]int, runtime.NumCPU())
	for i := range cpus {
		cpus[i] = i
	}
	return cpus, nil
}
