// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For Gate.TryWait: the gate has not been signaled.
// For the detection ring: nothing is queued.
//
// ErrWouldBlock is a control flow signal, not a failure.
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

var (
	// ErrRegistered is returned by Host.Register when an apparatus is
	// already registered.
	ErrRegistered = errors.New("ordering: host already has a registered thread")

	// ErrNotRegistered is returned by Host.Unregister and Host.Wait
	// without a prior successful Register.
	ErrNotRegistered = errors.New("ordering: no registered thread")

	// ErrTooFewCPUs is returned when fewer than three distinct cores are
	// available to bind the roles to.
	ErrTooFewCPUs = errors.New("ordering: need three distinct cpus")

	// ErrTrialsDone is returned by the judging role once the configured
	// trial budget is exhausted. Hosts treat it as a clean stop.
	ErrTrialsDone = errors.New("ordering: trial budget exhausted")
)
