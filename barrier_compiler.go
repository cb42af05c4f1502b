// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !ordering_cpu_barrier

package ordering

// DefaultBarrier is the barrier used when the Builder does not choose one.
const DefaultBarrier = CompilerBarrier
