// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !amd64 && !arm64 && !riscv64

package asm

// CompilerFence is an opaque call with no hardware effect.
//
//go:noinline
func CompilerFence() {}
