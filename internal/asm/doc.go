// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package asm provides CompilerFence, an ordering point for the Go
// compiler only.
//
// CompilerFence emits nothing: it is an opaque call the Go compiler
// cannot move memory accesses across, the equivalent of an empty asm
// statement with a memory clobber. Hardware fences come from atomix.
package asm
