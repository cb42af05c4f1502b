// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package model enumerates the outcomes a litmus program may produce
// under a memory model.
//
// Each model is an operational machine explored exhaustively: every
// interleaving of every thread, plus every choice the machine allows
// (draining a store buffer, executing an instruction early). The result
// is the set of load values some execution produces.
//
//   - SC: one global order over all loads and stores. Fences are no-ops.
//   - TSO: x86-style per-thread FIFO store buffers with forwarding. A full
//     fence waits until its thread's buffer is empty; store and load
//     fences are no-ops since TSO already keeps those orders.
//   - Relaxed: any two accesses of one thread to different locations may
//     execute out of order unless a fence of the matching kind separates
//     them. Stores are visible to all threads once executed.
package model
