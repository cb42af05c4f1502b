// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !ordering_rmo

package ordering

// DefaultEngine is the engine used when the Builder does not choose one.
const DefaultEngine = StoreBuffering
