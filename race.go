// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package ordering

// RaceEnabled is true when the race detector is active.
// Used by tests to skip runs on hardware memory: the roles race on
// purpose, through atomix accesses the detector sees as plain ones.
const RaceEnabled = true
