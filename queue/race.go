// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package queue

// RaceEnabled is true when the race detector is active. The generic [T]
// queue variants trip race-detector false positives over cross-variable
// memory ordering it cannot model; no test in this module consults this
// flag.
const RaceEnabled = true
