// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package manager

import "code.hybscloud.com/fiber/event"

func newDefaultBridge() (event.Bridge, error) {
	return event.NewEpollBridge()
}
