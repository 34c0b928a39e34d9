// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package manager

import (
	"log/slog"

	"github.com/joeycumines/logiface"
	slogbackend "github.com/joeycumines/logiface-slog"
)

// Logger is the structured logger threaded through every worker. A nil
// Logger is always a legal, effectively zero-cost no-op — the same
// contract eventloop/logging.go documents for its own logger interface.
type Logger = *logiface.Logger[*slogbackend.Event]

// NewLogger wraps an slog.Handler as a Logger. Passing a nil handler
// returns a nil Logger.
func NewLogger(h slog.Handler) Logger {
	if h == nil {
		return nil
	}
	return logiface.New[*slogbackend.Event](slogbackend.NewLogger(h))
}
