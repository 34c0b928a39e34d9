// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package manager_test

import (
	"bytes"
	"log/slog"
	"testing"

	"code.hybscloud.com/fiber/manager"
)

func TestNewLoggerNilHandlerIsNoop(t *testing.T) {
	if l := manager.NewLogger(nil); l != nil {
		t.Fatalf("NewLogger(nil): got non-nil Logger")
	}
}

func TestNewLoggerWritesThroughHandler(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, nil)
	l := manager.NewLogger(h)
	if l == nil {
		t.Fatalf("NewLogger: got nil Logger for a non-nil handler")
	}
	l.Info().Log("worker started")
	if buf.Len() == 0 {
		t.Fatalf("expected log output to be written through the handler")
	}
}
