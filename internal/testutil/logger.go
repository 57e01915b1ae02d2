// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/lmittmann/tint"
)

// Logger returns a debug-level logger that writes coloured output to
// stderr, tagged with the test name.
func Logger(t testing.TB) *slog.Logger {
	t.Helper()
	h := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	})
	return slog.New(h).With("test", t.Name())
}

// CRLF converts a fixture written with \n line endings to wire format.
func CRLF(s string) string {
	s = strings.TrimLeft(s, "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
