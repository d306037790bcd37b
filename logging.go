package framelib

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

// NewLogger builds a structured logger in the style used throughout this
// package: timestamps, level, and a "framelib" prefix, matching the
// teacher's CSV/plaintext event logging but via charmbracelet/log's
// leveled writer instead of hand-rolled formatting.
func NewLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    false,
		Prefix:          "framelib",
	})
}

// DailyLogFile opens (creating directories as needed) a log file in dir
// named after pattern, expanded for the current time via strftime — e.g.
// "framelib-%Y%m%d.log" rotates to a new file every day without any timer
// goroutine: each process start (or explicit reopen) just resolves the
// current name.
func DailyLogFile(dir, pattern string) (*os.File, error) {
	f, err := strftime.New(pattern)
	if err != nil {
		return nil, newConfigError("DailyLogFile", "bad strftime pattern %q: %v", pattern, err)
	}
	name := f.FormatString(time.Now())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, newConfigError("DailyLogFile", "creating log directory %q: %v", dir, err)
	}
	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
