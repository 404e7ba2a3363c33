// Package logging installs the process log writer.
// Lines below the configured level are dropped and lines carrying raw content
// markers are replaced before they reach the output.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Levels in increasing severity.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Blocked is written in place of a line that carried raw content.
const Blocked = "REDACTED_LOG_BLOCKED"

var (
	severity = map[string]int{LevelDebug: 0, LevelInfo: 1, LevelWarn: 2, LevelError: 3}

	// Markers that identify raw user or document text in a log line.
	blockedMarkers = []string{"RAW_USER_TEXT=", "FILE_TEXT="}
)

// ValidLevel reports whether level names a known level.
func ValidLevel(level string) bool {
	_, ok := severity[strings.ToUpper(level)]
	return ok
}

// Writer filters log lines by level tag and blocks raw-content lines.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
	min int
}

// NewWriter creates a Writer that passes lines at or above level to out.
// Unknown levels fall back to INFO.
func NewWriter(out io.Writer, level string) *Writer {
	min, ok := severity[strings.ToUpper(level)]
	if !ok {
		min = severity[LevelInfo]
	}
	return &Writer{out: out, min: min}
}

// Write implements io.Writer. The standard logger calls it once per line.
func (w *Writer) Write(p []byte) (int, error) {
	line := p
	if lvl, ok := levelOf(line); ok && lvl < w.min {
		return len(p), nil
	}
	if blocked(line) {
		line = append(prefixOf(line), Blocked+"\n"...)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.out.Write(line); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Setup routes the standard logger through a Writer on stderr.
func Setup(level string) error {
	if !ValidLevel(level) {
		return fmt.Errorf("unknown log level %q", level)
	}
	log.SetOutput(NewWriter(os.Stderr, level))
	return nil
}

// levelOf finds the first bracketed level tag in the line.
func levelOf(line []byte) (int, bool) {
	start := bytes.IndexByte(line, '[')
	for start >= 0 {
		end := bytes.IndexByte(line[start:], ']')
		if end < 0 {
			return 0, false
		}
		if lvl, ok := severity[string(line[start+1:start+end])]; ok {
			return lvl, true
		}
		next := bytes.IndexByte(line[start+1:], '[')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return 0, false
}

func blocked(line []byte) bool {
	for _, m := range blockedMarkers {
		if bytes.Contains(line, []byte(m)) {
			return true
		}
	}
	return false
}

// prefixOf keeps the timestamp and level tag so a blocked line stays attributable.
func prefixOf(line []byte) []byte {
	i := bytes.IndexByte(line, ']')
	if i < 0 {
		return nil
	}
	end := i + 1
	if end < len(line) && line[end] == ' ' {
		end++
	}
	return append([]byte{}, line[:end]...)
}
