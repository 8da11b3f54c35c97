package tui

import (
	"strings"
	"sync"
)

// ensureReset ensures that the string ends with a terminal reset sequence.
// This prevents color bleeding from truncated output or output that leaves colors open.
func ensureReset(s string) string {
	if s == "" {
		return ""
	}
	if strings.HasSuffix(s, "\033[0m") {
		return s
	}
	return s + "\033[0m"
}

// LineBuffer collects written text and hands it out as complete lines.
type LineBuffer struct {
	mu      sync.Mutex
	partial strings.Builder
	lines   []string
}

// Write implements io.Writer. It never fails.
func (lb *LineBuffer) Write(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.partial.Write(p)
	text := lb.partial.String()
	idx := strings.LastIndexByte(text, '\n')
	if idx < 0 {
		return len(p), nil
	}
	lb.lines = append(lb.lines, strings.Split(text[:idx], "\n")...)
	lb.partial.Reset()
	lb.partial.WriteString(text[idx+1:])
	return len(p), nil
}

// Drain returns the complete lines written so far and forgets them.
// A trailing partial line stays buffered.
func (lb *LineBuffer) Drain() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lines := lb.lines
	lb.lines = nil
	return lines
}
