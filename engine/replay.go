package engine

import (
	"bufio"
	"io"
	"time"

	"github.com/ansel1/specreport/parser"
)

// timedLine is an input line with the timestamp it should be released at.
type timedLine struct {
	line      []byte
	timestamp time.Time
}

// ReplayReader wraps a captured event stream and releases it line by line,
// sleeping between lines according to the events' timestamps.
//
// rate scales the delays: 1 is the original speed, 0.5 twice as fast, 0 no
// delay at all.
type ReplayReader struct {
	lines         []timedLine
	rate          float64
	currentIdx    int
	lineBuffer    []byte
	bufferPos     int
	lastEventTime time.Time
	sleep         func(time.Duration)
}

// NewReplayReader reads all of r and prepares it for replay.
func NewReplayReader(r io.Reader, rate float64) (*ReplayReader, error) {
	var lines []timedLine
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		lineCopy := append([]byte(nil), scanner.Bytes()...)

		// Lines without a timestamp inherit the previous one.
		var ts time.Time
		if len(lines) > 0 {
			ts = lines[len(lines)-1].timestamp
		}
		if evt, err := parser.ParseEvent(lineCopy); err == nil && !evt.Time.IsZero() {
			ts = evt.Time
		}
		lines = append(lines, timedLine{line: lineCopy, timestamp: ts})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &ReplayReader{
		lines: lines,
		rate:  rate,
		sleep: time.Sleep,
	}, nil
}

// Read implements io.Reader, returning data line-by-line with timing delays
func (r *ReplayReader) Read(p []byte) (n int, err error) {
	if r.bufferPos < len(r.lineBuffer) {
		n = copy(p, r.lineBuffer[r.bufferPos:])
		r.bufferPos += n
		return n, nil
	}

	if r.currentIdx >= len(r.lines) {
		return 0, io.EOF
	}

	current := r.lines[r.currentIdx]

	if r.rate > 0 && !r.lastEventTime.IsZero() && !current.timestamp.IsZero() {
		if delay := current.timestamp.Sub(r.lastEventTime); delay > 0 {
			r.sleep(time.Duration(float64(delay) * r.rate))
		}
	}
	if !current.timestamp.IsZero() {
		r.lastEventTime = current.timestamp
	}

	r.lineBuffer = append(append(r.lineBuffer[:0], current.line...), '\n')
	r.bufferPos = 0
	r.currentIdx++

	n = copy(p, r.lineBuffer)
	r.bufferPos += n

	return n, nil
}
