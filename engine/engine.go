package engine

import (
	"bufio"
	"bytes"
	"io"

	"github.com/ansel1/specreport/parser"
	"go.uber.org/zap"
)

// EventType identifies the type of event emitted by the engine
type EventType string

const (
	EventRawLine   EventType = "raw"       // Line that is not a lifecycle event
	EventLifecycle EventType = "lifecycle" // Parsed lifecycle notification
	EventError     EventType = "error"     // Error occurred while reading input
	EventComplete  EventType = "complete"  // Input stream finished
)

// maxLineSize bounds a single event line; stack traces can be long.
const maxLineSize = 4 * 1024 * 1024

// Event represents a single event emitted by the engine
type Event struct {
	Type      EventType
	RawLine   []byte       // Populated for EventRawLine
	Lifecycle parser.Event // Populated for EventLifecycle
	Error     error        // Populated for EventError
}

// Engine turns a line-oriented input stream into events.
// It keeps no run state; interpreting the events is up to the consumer.
type Engine struct {
	// Output writers for pass-through file writing
	rawWriter  io.Writer
	jsonWriter io.Writer
	logger     *zap.Logger
}

// Option configures the engine
type Option func(*Engine)

// WithRawOutput configures engine to write all raw lines to w
func WithRawOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.rawWriter = w
	}
}

// WithJSONOutput configures engine to write every parsed event line to w
func WithJSONOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.jsonWriter = w
	}
}

// WithLogger sets the logger for diagnostics about unparseable lines.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a new event processing engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stream reads from input, parses lines, and emits events via channel.
// The last event is always EventComplete; the channel is closed after it.
func (e *Engine) Stream(input io.Reader) <-chan Event {
	events := make(chan Event, 100)

	go func() {
		defer close(events)

		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := scanner.Bytes()

			if e.rawWriter != nil {
				e.rawWriter.Write(line)
				e.rawWriter.Write([]byte("\n"))
			}

			lifecycle, err := parser.ParseEvent(line)
			if err != nil {
				if bytes.HasPrefix(bytes.TrimSpace(line), []byte("{")) {
					e.logger.Debug("treating unparseable event line as raw output", zap.Error(err))
				}
				// The scanner reuses its buffer.
				lineCopy := make([]byte, len(line))
				copy(lineCopy, line)
				events <- Event{
					Type:    EventRawLine,
					RawLine: lineCopy,
				}
				continue
			}

			if e.jsonWriter != nil {
				e.jsonWriter.Write(line)
				e.jsonWriter.Write([]byte("\n"))
			}

			events <- Event{
				Type:      EventLifecycle,
				Lifecycle: lifecycle,
			}
		}

		if err := scanner.Err(); err != nil {
			events <- Event{
				Type:  EventError,
				Error: err,
			}
		}

		events <- Event{
			Type: EventComplete,
		}
	}()

	return events
}
