package tui

import (
	"github.com/ansel1/specreport/engine"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Sender delivers messages to a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Forward relays engine events to the program until the stream completes,
// then sends EOFMsg. Read errors are logged; the run is still finished.
func Forward(p Sender, events <-chan engine.Event, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for evt := range events {
		switch evt.Type {
		case engine.EventRawLine:
			p.Send(RawLineMsg(evt.RawLine))
		case engine.EventLifecycle:
			p.Send(EventMsg(evt.Lifecycle))
		case engine.EventError:
			logger.Error("failed to read event stream", zap.Error(evt.Error))
		case engine.EventComplete:
			p.Send(EOFMsg{})
			return
		}
	}
	p.Send(EOFMsg{})
}
