package output

import (
	"fmt"

	"github.com/ansel1/specreport/engine"
	"github.com/ansel1/specreport/parser"
	"github.com/ansel1/specreport/results"
	"go.uber.org/zap"
)

// streamEndedCause is passed to OnEngineFinished when the input ends before
// the engine announced the end of the run.
var streamEndedCause = &results.Cause{
	Message: "event stream ended before engineFinished",
	Type:    "StreamEnded",
}

// Handle dispatches one lifecycle event to the matching hook.
func (r *Reporter) Handle(evt parser.Event) {
	switch evt.Action {
	case parser.ActionEngineStarted:
		r.OnEngineStarted(evt.SpecNames())

	case parser.ActionSpecInstantiationError:
		r.OnSpecInstantiationError(results.Spec{Name: evt.Spec}, evt.Cause.ToCause())

	case parser.ActionTestStarted:
		if tc, ok := r.testCase(evt); ok {
			r.OnTestStarted(tc)
		}

	case parser.ActionTestFinished:
		tc, ok := r.testCase(evt)
		if !ok || evt.Result == nil {
			return
		}
		result, err := evt.Result.ToResult()
		if err != nil {
			r.logger.Warn("dropping test result", zap.Error(err))
			return
		}
		r.OnTestFinished(tc, result)

	case parser.ActionSpecFinished:
		entries := make([]results.ResultEntry, 0, len(evt.Results))
		for _, o := range evt.Results {
			tc, err := o.Test.ToTestCase()
			if err != nil {
				continue
			}
			result, err := o.Result.ToResult()
			if err != nil {
				continue
			}
			entries = append(entries, results.ResultEntry{Description: tc.Description, Result: result})
		}
		r.OnSpecFinished(results.Spec{Name: evt.Spec}, evt.Cause.ToCause(), entries)

	case parser.ActionEngineFinished:
		r.OnEngineFinished(evt.Cause.ToCause())

	default:
		r.logger.Debug("ignoring unknown action", zap.String("action", string(evt.Action)))
	}
}

func (r *Reporter) testCase(evt parser.Event) (results.TestCase, bool) {
	if evt.Test == nil {
		return results.TestCase{}, false
	}
	tc, err := evt.Test.ToTestCase()
	if err != nil {
		r.logger.Warn("dropping test event", zap.String("action", string(evt.Action)), zap.Error(err))
		return results.TestCase{}, false
	}
	return tc, true
}

// ProcessEvents consumes engine events until the stream completes.
//
// Raw lines are passed through. If the stream completes without an
// engineFinished event, the summary is still printed, with a fatal cause
// recording that the stream ended early. The returned error is the input
// read error, if any.
func (r *Reporter) ProcessEvents(events <-chan engine.Event) error {
	var readErr error
	for evt := range events {
		switch evt.Type {
		case engine.EventRawLine:
			r.RawLine(string(evt.RawLine))

		case engine.EventLifecycle:
			r.Handle(evt.Lifecycle)

		case engine.EventError:
			r.logger.Error("failed to read event stream", zap.Error(evt.Error))
			readErr = fmt.Errorf("reading event stream: %w", evt.Error)

		case engine.EventComplete:
			r.Complete()
			return readErr
		}
	}
	r.Complete()
	return readErr
}

// Complete finishes the run if the engine never did.
func (r *Reporter) Complete() {
	if !r.EngineFinished() {
		r.OnEngineFinished(streamEndedCause)
	}
}
