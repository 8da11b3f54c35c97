package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ansel1/specreport/results"
)

// Action names a lifecycle notification.
type Action string

const (
	ActionEngineStarted          Action = "engineStarted"
	ActionSpecInstantiationError Action = "specInstantiationError"
	ActionTestStarted            Action = "testStarted"
	ActionTestFinished           Action = "testFinished"
	ActionSpecFinished           Action = "specFinished"
	ActionEngineFinished         Action = "engineFinished"
)

// Event represents a single lifecycle notification, one JSON object per line.
type Event struct {
	Time    time.Time     `json:"Time"`
	Action  Action        `json:"Action"`
	Specs   []string      `json:"Specs,omitempty"`   // engineStarted
	Spec    string        `json:"Spec,omitempty"`    // specInstantiationError, specFinished
	Test    *TestCase     `json:"Test,omitempty"`    // testStarted, testFinished
	Result  *Result       `json:"Result,omitempty"`  // testFinished
	Cause   *Cause        `json:"Cause,omitempty"`   // specInstantiationError, specFinished, engineFinished
	Results []TestOutcome `json:"Results,omitempty"` // specFinished
}

// TestCase is the wire form of results.TestCase.
type TestCase struct {
	Path []string `json:"Path"`
	Name string   `json:"Name,omitempty"`
	Type string   `json:"Type,omitempty"` // "Test" (default) or "Container"
	Spec string   `json:"Spec,omitempty"` // Defaults to Path[0]
	File string   `json:"File,omitempty"`
	Line int      `json:"Line,omitempty"`
}

// Result is the wire form of results.TestResult.
type Result struct {
	Status  string  `json:"Status"`
	Elapsed float64 `json:"Elapsed,omitempty"` // Seconds
	Cause   *Cause  `json:"Cause,omitempty"`
}

// Cause is the wire form of results.Cause.
type Cause struct {
	Message string   `json:"Message,omitempty"`
	Type    string   `json:"Type,omitempty"`
	Stack   []string `json:"Stack,omitempty"`
}

// TestOutcome pairs a test case with its result inside a specFinished event.
type TestOutcome struct {
	Test   TestCase `json:"Test"`
	Result Result   `json:"Result"`
}

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrMissingField  = errors.New("missing field")
)

// ParseEvent parses and validates a single line of the event stream.
func ParseEvent(line []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(line, &event); err != nil {
		return event, err
	}
	if err := event.Validate(); err != nil {
		return event, err
	}
	return event, nil
}

// Validate checks that the fields required by the event's action are present
// and convertible.
func (e Event) Validate() error {
	switch e.Action {
	case ActionEngineStarted, ActionEngineFinished:
		return nil
	case ActionSpecInstantiationError, ActionSpecFinished:
		if e.Spec == "" {
			return fmt.Errorf("%s: %w: Spec", e.Action, ErrMissingField)
		}
		for _, o := range e.Results {
			if _, err := o.Test.ToTestCase(); err != nil {
				return fmt.Errorf("%s: %w", e.Action, err)
			}
			if _, err := o.Result.ToResult(); err != nil {
				return fmt.Errorf("%s: %w", e.Action, err)
			}
		}
		return nil
	case ActionTestStarted, ActionTestFinished:
		if e.Test == nil {
			return fmt.Errorf("%s: %w: Test", e.Action, ErrMissingField)
		}
		if _, err := e.Test.ToTestCase(); err != nil {
			return fmt.Errorf("%s: %w", e.Action, err)
		}
		if e.Action == ActionTestFinished {
			if e.Result == nil {
				return fmt.Errorf("%s: %w: Result", e.Action, ErrMissingField)
			}
			if _, err := e.Result.ToResult(); err != nil {
				return fmt.Errorf("%s: %w", e.Action, err)
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, e.Action)
}

// ToTestCase converts the wire form.
func (tc TestCase) ToTestCase() (results.TestCase, error) {
	if len(tc.Path) == 0 {
		return results.TestCase{}, fmt.Errorf("%w: Test.Path", ErrMissingField)
	}
	kind := results.KindTest
	switch tc.Type {
	case "", "Test", "test":
		kind = results.KindTest
	case "Container", "container":
		kind = results.KindContainer
	default:
		return results.TestCase{}, fmt.Errorf("unknown test type %q", tc.Type)
	}
	spec := tc.Spec
	if spec == "" {
		spec = tc.Path[0]
	}
	return results.TestCase{
		Description: results.NewDescription(tc.Path...),
		Name:        tc.Name,
		Kind:        kind,
		Source:      results.Source{File: tc.File, Line: tc.Line},
		Spec:        spec,
	}, nil
}

// ToResult converts the wire form. A failing result always carries a cause
// and a passing or ignored one never does.
func (r Result) ToResult() (results.TestResult, error) {
	status, ok := results.ParseStatus(r.Status)
	if !ok {
		return results.TestResult{}, fmt.Errorf("unknown status %q", r.Status)
	}
	elapsed := time.Duration(math.Round(r.Elapsed * float64(time.Second)))
	if elapsed < 0 {
		elapsed = 0
	}
	result := results.TestResult{Status: status, Duration: elapsed}
	if status.IsFailed() {
		result.Cause = r.Cause.ToCause()
		if result.Cause == nil {
			result.Cause = &results.Cause{}
		}
	}
	return result, nil
}

// ToCause converts the wire form; a nil cause stays nil.
func (c *Cause) ToCause() *results.Cause {
	if c == nil {
		return nil
	}
	stack := make([]string, len(c.Stack))
	copy(stack, c.Stack)
	return &results.Cause{Message: c.Message, Type: c.Type, Stack: stack}
}

// SpecNames converts the engineStarted spec list.
func (e Event) SpecNames() []results.Spec {
	specs := make([]results.Spec, 0, len(e.Specs))
	for _, name := range e.Specs {
		specs = append(specs, results.Spec{Name: name})
	}
	return specs
}
