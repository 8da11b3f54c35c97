package results

import (
	"strings"
	"time"
)

// Status is the outcome of a single test case.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusError
	StatusIgnored
)

// AllStatuses lists every Status. Formatters are tested against this list so
// a new outcome cannot be added without every switch handling it.
var AllStatuses = []Status{StatusSuccess, StatusFailure, StatusError, StatusIgnored}

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusError:
		return "Error"
	case StatusIgnored:
		return "Ignored"
	}
	return "Unknown"
}

// IsFailed reports whether the status counts as a failure (Failure or Error).
func (s Status) IsFailed() bool {
	return s == StatusFailure || s == StatusError
}

// ParseStatus converts the wire name of a status.
func ParseStatus(name string) (Status, bool) {
	for _, s := range AllStatuses {
		if strings.EqualFold(s.String(), name) {
			return s, true
		}
	}
	return 0, false
}

// Kind distinguishes leaf tests from containers (groups of tests).
type Kind int

const (
	KindTest Kind = iota
	KindContainer
)

func (k Kind) String() string {
	if k == KindContainer {
		return "Container"
	}
	return "Test"
}

// DescriptionSeparator joins the path of a Description into its full name.
const DescriptionSeparator = " / "

// Description is the path of names from the spec root to a test or group.
type Description struct {
	Path []string
}

// NewDescription creates a description from a root-to-leaf path.
func NewDescription(path ...string) Description {
	p := make([]string, len(path))
	copy(p, path)
	return Description{Path: p}
}

// Key returns a stable identity for use as a map key.
func (d Description) Key() string {
	return strings.Join(d.Path, "\x00")
}

// FullName returns the path joined by DescriptionSeparator.
func (d Description) FullName() string {
	return strings.Join(d.Path, DescriptionSeparator)
}

// Name returns the leaf name.
func (d Description) Name() string {
	if len(d.Path) == 0 {
		return ""
	}
	return d.Path[len(d.Path)-1]
}

// Depth returns the number of ancestors between the spec root and the leaf.
// A test declared directly in a spec has depth 0.
func (d Description) Depth() int {
	if len(d.Path) < 2 {
		return 0
	}
	return len(d.Path) - 2
}

// Source is the location a test case was declared at.
type Source struct {
	File string
	Line int
}

// TestCase is a started test or container.
type TestCase struct {
	Description Description
	Name        string // Display name; defaults to the leaf of Description
	Kind        Kind
	Source      Source
	Spec        string // Fully-qualified name of the owning spec
}

// DisplayName returns Name, falling back to the description leaf.
func (tc TestCase) DisplayName() string {
	if tc.Name != "" {
		return tc.Name
	}
	return tc.Description.Name()
}

// Cause is the diagnostic payload attached to a failing outcome.
type Cause struct {
	Message string   // May be empty
	Type    string   // Error type or category, e.g. "AssertionError"
	Stack   []string // Stack frames, outermost last
}

// TestResult is the reported outcome of a test case.
type TestResult struct {
	Status   Status
	Duration time.Duration
	Cause    *Cause // Non-nil only for StatusFailure and StatusError
}

// Spec is a named grouping unit owning test cases.
type Spec struct {
	Name string
}

// ResultEntry pairs a description with its result, in result-mapping order.
type ResultEntry struct {
	Description Description
	Result      TestResult
}

// State is the accumulated run state. It is only reachable through the
// Collector, which guards it.
type State struct {
	RunID       string
	Specs       []Spec                // Specs announced at engine start
	StartTime   time.Time             // When the engine started
	TestCases   []TestCase            // Every started test case, in start order (a log, not a set)
	Results     map[string]TestResult // Description key -> result
	ResultOrder []Description         // Descriptions in first-insertion order
	SpecsSeen   int                   // Number of finished specs
	HasErrors   bool                  // Sticky: set on the first failure of any kind
	Finished    bool
	FatalCause  *Cause
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		TestCases:   make([]TestCase, 0),
		Results:     make(map[string]TestResult),
		ResultOrder: make([]Description, 0),
	}
}

// Result returns the recorded result for a description.
func (s *State) Result(d Description) (TestResult, bool) {
	r, ok := s.Results[d.Key()]
	return r, ok
}

// OrderedResults returns the result mapping in first-insertion order.
func (s *State) OrderedResults() []ResultEntry {
	entries := make([]ResultEntry, 0, len(s.ResultOrder))
	for _, d := range s.ResultOrder {
		if r, ok := s.Results[d.Key()]; ok {
			entries = append(entries, ResultEntry{Description: d, Result: r})
		}
	}
	return entries
}

// TestCasesForSpec returns the started test cases owned by spec, in start order.
func (s *State) TestCasesForSpec(spec string) []TestCase {
	cases := make([]TestCase, 0)
	for _, tc := range s.TestCases {
		if tc.Spec == spec {
			cases = append(cases, tc)
		}
	}
	return cases
}

// DistinctSpecCount returns the number of distinct owning specs across all
// started test cases.
func (s *State) DistinctSpecCount() int {
	seen := make(map[string]struct{})
	for _, tc := range s.TestCases {
		seen[tc.Spec] = struct{}{}
	}
	return len(seen)
}
