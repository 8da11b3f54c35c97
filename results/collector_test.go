package results

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCase(spec string, path ...string) TestCase {
	return TestCase{
		Description: NewDescription(append([]string{spec}, path...)...),
		Kind:        KindTest,
		Spec:        spec,
		Source:      Source{File: "SpecA.kt", Line: 10},
	}
}

func TestCollectorRecordsStartTime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	collector := NewCollector(WithClock(func() time.Time { return start }))

	collector.OnEngineStarted([]Spec{{Name: "SpecA"}})

	collector.WithState(func(s *State) {
		assert.Equal(t, start, s.StartTime)
		assert.NotEmpty(t, s.RunID)
		assert.Equal(t, []Spec{{Name: "SpecA"}}, s.Specs)
	})
}

func TestCollectorDuplicateStartsAreLogged(t *testing.T) {
	collector := NewCollector()
	tc := testCase("SpecA", "t1")

	collector.OnTestStarted(tc)
	collector.OnTestStarted(tc)

	collector.WithState(func(s *State) {
		assert.Len(t, s.TestCases, 2)
	})
}

func TestCollectorUpsertKeepsOneEntryPerDescription(t *testing.T) {
	collector := NewCollector()
	tc := testCase("SpecA", "t1")

	collector.OnTestStarted(tc)
	collector.OnTestFinished(tc, TestResult{Status: StatusFailure, Cause: &Cause{Message: "first"}})
	collector.OnTestFinished(tc, TestResult{Status: StatusSuccess})

	collector.WithState(func(s *State) {
		require.Len(t, s.Results, 1)
		require.Len(t, s.ResultOrder, 1)
		r, ok := s.Result(tc.Description)
		require.True(t, ok)
		assert.Equal(t, StatusSuccess, r.Status)
	})
	// The flag stays raised even though the later report passed.
	assert.True(t, collector.HasErrors())
}

func TestCollectorHasErrorsIsSticky(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{"success", StatusSuccess, false},
		{"ignored", StatusIgnored, false},
		{"failure", StatusFailure, true},
		{"error", StatusError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := NewCollector()
			tc := testCase("SpecA", "t1")
			collector.OnTestStarted(tc)
			collector.OnTestFinished(tc, TestResult{Status: tt.status})
			assert.Equal(t, tt.want, collector.HasErrors())

			other := testCase("SpecA", "t2")
			collector.OnTestStarted(other)
			collector.OnTestFinished(other, TestResult{Status: StatusSuccess})
			assert.Equal(t, tt.want, collector.HasErrors())
		})
	}
}

func TestCollectorSpecInstantiationErrorSetsFlag(t *testing.T) {
	collector := NewCollector()
	require.False(t, collector.HasErrors())

	collector.OnSpecInstantiationError(Spec{Name: "SpecB"}, &Cause{Message: "ctor failed"})
	assert.True(t, collector.HasErrors())

	collector.OnSpecInstantiationError(Spec{Name: "SpecC"}, nil)
	assert.True(t, collector.HasErrors())
}

func TestCollectorRecordResultDoesNotOverwrite(t *testing.T) {
	collector := NewCollector()
	tc := testCase("SpecA", "t1")
	collector.OnTestFinished(tc, TestResult{Status: StatusIgnored})

	got := collector.RecordResult(tc, TestResult{Status: StatusFailure})
	assert.Equal(t, StatusIgnored, got.Status)
	assert.False(t, collector.HasErrors())

	fresh := testCase("SpecA", "t2")
	got = collector.RecordResult(fresh, TestResult{Status: StatusError})
	assert.Equal(t, StatusError, got.Status)
	assert.True(t, collector.HasErrors())
}

func TestCollectorFinishWithoutStartIsLogged(t *testing.T) {
	collector := NewCollector()
	started := testCase("SpecA", "t1")
	orphan := testCase("SpecA", "t2")

	collector.OnTestStarted(started)
	collector.OnTestFinished(started, TestResult{Status: StatusSuccess})
	collector.OnTestFinished(orphan, TestResult{Status: StatusSuccess})
	collector.OnTestFinished(orphan, TestResult{Status: StatusFailure, Cause: &Cause{}})

	collector.WithState(func(s *State) {
		assert.Equal(t, []TestCase{started, orphan}, s.TestCases)
		assert.Len(t, s.Results, 2)
		assert.Equal(t, 1, s.DistinctSpecCount())
	})
}

func TestCollectorNegativeDurationClamped(t *testing.T) {
	collector := NewCollector()
	tc := testCase("SpecA", "t1")
	collector.OnTestFinished(tc, TestResult{Status: StatusSuccess, Duration: -time.Second})

	r, ok := collector.Lookup(tc.Description)
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), r.Duration)
}

func TestCollectorFinishKeepsFatalCause(t *testing.T) {
	collector := NewCollector()
	fatal := &Cause{Message: "engine crashed"}

	collector.Finish(fatal)
	collector.Finish(&Cause{Message: "later"})

	assert.Same(t, fatal, collector.FatalCause())
	assert.False(t, collector.HasErrors())
}

func TestCollectorSpecOrdinals(t *testing.T) {
	collector := NewCollector()
	assert.Equal(t, 1, collector.NextSpecOrdinal())
	assert.Equal(t, 2, collector.NextSpecOrdinal())
	assert.Equal(t, 3, collector.NextSpecOrdinal())
}

func TestCollectorConcurrentHooks(t *testing.T) {
	collector := NewCollector()
	collector.OnEngineStarted(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tc := testCase("SpecA", "t", string(rune('a'+i%26)), time.Duration(i).String())
			collector.OnTestStarted(tc)
			status := StatusSuccess
			if i == 17 {
				status = StatusError
			}
			collector.OnTestFinished(tc, TestResult{Status: status})
			_ = collector.HasErrors()
		}(i)
	}
	wg.Wait()

	collector.WithState(func(s *State) {
		assert.Len(t, s.TestCases, 50)
		assert.Len(t, s.Results, 50)
		assert.Len(t, s.ResultOrder, 50)
	})
	assert.True(t, collector.HasErrors())
}

func TestStateViews(t *testing.T) {
	collector := NewCollector()
	a1 := testCase("SpecA", "t1")
	b1 := testCase("SpecB", "t1")
	a2 := testCase("SpecA", "group", "t2")

	for _, tc := range []TestCase{a1, b1, a2} {
		collector.OnTestStarted(tc)
	}
	collector.OnTestFinished(a2, TestResult{Status: StatusSuccess})
	collector.OnTestFinished(a1, TestResult{Status: StatusSuccess})

	collector.WithState(func(s *State) {
		assert.Equal(t, []TestCase{a1, a2}, s.TestCasesForSpec("SpecA"))
		assert.Equal(t, 2, s.DistinctSpecCount())

		ordered := s.OrderedResults()
		require.Len(t, ordered, 2)
		assert.Equal(t, a2.Description, ordered[0].Description)
		assert.Equal(t, a1.Description, ordered[1].Description)
	})
}
