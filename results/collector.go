package results

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Collector accumulates the test cases and results reported during a run.
//
// The Collector is the single source of truth for run state. State only ever
// grows: test cases are appended, results are upserted, and the error flag is
// sticky. All mutation and all reads go through the Collector's lock; callers
// that need to read nested maps or slices use WithState so the lock is held
// for the whole access.
type Collector struct {
	state   *State
	started map[string]struct{} // Description keys present in state.TestCases
	mu      sync.RWMutex
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger used for diagnostic output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the clock used for the start timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCollector creates a new result collector.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		state:   NewState(),
		started: make(map[string]struct{}),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now returns the current time according to the collector's clock.
func (c *Collector) Now() time.Time {
	return c.now()
}

// OnEngineStarted records the start of the run and the announced specs.
func (c *Collector) OnEngineStarted(specs []Spec) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.StartTime.IsZero() {
		c.logger.Warn("engine started more than once; keeping the first start time")
		c.state.Specs = append(c.state.Specs, specs...)
		return
	}

	c.state.RunID = uuid.NewString()
	c.state.StartTime = c.now()
	c.state.Specs = append(c.state.Specs, specs...)
	c.logger.Debug("engine started",
		zap.String("run_id", c.state.RunID),
		zap.Int("specs", len(specs)))
}

// OnTestStarted appends tc to the log of started test cases. Duplicate starts
// are appended again.
func (c *Collector) OnTestStarted(tc TestCase) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.appendStartedLocked(tc)
	c.logger.Debug("test started",
		zap.String("spec", tc.Spec),
		zap.String("test", tc.Description.FullName()))
}

// OnTestFinished upserts the result for tc and raises the error flag for
// failures. A test that finishes without having started is logged as started
// first, so every counted result also gets a report line.
func (c *Collector) OnTestFinished(tc TestCase, result TestResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.started[tc.Description.Key()]; !ok {
		c.logger.Warn("test finished without being started",
			zap.String("spec", tc.Spec),
			zap.String("test", tc.Description.FullName()))
		c.appendStartedLocked(tc)
	}
	c.upsertLocked(tc.Description, result)
	c.logger.Debug("test finished",
		zap.String("spec", tc.Spec),
		zap.String("test", tc.Description.FullName()),
		zap.Stringer("status", result.Status),
		zap.Duration("duration", result.Duration))
}

// RecordResult stores result for tc only if no result has been recorded for
// its description yet. It returns the result now on record.
func (c *Collector) RecordResult(tc TestCase, result TestResult) TestResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.state.Results[tc.Description.Key()]; ok {
		return existing
	}
	c.upsertLocked(tc.Description, result)
	return result
}

func (c *Collector) appendStartedLocked(tc TestCase) {
	c.state.TestCases = append(c.state.TestCases, tc)
	c.started[tc.Description.Key()] = struct{}{}
}

// upsertLocked must be called with the write lock held.
func (c *Collector) upsertLocked(d Description, result TestResult) {
	if result.Duration < 0 {
		result.Duration = 0
	}
	key := d.Key()
	if _, exists := c.state.Results[key]; !exists {
		c.state.ResultOrder = append(c.state.ResultOrder, d)
	}
	c.state.Results[key] = result
	if result.Status.IsFailed() {
		c.state.HasErrors = true
	}
}

// OnSpecInstantiationError raises the error flag for a spec that could not be
// constructed.
func (c *Collector) OnSpecInstantiationError(spec Spec, cause *Cause) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.HasErrors = true
	msg := ""
	if cause != nil {
		msg = cause.Message
	}
	c.logger.Debug("spec instantiation failed",
		zap.String("spec", spec.Name),
		zap.String("cause", msg))
}

// NextSpecOrdinal counts a finished spec and returns its 1-based ordinal.
func (c *Collector) NextSpecOrdinal() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.SpecsSeen++
	return c.state.SpecsSeen
}

// Finish marks the run as finished and records the engine-level fatal cause,
// if any. The cause is kept for the caller; it does not touch the error flag.
func (c *Collector) Finish(fatal *Cause) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Finished = true
	if fatal != nil && c.state.FatalCause == nil {
		c.state.FatalCause = fatal
	}
}

// HasErrors reports whether any failure, error or spec instantiation error
// has been observed.
func (c *Collector) HasErrors() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.HasErrors
}

// FatalCause returns the engine-level fatal cause passed to Finish, or nil.
func (c *Collector) FatalCause() *Cause {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.FatalCause
}

// Lookup returns the recorded result for a description.
func (c *Collector) Lookup(d Description) (TestResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.Result(d)
}

// WithState executes fn with the state while holding RLock.
// This ensures thread-safe access to the state and all nested structures
// (maps, slices, etc.) for the entire duration of the callback. fn must not
// modify the state.
func (c *Collector) WithState(fn func(*State)) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fn(c.state)
}
