package engine

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ansel1/specreport/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startedLine = `{"Time":"2024-01-01T00:00:00Z","Action":"testStarted","Test":{"Path":["SpecA","t1"]}}`
const finishedLine = `{"Time":"2024-01-01T00:00:01Z","Action":"testFinished","Test":{"Path":["SpecA","t1"]},"Result":{"Status":"Success","Elapsed":1.5}}`

func collect(events <-chan Event) []Event {
	var collected []Event
	for evt := range events {
		collected = append(collected, evt)
	}
	return collected
}

func TestEngine_Stream_ParsesLifecycleEvents(t *testing.T) {
	eng := NewEngine()
	collected := collect(eng.Stream(strings.NewReader(startedLine + "\n" + finishedLine)))

	require.Len(t, collected, 3)

	assert.Equal(t, EventLifecycle, collected[0].Type)
	assert.Equal(t, parser.ActionTestStarted, collected[0].Lifecycle.Action)

	assert.Equal(t, EventLifecycle, collected[1].Type)
	assert.Equal(t, parser.ActionTestFinished, collected[1].Lifecycle.Action)
	assert.Equal(t, 1.5, collected[1].Lifecycle.Result.Elapsed)

	assert.Equal(t, EventComplete, collected[2].Type)
}

func TestEngine_Stream_HandlesNonEventLines(t *testing.T) {
	input := "Compiling specs...\n" +
		startedLine + "\n" +
		`{"Action":"somethingElse"}` + "\n" +
		finishedLine

	eng := NewEngine()
	collected := collect(eng.Stream(strings.NewReader(input)))

	require.Len(t, collected, 5)
	assert.Equal(t, EventRawLine, collected[0].Type)
	assert.Equal(t, "Compiling specs...", string(collected[0].RawLine))
	assert.Equal(t, EventLifecycle, collected[1].Type)
	assert.Equal(t, EventRawLine, collected[2].Type)
	assert.Equal(t, `{"Action":"somethingElse"}`, string(collected[2].RawLine))
	assert.Equal(t, EventLifecycle, collected[3].Type)
	assert.Equal(t, EventComplete, collected[4].Type)
}

func TestEngine_Stream_WritesCaptureFiles(t *testing.T) {
	input := "Non-event line\n" + startedLine

	var rawBuf, jsonBuf bytes.Buffer
	eng := NewEngine(WithRawOutput(&rawBuf), WithJSONOutput(&jsonBuf))
	collect(eng.Stream(strings.NewReader(input)))

	assert.Equal(t, "Non-event line\n"+startedLine+"\n", rawBuf.String())
	assert.Equal(t, startedLine+"\n", jsonBuf.String())
}

func TestEngine_Stream_EmptyInput(t *testing.T) {
	collected := collect(NewEngine().Stream(strings.NewReader("")))

	require.Len(t, collected, 1)
	assert.Equal(t, EventComplete, collected[0].Type)
}

// errReader simulates a reader that returns an error
type errReader struct{}

func (e errReader) Read(p []byte) (n int, err error) {
	return 0, errors.New("simulated read error")
}

func TestEngine_Stream_HandlesReadError(t *testing.T) {
	collected := collect(NewEngine().Stream(errReader{}))

	require.Len(t, collected, 2)
	assert.Equal(t, EventError, collected[0].Type)
	assert.Error(t, collected[0].Error)
	assert.Equal(t, EventComplete, collected[1].Type)
}

func TestEngine_Stream_CopiesLineBuffer(t *testing.T) {
	collected := collect(NewEngine().Stream(strings.NewReader("line1\nline2\nline3")))

	var rawLines []string
	for _, evt := range collected {
		if evt.Type == EventRawLine {
			rawLines = append(rawLines, string(evt.RawLine))
		}
	}
	assert.Equal(t, []string{"line1", "line2", "line3"}, rawLines)
}

func TestEngine_Stream_LongLines(t *testing.T) {
	frames := make([]string, 0, 5000)
	for i := 0; i < 5000; i++ {
		frames = append(frames, `"at com.example.Deep.frame(Deep.kt:1)"`)
	}
	line := `{"Action":"testFinished","Test":{"Path":["A","t"]},"Result":{"Status":"Error","Cause":{"Stack":[` +
		strings.Join(frames, ",") + `]}}}`
	require.Greater(t, len(line), 64*1024)

	collected := collect(NewEngine().Stream(strings.NewReader(line)))

	require.Len(t, collected, 2)
	require.Equal(t, EventLifecycle, collected[0].Type)
	assert.Len(t, collected[0].Lifecycle.Result.Cause.Stack, 5000)
}

func TestReplayReader_SleepsBetweenEvents(t *testing.T) {
	input := startedLine + "\nraw output\n" + finishedLine + "\n"

	r, err := NewReplayReader(strings.NewReader(input), 0.5)
	require.NoError(t, err)
	var slept []time.Duration
	r.sleep = func(d time.Duration) { slept = append(slept, d) }

	out, err := io.ReadAll(r)
	require.NoError(t, err)

	assert.Equal(t, input, string(out))
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, slept)
}

func TestReplayReader_RateZeroDoesNotSleep(t *testing.T) {
	r, err := NewReplayReader(strings.NewReader(startedLine+"\n"+finishedLine), 0)
	require.NoError(t, err)
	r.sleep = func(time.Duration) { t.Fatal("unexpected sleep") }

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, startedLine+"\n"+finishedLine+"\n", string(out))
}

func TestReplayReader_SmallReads(t *testing.T) {
	r, err := NewReplayReader(strings.NewReader("abcdef\nxy"), 0)
	require.NoError(t, err)

	buf := make([]byte, 4)
	var out []byte
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, "abcdef\nxy\n", string(out))
}
