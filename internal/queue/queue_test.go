package queue

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sush/internal/env"
	"sush/internal/parser"
	"sush/internal/shellerr"
)

func newQueue(t *testing.T) *Queue {
	t.Helper()
	environment := env.Init(os.Environ())
	q := New(environment, "")
	t.Cleanup(q.Shutdown)
	return q
}

func TestEnqueueRejectsPipedCommand(t *testing.T) {
	q := newQueue(t)
	desc := parser.CommandDescriptor{CmdName: "true", Argv: []string{"true"}, PipeOut: true}

	_, err := q.Enqueue(desc)
	assert.ErrorIs(t, err, shellerr.ErrQueueReject)
}

func TestEnqueueRejectsExistingRedirection(t *testing.T) {
	q := newQueue(t)
	desc := parser.CommandDescriptor{
		CmdName:    "true",
		Argv:       []string{"true"},
		StdoutKind: parser.StdoutTrunc,
		StdoutPath: "/tmp/whatever",
	}

	_, err := q.Enqueue(desc)
	assert.ErrorIs(t, err, shellerr.ErrQueueReject)
}

func TestEnqueueAssignsSequentialJobIDs(t *testing.T) {
	q := newQueue(t)

	id1, err := q.Enqueue(parser.CommandDescriptor{CmdName: "true", Argv: []string{"true"}})
	require.NoError(t, err)
	id2, err := q.Enqueue(parser.CommandDescriptor{CmdName: "true", Argv: []string{"true"}})
	require.NoError(t, err)

	assert.Equal(t, id1+1, id2)
}

func TestOutputUnknownJob(t *testing.T) {
	q := newQueue(t)
	err := q.Output(999, io.Discard)
	assert.ErrorIs(t, err, shellerr.ErrNoSuchJob)
}

func TestCancelUnknownJob(t *testing.T) {
	q := newQueue(t)
	err := q.Cancel(999)
	assert.ErrorIs(t, err, shellerr.ErrNoSuchJob)
}

func TestJobCompletesAndOutputIsReadable(t *testing.T) {
	q := newQueue(t)

	id, err := q.Enqueue(parser.CommandDescriptor{CmdName: "echo", Argv: []string{"echo", "queued output"}})
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	var statusLine StatusLine
	for time.Now().Before(deadline) {
		for _, line := range q.Status() {
			if line.JobID == id && line.State == "complete" {
				statusLine = line
			}
		}
		if statusLine.State == "complete" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, "complete", statusLine.State)

	buf := &bytes.Buffer{}
	require.NoError(t, q.Output(id, buf))
	assert.Contains(t, buf.String(), "queued output")
}
