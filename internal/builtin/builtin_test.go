package builtin

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sush/internal/env"
	"sush/internal/parser"
	"sush/internal/queue"
)

func newDispatcher(t *testing.T) (*Dispatcher, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	environment := env.Init(os.Environ())
	q := queue.New(environment, "")
	t.Cleanup(q.Shutdown)

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &Dispatcher{Env: environment, Queue: q, Out: out, Err: errOut}, out, errOut
}

func desc(argv ...string) parser.CommandDescriptor {
	return parser.CommandDescriptor{CmdName: argv[0], Argv: argv}
}

func TestIsBuiltin(t *testing.T) {
	assert.True(t, IsBuiltin("cd"))
	assert.True(t, IsBuiltin("status"))
	assert.False(t, IsBuiltin("ls"))
}

func TestSetenvGetenvUnsetenv(t *testing.T) {
	d, out, _ := newDispatcher(t)

	res := d.Execute(desc("setenv", "GREETING", "hi"))
	assert.Equal(t, Success, res)

	res = d.Execute(desc("getenv", "GREETING"))
	assert.Equal(t, Success, res)
	assert.Equal(t, "GREETING=hi\n", out.String())

	res = d.Execute(desc("unsetenv", "GREETING"))
	assert.Equal(t, Success, res)
	assert.False(t, d.Env.Exists("GREETING"))
}

func TestGetenvUnknownVariable(t *testing.T) {
	d, _, errOut := newDispatcher(t)
	res := d.Execute(desc("getenv", "DOES_NOT_EXIST"))
	assert.Equal(t, Error, res)
	assert.Contains(t, errOut.String(), "unknown variable")
}

func TestSetenvWrongArgCount(t *testing.T) {
	d, _, errOut := newDispatcher(t)
	res := d.Execute(desc("setenv", "ONLYONE"))
	assert.Equal(t, Error, res)
	assert.Contains(t, errOut.String(), "wrong number of arguments")
}

func TestPwdAndCd(t *testing.T) {
	d, out, _ := newDispatcher(t)

	start, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(start) })

	tmp := t.TempDir()
	res := d.Execute(desc("cd", tmp))
	require.Equal(t, Success, res)

	res = d.Execute(desc("pwd"))
	require.Equal(t, Success, res)

	resolvedTmp, err := filepath.EvalSymlinks(tmp)
	require.NoError(t, err)
	assert.Contains(t, out.String(), resolvedTmp)

	assert.Equal(t, resolvedTmp, d.Env.Get("PWD"))
}

func TestExitReturnsExitShell(t *testing.T) {
	d, _, _ := newDispatcher(t)
	res := d.Execute(desc("exit"))
	assert.Equal(t, ExitShell, res)
}

func TestQueueStatusOutput(t *testing.T) {
	d, out, _ := newDispatcher(t)

	res := d.Execute(desc("queue", "sleep", "1"))
	require.Equal(t, Success, res)
	assert.Contains(t, out.String(), "job 0 queued")

	res = d.Execute(desc("status"))
	require.Equal(t, Success, res)
}

func TestQueueRejectsPipedCommand(t *testing.T) {
	d, _, errOut := newDispatcher(t)

	queueDesc := desc("queue", "sleep", "1")
	queueDesc.PipeOut = true

	res := d.Execute(queueDesc)
	assert.Equal(t, Error, res)
	assert.Contains(t, errOut.String(), "pipes or redirection")
}

func TestQueueRejectsMissingArgument(t *testing.T) {
	d, _, errOut := newDispatcher(t)

	res := d.Execute(desc("queue", "sleep"))
	assert.Equal(t, Error, res)
	assert.Contains(t, errOut.String(), "wrong number of arguments")
}
