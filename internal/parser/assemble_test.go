package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleSimplePipeline(t *testing.T) {
	pipeline, err := Assemble([]string{"ls -la", "grep foo"})
	require.NoError(t, err)
	require.Len(t, pipeline, 2)

	assert.Equal(t, "ls", pipeline[0].CmdName)
	assert.False(t, pipeline[0].PipeIn)
	assert.True(t, pipeline[0].PipeOut)

	assert.Equal(t, "grep", pipeline[1].CmdName)
	assert.True(t, pipeline[1].PipeIn)
	assert.False(t, pipeline[1].PipeOut)
}

func TestAssembleRedirections(t *testing.T) {
	pipeline, err := Assemble([]string{"sort < in.txt > out.txt"})
	require.NoError(t, err)
	require.Len(t, pipeline, 1)

	desc := pipeline[0]
	assert.Equal(t, StdinFile, desc.StdinKind)
	assert.Equal(t, "in.txt", desc.StdinPath)
	assert.Equal(t, StdoutTrunc, desc.StdoutKind)
	assert.Equal(t, "out.txt", desc.StdoutPath)
}

func TestAssembleAppendRedirection(t *testing.T) {
	pipeline, err := Assemble([]string{"echo hi >> log.txt"})
	require.NoError(t, err)
	assert.Equal(t, StdoutAppend, pipeline[0].StdoutKind)
}

func TestAssembleRejectsEmptySegment(t *testing.T) {
	_, err := Assemble([]string{"   "})
	assert.Error(t, err)
}

func TestAssembleRejectsTrailingRedirection(t *testing.T) {
	_, err := Assemble([]string{"cat >"})
	assert.Error(t, err)
}

func TestAssembleRejectsDuplicateStdout(t *testing.T) {
	_, err := Assemble([]string{"cat > a.txt > b.txt"})
	assert.Error(t, err)
}

func TestAssembleRejectsRedirectionOnPipedChannel(t *testing.T) {
	// First segment's stdout is piped; an explicit ">" on it is a
	// channel conflict.
	_, err := Assemble([]string{"ls > out.txt", "grep foo"})
	assert.Error(t, err)
}
