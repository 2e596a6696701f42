package parser

import (
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSplitsOnPipe(t *testing.T) {
	pipeline, err := Parse("ls -la | grep foo")
	require.NoError(t, err)
	require.Len(t, pipeline, 2)
	assert.Equal(t, "ls", pipeline[0].CmdName)
	assert.Equal(t, "grep", pipeline[1].CmdName)
}

func TestParseExpandsEnvVariable(t *testing.T) {
	t.Setenv("GREETING", "hello")
	pipeline, err := Parse("echo $GREETING")
	require.NoError(t, err)
	require.Len(t, pipeline, 1)
	assert.Equal(t, []string{"echo", "hello"}, pipeline[0].Argv)
}

func TestParseExpandsPIDMarkers(t *testing.T) {
	pipeline, err := Parse("echo $$")
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", strconv.Itoa(os.Getpid())}, pipeline[0].Argv)
}

func TestParseUnboundVariableExpandsEmpty(t *testing.T) {
	pipeline, err := Parse("echo $SOME_VAR_THAT_IS_NOT_SET")
	require.NoError(t, err)
	assert.Equal(t, []string{"echo"}, pipeline[0].Argv)
}

func TestSegmentCount(t *testing.T) {
	assert.Equal(t, 1, SegmentCount("ls -la"))
	assert.Equal(t, 2, SegmentCount("ls -la | grep foo"))
	assert.Equal(t, 3, SegmentCount("ls | grep foo | wc -l"))
}
