package parser

import "os"

// StdinKind classifies where a command descriptor's standard input comes
// from.
type StdinKind int

const (
	StdinDefault StdinKind = iota
	StdinFile
)

// StdoutKind classifies where a command descriptor's standard output
// goes.
type StdoutKind int

const (
	StdoutDefault StdoutKind = iota
	StdoutTrunc
	StdoutAppend
)

// CommandDescriptor is one segment of a pipeline: an argv plus its input
// source, output sink, and pipe neighbors. Runtime-only fields (FileIn,
// FileOut) are populated by the execution engine when it opens
// redirection targets, and are zero otherwise.
type CommandDescriptor struct {
	CmdName string
	Argv    []string

	PipeIn  bool
	PipeOut bool

	StdinKind  StdinKind
	StdinPath  string
	StdoutKind StdoutKind
	StdoutPath string

	// FileIn/FileOut are opened by the engine immediately before fork
	// and closed after being duplicated into the child's standard
	// streams. They are nil until the engine opens them.
	FileIn  *os.File
	FileOut *os.File
}

// Pipeline is a left-to-right ordered, non-empty sequence of command
// descriptors connected by anonymous pipes.
type Pipeline []CommandDescriptor
