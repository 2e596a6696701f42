// Package shellerr defines sentinel errors for sush's error taxonomy, so
// callers can classify failures with errors.Is instead of matching
// message text.
package shellerr

import "errors"

var (
	// ErrMalformedCmdline is raised by the command assembler: a trailing
	// redirection operator, two redirections of the same direction on
	// one segment, or an empty argv.
	ErrMalformedCmdline = errors.New("sush: malformed command line")

	// ErrBuiltinArgCount is raised when a builtin is called with an
	// unsupported number of arguments.
	ErrBuiltinArgCount = errors.New("sush: wrong number of arguments")

	// ErrUnknownVariable is raised by getenv NAME when NAME is unbound.
	ErrUnknownVariable = errors.New("sush: unknown variable")

	// ErrNoHome is raised by cd with no arguments when HOME is unset.
	ErrNoHome = errors.New("sush: HOME not set")

	// ErrBadFile is raised when the engine fails to open a redirection
	// target (missing input file, unwritable output path, ...).
	ErrBadFile = errors.New("sush: cannot open file")

	// ErrQueueReject is raised when `queue` is asked to background a
	// command that already carries a pipe or file redirection.
	ErrQueueReject = errors.New("sush: queue: command may not use pipes or redirection")

	// ErrOutputStillQueued is raised by `output N` for a job that has
	// not started running yet.
	ErrOutputStillQueued = errors.New("sush: output: job is still queued")

	// ErrOutputStillRunning is raised by `output N` for a job that is
	// currently running.
	ErrOutputStillRunning = errors.New("sush: output: job is still running")

	// ErrCancelAlreadyDone is raised by `cancel N` for a job that has
	// already completed.
	ErrCancelAlreadyDone = errors.New("sush: cancel: job already finished")

	// ErrNoSuchJob is raised by output/cancel lookups against an unknown
	// job id.
	ErrNoSuchJob = errors.New("sush: no such job")

	// ErrExecLaunchFailed wraps a failed PATH-searching program launch.
	ErrExecLaunchFailed = errors.New("sush: exec failed")
)
