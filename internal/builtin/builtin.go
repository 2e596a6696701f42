// Package builtin implements sush's in-process builtin commands: the
// environment mutators (setenv/getenv/unsetenv), directory/process
// control (cd/pwd/exit), and the background queue's front end
// (queue/status/output/cancel). Builtins never fork; they run directly
// in the shell process.
package builtin

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"sush/internal/env"
	"sush/internal/parser"
	"sush/internal/queue"
	"sush/internal/shellerr"
)

// Result is the outcome of dispatching one builtin.
type Result int

const (
	// Success indicates the builtin ran without error; the REPL keeps
	// prompting.
	Success Result = iota
	// Error indicates the builtin reported a failure; a diagnostic has
	// already been written and the REPL keeps prompting.
	Error
	// ExitShell indicates the `exit` builtin ran; the caller should
	// unwind and terminate.
	ExitShell
)

// names is the closed, name-indexed table of builtins. IsBuiltin does a
// linear scan against it, matching the source's dispatcher contract.
var names = []string{
	"setenv", "getenv", "unsetenv", "cd", "pwd", "exit",
	"queue", "status", "output", "cancel",
}

// IsBuiltin reports whether cmdName names a builtin.
func IsBuiltin(cmdName string) bool {
	for _, name := range names {
		if name == cmdName {
			return true
		}
	}
	return false
}

// Dispatcher executes builtins against a shared environment store and
// background queue.
type Dispatcher struct {
	Env   *env.Store
	Queue *queue.Queue
	Out   io.Writer
	Err   io.Writer
}

// New returns a Dispatcher writing normal output to stdout and
// diagnostics to stderr.
func New(environment *env.Store, q *queue.Queue) *Dispatcher {
	return &Dispatcher{Env: environment, Queue: q, Out: os.Stdout, Err: os.Stderr}
}

// Execute dispatches desc.Argv[0] to its handler. Every wrong arg count
// writes a diagnostic to d.Err and returns Error.
func (d *Dispatcher) Execute(desc parser.CommandDescriptor) Result {
	argv := desc.Argv
	args := argv[1:]

	switch argv[0] {
	case "setenv":
		return d.setenv(args)
	case "getenv":
		return d.getenv(args)
	case "unsetenv":
		return d.unsetenv(args)
	case "cd":
		return d.cd(args)
	case "pwd":
		return d.pwd(args)
	case "exit":
		return d.exit(args)
	case "queue":
		return d.queueCmd(desc)
	case "status":
		return d.status(args)
	case "output":
		return d.output(args)
	case "cancel":
		return d.cancel(args)
	}

	// IsBuiltin gates dispatch; an unreachable name here is a caller
	// bug, not a user-facing error.
	return Success
}

func (d *Dispatcher) fail(format string, a ...any) Result {
	fmt.Fprintf(d.Err, format+"\n", a...)
	return Error
}

func (d *Dispatcher) setenv(args []string) Result {
	if len(args) != 2 {
		return d.fail("%v: setenv NAME VALUE", shellerr.ErrBuiltinArgCount)
	}
	d.Env.Set(args[0], args[1])
	return Success
}

func (d *Dispatcher) getenv(args []string) Result {
	switch len(args) {
	case 0:
		if err := d.Env.Print(d.Out); err != nil {
			return d.fail("sush: getenv: %v", err)
		}
		return Success
	case 1:
		if !d.Env.Exists(args[0]) {
			return d.fail("%v: %s", shellerr.ErrUnknownVariable, args[0])
		}
		fmt.Fprintf(d.Out, "%s=%s\n", args[0], d.Env.Get(args[0]))
		return Success
	default:
		return d.fail("%v: getenv [NAME]", shellerr.ErrBuiltinArgCount)
	}
}

func (d *Dispatcher) unsetenv(args []string) Result {
	if len(args) != 1 {
		return d.fail("%v: unsetenv NAME", shellerr.ErrBuiltinArgCount)
	}
	d.Env.Remove(args[0])
	return Success
}

func (d *Dispatcher) cd(args []string) Result {
	var dir string
	switch len(args) {
	case 0:
		if !d.Env.Exists("HOME") || d.Env.Get("HOME") == "" {
			return d.fail("%v", shellerr.ErrNoHome)
		}
		dir = d.Env.Get("HOME")
	case 1:
		dir = args[0]
	default:
		return d.fail("%v: cd [DIR]", shellerr.ErrBuiltinArgCount)
	}

	if err := os.Chdir(dir); err != nil {
		return d.fail("sush: cd: %v", err)
	}

	// PWD is refreshed from the resolved cwd whether dir was relative
	// or absolute (spec.md §9, Open Question resolved in SPEC_FULL.md).
	if pwd, err := os.Getwd(); err == nil {
		d.Env.Set("PWD", pwd)
	}

	return Success
}

func (d *Dispatcher) pwd(args []string) Result {
	if len(args) != 0 {
		return d.fail("%v: pwd", shellerr.ErrBuiltinArgCount)
	}
	dir, err := os.Getwd()
	if err != nil {
		return d.fail("sush: pwd: %v", err)
	}
	fmt.Fprintln(d.Out, dir)
	return Success
}

func (d *Dispatcher) exit(args []string) Result {
	if len(args) != 0 {
		return d.fail("%v: exit", shellerr.ErrBuiltinArgCount)
	}
	return ExitShell
}

func (d *Dispatcher) queueCmd(desc parser.CommandDescriptor) Result {
	args := desc.Argv[1:]
	if len(args) < 2 {
		return d.fail("%v: queue CMD ARG...", shellerr.ErrBuiltinArgCount)
	}

	wrapped := parser.CommandDescriptor{
		CmdName: args[0],
		Argv:    args,
		PipeIn:  desc.PipeIn,
		PipeOut: desc.PipeOut,
		// The open question in spec.md §9 over the queue's duplicated
		// file_in check resolves to file_in + file_out: reject the
		// wrapped command if it carries either redirection as well as
		// a pipe on either side.
		StdinKind:  desc.StdinKind,
		StdinPath:  desc.StdinPath,
		StdoutKind: desc.StdoutKind,
		StdoutPath: desc.StdoutPath,
	}

	jobID, err := d.Queue.Enqueue(wrapped)
	if err != nil {
		return d.fail("%v", err)
	}
	fmt.Fprintf(d.Out, "job %d queued\n", jobID)
	return Success
}

func (d *Dispatcher) status(args []string) Result {
	if len(args) != 0 {
		return d.fail("%v: status", shellerr.ErrBuiltinArgCount)
	}
	for _, line := range d.Queue.Status() {
		switch line.State {
		case "running":
			fmt.Fprintf(d.Out, "job %d: running as pid %d (%s)\n", line.JobID, line.Pid, line.CmdName)
		case "complete":
			fmt.Fprintf(d.Out, "job %d: complete\n", line.JobID)
		default:
			fmt.Fprintf(d.Out, "job %d: queued\n", line.JobID)
		}
	}
	return Success
}

func (d *Dispatcher) output(args []string) Result {
	if len(args) != 1 {
		return d.fail("%v: output JOB_ID", shellerr.ErrBuiltinArgCount)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return d.fail("sush: output: %s: not a job id", args[0])
	}
	if err := d.Queue.Output(id, d.Out); err != nil {
		return d.fail("%v", err)
	}
	return Success
}

func (d *Dispatcher) cancel(args []string) Result {
	if len(args) != 1 {
		return d.fail("%v: cancel JOB_ID", shellerr.ErrBuiltinArgCount)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return d.fail("sush: cancel: %s: not a job id", args[0])
	}
	if err := d.Queue.Cancel(id); err != nil {
		return d.fail("%v", err)
	}
	return Success
}
