// Package shell wires together the parser, builtin dispatcher, execution
// engine, and background queue into the runner facade (do_command), and
// hosts the interactive read-eval-print loop on top of it.
package shell

import (
	"sush/internal/builtin"
	"sush/internal/engine"
	"sush/internal/env"
	"sush/internal/parser"
	"sush/internal/queue"
)

// Runner turns one input line into running processes or a builtin
// effect. It is the spec's "runner facade" (G).
type Runner struct {
	Env      *env.Store
	Queue    *queue.Queue
	dispatch *builtin.Dispatcher
}

// NewRunner creates a Runner over a freshly initialized environment
// store and background queue.
func NewRunner(environment *env.Store, q *queue.Queue) *Runner {
	return &Runner{
		Env:      environment,
		Queue:    q,
		dispatch: builtin.New(environment, q),
	}
}

// DoCommand tokenizes and assembles line, then dispatches it: to the
// builtin table if the first segment's command is a builtin, otherwise
// to the execution engine for the whole pipeline. Descriptors opened
// along the way (redirection files) are released by the engine/builtin
// dispatcher as they're consumed; Go's GC reclaims the rest, so there is
// no separate free pass over the pipeline itself.
func (r *Runner) DoCommand(line string) (builtin.Result, error) {
	pipeline, err := parser.Parse(line)
	if err != nil {
		return builtin.Error, err
	}
	if len(pipeline) == 0 {
		return builtin.Success, nil
	}

	if builtin.IsBuiltin(pipeline[0].CmdName) {
		return r.dispatch.Execute(pipeline[0]), nil
	}

	if err := engine.Run(pipeline, r.Env); err != nil {
		return builtin.Error, err
	}
	return builtin.Success, nil
}
