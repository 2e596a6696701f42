package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"sush/internal/builtin"
	"sush/internal/completer"
	"sush/internal/config"
	"sush/internal/env"
	"sush/internal/painter"
	"sush/internal/prompt"
	"sush/internal/queue"
)

// Shell holds the runtime state of the interactive shell: the readline
// terminal, the environment store and background queue, the runner that
// turns lines into effects, and the bookkeeping sysmon uses to detect
// file-descriptor leaks.
type Shell struct {
	mu            sync.Mutex
	painter       painter.Painter
	terminal      *readline.Instance
	environment   *env.Store
	queue         *queue.Queue
	runner        *Runner
	descriptors   int
	checkCounter  uint
	checkInterval uint
}

// Run starts the main interactive loop: it boots the shell, then
// repeatedly reads a line from the terminal, hands it to the runner, and
// reports any error. It returns once EOF is received or the "exit"
// builtin is executed.
func Run() {

	shell, err := boot()
	if err != nil {
		panic(err)
	}

	defer shell.exit()

	for {

		shell.terminal.Config.AutoComplete = completer.Update()
		shell.terminal.SetPrompt(prompt.Update(shell.painter, shell.environment))

		line, err := shell.terminal.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			} else if errors.Is(err, io.EOF) {
				return
			}
			panic(err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		result, cmdErr := shell.runner.DoCommand(line)
		shell.sysmon(cmdErr)

		if result == builtin.ExitShell {
			return
		}

	}

}

// boot initializes the shell runtime. It loads configuration (falling
// back to defaults on error), creates a readline terminal instance,
// records the baseline number of open file descriptors for later leak
// detection, initializes the environment store and background queue,
// and builds the runner and prompt painter on top of them.
func boot() (*Shell, error) {

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cfg = config.Default()
	}

	readlineCfg := &readline.Config{
		HistoryFile:     cfg.Terminal.HistoryFile,
		HistoryLimit:    cfg.Terminal.HistoryLimit,
		InterruptPrompt: cfg.Terminal.InterruptPrompt,
		EOFPrompt:       "\n" + cfg.Terminal.EOFPrompt,
	}

	terminal, err := readline.NewEx(readlineCfg)
	if err != nil {
		return nil, fmt.Errorf("sush: boot: failed to create new terminal instance: %w", err)
	}

	descriptors, err := os.ReadDir(fmt.Sprintf("/proc/%d/fd", os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("sush: boot: cannot read fd directory: %w", err)
	}

	environment := env.Init(os.Environ())
	q := queue.New(environment, cfg.Queue.TempDir)

	shell := &Shell{
		terminal:      terminal,
		environment:   environment,
		queue:         q,
		runner:        NewRunner(environment, q),
		descriptors:   len(descriptors),
		checkInterval: cfg.Terminal.CheckInterval,
		painter:       painter.NewPainter(cfg.Prompt),
	}

	return shell, nil

}

// exit performs cleanup of the shell runtime: it shuts down the
// background queue (stopping its reaper and deleting every remaining
// job's capture file; a still-running job is not killed), tears down the
// environment store, and closes the readline terminal.
func (shell *Shell) exit() {
	shell.queue.Shutdown()
	shell.environment.Teardown()
	_ = shell.terminal.Close()
}

// sysmon logs a non-nil command error and, every checkInterval commands,
// checks for file descriptor leaks relative to the baseline recorded at
// boot. A leak panics with the PID and the list of currently open
// descriptors, since a shell that leaks fds is corrupted beyond repair.
func (shell *Shell) sysmon(err error) {

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	shell.mu.Lock()
	shell.checkCounter++
	reached := shell.checkCounter == shell.checkInterval && shell.checkInterval != 0
	if reached {
		shell.checkCounter = 0
	}
	shell.mu.Unlock()

	if !reached {
		return
	}

	pid := os.Getpid()
	fdDir := fmt.Sprintf("/proc/%d/fd", pid)
	currDescriptors, err := os.ReadDir(fdDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sysmon: cannot read fd dir:", err)
		return
	}

	if len(currDescriptors) > shell.descriptors {

		openDescriptors := []string{}
		for _, openDescriptor := range currDescriptors {
			openDescriptors = append(openDescriptors, openDescriptor.Name())
		}

		panic(fmt.Errorf(
			"descriptor leak detected: %d file descriptors still open (PID=%d, open fds=%v)",
			len(currDescriptors)-shell.descriptors,
			pid,
			openDescriptors,
		))

	}

}
