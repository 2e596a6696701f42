// Package queue implements sush's background job queue: a serialized,
// single-worker queue fed by the `queue` builtin. It runs one job at a
// time, captures the job's stdout to a temporary file, and advances
// itself from a SIGCHLD-driven reaper rather than blocking the prompt.
package queue

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	ps "github.com/mitchellh/go-ps"

	"sush/internal/engine"
	"sush/internal/env"
	"sush/internal/parser"
	"sush/internal/shellerr"
)

// Item is one queued or running background job.
type Item struct {
	JobID    int
	Desc     parser.CommandDescriptor
	Pid      int
	Complete bool
	OutFile  string
}

// StatusLine is one row of a Status() report.
type StatusLine struct {
	JobID   int
	State   string // "queued", "running", or "complete"
	Pid     int
	CmdName string
}

// Queue serializes background job execution: at most one item has a
// nonzero Pid and is not yet Complete.
type Queue struct {
	mu          sync.Mutex
	items       []*Item
	nextID      int
	environment *env.Store
	tempDir     string

	sigCh  chan os.Signal
	stopCh chan struct{}
}

// New creates a Queue bound to environment (used for each job's child
// process environment) and starts its SIGCHLD-driven reaper goroutine.
// Capture files are created under tempDir; an empty tempDir falls back
// to os.TempDir().
func New(environment *env.Store, tempDir string) *Queue {
	q := &Queue{
		environment: environment,
		tempDir:     tempDir,
		sigCh:       make(chan os.Signal, 16),
		stopCh:      make(chan struct{}),
	}
	signal.Notify(q.sigCh, syscall.SIGCHLD)
	go q.reap()
	return q
}

// Enqueue validates desc, rewrites its stdin/stdout to /dev/null and a
// fresh temp file, assigns the next job id, appends it to the queue, and
// starts it immediately if no job is currently running. It returns the
// assigned job id.
func (q *Queue) Enqueue(desc parser.CommandDescriptor) (int, error) {
	if desc.PipeIn || desc.PipeOut || desc.StdinKind != parser.StdinDefault || desc.StdoutKind != parser.StdoutDefault {
		return 0, shellerr.ErrQueueReject
	}

	outFile, err := newTempFile(q.tempDir)
	if err != nil {
		return 0, fmt.Errorf("sush: queue: %w", err)
	}

	desc.StdinKind = parser.StdinFile
	desc.StdinPath = os.DevNull
	desc.StdoutKind = parser.StdoutTrunc
	desc.StdoutPath = outFile

	q.mu.Lock()
	defer q.mu.Unlock()

	id := q.nextID
	q.nextID++

	item := &Item{JobID: id, Desc: desc, OutFile: outFile}
	q.items = append(q.items, item)

	if !q.runningLocked() {
		q.startLocked(item)
	}

	return id, nil
}

// Status returns one StatusLine per queued/running/complete item, in
// enqueue order.
func (q *Queue) Status() []StatusLine {
	q.mu.Lock()
	defer q.mu.Unlock()

	lines := make([]StatusLine, 0, len(q.items))
	for _, item := range q.items {
		state := "queued"
		switch {
		case item.Complete:
			state = "complete"
		case item.Pid != 0:
			state = "running"
		}
		lines = append(lines, StatusLine{
			JobID:   item.JobID,
			State:   state,
			Pid:     item.Pid,
			CmdName: executableName(item.Pid, item.Desc.CmdName),
		})
	}
	return lines
}

// Output streams the captured output of a complete job to w, then
// deletes the temp file and removes the job from the queue. It returns
// ErrOutputStillQueued / ErrOutputStillRunning for jobs that have not
// finished, or ErrNoSuchJob for an unknown id.
func (q *Queue) Output(jobID int, w io.Writer) error {
	q.mu.Lock()
	item, idx := q.findLocked(jobID)
	if item == nil {
		q.mu.Unlock()
		return shellerr.ErrNoSuchJob
	}
	if !item.Complete {
		q.mu.Unlock()
		if item.Pid == 0 {
			return shellerr.ErrOutputStillQueued
		}
		return shellerr.ErrOutputStillRunning
	}
	q.items = append(q.items[:idx], q.items[idx+1:]...)
	q.mu.Unlock()

	f, err := os.Open(item.OutFile)
	if err != nil {
		return fmt.Errorf("sush: output: %w", err)
	}
	_, copyErr := io.Copy(w, f)
	f.Close()
	os.Remove(item.OutFile)
	if copyErr != nil {
		return fmt.Errorf("sush: output: %w", copyErr)
	}
	return nil
}

// Cancel terminates a running job (SIGKILL; cleanup completes
// asynchronously via the reaper) or removes a still-queued job
// immediately. It returns ErrCancelAlreadyDone for a finished job or
// ErrNoSuchJob for an unknown id.
func (q *Queue) Cancel(jobID int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, idx := q.findLocked(jobID)
	if item == nil {
		return shellerr.ErrNoSuchJob
	}
	if item.Complete {
		return shellerr.ErrCancelAlreadyDone
	}
	if item.Pid != 0 {
		return syscall.Kill(item.Pid, syscall.SIGKILL)
	}

	q.items = append(q.items[:idx], q.items[idx+1:]...)
	os.Remove(item.OutFile)
	return nil
}

// Shutdown stops the reaper and deletes every remaining item's temp
// file. The Queue must not be used afterward.
func (q *Queue) Shutdown() {
	signal.Stop(q.sigCh)
	close(q.stopCh)

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, item := range q.items {
		os.Remove(item.OutFile)
	}
	q.items = nil
}

// runningLocked reports whether some item has a nonzero pid and is not
// yet complete. It replaces a standalone "job_running" flag with a
// direct query over the queue, per spec.md §9's own recommendation.
func (q *Queue) runningLocked() bool {
	for _, item := range q.items {
		if item.Pid != 0 && !item.Complete {
			return true
		}
	}
	return false
}

// startLocked launches item's command via the execution engine. Launch
// failure marks the item complete immediately (with no pid ever
// assigned) and tries the next eligible item so one bad job cannot wedge
// the queue.
func (q *Queue) startLocked(item *Item) {
	cmd, err := engine.StartOne(&item.Desc, q.environment)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		item.Complete = true
		q.startNextLocked()
		return
	}
	item.Pid = cmd.Process.Pid
}

// startNextLocked finds the first queued-and-not-started item and starts
// it.
func (q *Queue) startNextLocked() {
	for _, item := range q.items {
		if item.Pid == 0 && !item.Complete {
			q.startLocked(item)
			return
		}
	}
}

// findLocked returns the item with the given job id and its index, or
// (nil, -1) if absent. Callers must hold q.mu.
func (q *Queue) findLocked(jobID int) (*Item, int) {
	for i, item := range q.items {
		if item.JobID == jobID {
			return item, i
		}
	}
	return nil, -1
}

// reap is the SIGCHLD-driven advancement loop. For every tracked pid it
// attempts a non-blocking wait; a match marks the item complete (or, for
// a SIGKILL death, removes it and its temp file as a cancellation) and
// starts the next eligible item.
func (q *Queue) reap() {
	for {
		select {
		case <-q.stopCh:
			return
		case <-q.sigCh:
			q.handleSIGCHLD()
		}
	}
}

func (q *Queue) handleSIGCHLD() {
	q.mu.Lock()
	defer q.mu.Unlock()

	// Snapshot before iterating: the SIGKILL branch below removes the
	// item from q.items via removeLocked, which would otherwise mutate
	// the slice this loop is ranging over.
	items := make([]*Item, len(q.items))
	copy(items, q.items)

	for _, item := range items {
		if item.Pid == 0 || item.Complete {
			continue
		}

		var status syscall.WaitStatus
		wpid, err := syscall.Wait4(item.Pid, &status, syscall.WNOHANG, nil)
		if err != nil || wpid != item.Pid {
			continue
		}

		item.Complete = true

		if status.Signaled() && status.Signal() == syscall.SIGKILL {
			fmt.Fprintf(os.Stdout, "job %d canceled\n", item.JobID)
			os.Remove(item.OutFile)
			q.removeLocked(item.JobID)
		}

		q.startNextLocked()
	}
}

// removeLocked deletes the item with the given job id from the queue.
// Callers must hold q.mu.
func (q *Queue) removeLocked(jobID int) {
	for i, item := range q.items {
		if item.JobID == jobID {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// newTempFile creates a uniquely named, empty file under dir (or
// os.TempDir() when dir is ""), named background_cmd_XXXXXXXX, where the
// 8-character suffix comes from a google/uuid value rather than a
// hand-rolled random generator.
func newTempFile(dir string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	for attempt := 0; attempt < 8; attempt++ {
		suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
		path := filepath.Join(dir, "background_cmd_"+suffix)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o777)
		if err == nil {
			f.Close()
			return path, nil
		}
		if !os.IsExist(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("could not allocate a unique temp file")
}

// executableName resolves pid's executable name via go-ps, falling back
// to fallback (the descriptor's own command name) when the process has
// already exited or /proc is unavailable.
func executableName(pid int, fallback string) string {
	if pid == 0 {
		return fallback
	}
	proc, err := ps.FindProcess(pid)
	if err != nil || proc == nil {
		return fallback
	}
	return proc.Executable()
}
