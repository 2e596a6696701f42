// Package env implements sush's environment store: an insertion-ordered,
// unique-by-name mapping of NAME=VALUE pairs. It is consumed by the
// execution engine when launching external processes and by the prompt
// when rendering PS1.
package env

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// DefaultPS1 is installed when the inherited environment has no PS1.
	// The source's own default varies across iterations ("$" vs "~");
	// sush settles on a plain prompt marker.
	DefaultPS1 = "> "
)

// entry is one NAME=VALUE pair tracked by the store.
type entry struct {
	name  string
	value string
}

// Store is an ordered, unique-by-name environment table. The zero value
// is not usable; construct one with Init.
type Store struct {
	order   []string
	entries map[string]entry
}

// Init populates a new Store from a nil-terminated NAME=VALUE array such
// as os.Environ(). Entries without an '=' are ignored. After populating,
// PS1 and SUSHHOME are seeded with defaults if absent.
func Init(envp []string) *Store {
	s := &Store{entries: make(map[string]entry, len(envp))}
	for _, kv := range envp {
		idx := strings.IndexByte(kv, '=')
		if idx < 0 {
			continue
		}
		s.Set(kv[:idx], kv[idx+1:])
	}

	if !s.Exists("PS1") {
		s.Set("PS1", DefaultPS1)
	}
	if !s.Exists("SUSHHOME") {
		if pwd, err := os.Getwd(); err == nil {
			s.Set("SUSHHOME", pwd)
		} else {
			s.Set("SUSHHOME", s.Get("PWD"))
		}
	}

	return s
}

// Exists reports whether name is present in the store.
func (s *Store) Exists(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// Get returns the value bound to name, or "" if unbound.
func (s *Store) Get(name string) string {
	return s.entries[name].value
}

// Set inserts or updates the binding for name. Insertion order is
// preserved for names that already exist.
func (s *Store) Set(name, value string) {
	if _, ok := s.entries[name]; !ok {
		s.order = append(s.order, name)
	}
	s.entries[name] = entry{name: name, value: value}
}

// Remove deletes the binding for name, if any. It is a no-op otherwise.
func (s *Store) Remove(name string) {
	if _, ok := s.entries[name]; !ok {
		return
	}
	delete(s.entries, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Print writes one NAME=VALUE line per entry, in insertion order, to w.
func (s *Store) Print(w io.Writer) error {
	for _, name := range s.order {
		if _, err := fmt.Fprintf(w, "%s=%s\n", name, s.entries[name].value); err != nil {
			return err
		}
	}
	return nil
}

// Export returns a freshly allocated NAME=VALUE slice suitable for
// exec.Cmd.Env, in insertion order.
func (s *Store) Export() []string {
	out := make([]string, 0, len(s.order))
	for _, name := range s.order {
		e := s.entries[name]
		out = append(out, e.name+"="+e.value)
	}
	return out
}

// Teardown releases the store's storage. The store must not be used
// afterward.
func (s *Store) Teardown() {
	s.order = nil
	s.entries = nil
}
