/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

package shellsrv

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// HandlerFunc executes one command. args holds the parsed tokens with
// the command name at index 0; they are copies and safe to retain.
// Output written to w reaches the client with engine-style \n endings
// (the server translates to \r\n on the wire).
type HandlerFunc func(w io.Writer, args []string)

// Mux routes parsed command lines to handlers by command name.
// Safe for concurrent use; all connections of a server share one Mux.
type Mux struct {
	mu       sync.RWMutex
	commands map[string]HandlerFunc
}

// NewMux returns an empty command mux.
func NewMux() *Mux {
	return &Mux{commands: make(map[string]HandlerFunc)}
}

// Handle registers fn for the given command name, replacing any
// previous handler for that name.
func (m *Mux) Handle(name string, fn HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[name] = fn
}

// Commands returns the registered command names, sorted.
func (m *Mux) Commands() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.commands))
	for name := range m.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the handler for args[0], or prints a not-found message.
// Empty lines dispatch to nothing.
func (m *Mux) Dispatch(w io.Writer, args []string) {
	if len(args) == 0 {
		return
	}

	m.mu.RLock()
	fn, ok := m.commands[args[0]]
	m.mu.RUnlock()

	if !ok {
		fmt.Fprintf(w, "%s: command not found\n", args[0])
		return
	}
	fn(w, args)
}
