/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

package esh

import "github.com/crrow/esh-go/pkg/cesh"

// Args is a non-owning, bounds-checked view over a parsed command
// line's tokens. Index 0 is the command name.
//
// The underlying bytes belong to the engine's parse buffer and are
// reused the moment the command callback returns: do not retain an
// Args value or any slice obtained from At past the callback. Str
// copies and is safe to keep.
type Args struct {
	raw cesh.Args
}

// Len returns the number of tokens, including the command name.
func (a Args) Len() int { return a.raw.Len() }

// At returns the i-th token as a byte view into engine memory.
// Out-of-range indices yield an empty view.
func (a Args) At(i int) []byte { return a.raw.At(i) }

// Str returns the i-th token copied into a Go string.
func (a Args) Str(i int) string { return a.raw.Str(i) }

// Strings returns all tokens copied into a fresh slice, safe to retain.
func (a Args) Strings() []string {
	out := make([]string, a.Len())
	for i := range out {
		out[i] = a.Str(i)
	}
	return out
}

// CommandHandler is the interface for handling parsed command lines.
//
// Implement this interface when you need stateful command handling; for
// simple use cases [CommandFunc] via RegisterCommandFunc is the more
// convenient form.
type CommandHandler interface {
	// OnCommand is called once per completed line, synchronously inside
	// Rx. args is only valid until OnCommand returns.
	OnCommand(s *Shell, args Args)
}

// CommandFunc is a function adapter for [CommandHandler].
type CommandFunc func(s *Shell, args Args)

// OnCommand implements [CommandHandler].
func (f CommandFunc) OnCommand(s *Shell, args Args) { f(s, args) }

// PrintHandler is the interface for handling terminal output. The
// engine emits one byte per call: echo of typed characters, the prompt,
// and line-editing escape sequences all arrive here.
type PrintHandler interface {
	OnPrint(s *Shell, c byte)
}

// PrintFunc is a function adapter for [PrintHandler].
type PrintFunc func(s *Shell, c byte)

// OnPrint implements [PrintHandler].
func (f PrintFunc) OnPrint(s *Shell, c byte) { f(s, c) }

// OverflowHandler is the interface for handling line-buffer overflow.
// buf is the buffered prefix of the overlong line, NUL-terminator
// excluded, valid only until OnOverflow returns.
type OverflowHandler interface {
	OnOverflow(s *Shell, buf []byte)
}

// OverflowFunc is a function adapter for [OverflowHandler].
type OverflowFunc func(s *Shell, buf []byte)

// OnOverflow implements [OverflowHandler].
func (f OverflowFunc) OnOverflow(s *Shell, buf []byte) { f(s, buf) }
