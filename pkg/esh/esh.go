/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

// Package esh provides a high-level, Go-idiomatic API for the esh
// embedded shell engine.
//
// This package wraps the low-level cesh bindings with:
//   - Go-style error handling (error returns instead of NULL checks)
//   - Handler interfaces and functional callbacks
//   - Automatic registry bookkeeping when callbacks are replaced
//
// # Quick Start
//
//	sh, err := esh.Init()
//	if err != nil {
//	    // instance pool exhausted, allocation failed, or library missing
//	}
//
//	sh.RegisterPrintFunc(func(_ *esh.Shell, c byte) { uart.WriteByte(c) })
//	sh.RegisterCommandFunc(func(_ *esh.Shell, args esh.Args) {
//	    fmt.Println("command:", args.Str(0))
//	})
//
//	for {
//	    sh.Rx(uart.ReadByte()) // callbacks fire synchronously in here
//	}
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│  Your Application                   │
//	├─────────────────────────────────────┤
//	│  esh (high-level Go API)            │  <- This package
//	├─────────────────────────────────────┤
//	│  cesh (low-level FFI bindings)      │
//	├─────────────────────────────────────┤
//	│  libffi (C calling convention)      │
//	├─────────────────────────────────────┤
//	│  libesh (C shell engine)            │
//	└─────────────────────────────────────┘
//
// # Lifetime
//
// There is no Close: the engine has no destructor, so every instance
// lives until the process exits. Feed bytes from a single goroutine
// per Shell; the engine is not reentrant.
//
// The engine speaks strict \n line endings and handles its own echo
// through the print callback. Terminal-facing callers typically want
// pkg/lineproto for \r\n translation on both directions.
package esh

import (
	"github.com/crrow/esh-go/pkg/cesh"
)

// Shell wraps one engine instance with a Go-friendly API.
type Shell struct {
	inner *cesh.Shell

	commandID  uintptr
	printID    uintptr
	overflowID uintptr

	// The engine borrows the history buffer for the instance lifetime;
	// keeping the slice here keeps it reachable.
	histbuf []byte
}

// Init creates a new shell instance.
//
// The returned Shell is valid forever; see the package comment on
// lifetime. Returns an error when the engine's instance pool is
// exhausted, allocation fails, or the native library is unavailable.
func Init() (*Shell, error) {
	inner, err := cesh.Init()
	if err != nil {
		return nil, err
	}
	return &Shell{inner: inner}, nil
}

// Rx feeds one received byte into the shell. Registered callbacks run
// synchronously inside this call, on the same stack, before it returns.
func (s *Shell) Rx(c byte) {
	cesh.Rx(s.inner, c)
}

// RxBytes feeds a chunk of received bytes, one at a time. The engine
// has no batch entry point; observable behavior is identical to calling
// Rx per byte.
func (s *Shell) RxBytes(p []byte) {
	for _, c := range p {
		cesh.Rx(s.inner, c)
	}
}

// RxString feeds a string, one byte at a time.
func (s *Shell) RxString(str string) {
	for i := 0; i < len(str); i++ {
		cesh.Rx(s.inner, str[i])
	}
}

// SetHistBuf hands the engine a history ring buffer (engine builds with
// ESH_HIST_ALLOC MANUAL; a no-op otherwise). The Shell retains the
// slice so the engine's borrowed pointer stays valid.
func (s *Shell) SetHistBuf(buf []byte) {
	s.histbuf = buf
	cesh.SetHistBuf(s.inner, buf)
}

// RegisterCommand installs handler for parsed command lines, replacing
// any previous command handler on this shell.
func (s *Shell) RegisterCommand(handler CommandHandler) {
	old := s.commandID
	s.commandID = cesh.RegisterCommand(s.inner, func(_ *cesh.Shell, args cesh.Args) {
		handler.OnCommand(s, Args{raw: args})
	})
	if old != 0 {
		cesh.UnregisterCommand(old)
	}
}

// RegisterCommandFunc is the functional form of RegisterCommand.
func (s *Shell) RegisterCommandFunc(fn func(s *Shell, args Args)) {
	s.RegisterCommand(CommandFunc(fn))
}

// RegisterPrint installs handler for characters the engine wants
// written to the terminal, replacing any previous print handler.
func (s *Shell) RegisterPrint(handler PrintHandler) {
	old := s.printID
	s.printID = cesh.RegisterPrint(s.inner, func(_ *cesh.Shell, c byte) {
		handler.OnPrint(s, c)
	})
	if old != 0 {
		cesh.UnregisterPrint(old)
	}
}

// RegisterPrintFunc is the functional form of RegisterPrint.
func (s *Shell) RegisterPrintFunc(fn func(s *Shell, c byte)) {
	s.RegisterPrint(PrintFunc(fn))
}

// RegisterOverflow installs handler for line-buffer overflows,
// replacing any previous overflow handler. Optional: without one the
// engine falls back to its built-in overflow behavior.
func (s *Shell) RegisterOverflow(handler OverflowHandler) {
	old := s.overflowID
	s.overflowID = cesh.RegisterOverflow(s.inner, func(_ *cesh.Shell, buf []byte) {
		handler.OnOverflow(s, buf)
	})
	if old != 0 {
		cesh.UnregisterOverflow(old)
	}
}

// RegisterOverflowFunc is the functional form of RegisterOverflow.
func (s *Shell) RegisterOverflowFunc(fn func(s *Shell, buf []byte)) {
	s.RegisterOverflow(OverflowFunc(fn))
}

// Inner returns the underlying cesh.Shell for advanced use cases.
// Most users should not need this.
func (s *Shell) Inner() *cesh.Shell {
	return s.inner
}
