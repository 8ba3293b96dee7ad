/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

// Package cesh provides low-level FFI bindings for esh, the embedded
// command shell engine. esh is a small C library intended for debug
// consoles on microcontrollers: it does line editing, sh-like argument
// tokenizing, and an optional history ring buffer. This package only
// crosses the boundary; the editing and tokenizing logic lives entirely
// on the C side.
//
// The engine exposes five entry points (esh_init, esh_register_command,
// esh_register_print, esh_register_overflow_callback, esh_rx) plus two small
// extras (esh_set_histbuf, esh_get_slice_size). All of them are reached
// through libffi descriptors prepared once at load time.
//
// # Lifetime rules
//
// esh has no destructor. A *Shell returned by Init is valid for the
// rest of the process, whether the engine was built with a static
// instance pool or with malloc. Nothing in this package allocates or
// frees engine memory.
//
// Every view handed to a callback (argument views, overflow buffers)
// aliases the engine's internal parse buffer and is reused as soon as
// the callback returns. Such views must never be retained.
//
// # Concurrency
//
// The engine is single-threaded and non-reentrant. Calls into one
// Shell must come from a single goroutine (or be serialized by the
// caller). Init itself bumps a global instance counter inside the
// engine and is serialized here.
package cesh

// Shell is the opaque esh instance type. The layout is private to the
// C engine; Go code only ever holds pointers handed out by Init and
// passes them back unmodified.
type Shell struct {
	_ [0]func() // not constructible from Go, compare by pointer only
}
