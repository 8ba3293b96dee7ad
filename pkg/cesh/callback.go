/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

// This file implements the callback mechanism that allows Go functions
// to be called from the C engine.
//
// # The Problem
//
// esh notifies its user through C function pointers: a command callback
// when a line has been parsed, a print callback for every echoed
// character, and an overflow callback when the line buffer fills up.
// Go functions cannot be handed to C directly - we need a trampoline.
//
// # The Solution: libffi Closures
//
// libffi provides "closures": dynamically generated machine code that
// has a stable C-callable address, and that marshals the raw C
// arguments into a call to a Go trampoline function. One closure is
// created per callback kind and registered into the engine together
// with a registry ID smuggled through the engine's opaque `void *arg`
// context pointer.
//
//	esh (C) ──raw call──▶ ffi.Closure ──▶ commandTrampoline (Go)
//	                                          │ lookup arg as registry ID
//	                                          ▼
//	                                   commandRegistry (sync.Map)
//	                                          │
//	                                          ▼
//	                                   user's Go callback, with
//	                                   reconstructed safe views
//
// C users of esh reinterpret the context pointer directly back into a
// typed function pointer. Go cannot do that (and does not need to):
// dispatching through a registry keyed by an ID removes the
// unchecked cast entirely. An ID that is not in the registry simply
// dispatches to nothing.
//
// # Dispatch timing
//
// Callbacks run synchronously inside Rx, on the same stack, with no
// queuing or deferral. A callback that never returns blocks the input
// path. Panics in user callbacks are not caught here; they unwind
// through the trampoline and out of Rx like any ordinary call.

package cesh

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/jupiterrider/ffi"
)

// CommandCallback is invoked when the engine has parsed a complete
// command line. args indexes the tokens; index 0 is the command name.
// args and every view derived from it are invalid once the callback
// returns.
type CommandCallback func(s *Shell, args Args)

// PrintCallback is invoked for each character the engine wants written
// to the terminal (echo, prompt, line editing). One byte at a time;
// this is the engine-side contract from esh.h.
type PrintCallback func(s *Shell, c byte)

// OverflowCallback is invoked when a line exceeds the engine's buffer.
// buf is the buffered prefix before truncation, valid only for the
// duration of the callback.
type OverflowCallback func(s *Shell, buf []byte)

// Callback registry state. IDs come from a monotonic counter to avoid
// ABA problems; the ID is what travels through the engine's opaque
// context pointer.
var (
	commandRegistry  sync.Map // map[uintptr]CommandCallback
	printRegistry    sync.Map // map[uintptr]PrintCallback
	overflowRegistry sync.Map // map[uintptr]OverflowCallback
	callbackCounter  uint64
)

func nextCallbackID() uintptr {
	return uintptr(atomic.AddUint64(&callbackCounter, 1))
}

// Closure state - initialized once, lives forever. One closure per
// callback kind; all registrations of that kind share it and dispatch
// via the context ID.
var (
	closureInit sync.Once

	commandClosure *ffi.Closure
	commandCode    unsafe.Pointer
	commandCif     ffi.Cif
	commandPtr     uintptr

	printClosure *ffi.Closure
	printCode    unsafe.Pointer
	printCif     ffi.Cif
	printPtr     uintptr

	overflowClosure *ffi.Closure
	overflowCode    unsafe.Pointer
	overflowCif     ffi.Cif
	overflowPtr     uintptr
)

// initClosures creates the three libffi closures. Called lazily on
// first registration and only once; the closures are never freed.
func initClosures() {
	closureInit.Do(func() {
		// void (*esh_cb_command)(esh_t*, int argc, char** argv, void* arg)
		commandPtr = newClosure(&commandCif, &commandClosure, &commandCode, commandTrampoline,
			&ffi.TypePointer, &ffi.TypeSint32, &ffi.TypePointer, &ffi.TypePointer)

		// void (*esh_print)(esh_t*, char c, void* arg)
		printPtr = newClosure(&printCif, &printClosure, &printCode, printTrampoline,
			&ffi.TypePointer, &ffi.TypeUint8, &ffi.TypePointer)

		// void (*esh_overflow)(esh_t*, char const* buffer, void* arg)
		overflowPtr = newClosure(&overflowCif, &overflowClosure, &overflowCode, overflowTrampoline,
			&ffi.TypePointer, &ffi.TypePointer, &ffi.TypePointer)
	})
}

// newClosure allocates a closure, prepares the CIF for a void-returning
// callback with the given argument types, and wires the Go trampoline
// to it. Returns the C-callable address.
func newClosure(
	cif *ffi.Cif,
	closure **ffi.Closure,
	code *unsafe.Pointer,
	trampoline func(*ffi.Cif, unsafe.Pointer, *unsafe.Pointer, unsafe.Pointer) uintptr,
	argTypes ...*ffi.Type,
) uintptr {
	*closure = ffi.ClosureAlloc(unsafe.Sizeof(ffi.Closure{}), code)

	if status := ffi.PrepCif(cif, ffi.DefaultAbi, uint32(len(argTypes)), &ffi.TypeVoid, argTypes...); status != ffi.OK {
		panic("cesh: failed to prepare callback CIF")
	}

	goCallback := ffi.NewCallback(trampoline)

	if status := ffi.PrepClosureLoc(*closure, cif, goCallback, nil, *code); status != ffi.OK {
		panic("cesh: failed to prepare callback closure")
	}

	return uintptr(*code)
}

// commandTrampoline is invoked by libffi when the engine fires the
// command callback.
//
// libffi passes arguments as an array of pointers to the actual values:
//
//	args[0] -> esh_t*          args[1] -> int32 argc
//	args[2] -> char** argv     args[3] -> void* arg (registry ID)
//
// The raw handle is the one the engine handed out at Init and is
// trusted to be valid; argc/argv describe the engine's parse buffer for
// exactly this invocation.
func commandTrampoline(cif *ffi.Cif, ret unsafe.Pointer, args *unsafe.Pointer, userData unsafe.Pointer) uintptr {
	arguments := unsafe.Slice(args, 4)

	shell := *(*unsafe.Pointer)(arguments[0])
	argc := *(*int32)(arguments[1])
	argv := *(*unsafe.Pointer)(arguments[2])
	id := *(*uintptr)(arguments[3])

	if cb, ok := commandRegistry.Load(id); ok {
		cb.(CommandCallback)((*Shell)(shell), Args{argc: argc, argv: argv})
	}
	return 0
}

// printTrampoline dispatches one echoed character.
//
//	args[0] -> esh_t*   args[1] -> uint8 c   args[2] -> void* arg
func printTrampoline(cif *ffi.Cif, ret unsafe.Pointer, args *unsafe.Pointer, userData unsafe.Pointer) uintptr {
	arguments := unsafe.Slice(args, 3)

	shell := *(*unsafe.Pointer)(arguments[0])
	c := *(*byte)(arguments[1])
	id := *(*uintptr)(arguments[2])

	if cb, ok := printRegistry.Load(id); ok {
		cb.(PrintCallback)((*Shell)(shell), c)
	}
	return 0
}

// overflowTrampoline dispatches the buffered prefix of an overlong
// line.
//
//	args[0] -> esh_t*   args[1] -> char* buffer   args[2] -> void* arg
func overflowTrampoline(cif *ffi.Cif, ret unsafe.Pointer, args *unsafe.Pointer, userData unsafe.Pointer) uintptr {
	arguments := unsafe.Slice(args, 3)

	shell := *(*unsafe.Pointer)(arguments[0])
	buf := *(*unsafe.Pointer)(arguments[1])
	id := *(*uintptr)(arguments[2])

	if cb, ok := overflowRegistry.Load(id); ok {
		cb.(OverflowCallback)((*Shell)(shell), cstrBytes(buf))
	}
	return 0
}

// RegisterCommand installs cb as the command callback for s, replacing
// any previously installed one (the engine keeps a single slot per
// kind). Returns the registry ID; pass it to UnregisterCommand once the
// callback has been replaced, to release the registry entry.
func RegisterCommand(s *Shell, cb CommandCallback) uintptr {
	initClosures()
	id := nextCallbackID()
	commandRegistry.Store(id, cb)
	registerCommand(s, commandPtr, id)
	return id
}

// UnregisterCommand removes a command callback from the registry. Only
// call this after the engine slot has been re-registered; the engine
// offers no way to clear a slot, and firing with a stale ID would
// dispatch to nothing.
func UnregisterCommand(id uintptr) {
	commandRegistry.Delete(id)
}

// RegisterPrint installs cb as the print callback for s, replacing any
// previously installed one. Returns the registry ID.
func RegisterPrint(s *Shell, cb PrintCallback) uintptr {
	initClosures()
	id := nextCallbackID()
	printRegistry.Store(id, cb)
	registerPrint(s, printPtr, id)
	return id
}

// UnregisterPrint removes a print callback from the registry.
func UnregisterPrint(id uintptr) {
	printRegistry.Delete(id)
}

// RegisterOverflow installs cb as the overflow callback for s,
// replacing any previously installed one. Optional: the engine has a
// built-in overflow handler used when nothing is registered. Returns
// the registry ID.
func RegisterOverflow(s *Shell, cb OverflowCallback) uintptr {
	initClosures()
	id := nextCallbackID()
	overflowRegistry.Store(id, cb)
	registerOverflow(s, overflowPtr, id)
	return id
}

// UnregisterOverflow removes an overflow callback from the registry.
func UnregisterOverflow(id uintptr) {
	overflowRegistry.Delete(id)
}
