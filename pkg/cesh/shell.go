/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

package cesh

import (
	"sync"
	"unsafe"

	"github.com/jupiterrider/ffi"
)

// FFI function descriptors for the engine entry points.
// These are prepared once during ensureLoaded and reused for all calls.
var (
	fnInit             ffi.Fun
	fnRegisterCommand  ffi.Fun
	fnRegisterPrint    ffi.Fun
	fnRegisterOverflow ffi.Fun
	fnRx               ffi.Fun
	fnSetHistbuf       ffi.Fun
	fnGetSliceSize     ffi.Fun
	hasSliceSize       bool
)

// registerFunctions prepares all FFI function descriptors.
//
// The type descriptors (ffi.TypeSint32, ffi.TypePointer, etc.) tell
// libffi how to marshal data between Go and C calling conventions.
func registerFunctions() error {
	var err error

	// esh_t* esh_init(void)
	// Returns an initialized instance, or NULL when the static pool is
	// exhausted or malloc fails.
	fnInit, err = lib.Prep("esh_init", &ffi.TypePointer)
	if err != nil {
		return err
	}

	// void esh_register_command(esh_t*, esh_cb_command, void* arg)
	fnRegisterCommand, err = lib.Prep("esh_register_command",
		&ffi.TypeVoid, &ffi.TypePointer, &ffi.TypePointer, &ffi.TypePointer)
	if err != nil {
		return err
	}

	// void esh_register_print(esh_t*, esh_print, void* arg)
	fnRegisterPrint, err = lib.Prep("esh_register_print",
		&ffi.TypeVoid, &ffi.TypePointer, &ffi.TypePointer, &ffi.TypePointer)
	if err != nil {
		return err
	}

	// void esh_register_overflow_callback(esh_t*, esh_overflow, void* arg)
	fnRegisterOverflow, err = lib.Prep("esh_register_overflow_callback",
		&ffi.TypeVoid, &ffi.TypePointer, &ffi.TypePointer, &ffi.TypePointer)
	if err != nil {
		return err
	}

	// void esh_rx(esh_t*, char c)
	fnRx, err = lib.Prep("esh_rx", &ffi.TypeVoid, &ffi.TypePointer, &ffi.TypeUint8)
	if err != nil {
		return err
	}

	// void esh_set_histbuf(esh_t*, char* buffer)
	fnSetHistbuf, err = lib.Prep("esh_set_histbuf",
		&ffi.TypeVoid, &ffi.TypePointer, &ffi.TypePointer)
	if err != nil {
		return err
	}

	// size_t esh_get_slice_size(void)
	// Reports the bytes the engine reserved per argv slot for the
	// in-place slice conversion (argv.go). Only engine builds with
	// slice-style callbacks export it, so a missing symbol is fine.
	if fn, err := lib.Prep("esh_get_slice_size", &ffi.TypeUint64); err == nil {
		fnGetSliceSize = fn
		hasSliceSize = true
	}

	return nil
}

// initMu serializes Init calls. The engine keeps a global count of live
// instances (static pool builds) and does not guard it itself.
var initMu sync.Mutex

// Init creates a new shell instance and returns a handle to it.
//
// The handle is valid for the remainder of the process: esh has no
// destructor, so instances are either statically pooled or deliberately
// leaked. Returns ErrInitFailed when the engine reports NULL.
func Init() (*Shell, error) {
	if err := ensureLoaded(); err != nil {
		return nil, err
	}

	initMu.Lock()
	defer initMu.Unlock()

	var ret unsafe.Pointer
	fnInit.Call(&ret)
	if ret == nil {
		return nil, ErrInitFailed
	}
	return (*Shell)(ret), nil
}

// Rx feeds one received byte into the shell. The engine may invoke any
// of the registered callbacks synchronously, on this call stack, before
// Rx returns: print callbacks for echo, at most one command callback
// when a line completes, or the overflow callback when the line buffer
// fills up.
//
// Only bytes valid in both ASCII and UTF-8 are accepted; the engine
// silently drops the rest.
func Rx(s *Shell, c byte) {
	ptr := unsafe.Pointer(s)
	fnRx.Call(nil, &ptr, &c)
}

// SetHistBuf hands the engine a history ring buffer. Only meaningful in
// engine builds configured with ESH_HIST_ALLOC MANUAL; otherwise a
// no-op.
//
// The engine borrows the buffer for the life of the instance. The
// caller must keep the slice referenced (the esh package does this
// automatically).
func SetHistBuf(s *Shell, buf []byte) {
	ptr := unsafe.Pointer(s)
	bp := bufferPointer(buf)
	fnSetHistbuf.Call(nil, &ptr, &bp)
}

// SliceSize returns the engine's reserved per-argv-slot size in bytes,
// or ErrNoSliceSize when the engine build does not export it.
func SliceSize() (uintptr, error) {
	if err := ensureLoaded(); err != nil {
		return 0, err
	}
	if !hasSliceSize {
		return 0, ErrNoSliceSize
	}
	var ret ffi.Arg
	fnGetSliceSize.Call(&ret)
	return uintptr(ret), nil
}

// registerCommand installs a raw callback pointer and opaque context
// into the engine's command slot, replacing any previous registration.
func registerCommand(s *Shell, cb uintptr, arg uintptr) {
	ptr := unsafe.Pointer(s)
	fnRegisterCommand.Call(nil, &ptr, &cb, &arg)
}

func registerPrint(s *Shell, cb uintptr, arg uintptr) {
	ptr := unsafe.Pointer(s)
	fnRegisterPrint.Call(nil, &ptr, &cb, &arg)
}

func registerOverflow(s *Shell, cb uintptr, arg uintptr) {
	ptr := unsafe.Pointer(s)
	fnRegisterOverflow.Call(nil, &ptr, &cb, &arg)
}
