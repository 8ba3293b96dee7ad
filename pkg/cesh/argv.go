/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

package cesh

import (
	"fmt"
	"sync"
	"unsafe"
)

const ptrSize = unsafe.Sizeof(uintptr(0))

// Args is a non-owning, bounds-checked view over the argument array the
// engine hands to a command callback. Index 0 is the command name; the
// remaining entries are the whitespace/quote-delimited tokens.
//
// Both the pointer array and the token bytes live in the engine's
// internal parse buffer, which is reused as soon as the command
// callback returns. Neither an Args value nor any slice obtained from
// it may be retained past the callback.
type Args struct {
	argc int32
	argv unsafe.Pointer // char**
}

// Len returns the number of arguments, including the command name.
func (a Args) Len() int {
	return int(a.argc)
}

// At returns the i-th argument as a byte view, scanning for the
// terminating NUL on each access. Indices outside [0, Len()) yield an
// empty view rather than panicking, keeping the accessor total.
func (a Args) At(i int) []byte {
	if i < 0 || i >= int(a.argc) || a.argv == nil {
		return nil
	}
	p := *(*unsafe.Pointer)(unsafe.Add(a.argv, uintptr(i)*ptrSize))
	return cstrBytes(p)
}

// Str returns the i-th argument copied into a Go string. Unlike At, the
// result is safe to retain past the callback.
func (a Args) Str(i int) string {
	return string(a.At(i))
}

// sliceHeader mirrors the in-memory layout of a Go string header: a
// data pointer followed by a length. Engine builds with slice-style
// callbacks reserve this much space per argv slot and report the
// reserved size through esh_get_slice_size.
type sliceHeader struct {
	data unsafe.Pointer
	len  int
}

// checkSliceSize verifies that the engine reserved exactly as many
// bytes per argv slot as a Go string header occupies. A mismatch means
// the in-place conversion would scribble past the reserved storage and
// silently corrupt the engine instance, so it is fatal rather than a
// recoverable error.
func checkSliceSize(reserved uintptr) {
	if want := unsafe.Sizeof(sliceHeader{}); reserved != want {
		panic(fmt.Sprintf(
			"cesh: engine reserved %d bytes per argv slot, host string header needs %d; "+
				"rebuild the engine with a matching slice layout", reserved, want))
	}
}

var sliceLayoutOnce sync.Once

func ensureSliceLayout() {
	sliceLayoutOnce.Do(func() {
		reserved, err := SliceSize()
		if err != nil {
			panic(err)
		}
		checkSliceSize(reserved)
	})
}

// MapArgvInPlace reinterprets the engine's raw argv array as a []string
// without allocating, overwriting the very storage the engine reserved
// for the pointer array. This exists for memory-starved targets where
// even a small secondary allocation per command is unwelcome; most
// callers should use Args instead.
//
// Slots are converted from the highest index down to the lowest: a
// string header is wider than a raw pointer, so converting slot i only
// overwrites slot i itself and higher slots, never a raw pointer that
// has not been read yet. That ordering is the whole trick and is
// covered by tests.
//
// The first call verifies the engine's reserved per-slot size against
// the host string header size and panics on mismatch (see
// checkSliceSize). The returned strings alias engine memory and are
// only valid for the current callback invocation. The argv array must
// not be read through Args afterwards; the raw pointers are gone.
func MapArgvInPlace(argc int32, argv unsafe.Pointer) []string {
	ensureSliceLayout()
	return mapArgvInPlace(argc, argv)
}

func mapArgvInPlace(argc int32, argv unsafe.Pointer) []string {
	if argv == nil || argc <= 0 {
		return nil
	}
	for i := int(argc) - 1; i >= 0; i-- {
		p := *(*unsafe.Pointer)(unsafe.Add(argv, uintptr(i)*ptrSize))
		n := len(cstrBytes(p))
		*(*sliceHeader)(unsafe.Add(argv, uintptr(i)*unsafe.Sizeof(sliceHeader{}))) =
			sliceHeader{data: p, len: n}
	}
	return unsafe.Slice((*string)(argv), int(argc))
}
