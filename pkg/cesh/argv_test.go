/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

package cesh

import (
	"runtime"
	"strings"
	"testing"
	"unsafe"
)

// buildArgv lays tokens out the way the engine's parse buffer does: one
// NUL-terminated buffer per token, plus an argv array whose raw char*
// entries sit at pointer stride inside storage that reserves a full
// slice header per slot. Callers must runtime.KeepAlive both returned
// values after their last use of the argv pointer.
func buildArgv(tokens ...string) (argv unsafe.Pointer, hold [][]byte, storage []sliceHeader) {
	storage = make([]sliceHeader, len(tokens))
	if len(tokens) == 0 {
		return nil, nil, storage
	}
	argv = unsafe.Pointer(&storage[0])
	for i, tok := range tokens {
		b := append([]byte(tok), 0)
		hold = append(hold, b)
		*(*unsafe.Pointer)(unsafe.Add(argv, uintptr(i)*ptrSize)) = unsafe.Pointer(&b[0])
	}
	return argv, hold, storage
}

func TestArgsIndexing(t *testing.T) {
	argv, hold, storage := buildArgv("echo", "hi")
	args := Args{argc: 2, argv: argv}

	if args.Len() != 2 {
		t.Fatalf("Len = %d, want 2", args.Len())
	}
	if got := args.Str(0); got != "echo" {
		t.Errorf("args[0] = %q, want %q", got, "echo")
	}
	if got := args.Str(1); got != "hi" {
		t.Errorf("args[1] = %q, want %q", got, "hi")
	}

	runtime.KeepAlive(hold)
	runtime.KeepAlive(storage)
}

func TestArgsOutOfRangeIsEmpty(t *testing.T) {
	argv, hold, storage := buildArgv("cmd")
	args := Args{argc: 1, argv: argv}

	for _, i := range []int{-1, 1, 2, 1 << 20} {
		if got := args.At(i); len(got) != 0 {
			t.Errorf("At(%d) = %q, want empty view", i, got)
		}
	}

	runtime.KeepAlive(hold)
	runtime.KeepAlive(storage)
}

func TestArgsZeroValue(t *testing.T) {
	var args Args
	if args.Len() != 0 {
		t.Fatalf("Len = %d, want 0", args.Len())
	}
	if got := args.At(0); got != nil {
		t.Fatalf("At(0) = %q, want nil", got)
	}
}

func TestMapArgvInPlace(t *testing.T) {
	tokens := []string{"echo", "one", "two", "three"}
	argv, hold, storage := buildArgv(tokens...)

	got := mapArgvInPlace(int32(len(tokens)), argv)
	if len(got) != len(tokens) {
		t.Fatalf("len = %d, want %d", len(got), len(tokens))
	}
	for i, want := range tokens {
		if got[i] != want {
			t.Errorf("argv[%d] = %q, want %q", i, got[i], want)
		}
	}

	runtime.KeepAlive(hold)
	runtime.KeepAlive(storage)
}

// The conversion overwrites the raw pointer array with wider string
// headers in the same storage. With enough arguments, a left-to-right
// pass would clobber unread pointers; this pins the right-to-left
// ordering as a tested invariant.
func TestMapArgvInPlaceManyArgs(t *testing.T) {
	var tokens []string
	for i := 0; i < 10; i++ {
		tokens = append(tokens, strings.Repeat(string(rune('a'+i)), i+1))
	}
	argv, hold, storage := buildArgv(tokens...)

	got := mapArgvInPlace(int32(len(tokens)), argv)
	for i, want := range tokens {
		if got[i] != want {
			t.Errorf("argv[%d] = %q, want %q", i, got[i], want)
		}
	}

	runtime.KeepAlive(hold)
	runtime.KeepAlive(storage)
}

func TestMapArgvInPlaceEmpty(t *testing.T) {
	if got := mapArgvInPlace(0, nil); got != nil {
		t.Fatalf("expected nil for empty argv, got %v", got)
	}
}

func TestCheckSliceSizeMatch(t *testing.T) {
	checkSliceSize(unsafe.Sizeof(sliceHeader{})) // must not panic
}

func TestCheckSliceSizeMismatchIsFatal(t *testing.T) {
	for _, reserved := range []uintptr{0, ptrSize, unsafe.Sizeof(sliceHeader{}) - 1, unsafe.Sizeof(sliceHeader{}) * 2} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("checkSliceSize(%d) did not panic", reserved)
				}
			}()
			checkSliceSize(reserved)
		}()
	}
}
