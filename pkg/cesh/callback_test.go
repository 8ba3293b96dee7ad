/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

// These tests drive the trampolines directly with fabricated libffi
// argument frames, the same pointer-to-value layout libffi builds when
// the engine fires a callback. That exercises the full marshalling path
// (context recovery, handle reconstruction, view construction) without
// the native library.

package cesh

import (
	"bytes"
	"runtime"
	"testing"
	"unsafe"
)

func TestCommandTrampolineDispatch(t *testing.T) {
	var dummy byte
	shellPtr := unsafe.Pointer(&dummy)

	var gotShell *Shell
	var gotArgs []string
	id := nextCallbackID()
	commandRegistry.Store(id, CommandCallback(func(s *Shell, args Args) {
		gotShell = s
		for i := 0; i < args.Len(); i++ {
			gotArgs = append(gotArgs, args.Str(i))
		}
	}))
	defer commandRegistry.Delete(id)

	argv, hold, storage := buildArgv("echo", "hi")
	argc := int32(2)

	frame := [4]unsafe.Pointer{
		unsafe.Pointer(&shellPtr),
		unsafe.Pointer(&argc),
		unsafe.Pointer(&argv),
		unsafe.Pointer(&id),
	}
	commandTrampoline(nil, nil, &frame[0], nil)

	if gotShell != (*Shell)(shellPtr) {
		t.Error("callback did not receive the handle from the raw frame")
	}
	if len(gotArgs) != 2 || gotArgs[0] != "echo" || gotArgs[1] != "hi" {
		t.Errorf("callback args = %q, want [echo hi]", gotArgs)
	}

	runtime.KeepAlive(hold)
	runtime.KeepAlive(storage)
}

func TestPrintTrampolineDispatch(t *testing.T) {
	var dummy byte
	shellPtr := unsafe.Pointer(&dummy)

	var got []byte
	id := nextCallbackID()
	printRegistry.Store(id, PrintCallback(func(s *Shell, c byte) {
		got = append(got, c)
	}))
	defer printRegistry.Delete(id)

	for _, c := range []byte("% ") {
		c := c
		frame := [3]unsafe.Pointer{
			unsafe.Pointer(&shellPtr),
			unsafe.Pointer(&c),
			unsafe.Pointer(&id),
		}
		printTrampoline(nil, nil, &frame[0], nil)
	}

	if string(got) != "% " {
		t.Errorf("print callback saw %q, want %q", got, "% ")
	}
}

func TestOverflowTrampolineDispatch(t *testing.T) {
	var dummy byte
	shellPtr := unsafe.Pointer(&dummy)

	buf := []byte("overflowed line\x00trailing junk")
	bufPtr := unsafe.Pointer(&buf[0])

	var got []byte
	id := nextCallbackID()
	overflowRegistry.Store(id, OverflowCallback(func(s *Shell, b []byte) {
		got = append([]byte(nil), b...)
	}))
	defer overflowRegistry.Delete(id)

	frame := [3]unsafe.Pointer{
		unsafe.Pointer(&shellPtr),
		unsafe.Pointer(&bufPtr),
		unsafe.Pointer(&id),
	}
	overflowTrampoline(nil, nil, &frame[0], nil)

	if !bytes.Equal(got, []byte("overflowed line")) {
		t.Errorf("overflow callback saw %q, want %q", got, "overflowed line")
	}

	runtime.KeepAlive(buf)
}

func TestTrampolineUnknownIDDispatchesToNothing(t *testing.T) {
	var dummy byte
	shellPtr := unsafe.Pointer(&dummy)
	c := byte('x')
	id := nextCallbackID() // never stored

	frame := [3]unsafe.Pointer{
		unsafe.Pointer(&shellPtr),
		unsafe.Pointer(&c),
		unsafe.Pointer(&id),
	}
	printTrampoline(nil, nil, &frame[0], nil) // must not panic
}

func TestUnregisterStopsDispatch(t *testing.T) {
	var dummy byte
	shellPtr := unsafe.Pointer(&dummy)

	fired := false
	id := nextCallbackID()
	printRegistry.Store(id, PrintCallback(func(s *Shell, c byte) {
		fired = true
	}))

	before := DebugCallbackCount()
	UnregisterPrint(id)
	if DebugCallbackCount() != before-1 {
		t.Error("unregister did not release the registry entry")
	}

	c := byte('x')
	frame := [3]unsafe.Pointer{
		unsafe.Pointer(&shellPtr),
		unsafe.Pointer(&c),
		unsafe.Pointer(&id),
	}
	printTrampoline(nil, nil, &frame[0], nil)

	if fired {
		t.Error("unregistered callback was still dispatched")
	}
}
