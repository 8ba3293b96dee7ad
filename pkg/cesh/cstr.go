/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

package cesh

import "unsafe"

// cstrBytes returns a non-owning byte view of the NUL-terminated buffer
// at p. The view covers exactly the bytes before the terminator.
//
// The engine guarantees termination and supplies no length bound, so
// the scan has to trust that contract; a non-terminated buffer would
// read out of bounds and cannot be detected here. The view aliases
// engine memory and is only valid until the current callback returns.
func cstrBytes(p unsafe.Pointer) []byte {
	if p == nil {
		return nil
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return unsafe.Slice((*byte)(p), n)
}
