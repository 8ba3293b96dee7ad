/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

package cesh

import "unsafe"

func bufferPointer(buf []byte) unsafe.Pointer {
	if len(buf) == 0 {
		return nil
	}
	return unsafe.Pointer(&buf[0])
}
