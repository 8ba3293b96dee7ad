/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

package cesh

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/jupiterrider/ffi"
)

// ErrNotLoaded is returned when engine operations are attempted but the
// native library is not available. Set the ESH_LIB_PATH environment
// variable to the path of libesh.dylib/.so/.dll.
var ErrNotLoaded = errors.New("esh library not loaded; set ESH_LIB_PATH")

// ErrInitFailed is returned when esh_init reports failure. This happens
// when the engine's static instance pool is exhausted (ESH_ALLOC STATIC)
// or when malloc fails (ESH_ALLOC MALLOC).
var ErrInitFailed = errors.New("esh_init failed: instance pool exhausted or allocation failed")

// ErrNoSliceSize is returned by SliceSize when the engine build does
// not export esh_get_slice_size. Only engine builds with slice-style
// callbacks carry the symbol; the in-place argv conversion is
// unavailable without it.
var ErrNoSliceSize = errors.New("engine does not export esh_get_slice_size; rebuild with slice-style callbacks")

var (
	lib      ffi.Lib
	loadOnce sync.Once
	loadErr  error
)

// ensureLoaded opens the engine library and prepares all function
// descriptors. Loading is deferred to first use so that callers (and
// .env loaders in main packages) get a chance to set ESH_LIB_PATH.
func ensureLoaded() error {
	loadOnce.Do(func() {
		path := os.Getenv("ESH_LIB_PATH")
		if path == "" {
			path = defaultLibName()
		}

		lib, loadErr = ffi.Load(path)
		if loadErr != nil {
			loadErr = fmt.Errorf("%w: %v", ErrNotLoaded, loadErr)
			return
		}

		loadErr = registerFunctions()
	})
	return loadErr
}

func defaultLibName() string {
	switch runtime.GOOS {
	case "darwin":
		return "libesh.dylib"
	case "windows":
		return "esh.dll"
	default:
		return "libesh.so"
	}
}

// LibLoaded reports whether the native esh library was found and all
// symbols resolved. Tests use this to skip engine-dependent cases.
func LibLoaded() bool {
	return ensureLoaded() == nil
}
